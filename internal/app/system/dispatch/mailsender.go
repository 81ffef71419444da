package dispatch

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/notifyhub/internal/app/system/mailer"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errNoAddress = errors.New("recipient has no email address")

// Mailer sends one composed email.
type Mailer interface {
	Send(ctx context.Context, e mailer.Email) error
}

// ProjectLookup loads projects for email headers and links.
type ProjectLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
}

// ItemLookup loads work items for their per-project number.
type ItemLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.WorkItem, error)
}

// ActorLookup loads the acting user.
type ActorLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// TokenIssuer signs unsubscribe tokens.
type TokenIssuer interface {
	Issue(replyKey string) (string, error)
}

// MailSenderConfig holds the pieces of a MailSender.
type MailSenderConfig struct {
	Mailer   Mailer
	Projects ProjectLookup
	Items    ItemLookup
	Actors   ActorLookup
	Tokens   TokenIssuer
	SiteName string
	BaseURL  string
}

// MailSender renders a delivery as an email.
type MailSender struct {
	cfg MailSenderConfig
}

var _ Sender = (*MailSender)(nil)

// NewMailSender creates a sender over cfg.
func NewMailSender(cfg MailSenderConfig) *MailSender {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &MailSender{cfg: cfg}
}

// Name implements Sender.
func (s *MailSender) Name() string { return "email" }

// Send implements Sender.
func (s *MailSender) Send(ctx context.Context, d Delivery) error {
	if d.Recipient.Email == "" {
		return Permanent(errNoAddress)
	}
	data, err := s.render(ctx, d)
	if err != nil {
		return err
	}
	e := mailer.BuildNotificationEmail(data)
	e.To = d.Recipient.Email
	e.ToName = d.Recipient.FullName
	e.Headers = map[string]string{
		"X-NotifyHub-Event":   string(d.Event.Kind),
		"X-NotifyHub-Project": data.ProjectPath,
	}
	return s.cfg.Mailer.Send(ctx, e)
}

func (s *MailSender) render(ctx context.Context, d Delivery) (mailer.NotificationEmailData, error) {
	ev := d.Event
	project, err := s.cfg.Projects.GetByID(ctx, ev.Project.ID)
	if err != nil {
		return mailer.NotificationEmailData{}, fmt.Errorf("load project: %w", err)
	}
	actor := "Someone"
	if !ev.Actor.IsZero() {
		u, err := s.cfg.Actors.GetByID(ctx, ev.Actor)
		if err != nil {
			return mailer.NotificationEmailData{}, fmt.Errorf("load actor: %w", err)
		}
		actor = "@" + u.Handle
	}

	data := mailer.NotificationEmailData{
		SiteName:    s.cfg.SiteName,
		ProjectPath: project.Path,
		Reason:      fmt.Sprintf("You are receiving this email because of your notification settings for %s.", project.Path),
	}

	if ev.Kind == notify.EventProjectMoved {
		data.Summary = fmt.Sprintf("Project %s was moved to %s", ev.OldPath, project.Path)
		data.ItemURL = s.cfg.BaseURL + "/" + project.Path
		return data, nil
	}
	if ev.Item == nil {
		return mailer.NotificationEmailData{}, Permanent(fmt.Errorf("%s event without item", ev.Kind))
	}

	item, err := s.cfg.Items.GetByID(ctx, ev.Item.ID)
	if err != nil {
		return mailer.NotificationEmailData{}, fmt.Errorf("load item: %w", err)
	}
	noun, ref, path := itemRef(item)
	data.ItemRef = ref
	data.ItemTitle = item.Title
	data.ItemURL = fmt.Sprintf("%s/%s/-/%s", s.cfg.BaseURL, project.Path, path)
	data.Summary = fmt.Sprintf("%s %s %s %s", actor, verbs[ev.Kind], noun, ref)

	if ev.Note != nil {
		data.NoteHTML = template.HTML(htmlsanitize.RenderMarkdown(ev.Note.Body))
		data.NoteText = ev.Note.Body
		data.Preview = htmlsanitize.Excerpt(ev.Note.Body, previewRunes)
	}

	token, err := s.cfg.Tokens.Issue(d.Marker.ReplyKey)
	if err != nil {
		return mailer.NotificationEmailData{}, Permanent(fmt.Errorf("issue unsubscribe token: %w", err))
	}
	data.UnsubscribeURL = s.cfg.BaseURL + "/unsubscribe/" + token
	return data, nil
}

const previewRunes = 140

var verbs = map[notify.EventKind]string{
	notify.EventNewIssue:               "opened",
	notify.EventReassignedIssue:        "reassigned",
	notify.EventRelabeledIssue:         "added labels to",
	notify.EventClosedIssue:            "closed",
	notify.EventReopenedIssue:          "reopened",
	notify.EventNewMergeRequest:        "opened",
	notify.EventReassignedMergeRequest: "reassigned",
	notify.EventRelabeledMergeRequest:  "added labels to",
	notify.EventClosedMergeRequest:     "closed",
	notify.EventMergedMergeRequest:     "merged",
	notify.EventReopenedMergeRequest:   "reopened",
	notify.EventNewNote:                "commented on",
}

// itemRef returns the noun, short reference and URL path of an item.
func itemRef(w models.WorkItem) (noun, ref, path string) {
	switch w.Kind {
	case models.WorkItemMergeRequest:
		return "merge request", fmt.Sprintf("!%d", w.IID), fmt.Sprintf("merge_requests/%d", w.IID)
	case models.WorkItemCommit:
		sha := w.Title
		short := sha
		if len(short) > 8 {
			short = short[:8]
		}
		return "commit", short, "commit/" + sha
	}
	return "issue", fmt.Sprintf("#%d", w.IID), fmt.Sprintf("issues/%d", w.IID)
}
