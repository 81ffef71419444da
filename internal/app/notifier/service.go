// Package notifier turns stored work-item activity into notifications.
//
// It loads the project, item and notes an event refers to, asks the notify
// engine who should hear about it, and hands the result to a dispatcher.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/notifyhub/internal/app/notify"
	notestore "github.com/dalemusser/notifyhub/internal/app/store/notes"
	projectstore "github.com/dalemusser/notifyhub/internal/app/store/projects"
	userstore "github.com/dalemusser/notifyhub/internal/app/store/users"
	workitemstore "github.com/dalemusser/notifyhub/internal/app/store/workitems"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means the event refers to a project, item, note or user
	// that does not exist.
	ErrNotFound = errors.New("notifier: not found")

	errNoDispatcher = errors.New("notifier: no dispatcher configured")
)

// Request names an event by the ids of the stored records it concerns.
type Request struct {
	ID                 string   `json:"id,omitempty" yaml:"id,omitempty"`
	Kind               string   `json:"kind" yaml:"kind"`
	ActorID            string   `json:"actor_id" yaml:"actor_id"`
	ProjectID          string   `json:"project_id" yaml:"project_id"`
	ItemID             string   `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	NoteID             string   `json:"note_id,omitempty" yaml:"note_id,omitempty"`
	PreviousAssigneeID string   `json:"previous_assignee_id,omitempty" yaml:"previous_assignee_id,omitempty"`
	AddedLabelIDs      []string `json:"added_label_ids,omitempty" yaml:"added_label_ids,omitempty"`
	OldPath            string   `json:"old_path,omitempty" yaml:"old_path,omitempty"`
}

// Result reports what Notify did.
type Result struct {
	EventID    string               `json:"event_id"`
	Recipients []primitive.ObjectID `json:"recipients"`
}

// Service resolves and dispatches notifications.
type Service struct {
	stores     Stores
	engine     *notify.Engine
	dispatcher notify.Dispatcher
	log        *zap.Logger
}

// New creates a service. dispatcher may be nil for preview-only use.
func New(stores Stores, engine *notify.Engine, dispatcher notify.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		stores:     stores,
		engine:     engine,
		dispatcher: dispatcher,
		log:        logger.Named("notifier"),
	}
}

// Notify resolves the recipients of req and dispatches them.
func (s *Service) Notify(ctx context.Context, req Request) (Result, error) {
	if s.dispatcher == nil {
		return Result{}, errNoDispatcher
	}
	ev, err := s.BuildEvent(ctx, req)
	if err != nil {
		return Result{}, err
	}

	recipients, err := s.engine.Resolve(ctx, ev)
	if err != nil {
		resolutionsTotal.WithLabelValues(string(ev.Kind), outcome(err)).Inc()
		return Result{}, err
	}
	resolutionsTotal.WithLabelValues(string(ev.Kind), "ok").Inc()
	recipientCount.Observe(float64(recipients.Len()))

	if err := s.dispatcher.Deliver(ctx, recipients, ev); err != nil {
		return Result{}, fmt.Errorf("dispatch: %w", err)
	}

	s.log.Info("notification dispatched",
		zap.String("event_id", ev.ID),
		zap.String("kind", string(ev.Kind)),
		zap.Int("recipients", recipients.Len()))
	return Result{EventID: ev.ID, Recipients: recipients.Sorted()}, nil
}

// Preview explains how every candidate for req was decided, without
// dispatching anything.
func (s *Service) Preview(ctx context.Context, req Request) ([]notify.Decision, error) {
	ev, err := s.BuildEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.engine.Explain(ctx, ev)
}

// EffectiveLevel returns the level that applies to the user in the project.
func (s *Service) EffectiveLevel(ctx context.Context, userID, projectID primitive.ObjectID) (notify.Level, error) {
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return "", loadErr(err, userstore.ErrNotFound, "user %s", userID.Hex())
	}
	p, err := s.stores.Projects.GetByID(ctx, projectID)
	if err != nil {
		return "", loadErr(err, projectstore.ErrNotFound, "project %s", projectID.Hex())
	}
	return s.engine.Preferences().Resolve(ctx, toUser(u), toProject(p))
}

// BuildEvent loads everything req refers to. An empty req.ID gets a fresh
// one, so callers that want idempotent redelivery must supply their own.
func (s *Service) BuildEvent(ctx context.Context, req Request) (notify.Event, error) {
	kind := notify.EventKind(req.Kind)
	if !notify.KnownEventKind(kind) {
		return notify.Event{}, malformed("unknown event kind %q", req.Kind)
	}
	ids, err := parseIDs(req)
	if err != nil {
		return notify.Event{}, err
	}

	ev := notify.Event{
		ID:               req.ID,
		Kind:             kind,
		Actor:            ids.actor,
		PreviousAssignee: ids.previousAssignee,
		AddedLabels:      ids.labels,
		OldPath:          req.OldPath,
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	project, err := s.stores.Projects.GetByID(ctx, ids.project)
	if err != nil {
		return notify.Event{}, loadErr(err, projectstore.ErrNotFound, "project %s", req.ProjectID)
	}
	ev.Project = toProject(project)

	if ids.item.IsZero() {
		return ev, ev.Validate()
	}

	item, err := s.stores.Items.GetByID(ctx, ids.item)
	if err != nil {
		return notify.Event{}, loadErr(err, workitemstore.ErrNotFound, "item %s", req.ItemID)
	}
	notes, err := s.stores.Notes.ListByNoteable(ctx, item.ID)
	if err != nil {
		return notify.Event{}, fmt.Errorf("%w: load notes of item %s: %w", notify.ErrCollaboratorUnavailable, req.ItemID, err)
	}
	ev.Item = toItem(item, notes)

	if !ids.note.IsZero() {
		note, err := s.stores.Notes.GetByID(ctx, ids.note)
		if err != nil {
			return notify.Event{}, loadErr(err, notestore.ErrNotFound, "note %s", req.NoteID)
		}
		if note.NoteableID != item.ID {
			return notify.Event{}, malformed("note %s is not on item %s", req.NoteID, req.ItemID)
		}
		n := toNote(note)
		ev.Note = &n
	}
	return ev, ev.Validate()
}

type requestIDs struct {
	actor, project, item, note primitive.ObjectID
	previousAssignee           *primitive.ObjectID
	labels                     []primitive.ObjectID
}

func parseIDs(req Request) (requestIDs, error) {
	var ids requestIDs
	var err error
	if ids.project, err = parseID("project_id", req.ProjectID, true); err != nil {
		return ids, err
	}
	if ids.actor, err = parseID("actor_id", req.ActorID, false); err != nil {
		return ids, err
	}
	if ids.item, err = parseID("item_id", req.ItemID, false); err != nil {
		return ids, err
	}
	if ids.note, err = parseID("note_id", req.NoteID, false); err != nil {
		return ids, err
	}
	prev, err := parseID("previous_assignee_id", req.PreviousAssigneeID, false)
	if err != nil {
		return ids, err
	}
	if !prev.IsZero() {
		ids.previousAssignee = &prev
	}
	for _, raw := range req.AddedLabelIDs {
		id, err := parseID("added_label_ids", raw, true)
		if err != nil {
			return ids, err
		}
		ids.labels = append(ids.labels, id)
	}
	return ids, nil
}

func parseID(field, raw string, required bool) (primitive.ObjectID, error) {
	if raw == "" {
		if required {
			return primitive.NilObjectID, malformed("%s is required", field)
		}
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, malformed("%s: invalid id %q", field, raw)
	}
	return id, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", notify.ErrMalformedEvent, fmt.Sprintf(format, args...))
}

// loadErr maps a store error: sentinel becomes ErrNotFound, anything else
// is reported as an unavailable collaborator so callers can retry.
func loadErr(err, sentinel error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, sentinel) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("%w: load %s: %w", notify.ErrCollaboratorUnavailable, what, err)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, notify.ErrMalformedEvent):
		return "malformed"
	case errors.Is(err, notify.ErrCollaboratorUnavailable):
		return "unavailable"
	}
	return "error"
}

func toProject(p models.Project) notify.Project {
	return notify.Project{ID: p.ID, GroupID: p.GroupID, Private: p.IsPrivate()}
}

func toItem(w models.WorkItem, notes []models.Note) *notify.Item {
	item := &notify.Item{
		ID:           w.ID,
		Kind:         notify.ItemKind(w.Kind),
		ProjectID:    w.ProjectID,
		AuthorID:     w.AuthorID,
		AssigneeID:   w.AssigneeID,
		Title:        w.Title,
		Description:  w.Description,
		Confidential: w.Confidential,
		LabelIDs:     w.LabelIDs,
	}
	for _, n := range notes {
		item.Notes = append(item.Notes, toNote(n))
	}
	return item
}

func toNote(n models.Note) notify.Note {
	return notify.Note{
		ID:             n.ID,
		AuthorID:       n.AuthorID,
		Body:           n.Body,
		System:         n.System,
		CrossReference: n.CrossReference,
	}
}
