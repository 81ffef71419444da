package notify

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemKind is the kind of a work item.
type ItemKind string

const (
	ItemIssue        ItemKind = "issue"
	ItemMergeRequest ItemKind = "merge_request"
	ItemCommit       ItemKind = "commit"
)

// Subject returns the subscription kind for the item kind.
func (k ItemKind) Subject() SubjectKind {
	switch k {
	case ItemMergeRequest:
		return SubjectMergeRequest
	case ItemCommit:
		return SubjectCommit
	}
	return SubjectIssue
}

// Project is the engine's view of the project an event happened in.
type Project struct {
	ID      primitive.ObjectID
	GroupID *primitive.ObjectID
	// Private projects are readable by team members and admins only.
	Private bool
}

// Note is a comment on a work item.
type Note struct {
	ID             primitive.ObjectID
	AuthorID       primitive.ObjectID
	Body           string
	System         bool
	CrossReference bool
}

// Item is a work item together with the notes attached to it.
type Item struct {
	ID           primitive.ObjectID
	Kind         ItemKind
	ProjectID    primitive.ObjectID
	AuthorID     primitive.ObjectID
	AssigneeID   *primitive.ObjectID
	Title        string
	Description  string
	Confidential bool
	LabelIDs     []primitive.ObjectID
	Notes        []Note
}

// EventKind names a lifecycle event.
type EventKind string

const (
	EventNewIssue               EventKind = "new_issue"
	EventReassignedIssue        EventKind = "reassigned_issue"
	EventRelabeledIssue         EventKind = "relabeled_issue"
	EventClosedIssue            EventKind = "closed_issue"
	EventReopenedIssue          EventKind = "reopened_issue"
	EventNewMergeRequest        EventKind = "new_merge_request"
	EventReassignedMergeRequest EventKind = "reassigned_merge_request"
	EventRelabeledMergeRequest  EventKind = "relabeled_merge_request"
	EventClosedMergeRequest     EventKind = "closed_merge_request"
	EventMergedMergeRequest     EventKind = "merged_merge_request"
	EventReopenedMergeRequest   EventKind = "reopened_merge_request"
	EventNewNote                EventKind = "new_note"
	EventProjectMoved           EventKind = "project_moved"
)

// Event is one occurrence to resolve recipients for.
type Event struct {
	// ID identifies the occurrence. Dispatchers use it to make redelivery
	// idempotent per recipient.
	ID      string
	Kind    EventKind
	Actor   primitive.ObjectID
	Project Project
	// Item is nil for project-wide events.
	Item *Item
	// PreviousAssignee is set on reassignment events.
	PreviousAssignee *primitive.ObjectID
	// AddedLabels is set on relabel events.
	AddedLabels []primitive.ObjectID
	// Note is set on NewNote events. Item is the noteable.
	Note *Note
	// OldPath is set on ProjectMoved events.
	OldPath string
}

type labelMode int

const (
	labelsNone labelMode = iota
	labelsAll
	labelsAdded
)

// eventSpec describes how one event kind feeds the shared pipeline.
type eventSpec struct {
	itemKinds    []ItemKind
	mentionText  func(Event) string
	labels       labelMode
	reassignment bool
	note         bool
}

func (s eventSpec) projectWide() bool { return len(s.itemKinds) == 0 }

func (s eventSpec) accepts(k ItemKind) bool {
	for _, ik := range s.itemKinds {
		if ik == k {
			return true
		}
	}
	return false
}

var (
	issueOnly = []ItemKind{ItemIssue}
	mrOnly    = []ItemKind{ItemMergeRequest}
	noteables = []ItemKind{ItemIssue, ItemMergeRequest, ItemCommit}
)

var eventSpecs = map[EventKind]eventSpec{
	EventNewIssue:        {itemKinds: issueOnly, mentionText: titleAndDescription, labels: labelsAll},
	EventReassignedIssue: {itemKinds: issueOnly, reassignment: true},
	EventRelabeledIssue:  {itemKinds: issueOnly, labels: labelsAdded},
	EventClosedIssue:     {itemKinds: issueOnly},
	EventReopenedIssue:   {itemKinds: issueOnly},

	EventNewMergeRequest:        {itemKinds: mrOnly, mentionText: titleAndDescription, labels: labelsAll},
	EventReassignedMergeRequest: {itemKinds: mrOnly, reassignment: true},
	EventRelabeledMergeRequest:  {itemKinds: mrOnly, labels: labelsAdded},
	EventClosedMergeRequest:     {itemKinds: mrOnly},
	EventMergedMergeRequest:     {itemKinds: mrOnly},
	EventReopenedMergeRequest:   {itemKinds: mrOnly},

	EventNewNote: {itemKinds: noteables, mentionText: noteBody, note: true},

	EventProjectMoved: {},
}

func titleAndDescription(ev Event) string {
	return strings.TrimSpace(ev.Item.Title + "\n\n" + ev.Item.Description)
}

func noteBody(ev Event) string {
	return ev.Note.Body
}

// KnownEventKind reports whether k is an event kind the engine resolves.
func KnownEventKind(k EventKind) bool {
	_, ok := eventSpecs[k]
	return ok
}

// Validate checks that the event carries what its kind needs and nothing
// its kind does not use.
func (ev Event) Validate() error {
	spec, ok := eventSpecs[ev.Kind]
	if !ok {
		return malformed("unknown event kind %q", ev.Kind)
	}
	if ev.Project.ID.IsZero() {
		return malformed("%s: missing project", ev.Kind)
	}
	if !spec.note && ev.Note != nil {
		return malformed("%s: unexpected note", ev.Kind)
	}
	if !spec.reassignment && ev.PreviousAssignee != nil {
		return malformed("%s: unexpected previous assignee", ev.Kind)
	}
	if spec.labels != labelsAdded && len(ev.AddedLabels) > 0 {
		return malformed("%s: unexpected added labels", ev.Kind)
	}
	if spec.projectWide() {
		if ev.Item != nil {
			return malformed("%s: unexpected item", ev.Kind)
		}
		return nil
	}
	if ev.Item == nil {
		return malformed("%s: missing item", ev.Kind)
	}
	if !spec.accepts(ev.Item.Kind) {
		return malformed("%s: unsupported item kind %q", ev.Kind, ev.Item.Kind)
	}
	if ev.Item.ProjectID != ev.Project.ID {
		return malformed("%s: item belongs to another project", ev.Kind)
	}
	if spec.note && ev.Note == nil {
		return malformed("%s: missing note", ev.Kind)
	}
	return nil
}
