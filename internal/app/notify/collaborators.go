package notify

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the engine's view of an account.
type User struct {
	ID     primitive.ObjectID
	Handle string
	// DefaultLevel is the account-wide level. Empty means unset.
	DefaultLevel Level
	Admin        bool
	Blocked      bool
}

// SubjectKind is the kind of thing a subscription is attached to.
type SubjectKind string

const (
	SubjectIssue        SubjectKind = "issue"
	SubjectMergeRequest SubjectKind = "merge_request"
	SubjectCommit       SubjectKind = "commit"
	SubjectLabel        SubjectKind = "label"
)

// ScopeKind is the kind of a notification setting scope.
type ScopeKind string

const (
	ScopeProject ScopeKind = "project"
	ScopeGroup   ScopeKind = "group"
)

// Scope identifies the project or group a notification setting applies to.
type Scope struct {
	Kind ScopeKind
	ID   primitive.ObjectID
}

// Mentions is the output of a MentionExtractor.
type Mentions struct {
	Handles []string
	// Broadcast is set when the text contains the notify-everyone token.
	Broadcast bool
}

// TeamDirectory answers membership and user lookups.
type TeamDirectory interface {
	// MembersOf returns every user with a membership record on the project.
	MembersOf(ctx context.Context, projectID primitive.ObjectID) ([]User, error)
	// UsersByHandle resolves handles case-insensitively. Unknown handles are
	// skipped.
	UsersByHandle(ctx context.Context, handles []string) ([]User, error)
	// UsersByID loads users by id. Unknown ids are skipped.
	UsersByID(ctx context.Context, ids []primitive.ObjectID) ([]User, error)
}

// AccessLevelProvider answers access questions.
type AccessLevelProvider interface {
	// TeamAccessLevel returns TierNone for users without membership.
	TeamAccessLevel(ctx context.Context, projectID, userID primitive.ObjectID) (Tier, error)
	IsAdmin(ctx context.Context, userID primitive.ObjectID) (bool, error)
	IsConfidential(ctx context.Context, item *Item) (bool, error)
}

// SubscriptionStore exposes explicit subscriptions.
type SubscriptionStore interface {
	// Get returns nil when the user has no explicit preference.
	Get(ctx context.Context, subjectID primitive.ObjectID, kind SubjectKind, userID primitive.ObjectID) (*bool, error)
	// Subscribers returns the users with subscribed=true on the subject.
	Subscribers(ctx context.Context, subjectID primitive.ObjectID, kind SubjectKind) ([]primitive.ObjectID, error)
}

// SettingsSource exposes stored notification settings.
type SettingsSource interface {
	// Setting reports the stored level for (user, scope) and whether one
	// exists.
	Setting(ctx context.Context, userID primitive.ObjectID, scope Scope) (Level, bool, error)
}

// MentionExtractor finds user references in free text.
type MentionExtractor interface {
	Extract(text string) Mentions
}

// Dispatcher delivers a resolved recipient set. Implementations must be
// idempotent per (event ID, recipient).
type Dispatcher interface {
	Deliver(ctx context.Context, recipients UserSet, ev Event) error
}
