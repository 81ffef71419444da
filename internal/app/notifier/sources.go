// internal/app/notifier/sources.go
package notifier

import (
	"context"

	"github.com/dalemusser/notifyhub/internal/app/notify"
	groupstore "github.com/dalemusser/notifyhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/notifyhub/internal/app/store/memberships"
	notestore "github.com/dalemusser/notifyhub/internal/app/store/notes"
	projectstore "github.com/dalemusser/notifyhub/internal/app/store/projects"
	sentnotificationstore "github.com/dalemusser/notifyhub/internal/app/store/sentnotifications"
	settingsstore "github.com/dalemusser/notifyhub/internal/app/store/settings"
	subscriptionstore "github.com/dalemusser/notifyhub/internal/app/store/subscriptions"
	userstore "github.com/dalemusser/notifyhub/internal/app/store/users"
	workitemstore "github.com/dalemusser/notifyhub/internal/app/store/workitems"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stores bundles every collection the notification pipeline touches.
type Stores struct {
	Users         *userstore.Store
	Groups        *groupstore.Store
	Projects      *projectstore.Store
	Members       *membershipstore.Store
	Settings      *settingsstore.Store
	Subscriptions *subscriptionstore.Store
	Items         *workitemstore.Store
	Notes         *notestore.Store
	Sent          *sentnotificationstore.Store
}

// NewStores opens every store on db.
func NewStores(db *mongo.Database) Stores {
	return Stores{
		Users:         userstore.New(db),
		Groups:        groupstore.New(db),
		Projects:      projectstore.New(db),
		Members:       membershipstore.New(db),
		Settings:      settingsstore.New(db),
		Subscriptions: subscriptionstore.New(db),
		Items:         workitemstore.New(db),
		Notes:         notestore.New(db),
		Sent:          sentnotificationstore.New(db),
	}
}

// EngineDeps adapts the stores to the engine's collaborator interfaces.
func (s Stores) EngineDeps(mentions notify.MentionExtractor) notify.Deps {
	return notify.Deps{
		Directory:     directory{users: s.Users, members: s.Members},
		Access:        access{users: s.Users, members: s.Members},
		Subscriptions: subscriptions{s.Subscriptions},
		Settings:      settings{s.Settings},
		Mentions:      mentions,
	}
}

func toUser(u models.User) notify.User {
	return notify.User{
		ID:           u.ID,
		Handle:       u.Handle,
		DefaultLevel: notify.Level(u.NotificationLevel),
		Admin:        u.IsAdmin(),
		Blocked:      u.IsBlocked(),
	}
}

func toUsers(in []models.User) []notify.User {
	out := make([]notify.User, 0, len(in))
	for _, u := range in {
		out = append(out, toUser(u))
	}
	return out
}

type directory struct {
	users   *userstore.Store
	members *membershipstore.Store
}

func (d directory) MembersOf(ctx context.Context, projectID primitive.ObjectID) ([]notify.User, error) {
	ids, err := d.members.UserIDsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return d.UsersByID(ctx, ids)
}

func (d directory) UsersByHandle(ctx context.Context, handles []string) ([]notify.User, error) {
	users, err := d.users.ListByHandles(ctx, handles)
	if err != nil {
		return nil, err
	}
	return toUsers(users), nil
}

func (d directory) UsersByID(ctx context.Context, ids []primitive.ObjectID) ([]notify.User, error) {
	users, err := d.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toUsers(users), nil
}

type access struct {
	users   *userstore.Store
	members *membershipstore.Store
}

func (a access) TeamAccessLevel(ctx context.Context, projectID, userID primitive.ObjectID) (notify.Tier, error) {
	level, err := a.members.AccessLevel(ctx, projectID, userID)
	if err != nil {
		return notify.TierNone, err
	}
	return notify.Tier(level), nil
}

func (a access) IsAdmin(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	return a.users.IsAdmin(ctx, userID)
}

// IsConfidential trusts the loaded item; only issues carry the flag.
func (a access) IsConfidential(_ context.Context, item *notify.Item) (bool, error) {
	return item.Kind == notify.ItemIssue && item.Confidential, nil
}

type subscriptions struct {
	store *subscriptionstore.Store
}

func (s subscriptions) Get(ctx context.Context, subjectID primitive.ObjectID, kind notify.SubjectKind, userID primitive.ObjectID) (*bool, error) {
	return s.store.Get(ctx, string(kind), subjectID, userID)
}

func (s subscriptions) Subscribers(ctx context.Context, subjectID primitive.ObjectID, kind notify.SubjectKind) ([]primitive.ObjectID, error) {
	return s.store.Subscribers(ctx, string(kind), subjectID)
}

type settings struct {
	store *settingsstore.Store
}

func (s settings) Setting(ctx context.Context, userID primitive.ObjectID, scope notify.Scope) (notify.Level, bool, error) {
	level, ok, err := s.store.Get(ctx, userID, string(scope.Kind), scope.ID)
	if err != nil || !ok {
		return "", false, err
	}
	return notify.Level(level), true, nil
}
