package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser creates an active user with the given handle and role.
func (f *Fixtures) CreateUser(ctx context.Context, handle, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Handle:    handle,
		HandleCI:  text.Fold(handle),
		FullName:  "Test " + handle,
		Email:     handle + "@example.com",
		Role:      role,
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "users", user)
	return user
}

// CreateRegularUser creates a non-admin user.
func (f *Fixtures) CreateRegularUser(ctx context.Context, handle string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, handle, models.RoleUser)
}

// CreateAdmin creates an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, handle string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, handle, models.RoleAdmin)
}

// CreateBlockedUser creates a blocked, non-admin user.
func (f *Fixtures) CreateBlockedUser(ctx context.Context, handle string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, handle, models.RoleUser)
	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"status": models.UserStatusBlocked}})
	if err != nil {
		f.t.Fatalf("failed to block test user: %v", err)
	}
	u.Status = models.UserStatusBlocked
	return u
}

// CreateGroup creates a group whose path is its name.
func (f *Fixtures) CreateGroup(ctx context.Context, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Path:      text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "groups", g)
	return g
}

// CreateProject creates a project, optionally inside a group.
func (f *Fixtures) CreateProject(ctx context.Context, name, visibility string, groupID *primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Path:       "ns/" + text.Fold(name),
		GroupID:    groupID,
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "projects", p)
	return p
}

// AddMember gives the user an access level on the project.
func (f *Fixtures) AddMember(ctx context.Context, projectID, userID primitive.ObjectID, accessLevel int) models.ProjectMember {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.ProjectMember{
		ID:          primitive.NewObjectID(),
		ProjectID:   projectID,
		UserID:      userID,
		AccessLevel: accessLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "project_members", m)
	return m
}

// SetLevel stores a notification setting for (user, scope).
func (f *Fixtures) SetLevel(ctx context.Context, userID primitive.ObjectID, sourceType string, sourceID primitive.ObjectID, level string) {
	f.t.Helper()

	now := time.Now().UTC()
	_, err := f.db.Collection("notification_settings").UpdateOne(ctx,
		bson.M{"user_id": userID, "source_type": sourceType, "source_id": sourceID},
		bson.M{
			"$set":         bson.M{"level": level, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		f.t.Fatalf("failed to set test notification level: %v", err)
	}
}

// Subscribe records an explicit subscription flag.
func (f *Fixtures) Subscribe(ctx context.Context, kind string, subjectID, userID primitive.ObjectID, subscribed bool) {
	f.t.Helper()

	now := time.Now().UTC()
	_, err := f.db.Collection("subscriptions").UpdateOne(ctx,
		bson.M{"subscribable_type": kind, "subscribable_id": subjectID, "user_id": userID},
		bson.M{
			"$set":         bson.M{"subscribed": subscribed, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		f.t.Fatalf("failed to subscribe test user: %v", err)
	}
}

// CreateIssue creates an open issue in the project.
func (f *Fixtures) CreateIssue(ctx context.Context, projectID, authorID primitive.ObjectID, title string) models.WorkItem {
	f.t.Helper()
	return f.CreateWorkItem(ctx, models.WorkItem{
		Kind:      models.WorkItemIssue,
		ProjectID: projectID,
		AuthorID:  authorID,
		Title:     title,
	})
}

// CreateWorkItem inserts w after filling in id, state and timestamps.
func (f *Fixtures) CreateWorkItem(ctx context.Context, w models.WorkItem) models.WorkItem {
	f.t.Helper()

	now := time.Now().UTC()
	w.ID = primitive.NewObjectID()
	if w.State == "" {
		w.State = models.StateOpened
	}
	w.CreatedAt = now
	w.UpdatedAt = now
	f.insert(ctx, "work_items", w)
	return w
}

// CreateNote attaches a user note to the work item.
func (f *Fixtures) CreateNote(ctx context.Context, item models.WorkItem, authorID primitive.ObjectID, body string) models.Note {
	f.t.Helper()

	n := models.Note{
		ID:           primitive.NewObjectID(),
		ProjectID:    item.ProjectID,
		NoteableID:   item.ID,
		NoteableType: item.Kind,
		AuthorID:     authorID,
		Body:         body,
		CreatedAt:    time.Now().UTC(),
	}
	f.insert(ctx, "notes", n)
	return n
}
