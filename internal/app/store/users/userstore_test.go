package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/notifyhub/internal/app/store/users"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/dalemusser/notifyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Handle:   " @Alice ",
		FullName: "  Alice Example ",
		Email:    "Alice@Example.com",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Handle != "Alice" {
		t.Errorf("Handle: got %q, want %q", created.Handle, "Alice")
	}
	if created.HandleCI != "alice" {
		t.Errorf("HandleCI: got %q, want %q", created.HandleCI, "alice")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("Email: got %q", created.Email)
	}
	if created.Role != models.RoleUser {
		t.Errorf("expected default role %q, got %q", models.RoleUser, created.Role)
	}
	if created.Status != models.UserStatusActive {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name string
		user models.User
	}{
		{"missing handle", models.User{Handle: "  "}},
		{"bad role", models.User{Handle: "x", Role: "owner"}},
		{"bad status", models.User{Handle: "y", Status: "gone"}},
		{"bad level", models.User{Handle: "z", NotificationLevel: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.user); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStore_Create_DuplicateHandle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Handle: "bob"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Handle: "BOB"})
	if !errors.Is(err, userstore.ErrDuplicateHandle) {
		t.Errorf("expected ErrDuplicateHandle, got %v", err)
	}
}

func TestStore_ListByHandles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateRegularUser(ctx, "Carol")
	b := fixtures.CreateRegularUser(ctx, "dave")
	fixtures.CreateRegularUser(ctx, "erin")

	got, err := store.ListByHandles(ctx, []string{"carol", "DAVE", "nobody"})
	if err != nil {
		t.Fatalf("ListByHandles failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	found := map[primitive.ObjectID]bool{}
	for _, u := range got {
		found[u.ID] = true
	}
	if !found[a.ID] || !found[b.ID] {
		t.Errorf("expected carol and dave, got %+v", got)
	}

	none, err := store.ListByHandles(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("expected no users for no handles, got %d (%v)", len(none), err)
	}
}

func TestStore_ListByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateRegularUser(ctx, "frank")
	got, err := store.ListByIDs(ctx, []primitive.ObjectID{a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("expected only frank, got %+v", got)
	}
}

func TestStore_GetByHandle_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByHandle(ctx, "ghost")
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetNotificationLevelAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateRegularUser(ctx, "grace")

	if err := store.SetNotificationLevel(ctx, u.ID, "Watch"); err != nil {
		t.Fatalf("SetNotificationLevel failed: %v", err)
	}
	if err := store.SetStatus(ctx, u.ID, "blocked"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.NotificationLevel != "watch" {
		t.Errorf("NotificationLevel: got %q, want %q", got.NotificationLevel, "watch")
	}
	if !got.IsBlocked() {
		t.Error("expected user to be blocked")
	}

	if err := store.SetNotificationLevel(ctx, u.ID, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := store.SetStatus(ctx, primitive.NewObjectID(), "active"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestStore_IsAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateAdmin(ctx, "root")
	user := fixtures.CreateRegularUser(ctx, "henry")

	for _, tc := range []struct {
		id   primitive.ObjectID
		want bool
	}{{admin.ID, true}, {user.ID, false}, {primitive.NewObjectID(), false}} {
		got, err := store.IsAdmin(ctx, tc.id)
		if err != nil {
			t.Fatalf("IsAdmin failed: %v", err)
		}
		if got != tc.want {
			t.Errorf("IsAdmin(%s): got %v, want %v", tc.id.Hex(), got, tc.want)
		}
	}
}
