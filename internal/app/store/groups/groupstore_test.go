package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/notifyhub/internal/app/store/groups"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/dalemusser/notifyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, models.Group{Name: " Platform ", Path: "/platform/"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Path != "platform" {
		t.Errorf("Path: got %q, want %q", g.Path, "platform")
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Platform" || got.NameCI != "platform" {
		t.Errorf("unexpected group: %+v", got)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Group{Name: "A", Path: "a"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Group{Name: "A2", Path: "a"}); !errors.Is(err, groupstore.ErrDuplicateGroupPath) {
		t.Errorf("expected ErrDuplicateGroupPath, got %v", err)
	}
	if _, err := store.Create(ctx, models.Group{Name: "no path"}); err == nil {
		t.Error("expected error for missing path")
	}
}
