package projectstore_test

import (
	"errors"
	"testing"

	projectstore "github.com/dalemusser/notifyhub/internal/app/store/projects"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/dalemusser/notifyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Project{Name: "Api", Path: "platform/api"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Visibility != models.VisibilityPrivate {
		t.Errorf("expected default visibility private, got %q", p.Visibility)
	}
	if !p.IsPrivate() {
		t.Error("expected IsPrivate")
	}

	got, err := store.GetByPath(ctx, "/platform/api/")
	if err != nil {
		t.Fatalf("GetByPath failed: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("GetByPath returned %s, want %s", got.ID.Hex(), p.ID.Hex())
	}

	if _, err := store.Create(ctx, models.Project{Name: "Api2", Path: "platform/api"}); !errors.Is(err, projectstore.ErrDuplicatePath) {
		t.Errorf("expected ErrDuplicatePath, got %v", err)
	}
	if _, err := store.Create(ctx, models.Project{Name: "x", Path: "x", Visibility: "secret"}); err == nil {
		t.Error("expected visibility validation error")
	}
}

func TestStore_Move(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "newhome")
	p, err := store.Create(ctx, models.Project{Name: "svc", Path: "old/svc", Visibility: models.VisibilityPublic})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	before, err := store.Move(ctx, p.ID, "newhome/svc", &g.ID)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if before.Path != "old/svc" {
		t.Errorf("expected old path in result, got %q", before.Path)
	}

	after, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if after.Path != "newhome/svc" || after.GroupID == nil || *after.GroupID != g.ID {
		t.Errorf("unexpected project after move: %+v", after)
	}

	if _, err := store.Move(ctx, primitive.NewObjectID(), "a/b", nil); !errors.Is(err, projectstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
