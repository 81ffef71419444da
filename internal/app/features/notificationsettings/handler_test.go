package notificationsettings_test

import (
	"context"
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/notifyhub/internal/app/features/errors"
	"github.com/dalemusser/notifyhub/internal/app/features/notificationsettings"
	"github.com/dalemusser/notifyhub/internal/app/notifier"
	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/app/system/mentions"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/dalemusser/notifyhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type nopDispatcher struct{}

func (nopDispatcher) Deliver(context.Context, notify.UserSet, notify.Event) error { return nil }

type env struct {
	router  http.Handler
	stores  notifier.Stores
	fx      *testutil.Fixtures
	user    models.User
	group   models.Group
	project models.Project
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	stores := notifier.NewStores(db)
	engine := notify.NewEngine(stores.EngineDeps(mentions.New()), zap.NewNop())
	svc := notifier.New(stores, engine, nopDispatcher{}, zap.NewNop())
	h := notificationsettings.NewHandler(stores, svc, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	h.MountRoutes(r)

	e := &env{router: r, stores: stores, fx: testutil.NewFixtures(t, db)}
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.user = e.fx.CreateRegularUser(ctx, "pat")
	e.group = e.fx.CreateGroup(ctx, "Platform")
	e.project = e.fx.CreateProject(ctx, "API", models.VisibilityPublic, &e.group.ID)
	return e
}

func (e *env) url(suffix string) string {
	return "/users/" + e.user.ID.Hex() + "/notification-settings" + suffix
}

func (e *env) put(t *testing.T, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPut, e.url(""), body))
	return rec
}

type settingsBody struct {
	DefaultLevel   string `json:"default_level"`
	EffectiveLevel string `json:"effective_level"`
	Settings       []struct {
		SourceType string `json:"source_type"`
		SourceID   string `json:"source_id"`
		Level      string `json:"level"`
	} `json:"settings"`
}

func (e *env) get(t *testing.T, suffix string) settingsBody {
	t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, e.url(suffix)))
	rec.AssertStatus(t, http.StatusOK)
	var body settingsBody
	rec.DecodeJSON(t, &body)
	return body
}

func TestGet_Defaults(t *testing.T) {
	e := setup(t)

	body := e.get(t, "?project_id="+e.project.ID.Hex())
	if body.DefaultLevel != models.LevelParticipating {
		t.Errorf("default_level: got %q, want participating", body.DefaultLevel)
	}
	if len(body.Settings) != 0 {
		t.Errorf("settings: got %d, want none", len(body.Settings))
	}
	if body.EffectiveLevel != models.LevelParticipating {
		t.Errorf("effective_level: got %q, want participating", body.EffectiveLevel)
	}
}

func TestUpdate_Cascade(t *testing.T) {
	e := setup(t)

	e.put(t, map[string]string{"level": "mention"}).AssertStatus(t, http.StatusOK)
	if got := e.get(t, "?project_id="+e.project.ID.Hex()).EffectiveLevel; got != models.LevelMention {
		t.Fatalf("after account default: got %q, want mention", got)
	}

	e.put(t, map[string]string{
		"source_type": models.SourceGroup,
		"source_id":   e.group.ID.Hex(),
		"level":       "Watch",
	}).AssertStatus(t, http.StatusOK)
	if got := e.get(t, "?project_id="+e.project.ID.Hex()).EffectiveLevel; got != models.LevelWatch {
		t.Fatalf("after group setting: got %q, want watch", got)
	}

	// A project setting of global defers to the group.
	e.put(t, map[string]string{
		"source_type": models.SourceProject,
		"source_id":   e.project.ID.Hex(),
		"level":       "global",
	}).AssertStatus(t, http.StatusOK)

	body := e.get(t, "?project_id="+e.project.ID.Hex())
	if body.EffectiveLevel != models.LevelWatch {
		t.Errorf("project global: got %q, want watch", body.EffectiveLevel)
	}
	if body.DefaultLevel != models.LevelMention {
		t.Errorf("default_level: got %q, want mention", body.DefaultLevel)
	}
	if len(body.Settings) != 2 {
		t.Errorf("settings: got %d, want 2", len(body.Settings))
	}
}

func TestUpdate_ClearsAccountDefault(t *testing.T) {
	e := setup(t)

	e.put(t, map[string]string{"level": "disabled"}).AssertStatus(t, http.StatusOK)
	e.put(t, map[string]string{"level": "global"}).AssertStatus(t, http.StatusOK)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := e.stores.Users.GetByID(ctx, e.user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.NotificationLevel != "" {
		t.Errorf("stored default: got %q, want cleared", u.NotificationLevel)
	}
}

func TestUpdate_Errors(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"unknown level", map[string]string{"level": "loud"}, http.StatusBadRequest},
		{"unknown source type", map[string]string{"source_type": "namespace", "source_id": e.group.ID.Hex(), "level": "watch"}, http.StatusBadRequest},
		{"bad source id", map[string]string{"source_type": "project", "source_id": "nope", "level": "watch"}, http.StatusBadRequest},
		{"missing project", map[string]string{"source_type": "project", "source_id": primitive.NewObjectID().Hex(), "level": "watch"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.put(t, tt.body).AssertStatus(t, tt.want)
		})
	}

	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/users/"+primitive.NewObjectID().Hex()+"/notification-settings"))
	rec.AssertStatus(t, http.StatusNotFound)
}
