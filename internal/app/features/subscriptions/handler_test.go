package subscriptions_test

import (
	"net/http"
	"testing"

	errorsfeature "github.com/dalemusser/notifyhub/internal/app/features/errors"
	"github.com/dalemusser/notifyhub/internal/app/features/subscriptions"
	"github.com/dalemusser/notifyhub/internal/app/notifier"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/dalemusser/notifyhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (http.Handler, notifier.Stores, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	stores := notifier.NewStores(db)
	h := subscriptions.NewHandler(stores, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, stores, testutil.NewFixtures(t, db)
}

func put(t *testing.T, router http.Handler, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPut, "/subscriptions", body))
	return rec
}

func TestSet_LastWriteWins(t *testing.T) {
	router, stores, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateRegularUser(ctx, "sam")
	label := primitive.NewObjectID()

	for _, subscribed := range []bool{true, false, true} {
		put(t, router, map[string]any{
			"kind":       models.SubscribableLabel,
			"subject_id": label.Hex(),
			"user_id":    user.ID.Hex(),
			"subscribed": subscribed,
		}).AssertStatus(t, http.StatusNoContent)
	}

	got, err := stores.Subscriptions.Get(ctx, models.SubscribableLabel, label, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || !*got {
		t.Errorf("subscription: got %v, want true", got)
	}
	subs, err := stores.Subscriptions.Subscribers(ctx, models.SubscribableLabel, label)
	if err != nil {
		t.Fatalf("Subscribers: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("subscribers: got %d, want 1", len(subs))
	}
}

func TestSet_Errors(t *testing.T) {
	router, _, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := fx.CreateRegularUser(ctx, "sam")
	subject := primitive.NewObjectID().Hex()

	tests := []struct {
		name string
		body any
		want int
	}{
		{"invalid json", "[", http.StatusBadRequest},
		{"unknown kind", map[string]any{"kind": "epic", "subject_id": subject, "user_id": user.ID.Hex(), "subscribed": true}, http.StatusBadRequest},
		{"missing flag", map[string]any{"kind": "issue", "subject_id": subject, "user_id": user.ID.Hex()}, http.StatusBadRequest},
		{"bad subject", map[string]any{"kind": "issue", "subject_id": "x", "user_id": user.ID.Hex(), "subscribed": true}, http.StatusBadRequest},
		{"unknown user", map[string]any{"kind": "issue", "subject_id": subject, "user_id": primitive.NewObjectID().Hex(), "subscribed": true}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			put(t, router, tt.body).AssertStatus(t, tt.want)
		})
	}
}
