package metricsstore_test

import (
	"strings"
	"testing"

	metricsstore "github.com/dalemusser/notifyhub/internal/app/store/metrics"
	sentnotificationstore "github.com/dalemusser/notifyhub/internal/app/store/sentnotifications"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"github.com/dalemusser/notifyhub/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestFetchCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchCounts(ctx, db)

	if counts != (metricsstore.Counts{}) {
		t.Errorf("got %+v, want all zero", counts)
	}
}

func TestFetchCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateRegularUser(ctx, "alice")
	bob := fixtures.CreateRegularUser(ctx, "bob")
	fixtures.CreateBlockedUser(ctx, "mallory")
	project := fixtures.CreateProject(ctx, "Core", models.VisibilityPrivate, nil)
	issue := fixtures.CreateIssue(ctx, project.ID, alice.ID, "Leak")

	fixtures.Subscribe(ctx, models.SubscribableIssue, issue.ID, alice.ID, true)
	fixtures.Subscribe(ctx, models.SubscribableIssue, issue.ID, bob.ID, false)

	sent := sentnotificationstore.New(db)
	for i, recipient := range []primitive.ObjectID{alice.ID, bob.ID} {
		m, _, err := sent.Record(ctx, models.SentNotification{
			EventID:     "evt-1",
			EventKind:   "new_issue",
			RecipientID: recipient,
			ProjectID:   project.ID,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if i == 1 {
			if err := sent.MarkFailed(ctx, m.ID, "smtp: 550"); err != nil {
				t.Fatalf("MarkFailed: %v", err)
			}
		}
	}

	counts := metricsstore.FetchCounts(ctx, db)

	want := metricsstore.Counts{
		Users:            3,
		BlockedUsers:     1,
		Projects:         1,
		Subscriptions:    1,
		QueuedDeliveries: 1,
		FailedDeliveries: 1,
	}
	if counts != want {
		t.Errorf("got %+v, want %+v", counts, want)
	}
}

func TestCollector(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateRegularUser(ctx, "alice")
	fixtures.CreateBlockedUser(ctx, "mallory")

	c := metricsstore.NewCollector(db, zap.NewNop())
	expected := `
# HELP notifyhub_users Accounts by status.
# TYPE notifyhub_users gauge
notifyhub_users{status="active"} 1
notifyhub_users{status="blocked"} 1
`
	if err := promtestutil.CollectAndCompare(c, strings.NewReader(expected), "notifyhub_users"); err != nil {
		t.Error(err)
	}
}
