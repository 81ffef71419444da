package bootstrap

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/notifyhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:                  "mongodb://localhost:27017",
		MongoDatabase:             "notifyhub",
		MailSMTPHost:              "localhost",
		MailSMTPPort:              1025,
		MailFrom:                  "notifications@example.com",
		SiteName:                  "NotifyHub",
		BaseURL:                   "https://hub.example.com",
		UnsubscribeHashKey:        strings.Repeat("h", 32),
		UnsubscribeRateLimit:      30,
		DispatchWorkers:           2,
		DispatchQueueSize:         10,
		DispatchMaxAttempts:       3,
		SentNotificationRetention: 30 * 24 * time.Hour,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "MongoDB URI"},
		{"short hash key", func(c *AppConfig) { c.UnsubscribeHashKey = "short" }, "unsubscribe_hash_key"},
		{"odd block key", func(c *AppConfig) { c.UnsubscribeBlockKey = "12345" }, "unsubscribe_block_key"},
		{"relative base url", func(c *AppConfig) { c.BaseURL = "/hub" }, "base_url"},
		{"no workers", func(c *AppConfig) { c.DispatchWorkers = 0 }, "dispatch_workers"},
		{"negative rate", func(c *AppConfig) { c.DispatchRatePerSecond = -1 }, "dispatch_rate_per_second"},
		{"short retention", func(c *AppConfig) { c.SentNotificationRetention = time.Hour }, "sent_notification_retention"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.UnsubscribeHashKey = ""
	cfg.MailFrom = ""

	err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"unsubscribe_hash_key", "mail_from"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestBuildHandler_RequiresStartup(t *testing.T) {
	if _, err := BuildHandler(&config.CoreConfig{}, validConfig(), DBDeps{}, testLogger()); err != errNotStarted {
		t.Fatalf("got %v, want errNotStarted", err)
	}
}

func TestRouter_Mounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{NotifyHubMongoClient: db.Client(), NotifyHubMongoDatabase: db}

	s := newServices(validConfig(), deps, testLogger())
	t.Cleanup(s.stop)
	router := newRouter(s, validConfig(), deps, testLogger())

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/unsubscribe/garbage", http.StatusBadRequest},
		{http.MethodGet, "/api/events", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewRequest(tt.method, tt.target))
			rec.AssertStatus(t, tt.want)
		})
	}
}
