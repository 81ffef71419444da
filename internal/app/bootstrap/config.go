// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/notifyhub/internal/app/system/unsubscribe"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devUnsubscribeKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for NotifyHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, mail_smtp_host, etc.
//   - Environment variables: NOTIFYHUB_MONGO_URI, NOTIFYHUB_MAIL_SMTP_HOST, etc.
//   - Command-line flags: --mongo_uri, --mail_smtp_host, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "notifyhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "notifications@notifyhub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "NotifyHub", Desc: "From display name"},

	{Name: "site_name", Default: "NotifyHub", Desc: "Site name used in mail subjects and pages"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for links in notification mail"},

	// Unsubscribe links
	{Name: "unsubscribe_hash_key", Default: devUnsubscribeKey, Desc: "Signing key for unsubscribe links, at least 32 bytes (must be strong in production)"},
	{Name: "unsubscribe_block_key", Default: "", Desc: "Optional encryption key for unsubscribe links (16, 24 or 32 bytes)"},
	{Name: "unsubscribe_rate_limit", Default: 30, Desc: "Unsubscribe requests allowed per minute per client IP"},

	// Delivery pipeline
	{Name: "dispatch_workers", Default: 4, Desc: "Concurrent notification senders"},
	{Name: "dispatch_queue_size", Default: 1000, Desc: "Pending deliveries buffered in memory"},
	{Name: "dispatch_rate_per_second", Default: 0, Desc: "Max sends per second across workers (0 = unlimited)"},
	{Name: "dispatch_max_attempts", Default: 5, Desc: "Send attempts per recipient before giving up"},

	{Name: "sent_notification_retention", Default: "2160h", Desc: "How long sent-notification markers are kept (e.g., 2160h)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, NOTIFYHUB_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "NOTIFYHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		// Unsubscribe links
		UnsubscribeHashKey:   appValues.String("unsubscribe_hash_key"),
		UnsubscribeBlockKey:  appValues.String("unsubscribe_block_key"),
		UnsubscribeRateLimit: appValues.Int("unsubscribe_rate_limit"),

		// Delivery pipeline
		DispatchWorkers:       appValues.Int("dispatch_workers"),
		DispatchQueueSize:     appValues.Int("dispatch_queue_size"),
		DispatchRatePerSecond: appValues.Int("dispatch_rate_per_second"),
		DispatchMaxAttempts:   appValues.Int("dispatch_max_attempts"),

		SentNotificationRetention: appValues.Duration("sent_notification_retention", unsubscribe.DefaultMaxAge),
	}

	if coreCfg.Env == "prod" && appCfg.UnsubscribeHashKey == devUnsubscribeKey {
		logger.Warn("unsubscribe_hash_key is the development default; set NOTIFYHUB_UNSUBSCRIBE_HASH_KEY")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// All problems are reported together.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if appCfg.MongoDatabase == "" {
		errs = append(errs, errors.New("mongo_database is required"))
	}

	if len(appCfg.UnsubscribeHashKey) < 32 {
		errs = append(errs, errors.New("unsubscribe_hash_key must be at least 32 bytes"))
	}
	switch len(appCfg.UnsubscribeBlockKey) {
	case 0, 16, 24, 32:
	default:
		errs = append(errs, errors.New("unsubscribe_block_key must be 16, 24 or 32 bytes"))
	}

	if u, err := url.Parse(appCfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q must be an absolute URL", appCfg.BaseURL))
	}
	if appCfg.MailFrom == "" {
		errs = append(errs, errors.New("mail_from is required"))
	}

	if appCfg.DispatchWorkers < 1 || appCfg.DispatchQueueSize < 1 || appCfg.DispatchMaxAttempts < 1 {
		errs = append(errs, errors.New("dispatch_workers, dispatch_queue_size and dispatch_max_attempts must be positive"))
	}
	if appCfg.DispatchRatePerSecond < 0 {
		errs = append(errs, errors.New("dispatch_rate_per_second must not be negative"))
	}
	if appCfg.UnsubscribeRateLimit < 1 {
		errs = append(errs, errors.New("unsubscribe_rate_limit must be positive"))
	}
	if appCfg.SentNotificationRetention < 24*time.Hour {
		errs = append(errs, errors.New("sent_notification_retention must be at least 24h"))
	}

	return errors.Join(errs...)
}
