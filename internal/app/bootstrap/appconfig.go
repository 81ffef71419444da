// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); this
// struct covers everything NotifyHub itself needs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// SiteName appears in mail subjects and the unsubscribe page.
	SiteName string
	// BaseURL prefixes item and unsubscribe links in mail.
	BaseURL string

	// Unsubscribe link signing. The block key is optional; when set the
	// token is also encrypted.
	UnsubscribeHashKey   string
	UnsubscribeBlockKey  string
	UnsubscribeRateLimit int // requests per minute per client IP

	// Delivery pipeline
	DispatchWorkers       int
	DispatchQueueSize     int
	DispatchRatePerSecond int // 0 disables the limit
	DispatchMaxAttempts   int

	// How long sent-notification markers (and their unsubscribe links) live.
	SentNotificationRetention time.Duration
}
