// Package timeouts provides centralized timeout values for I/O.
//
// Handlers, the dispatcher and background jobs wrap their database and
// network calls with context.WithTimeout using these values, so a slow
// dependency fails a request instead of hanging it.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads, settings and subscription writes
//   - Medium: recipient resolution (team, settings and subscription reads)
//   - Long: maintenance jobs touching many documents
//   - Delivery: one outbound notification to one recipient
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 15 * time.Second
	DefaultLong     = 60 * time.Second
	DefaultDelivery = 20 * time.Second
)

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	Delivery time.Duration
}

var defaults = Config{
	Ping:     DefaultPing,
	Short:    DefaultShort,
	Medium:   DefaultMedium,
	Long:     DefaultLong,
	Delivery: DefaultDelivery,
}

var (
	mu      sync.RWMutex
	current = defaults
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for simple single-document operations.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the timeout for recipient resolution and list queries.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the timeout for maintenance jobs.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Delivery returns the timeout for sending one notification.
func Delivery() time.Duration { return get(func(c Config) time.Duration { return c.Delivery }) }

// Configure sets custom timeout values. Zero values in the config are
// ignored. Call during startup before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	current = merge(current, cfg)
}

func merge(base, over Config) Config {
	pick := func(b, o time.Duration) time.Duration {
		if o > 0 {
			return o
		}
		return b
	}
	return Config{
		Ping:     pick(base.Ping, over.Ping),
		Short:    pick(base.Short, over.Short),
		Medium:   pick(base.Medium, over.Medium),
		Long:     pick(base.Long, over.Long),
		Delivery: pick(base.Delivery, over.Delivery),
	}
}

// reset restores all timeouts to their default values.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults
}

// ConfigureFromEnv reads overrides from NOTIFYHUB_TIMEOUT_PING, _SHORT,
// _MEDIUM, _LONG and _DELIVERY (Go duration strings such as "5s"). Unset or
// invalid values are ignored. Returns the number of values applied.
func ConfigureFromEnv() int {
	var cfg Config
	configured := 0
	for _, v := range []struct {
		env string
		dst *time.Duration
	}{
		{"NOTIFYHUB_TIMEOUT_PING", &cfg.Ping},
		{"NOTIFYHUB_TIMEOUT_SHORT", &cfg.Short},
		{"NOTIFYHUB_TIMEOUT_MEDIUM", &cfg.Medium},
		{"NOTIFYHUB_TIMEOUT_LONG", &cfg.Long},
		{"NOTIFYHUB_TIMEOUT_DELIVERY", &cfg.Delivery},
	} {
		raw := os.Getenv(v.env)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.dst = d
			configured++
		}
	}
	Configure(cfg)
	return configured
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was hit.
//
// Example:
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resolve recipients")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
