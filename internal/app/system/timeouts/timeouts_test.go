package timeouts

import (
	"context"
	"testing"
	"time"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer reset()

	Configure(Config{Short: 7 * time.Second})
	if Short() != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", Medium(), DefaultMedium)
	}

	reset()
	if Short() != DefaultShort {
		t.Errorf("reset did not restore Short: %v", Short())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer reset()
	t.Setenv("NOTIFYHUB_TIMEOUT_DELIVERY", "3s")
	t.Setenv("NOTIFYHUB_TIMEOUT_PING", "not-a-duration")
	t.Setenv("NOTIFYHUB_TIMEOUT_LONG", "-1s")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("expected 1 value applied, got %d", n)
	}
	if Delivery() != 3*time.Second {
		t.Errorf("Delivery: got %v, want 3s", Delivery())
	}
	if Ping() != DefaultPing || Long() != DefaultLong {
		t.Error("invalid values must keep defaults")
	}
	if got := Current(); got.Delivery != 3*time.Second || got.Short != DefaultShort {
		t.Errorf("Current: got %+v", got)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, nil, "test")
	<-ctx.Done()
	cancel()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", ctx.Err())
	}
}
