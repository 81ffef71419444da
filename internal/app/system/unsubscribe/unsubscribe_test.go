package unsubscribe

import (
	"errors"
	"testing"
	"time"
)

var (
	hashKey  = []byte("0123456789abcdef0123456789abcdef")
	blockKey = []byte("abcdef0123456789abcdef0123456789")
)

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec(hashKey, blockKey, DefaultMaxAge)

	tok, err := c.Issue("3b2c6a4e-reply")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != "3b2c6a4e-reply" {
		t.Errorf("got %q", got)
	}
}

func TestCodec_RejectsTampered(t *testing.T) {
	c := NewCodec(hashKey, blockKey, DefaultMaxAge)
	tok, err := c.Issue("key")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tampered := tok[:len(tok)-2] + "xx"
	if _, err := c.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token: expected ErrInvalidToken, got %v", err)
	}

	other := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), blockKey, DefaultMaxAge)
	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign key: expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_Expired(t *testing.T) {
	c := NewCodec(hashKey, nil, time.Second)
	tok, err := c.Issue("key")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(2100 * time.Millisecond)
	if _, err := c.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}
