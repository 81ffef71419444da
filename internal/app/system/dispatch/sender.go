package dispatch

import (
	"context"
	"errors"

	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/dalemusser/notifyhub/internal/domain/models"
)

// Delivery is one notification for one recipient.
type Delivery struct {
	Marker    models.SentNotification
	Recipient models.User
	Event     notify.Event
}

// Sender delivers a notification over one channel.
type Sender interface {
	// Name identifies the channel in logs and metrics (e.g. "email").
	Name() string
	// Send delivers synchronously. Errors are retried unless wrapped with
	// Permanent.
	Send(ctx context.Context, d Delivery) error
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
