package notify

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable means a collaborator could not answer.
	// Resolution aborts instead of guessing who to include.
	ErrCollaboratorUnavailable = errors.New("notify: collaborator unavailable")

	// ErrMalformedEvent means the event cannot be resolved as given, for
	// example a note event without a note or an issue event on a merge
	// request. It is never worth retrying.
	ErrMalformedEvent = errors.New("notify: malformed event")
)

func unavailable(collaborator string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCollaboratorUnavailable, collaborator, err)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedEvent, fmt.Sprintf(format, args...))
}
