package sessions

import "errors"

// ErrTooManySessions is returned by Create when the session limit is reached.
var ErrTooManySessions = errors.New("too many sessions")

type ErrNotFound struct {
	SessionID string
}

func (e *ErrNotFound) Error() string {
	return "session not found: " + e.SessionID
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}
