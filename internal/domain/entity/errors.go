package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName rejects blank session names.
	ErrEmptyName = errors.New("session name cannot be empty")
	// ErrNoActiveSession is returned when an operation needs the global
	// active session and none has been set.
	ErrNoActiveSession = errors.New("no active session")
	// ErrCannotDeleteLastSession guards the exactly-one-session invariant.
	ErrCannotDeleteLastSession = errors.New("cannot delete the last session")
	// ErrNothingToRestore is returned when the recently-closed stack holds
	// no record for the requested session.
	ErrNothingToRestore = errors.New("no recently closed tabs")
)

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Kind string // "tab" or "session"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewTabNotFound builds a NotFoundError for a tab id.
func NewTabNotFound(id string) error {
	return &NotFoundError{Kind: "tab", ID: id}
}

// NewSessionNotFound builds a NotFoundError for a session id.
func NewSessionNotFound(id string) error {
	return &NotFoundError{Kind: "session", ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvalidTransitionError reports an illegal tab state edge.
type InvalidTransitionError struct {
	From TabState
	To   TabState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

// InvalidURLError rejects empty or malformed URLs.
type InvalidURLError struct {
	Reason string
}

func (e *InvalidURLError) Error() string {
	return "invalid URL: " + e.Reason
}
