package services

import (
	"fmt"

	"phreddit/internal/db"

	"github.com/pkg/errors"
)

var (
	ErrNotFound         = db.ErrNotFound
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalid          = errors.New("invalid input")
)

var (
	ErrLowReputation  = newError(ErrPermissionDenied, "Insufficient reputation to vote")
	ErrAlreadyVoted   = newError(ErrPermissionDenied, "Already voted")
	ErrBadCredentials = newError(ErrPermissionDenied, "Invalid email or password")
)

// Error carries a client facing message and the category it belongs to.
// errors.Is matches it against its category.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// notFound reports a missing record of the given kind ("Post", "User", ...).
func notFound(kind string) error {
	return newError(ErrNotFound, "%s not found", kind)
}

func conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func invalid(format string, args ...interface{}) error {
	return newError(ErrInvalid, format, args...)
}

// lookup translates a store miss into a not-found error for kind and wraps anything else.
func lookup(err error, kind string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return notFound(kind)
	}
	return errors.Wrapf(err, "load %s", kind)
}

// ignoreNotFound treats an already missing record as success.
func ignoreNotFound(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	return err
}
