package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/video-rental/internal/repository"
)

// Kind classifies ledger failures so callers can react without parsing
// messages.
type Kind string

const (
	NotFound        Kind = "NOT_FOUND"
	OutOfStock      Kind = "OUT_OF_STOCK"
	InvalidState    Kind = "INVALID_STATE"
	ValidationError Kind = "VALIDATION_ERROR"
	Timeout         Kind = "TIMEOUT"
	Conflict        Kind = "CONFLICT"
)

// Error is the failure type returned by every Ledger operation for the
// outcomes a caller is expected to handle.  Storage failures the ledger
// cannot classify are returned wrapped instead.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the operation may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == Timeout || e.Kind == Conflict
}

// KindOf extracts the Kind of err.  ok is false for errors that did
// not come from the ledger's taxonomy.
func KindOf(err error) (kind Kind, ok bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// classify converts repository and context errors into *Error.  op
// names the operation for wrapped, unclassified failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound):
		return newError(NotFound, "customer not found", err)
	case errors.Is(err, repository.ErrMovieNotFound):
		return newError(NotFound, "movie not found", err)
	case errors.Is(err, repository.ErrRentalNotFound):
		return newError(NotFound, "rental not found", err)
	case errors.Is(err, repository.ErrOutOfStock):
		return newError(OutOfStock, "movie not in stock", err)
	case errors.Is(err, repository.ErrConflict):
		return newError(Conflict, "concurrent update, retry", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(Timeout, "operation timed out", err)
	}
	return fmt.Errorf("ledger: %s: %w", op, err)
}
