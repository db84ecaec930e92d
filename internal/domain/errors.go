package domain

import "errors"

// Error taxonomy for lifecycle operations. Callers match with errors.Is and
// map each to a distinct response; only ErrConflict is meaningfully
// retryable.
var (
	// ErrInvalidTransition means the requested action is not valid from the
	// article's current status. Nothing is mutated and no ledger row is
	// written.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrForbidden means the actor lacks the capability or organizational
	// scope for the action. Reported distinctly from ErrInvalidTransition so
	// callers can render "not your rubric" vs "wrong state".
	ErrForbidden = errors.New("actor not allowed")

	// ErrNotFound means the referenced article does not exist or is outside
	// the actor's visibility.
	ErrNotFound = errors.New("article not found")

	// ErrConflict means a concurrent transition won the race; the caller
	// should refetch and may retry once.
	ErrConflict = errors.New("article changed concurrently")

	// ErrStorage means the blob store could not persist an uploaded cover
	// image.
	ErrStorage = errors.New("blob storage failure")
)
