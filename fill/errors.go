package fill

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownQuestionType marks a question whose type the registry
	// cannot resolve.
	ErrUnknownQuestionType = errors.New("unknown question type")

	// ErrNotStarted is returned by transitions that need a running session.
	ErrNotStarted = errors.New("session not started")

	// ErrAwaitingAuth is returned by transitions attempted while the
	// session is suspended waiting for an identity.
	ErrAwaitingAuth = errors.New("session awaiting authentication")

	// ErrAlreadyCompleted is returned by transitions attempted after a
	// successful submit.
	ErrAlreadyCompleted = errors.New("session already completed")

	// ErrSubmitInFlight guards against a duplicate finalize while one is
	// pending.
	ErrSubmitInFlight = errors.New("submit already in flight")

	// ErrSelectionLimit is returned when a selection change would exceed
	// the question's maximum selection count. The stored value is left
	// unchanged.
	ErrSelectionLimit = errors.New("selection limit reached")

	// ErrResetNotAllowed is returned when RESET is attempted on a form
	// that does not allow multiple submissions, or before completion.
	ErrResetNotAllowed = errors.New("reset not allowed")

	// ErrNotCurrentQuestion is returned when an answer targets a question
	// other than the currently displayed one.
	ErrNotCurrentQuestion = errors.New("not the current question")
)

// ValidationError carries the per-question validation failures of a refused
// NEXT or SUBMIT transition. Recoverable: the offending value just has to
// change.
type ValidationError struct {
	QuestionID string
	Errors     []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, strings.Join(e.Errors, "; "))
}

// PersistenceError wraps a response store failure. Draft failures are
// swallowed by the session; finalize failures surface as this type and never
// discard the in-memory answers.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
