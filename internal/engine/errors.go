package engine

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so callers (CLI, HTTP) can map them to
// stable machine-readable responses without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: task/realm/user/quest missing or not owned by the caller.
	KindNotFound
	// KindConflict: the operation is valid but the record is in the wrong
	// state (already completed, already claimed, not completed yet).
	KindConflict
	// KindInvalidInput: the caller supplied an out-of-range or malformed value.
	KindInvalidInput
	// KindInconsistent: stored data violates an invariant, e.g. a completed
	// task with no matching ledger entry. Surfaced, never swallowed.
	KindInconsistent
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidInputf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func Inconsistentf(format string, args ...any) *Error {
	return &Error{Kind: KindInconsistent, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
