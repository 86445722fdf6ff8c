// Package reservation implements the slot reservation coordinator:
// the single writer of slot reserved flags and booking rows.  It
// decides whether a multi-slot booking succeeds and guarantees the
// inventory is left consistent on every failure path.
package reservation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies coordinator failures so callers know whether a
// retry can help.  Only WRITE_FAILURE is transient; every other
// kind reports a fact about the request that a retry will not change.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindPartialInventory Kind = "PARTIAL_INVENTORY"
	KindConflict         Kind = "CONFLICT"
	KindTooLate          Kind = "TOO_LATE"
	KindWriteFailure     Kind = "WRITE_FAILURE"
	KindInvalidInput     Kind = "INVALID_INPUT"
)

// Error is the coordinator's error type.  SlotIDs is populated for
// CONFLICT so the caller can show the user exactly which requested
// slots overlap existing reservations.
type Error struct {
	Kind    Kind
	Detail  string
	SlotIDs []uint64
}

func (e *Error) Error() string {
	if len(e.SlotIDs) > 0 {
		parts := make([]string, len(e.SlotIDs))
		for i, id := range e.SlotIDs {
			parts[i] = fmt.Sprint(id)
		}
		return fmt.Sprintf("%s: %s (slots %s)", e.Kind, e.Detail, strings.Join(parts, ","))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Retryable reports whether the caller may usefully retry the same
// request, possibly with the same idempotency token.
func (e *Error) Retryable() bool { return e.Kind == KindWriteFailure }

// KindOf extracts the Kind from any error produced by this
// package; unknown errors map to WRITE_FAILURE, the conservative
// retryable classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindWriteFailure
}

func errNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func errPartialInventory(format string, args ...any) *Error {
	return &Error{Kind: KindPartialInventory, Detail: fmt.Sprintf(format, args...)}
}

func errConflict(slotIDs []uint64) *Error {
	return &Error{Kind: KindConflict, Detail: "slot(s) already reserved", SlotIDs: slotIDs}
}

func errTooLate(detail string) *Error {
	return &Error{Kind: KindTooLate, Detail: detail}
}

func errWriteFailure(format string, args ...any) *Error {
	return &Error{Kind: KindWriteFailure, Detail: fmt.Sprintf(format, args...)}
}

func errInvalidInput(detail string) *Error {
	return &Error{Kind: KindInvalidInput, Detail: detail}
}
