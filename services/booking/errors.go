package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrForbidden       = errors.New("not authorized for this booking")
	ErrInvalidState    = errors.New("booking is not in a valid state for this operation")
)

// ConflictKind classifies why a booking request is illegal.
type ConflictKind string

const (
	ConflictSlotFull         ConflictKind = "slot_full"
	ConflictPastSlot         ConflictKind = "past_slot"
	ConflictDuplicateRequest ConflictKind = "duplicate_request"
	ConflictTimeOverlap      ConflictKind = "time_overlap"
)

// ConflictError is returned when a booking request fails a legality
// check. These are user-correctable: callers surface them synchronously
// and never retry.
type ConflictError struct {
	Kind    ConflictKind
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newConflict(kind ConflictKind, msg string) *ConflictError {
	return &ConflictError{Kind: kind, Message: msg}
}

// AsConflict unwraps err into a ConflictError if it is one.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
