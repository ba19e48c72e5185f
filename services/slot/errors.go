package slot

import "errors"

var (
	ErrNotFound          = errors.New("slot not found")
	ErrForbidden         = errors.New("not authorized for this slot")
	ErrInvalidWindow     = errors.New("end time must be after start time")
	ErrSlotOverlap       = errors.New("slot conflicts with an existing slot")
	ErrHasActiveBookings = errors.New("slot has active bookings; cancel it instead of deleting")
	ErrInvalidState      = errors.New("slot is not in a valid state for this operation")
)
