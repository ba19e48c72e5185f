package slotRepo

import (
	"errors"
	"time"

	"campusbook/models"
)

// ErrSeatUnavailable is returned by ReserveSeat when the slot is missing,
// inactive, or already at capacity. The conditional update cannot tell
// these apart; callers that care load the slot first.
var ErrSeatUnavailable = errors.New("slot has no seat available")

// SlotRepository defines data access for slots. ReserveSeat and
// ReleaseSeat are atomic read-modify-write operations at the store layer;
// two concurrent reservations against one remaining seat cannot both
// succeed.
type SlotRepository interface {
	Create(slot *models.Slot) error
	GetByID(id string) (*models.Slot, error)
	Update(slot *models.Slot) error
	Delete(id string) error

	// FindAvailable lists active, available, future slots, optionally
	// restricted to one faculty member and a time range.
	FindAvailable(facultyID string, from, to time.Time) ([]models.Slot, error)
	// FindByFaculty lists a faculty member's slots, optionally by status.
	FindByFaculty(facultyID, status string) ([]models.Slot, error)
	// FindOverlapping returns an active slot of the faculty member whose
	// window intersects [start, end), excluding excludeID.
	FindOverlapping(facultyID string, start, end time.Time, excludeID string) (*models.Slot, error)

	// ReserveSeat atomically increments bookedCount iff the slot is active
	// and below capacity, recomputing isAvailable. Returns the updated
	// slot, or ErrSeatUnavailable when no seat could be taken.
	ReserveSeat(id string) (*models.Slot, error)
	// ReleaseSeat atomically decrements bookedCount with a floor of zero,
	// recomputing isAvailable.
	ReleaseSeat(id string) (*models.Slot, error)
	// CloseOut sets the slot's status and deterministically resets
	// bookedCount to zero, clearing isAvailable. Used by slot
	// cancellation so the counter never drifts from repeated decrements.
	CloseOut(id, status string) (*models.Slot, error)
}
