package booking

import (
	"time"

	"campusbook/models"
)

// Overlaps reports whether two half-open intervals [s1,e1) and [s2,e2)
// intersect. Windows that merely touch at a boundary do not overlap, so
// back-to-back appointments are always legal.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// CheckConflict decides whether a student may book the given slot. It is
// a pure function over its inputs and safe to call speculatively: the
// caller supplies the student's live booking on this slot (if any) and
// their approved bookings joined with slot windows.
//
// Checks run in order: slot availability, slot in the past, duplicate
// request on the same slot, then time overlap against approved bookings.
func CheckConflict(
	slot *models.Slot,
	now time.Time,
	sameSlot *models.Booking,
	approved []models.BookingWithSlot,
) *ConflictError {
	if !slot.Available() {
		return newConflict(ConflictSlotFull, "slot is not available")
	}

	if slot.StartTime.Before(now) {
		return newConflict(ConflictPastSlot, "cannot book past slots")
	}

	if sameSlot != nil && sameSlot.Live() {
		return newConflict(ConflictDuplicateRequest, "you have already booked this slot")
	}

	for i := range approved {
		b := &approved[i]
		if b.Booking.SlotID == slot.ID {
			continue
		}
		if Overlaps(slot.StartTime, slot.EndTime, b.Slot.StartTime, b.Slot.EndTime) {
			return newConflict(ConflictTimeOverlap, "you have a conflicting appointment at this time")
		}
	}

	return nil
}
