package bookingRepo

import (
	"time"

	"campusbook/models"
)

// BookingRepository defines data access for bookings.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	Update(booking *models.Booking) error

	// FindByStudent lists a student's bookings, optionally by status,
	// newest first.
	FindByStudent(studentID, status string) ([]models.Booking, error)
	// FindByFaculty lists a faculty member's bookings, optionally by
	// status, newest first.
	FindByFaculty(facultyID, status string) ([]models.Booking, error)
	// FindLiveByStudentAndSlot returns the student's pending or approved
	// booking on the slot, if any.
	FindLiveByStudentAndSlot(studentID, slotID string) (*models.Booking, error)
	// FindApprovedWithSlots returns the student's approved bookings joined
	// with their slot windows, for overlap checking.
	FindApprovedWithSlots(studentID string) ([]models.BookingWithSlot, error)
	// FindLiveBySlot lists the pending and approved bookings on a slot.
	FindLiveBySlot(slotID string) ([]models.Booking, error)
	// CountLiveBySlot counts pending and approved bookings on a slot.
	CountLiveBySlot(slotID string) (int64, error)
	// CancelLiveBySlot marks every pending/approved booking on the slot as
	// cancelled with the given reason. Idempotent.
	CancelLiveBySlot(slotID, reason string, at time.Time) error
	// FindApprovedInWindow returns approved bookings whose slot starts in
	// [from, to), joined with their slots.
	FindApprovedInWindow(from, to time.Time) ([]models.BookingWithSlot, error)
	// RecentTerminalOutcomes returns the student's most recent bookings
	// with a terminal attendance outcome, newest first, capped at limit.
	RecentTerminalOutcomes(studentID string, limit int64) ([]models.Booking, error)
}
