package booking

import (
	"context"

	"campusbook/models"
)

// BookingService orchestrates the booking lifecycle:
// pending -> {approved, rejected, cancelled};
// approved -> {cancelled, completed, no-show}. Every other state is
// terminal and no transition re-enters pending. Capacity on the slot is
// taken once at creation and given back when a booking leaves the
// pending/approved set through rejection or cancellation.
type BookingService interface {
	Create(ctx context.Context, studentID, slotID, purpose string) (*models.Booking, error)
	Approve(ctx context.Context, facultyID, bookingID string) (*models.Booking, error)
	Reject(ctx context.Context, facultyID, bookingID, reason string) (*models.Booking, error)
	Cancel(ctx context.Context, actorID string, isAdmin bool, bookingID, reason string) (*models.Booking, error)
	// MarkAttendance records the outcome of an approved booking:
	// attended completes it, no-show terminates it as a no-show. The
	// outcome feeds the student's no-show rate used by the reminder
	// scheduler.
	MarkAttendance(ctx context.Context, facultyID, bookingID, outcome, notes string) (*models.Booking, error)

	GetByID(ctx context.Context, actorID, bookingID string) (*models.Booking, error)
	ListForStudent(ctx context.Context, studentID, status string) ([]models.Booking, error)
	ListForFaculty(ctx context.Context, facultyID, status string) ([]models.Booking, error)

	// TomorrowSummary counts a faculty member's approved bookings for
	// tomorrow.
	TomorrowSummary(ctx context.Context, facultyID string) (*TomorrowSummary, error)
	// NotifyTomorrowStudents sends a bulk notice to every student holding
	// an approved booking with the faculty member tomorrow. Returns the
	// number of students notified.
	NotifyTomorrowStudents(ctx context.Context, facultyID, message string) (int, error)
}

// TomorrowSummary describes a faculty member's load for the next day.
type TomorrowSummary struct {
	Date     string `json:"date"`
	Count    int    `json:"count"`
	HeavyDay bool   `json:"heavyDay"`
}
