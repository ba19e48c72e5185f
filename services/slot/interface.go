package slot

import (
	"context"
	"time"

	"campusbook/models"
)

// SlotService manages a faculty member's bookable time windows. A slot is
// never hard-deleted while pending or approved bookings reference it;
// cancellation cascades onto those bookings instead.
type SlotService interface {
	Create(ctx context.Context, facultyID string, in models.CreateSlotInput) (*models.Slot, error)
	Update(ctx context.Context, facultyID, slotID string, in models.UpdateSlotInput) (*models.Slot, error)
	// Cancel marks the slot cancelled, cancels every pending/approved
	// booking on it with a default reason, and resets the seat counter to
	// zero in one write. Safe to repeat.
	Cancel(ctx context.Context, facultyID, slotID string, isAdmin bool) (*models.Slot, error)
	// Delete removes a slot outright; fails with ErrHasActiveBookings if
	// any booking on it is still pending or approved.
	Delete(ctx context.Context, facultyID, slotID string) error

	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	ListAvailable(ctx context.Context, facultyID string, from, to time.Time) ([]models.Slot, error)
	ListForFaculty(ctx context.Context, facultyID, status string) ([]models.Slot, error)
}
