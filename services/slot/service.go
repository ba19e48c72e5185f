package slot

import (
	"context"
	"fmt"
	"time"

	bookingRepo "campusbook/database/repository/booking"
	slotRepo "campusbook/database/repository/slot"
	"campusbook/models"
	"campusbook/services/notification"
	"campusbook/services/realtime"
	"campusbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancelledByFacultyReason is the default cancellation reason stamped on
// bookings swept up by a slot cancellation.
const CancelledByFacultyReason = "Slot cancelled by faculty"

// DefaultSlotService implements SlotService.
type DefaultSlotService struct {
	Slots        slotRepo.SlotRepository
	Bookings     bookingRepo.BookingRepository
	Notification notification.NotificationService
	Events       realtime.Emitter
	Clock        utils.Clock
}

func (s *DefaultSlotService) Create(ctx context.Context, facultyID string, in models.CreateSlotInput) (*models.Slot, error) {
	if !in.StartTime.Before(in.EndTime) {
		return nil, ErrInvalidWindow
	}

	existing, err := s.Slots.FindOverlapping(facultyID, in.StartTime, in.EndTime, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping slots: %w", err)
	}
	if existing != nil {
		return nil, ErrSlotOverlap
	}

	capacity := in.Capacity
	if capacity < 1 {
		capacity = 1
	}

	now := s.Clock.Now()
	slot := &models.Slot{
		ID:        uuid.New().String(),
		FacultyID: facultyID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Location:  in.Location,
		Notes:     in.Notes,
		Capacity:  capacity,
		Status:    models.SlotStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	slot.Recompute()

	if err := s.Slots.Create(slot); err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	s.emitSlotUpdate(ctx, slot, "created")
	return slot, nil
}

func (s *DefaultSlotService) Update(ctx context.Context, facultyID, slotID string, in models.UpdateSlotInput) (*models.Slot, error) {
	slot, err := s.loadOwned(facultyID, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != models.SlotStatusActive {
		return nil, ErrInvalidState
	}

	start, end := slot.StartTime, slot.EndTime
	if in.StartTime != nil {
		start = *in.StartTime
	}
	if in.EndTime != nil {
		end = *in.EndTime
	}
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}

	if in.StartTime != nil || in.EndTime != nil {
		existing, err := s.Slots.FindOverlapping(facultyID, start, end, slotID)
		if err != nil {
			return nil, fmt.Errorf("failed to check overlapping slots: %w", err)
		}
		if existing != nil {
			return nil, ErrSlotOverlap
		}
	}

	slot.StartTime = start
	slot.EndTime = end
	if in.Location != nil {
		slot.Location = *in.Location
	}
	if in.Notes != nil {
		slot.Notes = *in.Notes
	}
	if in.Capacity != nil && *in.Capacity >= 1 {
		slot.Capacity = *in.Capacity
	}

	if err := s.Slots.Update(slot); err != nil {
		return nil, fmt.Errorf("failed to update slot: %w", err)
	}

	s.emitSlotUpdate(ctx, slot, "updated")
	return slot, nil
}

// Cancel marks the slot cancelled and cascades onto its live bookings.
// The affected set is captured before the sweep so each student can be
// notified individually; the counter reset is a single deterministic
// write, not a per-booking decrement. Repeating the call finds no live
// bookings and rewrites the same terminal state.
func (s *DefaultSlotService) Cancel(ctx context.Context, facultyID, slotID string, isAdmin bool) (*models.Slot, error) {
	slot, err := s.Slots.GetByID(slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, ErrNotFound
	}
	if !isAdmin && slot.FacultyID != facultyID {
		return nil, ErrForbidden
	}

	affected, err := s.Bookings.FindLiveBySlot(slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load live bookings: %w", err)
	}

	now := s.Clock.Now()
	if err := s.Bookings.CancelLiveBySlot(slotID, CancelledByFacultyReason, now); err != nil {
		return nil, fmt.Errorf("failed to cancel bookings on slot: %w", err)
	}

	updated, err := s.Slots.CloseOut(slotID, models.SlotStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel slot: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	for i := range affected {
		b := &affected[i]
		b.Status = models.BookingStatusCancelled
		b.CancellationReason = CancelledByFacultyReason
		b.CancelledAt = &now

		if err := s.Notification.NotifySlotCancelled(ctx, b); err != nil {
			zap.L().Warn("slot cancellation notice failed",
				zap.String("booking", b.ID), zap.Error(err))
		}
		s.emitBookingUpdate(ctx, b)
	}

	s.emitSlotUpdate(ctx, updated, "cancelled")
	return updated, nil
}

func (s *DefaultSlotService) Delete(ctx context.Context, facultyID, slotID string) error {
	slot, err := s.loadOwned(facultyID, slotID)
	if err != nil {
		return err
	}

	live, err := s.Bookings.CountLiveBySlot(slotID)
	if err != nil {
		return fmt.Errorf("failed to count live bookings: %w", err)
	}
	if live > 0 {
		return ErrHasActiveBookings
	}

	if err := s.Slots.Delete(slotID); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	s.emitSlotUpdate(ctx, slot, "deleted")
	return nil
}

func (s *DefaultSlotService) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Slots.GetByID(slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, ErrNotFound
	}
	return slot, nil
}

func (s *DefaultSlotService) ListAvailable(ctx context.Context, facultyID string, from, to time.Time) ([]models.Slot, error) {
	if from.IsZero() {
		from = s.Clock.Now()
	}
	return s.Slots.FindAvailable(facultyID, from, to)
}

func (s *DefaultSlotService) ListForFaculty(ctx context.Context, facultyID, status string) ([]models.Slot, error) {
	return s.Slots.FindByFaculty(facultyID, status)
}

func (s *DefaultSlotService) loadOwned(facultyID, slotID string) (*models.Slot, error) {
	slot, err := s.Slots.GetByID(slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, ErrNotFound
	}
	if slot.FacultyID != facultyID {
		return nil, ErrForbidden
	}
	return slot, nil
}

func (s *DefaultSlotService) emitSlotUpdate(ctx context.Context, slot *models.Slot, action string) {
	payload := map[string]string{
		"action":    action,
		"slotId":    slot.ID,
		"facultyId": slot.FacultyID,
	}
	if err := s.Events.Emit(ctx, slot.FacultyID, "slot_updated", payload); err != nil {
		zap.L().Warn("slot event emit failed", zap.String("slot", slot.ID), zap.Error(err))
	}
}

func (s *DefaultSlotService) emitBookingUpdate(ctx context.Context, b *models.Booking) {
	payload := map[string]string{"bookingId": b.ID, "status": b.Status}
	for _, userID := range []string{b.StudentID, b.FacultyID} {
		if err := s.Events.Emit(ctx, userID, "booking_updated", payload); err != nil {
			zap.L().Warn("booking event emit failed", zap.String("booking", b.ID), zap.Error(err))
		}
	}
}
