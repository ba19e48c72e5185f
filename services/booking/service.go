package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "campusbook/database/repository/booking"
	slotRepo "campusbook/database/repository/slot"
	"campusbook/models"
	"campusbook/services/notification"
	"campusbook/services/realtime"
	"campusbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Slots        slotRepo.SlotRepository
	Bookings     bookingRepo.BookingRepository
	Notification notification.NotificationService
	Events       realtime.Emitter
	Clock        utils.Clock
	// HeavyThreshold is the booking count at which tomorrow qualifies as
	// a heavy day.
	HeavyThreshold int
}

// Create runs the conflict checks, reserves a seat atomically, and
// persists a pending booking. The seat reservation is the linearization
// point: two concurrent creates against one remaining seat resolve to a
// single winner at the store layer, not by the read below.
func (s *DefaultBookingService) Create(ctx context.Context, studentID, slotID, purpose string) (*models.Booking, error) {
	slot, err := s.Slots.GetByID(slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	now := s.Clock.Now()

	sameSlot, err := s.Bookings.FindLiveByStudentAndSlot(studentID, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing booking: %w", err)
	}
	approved, err := s.Bookings.FindApprovedWithSlots(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved bookings: %w", err)
	}

	if conflict := CheckConflict(slot, now, sameSlot, approved); conflict != nil {
		return nil, conflict
	}

	// Atomic increment-if-below-capacity; losing a race here surfaces as
	// a full slot even though the speculative check above passed.
	if _, err := s.Slots.ReserveSeat(slotID); err != nil {
		if errors.Is(err, slotRepo.ErrSeatUnavailable) {
			return nil, newConflict(ConflictSlotFull, "slot is not available")
		}
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}

	b := &models.Booking{
		ID:         uuid.New().String(),
		SlotID:     slotID,
		StudentID:  studentID,
		FacultyID:  slot.FacultyID, // snapshot; never recomputed from the slot
		Purpose:    purpose,
		Status:     models.BookingStatusPending,
		Attendance: models.Attendance{Status: models.AttendancePending},
		CreatedAt:  now,
	}
	if err := s.Bookings.Create(b); err != nil {
		// Give the seat back so the counter cannot leak on insert failure.
		if _, relErr := s.Slots.ReleaseSeat(slotID); relErr != nil {
			zap.L().Error("failed to release seat after insert failure",
				zap.String("slot", slotID), zap.Error(relErr))
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := s.Notification.NotifyBookingCreated(ctx, b); err != nil {
		zap.L().Warn("booking created notification failed", zap.String("booking", b.ID), zap.Error(err))
	}
	s.emitBookingUpdate(ctx, b)

	return b, nil
}

// Approve moves a pending booking to approved. The seat was reserved at
// creation, so capacity does not change.
func (s *DefaultBookingService) Approve(ctx context.Context, facultyID, bookingID string) (*models.Booking, error) {
	b, err := s.loadOwned(facultyID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusPending {
		return nil, ErrInvalidState
	}

	now := s.Clock.Now()
	b.Status = models.BookingStatusApproved
	b.ApprovedAt = &now
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to approve booking: %w", err)
	}

	if err := s.Notification.NotifyBookingApproved(ctx, b); err != nil {
		zap.L().Warn("approval notification failed", zap.String("booking", b.ID), zap.Error(err))
	}
	s.emitBookingUpdate(ctx, b)

	return b, nil
}

// Reject moves a pending booking to rejected and frees its seat.
func (s *DefaultBookingService) Reject(ctx context.Context, facultyID, bookingID, reason string) (*models.Booking, error) {
	b, err := s.loadOwned(facultyID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusPending {
		return nil, ErrInvalidState
	}

	now := s.Clock.Now()
	b.Status = models.BookingStatusRejected
	b.RejectionReason = reason
	b.RejectedAt = &now
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to reject booking: %w", err)
	}

	s.releaseSeat(b.SlotID)

	if err := s.Notification.NotifyBookingRejected(ctx, b, reason); err != nil {
		zap.L().Warn("rejection notification failed", zap.String("booking", b.ID), zap.Error(err))
	}
	s.emitBookingUpdate(ctx, b)

	return b, nil
}

// Cancel terminates a pending or approved booking. Either party may
// cancel, as may an administrative override.
func (s *DefaultBookingService) Cancel(ctx context.Context, actorID string, isAdmin bool, bookingID, reason string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if !isAdmin && actorID != b.StudentID && actorID != b.FacultyID {
		return nil, ErrForbidden
	}
	if b.Status == models.BookingStatusCancelled || b.Status == models.BookingStatusRejected {
		return nil, ErrInvalidState
	}

	wasLive := b.Live()
	now := s.Clock.Now()
	b.Status = models.BookingStatusCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	// Only a live booking gives a seat back; attendance outcomes belong
	// to slots already in the past, where the counter no longer gates
	// anything.
	if wasLive {
		s.releaseSeat(b.SlotID)
	}

	if err := s.Notification.NotifyBookingCancelled(ctx, b, reason); err != nil {
		zap.L().Warn("cancellation notification failed", zap.String("booking", b.ID), zap.Error(err))
	}
	s.emitBookingUpdate(ctx, b)

	return b, nil
}

// MarkAttendance records the final outcome of an approved booking.
func (s *DefaultBookingService) MarkAttendance(ctx context.Context, facultyID, bookingID, outcome, notes string) (*models.Booking, error) {
	b, err := s.loadOwned(facultyID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusApproved {
		return nil, ErrInvalidState
	}
	if outcome != models.AttendanceAttended && outcome != models.AttendanceNoShow {
		return nil, fmt.Errorf("%w: unknown attendance outcome %q", ErrInvalidState, outcome)
	}

	now := s.Clock.Now()
	b.Attendance.Status = outcome
	b.Attendance.MarkedAt = &now
	b.Attendance.MarkedBy = facultyID
	b.Attendance.Notes = notes
	if outcome == models.AttendanceAttended {
		b.Status = models.BookingStatusCompleted
	} else {
		b.Status = models.BookingStatusNoShow
	}
	if err := s.Bookings.Update(b); err != nil {
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}

	s.emitBookingUpdate(ctx, b)
	return b, nil
}

func (s *DefaultBookingService) GetByID(ctx context.Context, actorID, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if actorID != b.StudentID && actorID != b.FacultyID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *DefaultBookingService) ListForStudent(ctx context.Context, studentID, status string) ([]models.Booking, error) {
	return s.Bookings.FindByStudent(studentID, status)
}

func (s *DefaultBookingService) ListForFaculty(ctx context.Context, facultyID, status string) ([]models.Booking, error) {
	return s.Bookings.FindByFaculty(facultyID, status)
}

// loadOwned fetches a booking and verifies the acting faculty member owns it.
func (s *DefaultBookingService) loadOwned(facultyID, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.FacultyID != facultyID {
		return nil, ErrForbidden
	}
	return b, nil
}

// releaseSeat decrements the slot counter, clamped at zero by the store.
// An underflow clamp firing means a double decrement happened somewhere;
// it is logged rather than surfaced.
func (s *DefaultBookingService) releaseSeat(slotID string) {
	slot, err := s.Slots.ReleaseSeat(slotID)
	if err != nil {
		zap.L().Error("failed to release seat", zap.String("slot", slotID), zap.Error(err))
		return
	}
	if slot != nil && slot.BookedCount == 0 && slot.Capacity > 0 && slot.Status != models.SlotStatusActive {
		zap.L().Debug("released seat on inactive slot", zap.String("slot", slotID))
	}
}

func (s *DefaultBookingService) emitBookingUpdate(ctx context.Context, b *models.Booking) {
	payload := map[string]string{"bookingId": b.ID, "status": b.Status}
	for _, userID := range []string{b.StudentID, b.FacultyID} {
		if err := s.Events.Emit(ctx, userID, "booking_updated", payload); err != nil {
			zap.L().Warn("booking event emit failed", zap.String("booking", b.ID), zap.Error(err))
		}
	}
}
