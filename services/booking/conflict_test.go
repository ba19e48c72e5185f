package booking

import (
	"testing"
	"time"

	"campusbook/models"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func activeSlot(start, end time.Time) *models.Slot {
	s := &models.Slot{
		ID:        "slot-1",
		FacultyID: "fac-1",
		StartTime: start,
		EndTime:   end,
		Capacity:  2,
		Status:    models.SlotStatusActive,
	}
	s.Recompute()
	return s
}

func withSlot(slotID string, start, end time.Time) models.BookingWithSlot {
	return models.BookingWithSlot{
		Booking: models.Booking{
			ID:     "b-" + slotID,
			SlotID: slotID,
			Status: models.BookingStatusApproved,
		},
		Slot: models.Slot{ID: slotID, StartTime: start, EndTime: end},
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(0), at(30), at(0), at(30), true},
		{"partial", at(0), at(30), at(15), at(45), true},
		{"contained", at(0), at(60), at(15), at(30), true},
		{"touching end to start", at(0), at(30), at(30), at(60), false},
		{"touching start to end", at(30), at(60), at(0), at(30), false},
		{"disjoint", at(0), at(30), at(60), at(90), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tc.s2, tc.e2, tc.s1, tc.e1); got != tc.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckConflictAllowsCleanRequest(t *testing.T) {
	slot := activeSlot(at(60), at(90))
	if got := CheckConflict(slot, base, nil, nil); got != nil {
		t.Fatalf("expected no conflict, got %v", got)
	}
}

func TestCheckConflictSlotFull(t *testing.T) {
	slot := activeSlot(at(60), at(90))
	slot.BookedCount = slot.Capacity
	slot.Recompute()

	got := CheckConflict(slot, base, nil, nil)
	if got == nil || got.Kind != ConflictSlotFull {
		t.Fatalf("expected %s, got %v", ConflictSlotFull, got)
	}
}

func TestCheckConflictCancelledSlotIsFull(t *testing.T) {
	slot := activeSlot(at(60), at(90))
	slot.Status = models.SlotStatusCancelled
	slot.Recompute()

	got := CheckConflict(slot, base, nil, nil)
	if got == nil || got.Kind != ConflictSlotFull {
		t.Fatalf("expected %s, got %v", ConflictSlotFull, got)
	}
}

func TestCheckConflictPastSlot(t *testing.T) {
	slot := activeSlot(at(-30), at(0))
	got := CheckConflict(slot, base, nil, nil)
	if got == nil || got.Kind != ConflictPastSlot {
		t.Fatalf("expected %s, got %v", ConflictPastSlot, got)
	}
}

func TestCheckConflictDuplicateRequest(t *testing.T) {
	slot := activeSlot(at(60), at(90))
	existing := &models.Booking{ID: "b-1", SlotID: slot.ID, Status: models.BookingStatusPending}

	got := CheckConflict(slot, base, existing, nil)
	if got == nil || got.Kind != ConflictDuplicateRequest {
		t.Fatalf("expected %s, got %v", ConflictDuplicateRequest, got)
	}
}

func TestCheckConflictIgnoresTerminalBookingOnSameSlot(t *testing.T) {
	slot := activeSlot(at(60), at(90))
	cancelled := &models.Booking{ID: "b-1", SlotID: slot.ID, Status: models.BookingStatusCancelled}

	if got := CheckConflict(slot, base, cancelled, nil); got != nil {
		t.Fatalf("cancelled booking should not block a rebook, got %v", got)
	}
}

func TestCheckConflictTimeOverlap(t *testing.T) {
	slot := activeSlot(at(60), at(120))
	approved := []models.BookingWithSlot{withSlot("slot-other", at(90), at(150))}

	got := CheckConflict(slot, base, nil, approved)
	if got == nil || got.Kind != ConflictTimeOverlap {
		t.Fatalf("expected %s, got %v", ConflictTimeOverlap, got)
	}
}

func TestCheckConflictBackToBackIsLegal(t *testing.T) {
	slot := activeSlot(at(60), at(120))
	approved := []models.BookingWithSlot{
		withSlot("before", at(0), at(60)),
		withSlot("after", at(120), at(180)),
	}

	if got := CheckConflict(slot, base, nil, approved); got != nil {
		t.Fatalf("boundary-touching windows must not conflict, got %v", got)
	}
}

func TestCheckConflictSkipsSameSlotInOverlapScan(t *testing.T) {
	// An approved booking on the very slot being checked is the
	// duplicate check's business, not the overlap scan's.
	slot := activeSlot(at(60), at(120))
	approved := []models.BookingWithSlot{withSlot(slot.ID, at(60), at(120))}

	if got := CheckConflict(slot, base, nil, approved); got != nil {
		t.Fatalf("same-slot booking must be skipped by overlap scan, got %v", got)
	}
}

func TestCheckConflictOrderSlotFullBeforePast(t *testing.T) {
	slot := activeSlot(at(-60), at(-30))
	slot.BookedCount = slot.Capacity
	slot.Recompute()

	got := CheckConflict(slot, base, nil, nil)
	if got == nil || got.Kind != ConflictSlotFull {
		t.Fatalf("availability is checked first, got %v", got)
	}
}
