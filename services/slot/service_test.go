package slot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusbook/models"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type nopEmitter struct{}

func (nopEmitter) Emit(ctx context.Context, userID, event string, payload any) error { return nil }

// fakeSlotStore implements overlap search in memory the way the store's
// half-open window query does.
type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]*models.Slot
}

func newFakeSlotStore(slots ...*models.Slot) *fakeSlotStore {
	r := &fakeSlotStore{slots: make(map[string]*models.Slot)}
	for _, s := range slots {
		cp := *s
		r.slots[s.ID] = &cp
	}
	return r
}

func (r *fakeSlotStore) Create(slot *models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *fakeSlotStore) GetByID(id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSlotStore) Update(slot *models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *fakeSlotStore) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
	return nil
}

func (r *fakeSlotStore) FindAvailable(facultyID string, from, to time.Time) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.slots {
		if !s.Available() || s.StartTime.Before(from) {
			continue
		}
		if facultyID != "" && s.FacultyID != facultyID {
			continue
		}
		if !to.IsZero() && !s.StartTime.Before(to) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSlotStore) FindByFaculty(facultyID, status string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.slots {
		if s.FacultyID != facultyID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSlotStore) FindOverlapping(facultyID string, start, end time.Time, excludeID string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.FacultyID != facultyID || s.ID == excludeID || s.Status != models.SlotStatusActive {
			continue
		}
		if s.StartTime.Before(end) && start.Before(s.EndTime) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSlotStore) ReserveSeat(id string) (*models.Slot, error)  { return r.GetByID(id) }
func (r *fakeSlotStore) ReleaseSeat(id string) (*models.Slot, error) { return r.GetByID(id) }

func (r *fakeSlotStore) CloseOut(id, status string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	s.Status = status
	s.BookedCount = 0
	s.Recompute()
	cp := *s
	return &cp, nil
}

// fakeBookingStore tracks live bookings per slot for cascade tests.
type fakeBookingStore struct {
	mu       sync.Mutex
	bookings []models.Booking
}

func (r *fakeBookingStore) Create(b *models.Booking) error                { return nil }
func (r *fakeBookingStore) GetByID(id string) (*models.Booking, error)    { return nil, nil }
func (r *fakeBookingStore) Update(b *models.Booking) error                { return nil }
func (r *fakeBookingStore) FindByStudent(studentID, status string) ([]models.Booking, error) {
	return nil, nil
}
func (r *fakeBookingStore) FindByFaculty(facultyID, status string) ([]models.Booking, error) {
	return nil, nil
}
func (r *fakeBookingStore) FindLiveByStudentAndSlot(studentID, slotID string) (*models.Booking, error) {
	return nil, nil
}
func (r *fakeBookingStore) FindApprovedWithSlots(studentID string) ([]models.BookingWithSlot, error) {
	return nil, nil
}

func (r *fakeBookingStore) FindLiveBySlot(slotID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for i := range r.bookings {
		b := &r.bookings[i]
		if b.SlotID == slotID && b.Live() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingStore) CountLiveBySlot(slotID string) (int64, error) {
	live, _ := r.FindLiveBySlot(slotID)
	return int64(len(live)), nil
}

func (r *fakeBookingStore) CancelLiveBySlot(slotID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		b := &r.bookings[i]
		if b.SlotID == slotID && b.Live() {
			b.Status = models.BookingStatusCancelled
			b.CancellationReason = reason
			t := at
			b.CancelledAt = &t
		}
	}
	return nil
}

func (r *fakeBookingStore) FindApprovedInWindow(from, to time.Time) ([]models.BookingWithSlot, error) {
	return nil, nil
}

func (r *fakeBookingStore) RecentTerminalOutcomes(studentID string, limit int64) ([]models.Booking, error) {
	return nil, nil
}

// cascadeNotifier records slot cancellation notices per booking.
type cascadeNotifier struct {
	mu          sync.Mutex
	slotNotices []string
}

func (n *cascadeNotifier) Create(ctx context.Context, userID, notifType, title, body string, data models.NotificationData) (*models.Notification, error) {
	return nil, nil
}
func (n *cascadeNotifier) SendPush(ctx context.Context, userID, title, body string, data map[string]string) error {
	return nil
}
func (n *cascadeNotifier) NotifyBookingCreated(ctx context.Context, b *models.Booking) error {
	return nil
}
func (n *cascadeNotifier) NotifyBookingApproved(ctx context.Context, b *models.Booking) error {
	return nil
}
func (n *cascadeNotifier) NotifyBookingRejected(ctx context.Context, b *models.Booking, reason string) error {
	return nil
}
func (n *cascadeNotifier) NotifyBookingCancelled(ctx context.Context, b *models.Booking, reason string) error {
	return nil
}

func (n *cascadeNotifier) NotifySlotCancelled(ctx context.Context, b *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.slotNotices = append(n.slotNotices, b.ID)
	return nil
}

func (n *cascadeNotifier) NotifyBulkNotice(ctx context.Context, studentID, facultyID, message string) error {
	return nil
}
func (n *cascadeNotifier) SendReminder(ctx context.Context, b *models.BookingWithSlot, minutesBefore int) (bool, error) {
	return false, nil
}
func (n *cascadeNotifier) SuggestMoreSlots(ctx context.Context, facultyID, dateKey string, count int) (bool, error) {
	return false, nil
}

func newService(store *fakeSlotStore, bookings *fakeBookingStore) (*DefaultSlotService, *cascadeNotifier) {
	notifier := &cascadeNotifier{}
	return &DefaultSlotService{
		Slots:        store,
		Bookings:     bookings,
		Notification: notifier,
		Events:       nopEmitter{},
		Clock:        &fakeClock{now: base},
	}, notifier
}

func window(startMin, endMin int) (time.Time, time.Time) {
	return base.Add(time.Duration(startMin) * time.Minute), base.Add(time.Duration(endMin) * time.Minute)
}

func TestCreateSlot(t *testing.T) {
	store := newFakeSlotStore()
	svc, _ := newService(store, &fakeBookingStore{})

	start, end := window(60, 90)
	slot, err := svc.Create(context.Background(), "fac-1", models.CreateSlotInput{
		StartTime: start,
		EndTime:   end,
		Location:  "Office 214",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if slot.Capacity != 1 {
		t.Errorf("capacity defaults to 1, got %d", slot.Capacity)
	}
	if !slot.IsAvailable {
		t.Error("fresh slot should be available")
	}
	if slot.Status != models.SlotStatusActive {
		t.Errorf("status = %q", slot.Status)
	}
}

func TestCreateSlotInvalidWindow(t *testing.T) {
	svc, _ := newService(newFakeSlotStore(), &fakeBookingStore{})

	start, _ := window(60, 90)
	_, err := svc.Create(context.Background(), "fac-1", models.CreateSlotInput{
		StartTime: start,
		EndTime:   start, // zero-length
		Location:  "Office 214",
	})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestCreateSlotRejectsOverlapSameFaculty(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 1, Status: models.SlotStatusActive,
	}
	svc, _ := newService(newFakeSlotStore(existing), &fakeBookingStore{})

	s2, e2 := window(90, 150)
	_, err := svc.Create(context.Background(), "fac-1", models.CreateSlotInput{
		StartTime: s2, EndTime: e2, Location: "Office 214",
	})
	if !errors.Is(err, ErrSlotOverlap) {
		t.Fatalf("expected ErrSlotOverlap, got %v", err)
	}

	// A different faculty member can hold the same window.
	if _, err := svc.Create(context.Background(), "fac-2", models.CreateSlotInput{
		StartTime: s2, EndTime: e2, Location: "Office 215",
	}); err != nil {
		t.Fatalf("other faculty Create: %v", err)
	}
}

func TestCreateSlotBackToBackAllowed(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 1, Status: models.SlotStatusActive,
	}
	svc, _ := newService(newFakeSlotStore(existing), &fakeBookingStore{})

	if _, err := svc.Create(context.Background(), "fac-1", models.CreateSlotInput{
		StartTime: e1, EndTime: e1.Add(30 * time.Minute), Location: "Office 214",
	}); err != nil {
		t.Fatalf("back-to-back Create: %v", err)
	}
}

func TestUpdateSlotOwnership(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 1, Status: models.SlotStatusActive,
	}
	svc, _ := newService(newFakeSlotStore(existing), &fakeBookingStore{})

	loc := "Library"
	if _, err := svc.Update(context.Background(), "fac-2", "slot-1", models.UpdateSlotInput{Location: &loc}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Update(context.Background(), "fac-1", "slot-1", models.UpdateSlotInput{Location: &loc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Location != "Library" {
		t.Errorf("location = %q", updated.Location)
	}
}

func TestUpdateCancelledSlotRejected(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 1, Status: models.SlotStatusCancelled,
	}
	svc, _ := newService(newFakeSlotStore(existing), &fakeBookingStore{})

	loc := "Library"
	if _, err := svc.Update(context.Background(), "fac-1", "slot-1", models.UpdateSlotInput{Location: &loc}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCancelSlotCascades(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 3, BookedCount: 2, Status: models.SlotStatusActive,
	}
	store := newFakeSlotStore(existing)
	bookings := &fakeBookingStore{bookings: []models.Booking{
		{ID: "b-1", SlotID: "slot-1", StudentID: "stu-1", FacultyID: "fac-1", Status: models.BookingStatusPending},
		{ID: "b-2", SlotID: "slot-1", StudentID: "stu-2", FacultyID: "fac-1", Status: models.BookingStatusApproved},
		{ID: "b-3", SlotID: "slot-1", StudentID: "stu-3", FacultyID: "fac-1", Status: models.BookingStatusCompleted},
	}}
	svc, notifier := newService(store, bookings)

	cancelled, err := svc.Cancel(context.Background(), "fac-1", "slot-1", false)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.SlotStatusCancelled {
		t.Errorf("status = %q", cancelled.Status)
	}
	if cancelled.BookedCount != 0 {
		t.Errorf("bookedCount = %d, want deterministic reset to 0", cancelled.BookedCount)
	}
	if cancelled.IsAvailable {
		t.Error("cancelled slot must not be available")
	}

	// Only the two live bookings get a notice; the completed one is left
	// alone.
	if len(notifier.slotNotices) != 2 {
		t.Errorf("slot notices = %v, want b-1 and b-2", notifier.slotNotices)
	}
	for i := range bookings.bookings {
		b := &bookings.bookings[i]
		switch b.ID {
		case "b-1", "b-2":
			if b.Status != models.BookingStatusCancelled {
				t.Errorf("%s status = %q, want cancelled", b.ID, b.Status)
			}
			if b.CancellationReason != CancelledByFacultyReason {
				t.Errorf("%s reason = %q", b.ID, b.CancellationReason)
			}
		case "b-3":
			if b.Status != models.BookingStatusCompleted {
				t.Errorf("completed booking was touched: %q", b.Status)
			}
		}
	}
}

func TestCancelSlotIdempotent(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 2, BookedCount: 1, Status: models.SlotStatusActive,
	}
	store := newFakeSlotStore(existing)
	bookings := &fakeBookingStore{bookings: []models.Booking{
		{ID: "b-1", SlotID: "slot-1", StudentID: "stu-1", FacultyID: "fac-1", Status: models.BookingStatusApproved},
	}}
	svc, notifier := newService(store, bookings)

	if _, err := svc.Cancel(context.Background(), "fac-1", "slot-1", false); err != nil {
		t.Fatalf("first Cancel: %v", err)
	}
	again, err := svc.Cancel(context.Background(), "fac-1", "slot-1", false)
	if err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if again.Status != models.SlotStatusCancelled || again.BookedCount != 0 {
		t.Errorf("repeat cancel changed terminal state: %+v", again)
	}
	if len(notifier.slotNotices) != 1 {
		t.Errorf("notices = %v, repeat cancel must not re-notify", notifier.slotNotices)
	}
}

func TestCancelSlotAuthorization(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 1, Status: models.SlotStatusActive,
	}
	svc, _ := newService(newFakeSlotStore(existing), &fakeBookingStore{})

	if _, err := svc.Cancel(context.Background(), "fac-2", "slot-1", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), "admin-1", "slot-1", true); err != nil {
		t.Fatalf("admin Cancel: %v", err)
	}
}

func TestDeleteSlotGuardedByLiveBookings(t *testing.T) {
	s1, e1 := window(60, 120)
	existing := &models.Slot{
		ID: "slot-1", FacultyID: "fac-1",
		StartTime: s1, EndTime: e1,
		Capacity: 1, Status: models.SlotStatusActive,
	}
	store := newFakeSlotStore(existing)
	bookings := &fakeBookingStore{bookings: []models.Booking{
		{ID: "b-1", SlotID: "slot-1", StudentID: "stu-1", FacultyID: "fac-1", Status: models.BookingStatusPending},
	}}
	svc, _ := newService(store, bookings)

	if err := svc.Delete(context.Background(), "fac-1", "slot-1"); !errors.Is(err, ErrHasActiveBookings) {
		t.Fatalf("expected ErrHasActiveBookings, got %v", err)
	}

	// Once nothing live remains, deletion goes through.
	bookings.bookings[0].Status = models.BookingStatusCancelled
	if err := svc.Delete(context.Background(), "fac-1", "slot-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.GetByID("slot-1"); got != nil {
		t.Error("slot still present after delete")
	}
}
