package reminder

import (
	"context"
	"fmt"
	"time"

	bookingRepo "campusbook/database/repository/booking"
	notificationRepo "campusbook/database/repository/notification"
	"campusbook/services/notification"
	"campusbook/utils"

	"go.uber.org/zap"
)

const (
	// DefaultInterval is how often the scan runs. The 1-minute firing
	// window below is tied to this period.
	DefaultInterval = 60 * time.Second
	// DefaultHorizon bounds how far ahead Pass A looks for bookings.
	DefaultHorizon = 2 * time.Hour
	// DefaultHeavyThreshold is the booking count that makes tomorrow a
	// heavy day for a faculty member.
	DefaultHeavyThreshold = 6
	// noShowRateThreshold is the recent no-show rate at which the extra
	// 2-hour tier kicks in.
	noShowRateThreshold = 0.3
	// noShowHistoryLimit caps how many terminal outcomes feed the rate.
	noShowHistoryLimit = 10
)

// Scheduler is the recurring scan that fires appointment reminders and
// faculty load suggestions. Both passes are idempotent: the notification
// ledger guarantees at-most-one firing per (student, tier, booking) and
// per (faculty, suggestion, date), however often or concurrently the
// scan runs.
type Scheduler struct {
	Bookings     bookingRepo.BookingRepository
	Ledger       notificationRepo.NotificationRepository
	Notification notification.NotificationService
	Clock        utils.Clock

	Interval       time.Duration
	Horizon        time.Duration
	HeavyThreshold int

	stop chan struct{}
}

func NewScheduler(
	bookings bookingRepo.BookingRepository,
	ledger notificationRepo.NotificationRepository,
	notifSvc notification.NotificationService,
	clock utils.Clock,
) *Scheduler {
	return &Scheduler{
		Bookings:       bookings,
		Ledger:         ledger,
		Notification:   notifSvc,
		Clock:          clock,
		Interval:       DefaultInterval,
		Horizon:        DefaultHorizon,
		HeavyThreshold: DefaultHeavyThreshold,
		stop:           make(chan struct{}),
	}
}

// Start launches the scan loop in the background. The first scan runs
// immediately; Stop halts the loop without interrupting a scan already
// in flight.
func (s *Scheduler) Start() {
	go func() {
		zap.L().Info("reminder scheduler started", zap.Duration("interval", s.Interval))
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.RunOnce(context.Background())
		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.stop:
				zap.L().Info("reminder scheduler stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

// RunOnce executes both passes. A failure or panic in one pass never
// blocks the other.
func (s *Scheduler) RunOnce(ctx context.Context) {
	safeRun(ctx, "smart reminders", s.ProcessSmartReminders)
	safeRun(ctx, "faculty load suggestions", s.ProcessFacultyLoadSuggestions)
}

func safeRun(ctx context.Context, label string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("scheduler pass panicked", zap.String("pass", label), zap.Any("panic", r))
		}
	}()
	if err := fn(ctx); err != nil {
		zap.L().Error("scheduler pass failed", zap.String("pass", label), zap.Error(err))
	}
}

// ProcessSmartReminders is Pass A: walk approved bookings starting within
// the horizon and fire whichever tiers have entered their window. A
// student's recent no-show behavior widens the tier set with an early
// 2-hour nudge.
func (s *Scheduler) ProcessSmartReminders(ctx context.Context) error {
	now := s.Clock.Now()
	horizon := now.Add(s.Horizon)

	upcoming, err := s.Bookings.FindApprovedInWindow(now, horizon)
	if err != nil {
		return fmt.Errorf("failed to load upcoming bookings: %w", err)
	}

	// One rate lookup per student per scan, not per booking.
	rateCache := make(map[string]float64)

	for i := range upcoming {
		b := &upcoming[i]

		minutesToStart := int(b.Slot.StartTime.Sub(now).Minutes())
		if minutesToStart < 0 {
			continue
		}

		rate, ok := rateCache[b.StudentID]
		if !ok {
			rate, err = s.studentNoShowRate(b.StudentID)
			if err != nil {
				zap.L().Warn("no-show rate lookup failed; assuming 0",
					zap.String("student", b.StudentID), zap.Error(err))
				rate = 0
			}
			rateCache[b.StudentID] = rate
		}

		tiers := []int{60, 10}
		if rate >= noShowRateThreshold {
			tiers = append([]int{120}, tiers...)
		}

		for _, tier := range tiers {
			if !shouldFire(minutesToStart, tier) {
				continue
			}

			already, err := s.Ledger.ReminderExists(b.StudentID, notification.ReminderType(tier), b.Booking.ID)
			if err != nil {
				zap.L().Warn("reminder ledger check failed",
					zap.String("booking", b.Booking.ID), zap.Int("tier", tier), zap.Error(err))
				continue
			}
			if already {
				continue
			}

			fired, err := s.Notification.SendReminder(ctx, b, tier)
			if err != nil {
				zap.L().Warn("reminder dispatch failed",
					zap.String("booking", b.Booking.ID), zap.Int("tier", tier), zap.Error(err))
				continue
			}
			if fired {
				zap.L().Info("reminder fired",
					zap.String("booking", b.Booking.ID),
					zap.String("student", b.StudentID),
					zap.Int("tier", tier))
			}
		}
	}
	return nil
}

// shouldFire reports whether the tier's 1-minute firing window contains
// minutesToStart. The window matches the scan period so a tier fires in
// exactly one scan.
func shouldFire(minutesToStart, tier int) bool {
	return minutesToStart <= tier && minutesToStart >= tier-1
}

// studentNoShowRate computes the no-show fraction over the student's
// last terminal outcomes; 0 with no history.
func (s *Scheduler) studentNoShowRate(studentID string) (float64, error) {
	recent, err := s.Bookings.RecentTerminalOutcomes(studentID, noShowHistoryLimit)
	if err != nil {
		return 0, err
	}
	if len(recent) == 0 {
		return 0, nil
	}

	noShows := 0
	for i := range recent {
		if recent[i].NoShowOutcome() {
			noShows++
		}
	}
	return float64(noShows) / float64(len(recent)), nil
}

// ProcessFacultyLoadSuggestions is Pass B: count tomorrow's approved
// bookings per faculty member and suggest opening more slots to anyone
// over the threshold, at most once per day.
func (s *Scheduler) ProcessFacultyLoadSuggestions(ctx context.Context) error {
	now := s.Clock.Now()
	tomorrowStart := startOfDay(now.AddDate(0, 0, 1))
	tomorrowEnd := startOfDay(now.AddDate(0, 0, 2))

	rows, err := s.Bookings.FindApprovedInWindow(tomorrowStart, tomorrowEnd)
	if err != nil {
		return fmt.Errorf("failed to load tomorrow's bookings: %w", err)
	}

	counts := make(map[string]int)
	for i := range rows {
		counts[rows[i].FacultyID]++
	}

	threshold := s.HeavyThreshold
	if threshold <= 0 {
		threshold = DefaultHeavyThreshold
	}
	dateKey := tomorrowStart.Format("2006-01-02")

	for facultyID, count := range counts {
		if count < threshold {
			continue
		}

		exists, err := s.Ledger.SuggestionExists(facultyID, "open_more_slots", dateKey)
		if err != nil {
			zap.L().Warn("suggestion ledger check failed",
				zap.String("faculty", facultyID), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		fired, err := s.Notification.SuggestMoreSlots(ctx, facultyID, dateKey, count)
		if err != nil {
			zap.L().Warn("load suggestion dispatch failed",
				zap.String("faculty", facultyID), zap.Error(err))
			continue
		}
		if fired {
			zap.L().Info("load suggestion fired",
				zap.String("faculty", facultyID),
				zap.String("date", dateKey),
				zap.Int("count", count))
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
