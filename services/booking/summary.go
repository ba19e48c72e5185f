package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// startOfDay truncates t to midnight in its location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// tomorrowWindow returns [startOfDay(now+1d), startOfDay(now+2d)).
func tomorrowWindow(now time.Time) (time.Time, time.Time) {
	start := startOfDay(now.AddDate(0, 0, 1))
	return start, startOfDay(now.AddDate(0, 0, 2))
}

// TomorrowSummary counts the faculty member's approved bookings for
// tomorrow and flags heavy days.
func (s *DefaultBookingService) TomorrowSummary(ctx context.Context, facultyID string) (*TomorrowSummary, error) {
	now := s.Clock.Now()
	from, to := tomorrowWindow(now)

	rows, err := s.Bookings.FindApprovedInWindow(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load tomorrow's bookings: %w", err)
	}

	count := 0
	for i := range rows {
		if rows[i].FacultyID == facultyID {
			count++
		}
	}

	threshold := s.HeavyThreshold
	if threshold <= 0 {
		threshold = 6
	}
	return &TomorrowSummary{
		Date:     from.Format("2006-01-02"),
		Count:    count,
		HeavyDay: count >= threshold,
	}, nil
}

// NotifyTomorrowStudents delivers one bulk notice per student with an
// approved booking tomorrow. A failure for one student does not stop the
// rest.
func (s *DefaultBookingService) NotifyTomorrowStudents(ctx context.Context, facultyID, message string) (int, error) {
	now := s.Clock.Now()
	from, to := tomorrowWindow(now)

	rows, err := s.Bookings.FindApprovedInWindow(from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to load tomorrow's bookings: %w", err)
	}

	seen := make(map[string]bool)
	notified := 0
	for i := range rows {
		b := &rows[i]
		if b.FacultyID != facultyID || seen[b.StudentID] {
			continue
		}
		seen[b.StudentID] = true

		if err := s.Notification.NotifyBulkNotice(ctx, b.StudentID, facultyID, message); err != nil {
			zap.L().Warn("bulk notice failed",
				zap.String("student", b.StudentID), zap.Error(err))
			continue
		}
		notified++
	}
	return notified, nil
}
