package notification

import (
	"context"

	"campusbook/models"
)

// NotificationService records in-app notifications and pushes them to
// devices. Everything here is best-effort from the caller's point of
// view: a failed delivery is logged, never retried by the caller, and
// never rolls back the notification record.
type NotificationService interface {
	// Create persists a notification record and emits a realtime event.
	Create(ctx context.Context, userID, notifType, title, body string, data models.NotificationData) (*models.Notification, error)
	// SendPush delivers a push message to the user's device via FCM.
	// Users without a token or with notifications disabled are skipped.
	SendPush(ctx context.Context, userID, title, body string, data map[string]string) error

	// Booking lifecycle notifications.
	NotifyBookingCreated(ctx context.Context, b *models.Booking) error
	NotifyBookingApproved(ctx context.Context, b *models.Booking) error
	NotifyBookingRejected(ctx context.Context, b *models.Booking, reason string) error
	NotifyBookingCancelled(ctx context.Context, b *models.Booking, reason string) error
	NotifySlotCancelled(ctx context.Context, b *models.Booking) error
	// NotifyBulkNotice delivers a faculty member's broadcast message to
	// one student ahead of tomorrow's appointments.
	NotifyBulkNotice(ctx context.Context, studentID, facultyID, message string) error

	// SendReminder fires one reminder tier for a booking. The ledger
	// insert doubles as the dedup guard: returns false without any
	// delivery attempt when this tier already fired for the booking.
	SendReminder(ctx context.Context, b *models.BookingWithSlot, minutesBefore int) (bool, error)
	// SuggestMoreSlots notifies a faculty member about a heavily booked
	// day. At most one suggestion per (faculty, date) ever fires.
	SuggestMoreSlots(ctx context.Context, facultyID, dateKey string, count int) (bool, error)
}

// ReminderType maps a lead-time tier in minutes to its notification type.
func ReminderType(minutesBefore int) string {
	switch minutesBefore {
	case 120:
		return models.NotifReminder2Hour
	case 60:
		return models.NotifReminder1Hour
	default:
		return models.NotifReminder10Min
	}
}
