package notificationRepo

import (
	"time"

	"campusbook/models"
)

// NotificationRepository persists in-app notifications and doubles as the
// reminder dedup ledger. CreateIfAbsent must behave as an atomic "insert
// if no equivalent record exists", enforced by unique indexes, so that
// overlapping scheduler runs cannot fire the same reminder twice.
type NotificationRepository interface {
	Create(n *models.Notification) error
	// CreateIfAbsent inserts n unless a record with the same dedup key
	// already exists. Returns false when the record was already present.
	CreateIfAbsent(n *models.Notification) (bool, error)
	// ReminderExists reports whether a reminder of the given type has
	// already been recorded for (user, booking).
	ReminderExists(userID, notifType, bookingID string) (bool, error)
	// SuggestionExists reports whether a load suggestion has already been
	// recorded for (user, action, dateKey).
	SuggestionExists(userID, action, dateKey string) (bool, error)
	// MarkSent flags the notification as delivered.
	MarkSent(id string, at time.Time) error
	// FindByUser lists a user's notifications, newest first.
	FindByUser(userID string, limit int64) ([]models.Notification, error)
	// MarkRead flags a notification as read by its owner.
	MarkRead(id, userID string, at time.Time) error
}
