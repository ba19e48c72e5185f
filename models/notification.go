package models

import "time"

// Notification types.
const (
	NotifBookingCreated        = "booking_created"
	NotifBookingApproved       = "booking_approved"
	NotifBookingRejected       = "booking_rejected"
	NotifBookingCancelled      = "booking_cancelled"
	NotifSlotCancelled         = "slot_cancelled"
	NotifReminder2Hour         = "reminder_2hour"
	NotifReminder1Hour         = "reminder_1hour"
	NotifReminder10Min         = "reminder_10min"
	NotifFacultyLoadSuggestion = "faculty_load_suggestion"
	NotifFacultyBulkNotice     = "faculty_bulk_notice"
	NotifAttendanceMarked      = "attendance_marked"
)

// NotificationData carries structured context for the client to act on.
type NotificationData struct {
	BookingID string `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	SlotID    string `bson:"slotId,omitempty" json:"slotId,omitempty"`
	Action    string `bson:"action,omitempty" json:"action,omitempty"`
	Date      string `bson:"date,omitempty" json:"date,omitempty"`
	Count     string `bson:"count,omitempty" json:"count,omitempty"`
	Message   string `bson:"message,omitempty" json:"message,omitempty"`
}

// Notification is a persisted in-app notification. For reminder types the
// (user, type, data.bookingId) tuple is unique and doubles as the dedup
// ledger: once a record exists, that reminder tier has fired for that
// booking and must never fire again.
type Notification struct {
	ID        string           `bson:"id" json:"id"`
	UserID    string           `bson:"user" json:"user"`
	Type      string           `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Body      string           `bson:"body" json:"body"`
	Data      NotificationData `bson:"data" json:"data"`
	Read      bool             `bson:"read" json:"read"`
	ReadAt    *time.Time       `bson:"readAt,omitempty" json:"readAt,omitempty"`
	Sent      bool             `bson:"sent" json:"sent"`
	SentAt    *time.Time       `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
}

// PushPayload is the asynq task payload for a queued push delivery.
type PushPayload struct {
	NotificationID string            `json:"notificationId"`
	UserID         string            `json:"userId"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data"`
}
