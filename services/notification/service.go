package notification

import (
	"context"
	"fmt"
	"time"

	"campusbook/database/repository/notification"
	"campusbook/database/repository/user"
	"campusbook/models"
	"campusbook/services/realtime"
	"campusbook/services/tasks"
	"campusbook/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo   notificationRepo.NotificationRepository
	Users  userRepo.UserRepository
	Events realtime.Emitter
	Queue  *asynq.Client
	Clock  utils.Clock
}

func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	users userRepo.UserRepository,
	events realtime.Emitter,
	queue *asynq.Client,
	clock utils.Clock,
) *DefaultNotificationService {
	return &DefaultNotificationService{
		Repo:   repo,
		Users:  users,
		Events: events,
		Queue:  queue,
		Clock:  clock,
	}
}

func (s *DefaultNotificationService) Create(
	ctx context.Context,
	userID, notifType, title, body string,
	data models.NotificationData,
) (*models.Notification, error) {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.Create(n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.emitNotification(ctx, n)
	return n, nil
}

// emitNotification publishes the realtime "notification" event; failures
// are logged only.
func (s *DefaultNotificationService) emitNotification(ctx context.Context, n *models.Notification) {
	payload := map[string]string{"type": n.Type}
	if n.Data.BookingID != "" {
		payload["bookingId"] = n.Data.BookingID
	}
	if n.Data.Date != "" {
		payload["date"] = n.Data.Date
	}
	if err := s.Events.Emit(ctx, n.UserID, "notification", payload); err != nil {
		zap.L().Warn("notification event emit failed", zap.String("type", n.Type), zap.Error(err))
	}
}

// SendPush looks up the user's push token and sends an FCM message.
func (s *DefaultNotificationService) SendPush(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	u, err := s.Users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("SendPush: could not find user %s: %w", userID, err)
	}
	if u == nil || u.PushToken == "" || !u.NotificationsEnabled {
		return nil
	}

	msg := &messaging.Message{
		Token: u.PushToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendPush: failed to send FCM message: %w", err)
	}
	return nil
}

// record-then-push helper for the booking lifecycle notifications.
func (s *DefaultNotificationService) notify(
	ctx context.Context,
	userID, notifType, title, body string,
	data models.NotificationData,
) error {
	n, err := s.Create(ctx, userID, notifType, title, body, data)
	if err != nil {
		return err
	}

	pushData := map[string]string{"action": "view_booking"}
	if data.BookingID != "" {
		pushData["bookingId"] = data.BookingID
	}
	if err := s.SendPush(ctx, userID, title, body, pushData); err != nil {
		zap.L().Warn("push delivery failed", zap.String("type", notifType), zap.Error(err))
		return nil
	}
	if err := s.Repo.MarkSent(n.ID, s.Clock.Now()); err != nil {
		zap.L().Warn("failed to mark notification sent", zap.String("id", n.ID), zap.Error(err))
	}
	return nil
}

func (s *DefaultNotificationService) userName(userID, fallback string) string {
	u, err := s.Users.GetByID(userID)
	if err != nil || u == nil || u.Name == "" {
		return fallback
	}
	return u.Name
}

func (s *DefaultNotificationService) NotifyBookingCreated(ctx context.Context, b *models.Booking) error {
	title := "New Booking Request"
	body := fmt.Sprintf("You have a new booking request from %s", s.userName(b.StudentID, "a student"))
	return s.notify(ctx, b.FacultyID, models.NotifBookingCreated, title, body,
		models.NotificationData{BookingID: b.ID})
}

func (s *DefaultNotificationService) NotifyBookingApproved(ctx context.Context, b *models.Booking) error {
	title := "Booking Approved"
	body := fmt.Sprintf("Your booking with %s has been approved", s.userName(b.FacultyID, "your faculty"))
	return s.notify(ctx, b.StudentID, models.NotifBookingApproved, title, body,
		models.NotificationData{BookingID: b.ID})
}

func (s *DefaultNotificationService) NotifyBookingRejected(ctx context.Context, b *models.Booking, reason string) error {
	title := "Booking Rejected"
	body := reason
	if body == "" {
		body = fmt.Sprintf("Your booking with %s was rejected", s.userName(b.FacultyID, "your faculty"))
	}
	return s.notify(ctx, b.StudentID, models.NotifBookingRejected, title, body,
		models.NotificationData{BookingID: b.ID})
}

func (s *DefaultNotificationService) NotifyBookingCancelled(ctx context.Context, b *models.Booking, reason string) error {
	title := "Booking Cancelled"
	body := reason
	if body == "" {
		body = "Your appointment has been cancelled"
	}
	// Both parties hear about a cancellation.
	errStudent := s.notify(ctx, b.StudentID, models.NotifBookingCancelled, title, body,
		models.NotificationData{BookingID: b.ID})
	errFaculty := s.notify(ctx, b.FacultyID, models.NotifBookingCancelled, title, body,
		models.NotificationData{BookingID: b.ID})
	if errStudent != nil {
		return errStudent
	}
	return errFaculty
}

func (s *DefaultNotificationService) NotifySlotCancelled(ctx context.Context, b *models.Booking) error {
	title := "Appointment Slot Cancelled"
	body := fmt.Sprintf("%s cancelled the slot for your appointment", s.userName(b.FacultyID, "Your faculty"))
	return s.notify(ctx, b.StudentID, models.NotifSlotCancelled, title, body,
		models.NotificationData{BookingID: b.ID, SlotID: b.SlotID})
}

func (s *DefaultNotificationService) NotifyBulkNotice(ctx context.Context, studentID, facultyID, message string) error {
	title := "Message About Tomorrow's Appointment"
	body := message
	if body == "" {
		body = fmt.Sprintf("%s sent a notice about your appointment tomorrow", s.userName(facultyID, "Your faculty"))
	}
	return s.notify(ctx, studentID, models.NotifFacultyBulkNotice, title, body,
		models.NotificationData{Message: message})
}

// SendReminder fires one reminder tier. The ledger record is created
// first with an insert-if-absent, then delivery is queued; a failed or
// dropped delivery is never retried, so a tier fires at most once.
func (s *DefaultNotificationService) SendReminder(ctx context.Context, b *models.BookingWithSlot, minutesBefore int) (bool, error) {
	notifType := ReminderType(minutesBefore)
	title := fmt.Sprintf("Appointment in %d minutes", minutesBefore)
	if minutesBefore == 120 {
		title = "Appointment in 2 hours"
	}
	body := fmt.Sprintf("Your appointment with %s is starting soon", s.userName(b.FacultyID, "your faculty"))

	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    b.StudentID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		Data:      models.NotificationData{BookingID: b.Booking.ID},
		CreatedAt: s.Clock.Now(),
	}
	created, err := s.Repo.CreateIfAbsent(n)
	if err != nil {
		return false, fmt.Errorf("failed to record reminder: %w", err)
	}
	if !created {
		return false, nil
	}

	s.enqueuePush(n)
	s.emitNotification(ctx, n)
	return true, nil
}

func (s *DefaultNotificationService) SuggestMoreSlots(ctx context.Context, facultyID, dateKey string, count int) (bool, error) {
	title := "Busy Day Tomorrow"
	body := fmt.Sprintf("You have %d approved bookings tomorrow. Consider opening extra slots to reduce crowding.", count)

	n := &models.Notification{
		ID:     uuid.New().String(),
		UserID: facultyID,
		Type:   models.NotifFacultyLoadSuggestion,
		Title:  title,
		Body:   body,
		Data: models.NotificationData{
			Action: "open_more_slots",
			Date:   dateKey,
			Count:  fmt.Sprintf("%d", count),
		},
		CreatedAt: s.Clock.Now(),
	}
	created, err := s.Repo.CreateIfAbsent(n)
	if err != nil {
		return false, fmt.Errorf("failed to record load suggestion: %w", err)
	}
	if !created {
		return false, nil
	}

	s.enqueuePush(n)
	s.emitNotification(ctx, n)
	return true, nil
}

// enqueuePush hands delivery to the async worker. Failures are logged
// only; the notification record already marks the tier as fired.
func (s *DefaultNotificationService) enqueuePush(n *models.Notification) {
	if s.Queue == nil {
		return
	}
	payload := models.PushPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Body:           n.Body,
		Data: map[string]string{
			"type":      n.Type,
			"bookingId": n.Data.BookingID,
			"action":    n.Data.Action,
			"date":      n.Data.Date,
		},
	}
	task, opts, err := tasks.NewPushTask(payload, time.Time{})
	if err != nil {
		zap.L().Warn("failed to build push task", zap.String("id", n.ID), zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(task, opts...); err != nil {
		zap.L().Warn("failed to enqueue push task", zap.String("id", n.ID), zap.Error(err))
	}
}
