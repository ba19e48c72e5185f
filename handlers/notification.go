package handlers

import (
	"net/http"
	"strconv"
	"time"

	"campusbook/middleware"
	"campusbook/models"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
)

// NotificationReader is the read/ack surface of the notification store the
// HTTP edge needs. Writes go through the notification service.
type NotificationReader interface {
	FindByUser(userID string, limit int64) ([]models.Notification, error)
	MarkRead(id, userID string, at time.Time) error
}

const defaultNotificationLimit = 50

// ListNotificationsHandler returns the acting user's notifications, newest
// first.
func (hb *HandlerBundle) ListNotificationsHandler(c *gin.Context) {
	limit := int64(defaultNotificationLimit)
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	notifications, err := hb.Notifications.FindByUser(c.GetString(middleware.CtxUserID), limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(notifications), "notifications": notifications})
}

// MarkNotificationReadHandler marks one of the acting user's notifications
// as read.
func (hb *HandlerBundle) MarkNotificationReadHandler(c *gin.Context) {
	err := hb.Notifications.MarkRead(c.Param("id"), c.GetString(middleware.CtxUserID), time.Now())
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "not found", "notification not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// UpdatePushTokenHandler registers the device token push delivery targets.
func (hb *HandlerBundle) UpdatePushTokenHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := hb.Users.UpdatePushToken(c.GetString(middleware.CtxUserID), req.Token); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token updated"})
}
