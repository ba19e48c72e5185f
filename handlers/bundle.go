package handlers

import (
	"errors"
	"net/http"

	userRepo "campusbook/database/repository/user"
	"campusbook/services/booking"
	"campusbook/services/notification"
	"campusbook/services/slot"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the services the HTTP edge dispatches to.
type HandlerBundle struct {
	SlotService         slot.SlotService
	BookingService      booking.BookingService
	NotificationService notification.NotificationService
	Notifications       NotificationReader
	Users               userRepo.UserRepository
}

// writeServiceError maps domain errors onto HTTP statuses. Conflicts are
// user-correctable and come back as 409; state and window violations as
// 400.
func writeServiceError(c *gin.Context, err error) {
	if conflict, ok := booking.AsConflict(err); ok {
		utils.JSONError(c, http.StatusConflict, "booking conflict", conflict.Message)
		return
	}

	switch {
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrSlotNotFound),
		errors.Is(err, slot.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, booking.ErrForbidden),
		errors.Is(err, slot.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, slot.ErrInvalidState):
		utils.JSONError(c, http.StatusBadRequest, "invalid state", err.Error())
	case errors.Is(err, slot.ErrInvalidWindow):
		utils.JSONError(c, http.StatusBadRequest, "invalid time window", err.Error())
	case errors.Is(err, slot.ErrSlotOverlap),
		errors.Is(err, slot.ErrHasActiveBookings):
		utils.JSONError(c, http.StatusConflict, "slot conflict", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
