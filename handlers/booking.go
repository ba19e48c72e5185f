package handlers

import (
	"net/http"

	"campusbook/middleware"
	"campusbook/models"

	"github.com/gin-gonic/gin"
)

// CreateBookingHandler requests a seat on a slot for the acting student.
func (hb *HandlerBundle) CreateBookingHandler(c *gin.Context) {
	var req struct {
		SlotID  string `json:"slotId" binding:"required"`
		Purpose string `json:"purpose" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	booking, err := hb.BookingService.Create(c.Request.Context(), c.GetString(middleware.CtxUserID), req.SlotID, req.Purpose)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// ApproveBookingHandler approves a pending booking on the faculty member's
// slot.
func (hb *HandlerBundle) ApproveBookingHandler(c *gin.Context) {
	booking, err := hb.BookingService.Approve(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// RejectBookingHandler rejects a pending booking, freeing its seat.
func (hb *HandlerBundle) RejectBookingHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	booking, err := hb.BookingService.Reject(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelBookingHandler cancels a live booking. Students cancel their own,
// faculty cancel bookings on their slots, admins cancel anything.
func (hb *HandlerBundle) CancelBookingHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	isAdmin := c.GetString(middleware.CtxRole) == models.RoleAdmin
	booking, err := hb.BookingService.Cancel(c.Request.Context(), c.GetString(middleware.CtxUserID), isAdmin, c.Param("id"), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// MarkAttendanceHandler records whether the student showed up for an
// approved booking.
func (hb *HandlerBundle) MarkAttendanceHandler(c *gin.Context) {
	var req struct {
		Outcome string `json:"outcome" binding:"required,oneof=attended no-show"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	booking, err := hb.BookingService.MarkAttendance(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"), req.Outcome, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GetBookingHandler fetches one booking visible to the actor.
func (hb *HandlerBundle) GetBookingHandler(c *gin.Context) {
	booking, err := hb.BookingService.GetByID(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListMyBookingsHandler lists the acting student's bookings.
func (hb *HandlerBundle) ListMyBookingsHandler(c *gin.Context) {
	bookings, err := hb.BookingService.ListForStudent(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(bookings), "bookings": bookings})
}

// ListFacultyBookingsHandler lists bookings across the acting faculty
// member's slots.
func (hb *HandlerBundle) ListFacultyBookingsHandler(c *gin.Context) {
	bookings, err := hb.BookingService.ListForFaculty(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(bookings), "bookings": bookings})
}

// TomorrowSummaryHandler reports the faculty member's approved load for
// tomorrow.
func (hb *HandlerBundle) TomorrowSummaryHandler(c *gin.Context) {
	summary, err := hb.BookingService.TomorrowSummary(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// NotifyTomorrowStudentsHandler bulk-notifies every student holding an
// approved booking with the faculty member tomorrow.
func (hb *HandlerBundle) NotifyTomorrowStudentsHandler(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	notified, err := hb.BookingService.NotifyTomorrowStudents(c.Request.Context(), c.GetString(middleware.CtxUserID), req.Message)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Students notified", "notified": notified})
}
