package handlers

import (
	"net/http"
	"time"

	"campusbook/middleware"
	"campusbook/models"

	"github.com/gin-gonic/gin"
)

// CreateSlotHandler opens a new bookable slot for the acting faculty member.
func (hb *HandlerBundle) CreateSlotHandler(c *gin.Context) {
	var in models.CreateSlotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	slot, err := hb.SlotService.Create(c.Request.Context(), c.GetString(middleware.CtxUserID), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slot": slot})
}

// UpdateSlotHandler edits an active slot the faculty member owns.
func (hb *HandlerBundle) UpdateSlotHandler(c *gin.Context) {
	var in models.UpdateSlotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	slot, err := hb.SlotService.Update(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

// CancelSlotHandler cancels a slot, cascading onto its live bookings.
func (hb *HandlerBundle) CancelSlotHandler(c *gin.Context) {
	isAdmin := c.GetString(middleware.CtxRole) == models.RoleAdmin
	slot, err := hb.SlotService.Cancel(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"), isAdmin)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot cancelled successfully", "slot": slot})
}

// DeleteSlotHandler removes a slot that has no live bookings.
func (hb *HandlerBundle) DeleteSlotHandler(c *gin.Context) {
	if err := hb.SlotService.Delete(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted successfully"})
}

// GetSlotHandler fetches one slot.
func (hb *HandlerBundle) GetSlotHandler(c *gin.Context) {
	slot, err := hb.SlotService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

// ListAvailableSlotsHandler lists bookable slots, optionally filtered by
// faculty member and date range.
func (hb *HandlerBundle) ListAvailableSlotsHandler(c *gin.Context) {
	var from, to time.Time
	if v := c.Query("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := c.Query("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}

	slots, err := hb.SlotService.ListAvailable(c.Request.Context(), c.Query("facultyId"), from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(slots), "slots": slots})
}

// ListMySlotsHandler lists the acting faculty member's slots.
func (hb *HandlerBundle) ListMySlotsHandler(c *gin.Context) {
	slots, err := hb.SlotService.ListForFaculty(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(slots), "slots": slots})
}
