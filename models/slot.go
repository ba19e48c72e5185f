package models

import "time"

// Slot status values.
const (
	SlotStatusActive    = "active"
	SlotStatusCancelled = "cancelled"
	SlotStatusCompleted = "completed"
)

// Slot represents a faculty member's bookable time window with finite capacity.
type Slot struct {
	ID          string    `bson:"id" json:"id"`
	FacultyID   string    `bson:"facultyId" json:"facultyId"`
	StartTime   time.Time `bson:"startTime" json:"startTime"`
	EndTime     time.Time `bson:"endTime" json:"endTime"`
	Location    string    `bson:"location" json:"location"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Capacity    int       `bson:"capacity" json:"capacity"`       // total seats, >= 1
	BookedCount int       `bson:"bookedCount" json:"bookedCount"` // live seats taken, floor 0
	Status      string    `bson:"status" json:"status"`
	IsAvailable bool      `bson:"isAvailable" json:"isAvailable"` // bookedCount < capacity && status == active
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Available reports whether the slot can still take bookings.
func (s *Slot) Available() bool {
	return s.BookedCount < s.Capacity && s.Status == SlotStatusActive
}

// Recompute refreshes the derived isAvailable flag after a mutation.
func (s *Slot) Recompute() {
	s.IsAvailable = s.Available()
}

// CreateSlotInput carries the fields a faculty member supplies when opening a slot.
type CreateSlotInput struct {
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
	Location  string    `json:"location" binding:"required"`
	Notes     string    `json:"notes"`
	Capacity  int       `json:"capacity"`
}

// UpdateSlotInput carries the mutable slot fields. Nil means "leave unchanged".
type UpdateSlotInput struct {
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Location  *string    `json:"location"`
	Notes     *string    `json:"notes"`
	Capacity  *int       `json:"capacity"`
}
