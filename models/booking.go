package models

import "time"

// Booking status values.
const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no-show"
)

// Attendance status values.
const (
	AttendancePending     = "pending"
	AttendanceCheckedIn   = "checked-in"
	AttendanceAttended    = "attended"
	AttendanceNoShow      = "no-show"
	AttendanceRescheduled = "rescheduled"
)

// Attendance tracks whether the student actually showed up.
type Attendance struct {
	Status      string     `bson:"status" json:"status"`
	CheckedInAt *time.Time `bson:"checkedInAt,omitempty" json:"checkedInAt,omitempty"`
	MarkedAt    *time.Time `bson:"markedAt,omitempty" json:"markedAt,omitempty"`
	MarkedBy    string     `bson:"markedBy,omitempty" json:"markedBy,omitempty"`
	Notes       string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Booking is a student's claim against a slot, progressing through an
// approval workflow. FacultyID is snapshotted from the slot at creation
// and never recomputed afterwards.
type Booking struct {
	ID                 string     `bson:"id" json:"id"`
	SlotID             string     `bson:"slotId" json:"slotId"`
	StudentID          string     `bson:"studentId" json:"studentId"`
	FacultyID          string     `bson:"facultyId" json:"facultyId"`
	Purpose            string     `bson:"purpose" json:"purpose"`
	Status             string     `bson:"status" json:"status"`
	RejectionReason    string     `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CancellationReason string     `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	ApprovedAt         *time.Time `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectedAt         *time.Time `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	CancelledAt        *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	Attendance         Attendance `bson:"attendance" json:"attendance"`

	// Waitlist support.
	IsWaitlisted         bool       `bson:"isWaitlisted" json:"isWaitlisted"`
	WaitlistPosition     int        `bson:"waitlistPosition,omitempty" json:"waitlistPosition,omitempty"`
	PromotedFromWaitlist bool       `bson:"promotedFromWaitlist" json:"promotedFromWaitlist"`
	PromotedAt           *time.Time `bson:"promotedAt,omitempty" json:"promotedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Live reports whether the booking still holds a seat on its slot.
func (b *Booking) Live() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusApproved
}

// NoShowOutcome reports whether the booking terminated as a no-show.
func (b *Booking) NoShowOutcome() bool {
	return b.Status == BookingStatusNoShow || b.Attendance.Status == AttendanceNoShow
}

// BookingWithSlot is a booking joined with its slot document, used where
// the slot's time window is needed alongside the booking.
type BookingWithSlot struct {
	Booking `bson:",inline"`
	Slot    Slot `bson:"slotDoc" json:"slot"`
}
