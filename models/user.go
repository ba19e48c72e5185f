package models

import "time"

// User roles.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// User holds the minimal account fields the core needs: identity, role,
// and the push delivery target. Account management lives elsewhere.
type User struct {
	ID                   string    `bson:"id" json:"id"`
	Name                 string    `bson:"name" json:"name"`
	Email                string    `bson:"email" json:"email"`
	Role                 string    `bson:"role" json:"role"`
	Department           string    `bson:"department,omitempty" json:"department,omitempty"`
	PushToken            string    `bson:"pushToken,omitempty" json:"-"`
	NotificationsEnabled bool      `bson:"notificationsEnabled" json:"notificationsEnabled"`
	CreatedAt            time.Time `bson:"createdAt" json:"createdAt"`
}
