package userRepo

import "campusbook/models"

// UserRepository defines the read-mostly user access the core needs:
// identity lookups and push-token updates. Account lifecycle is handled
// by the admin surface, not here.
type UserRepository interface {
	GetByID(id string) (*models.User, error)
	UpdatePushToken(id, token string) error
}
