// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User statuses. Blocked users never receive notifications.
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// User is an account that can belong to project teams and receive
// notifications.
//
// NOTE:
//   - Team membership is not embedded on User.
//     Use the project_members collection to discover a user's projects.
//   - NotificationLevel is the account-wide default. Empty means
//     "participating".
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Handle            string             `bson:"handle" json:"handle"`
	HandleCI          string             `bson:"handle_ci" json:"handle_ci"` // lowercase, diacritics-stripped
	FullName          string             `bson:"full_name" json:"full_name"`
	Email             string             `bson:"email" json:"email"`
	Role              string             `bson:"role" json:"role"` // admin | user
	Status            string             `bson:"status,omitempty" json:"status,omitempty"`
	NotificationLevel string             `bson:"notification_level,omitempty" json:"notification_level,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the administrative override.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsBlocked reports whether the account is blocked.
func (u User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}
