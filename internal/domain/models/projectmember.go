// internal/domain/models/projectmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Access levels, ordered.
const (
	AccessGuest     = 10
	AccessReporter  = 20
	AccessDeveloper = 30
	AccessMaster    = 40
	AccessAdmin     = 50
)

// ProjectMember is the authoritative join between users and projects.
// Exactly one document per (project_id, user_id).
type ProjectMember struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	AccessLevel int                `bson:"access_level" json:"access_level"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidAccessLevel reports whether level is one of the known tiers.
// Anything else is treated as no membership.
func ValidAccessLevel(level int) bool {
	switch level {
	case AccessGuest, AccessReporter, AccessDeveloper, AccessMaster, AccessAdmin:
		return true
	}
	return false
}
