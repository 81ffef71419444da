// internal/domain/models/notificationsetting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification setting scopes.
const (
	SourceProject = "project"
	SourceGroup   = "group"
)

// NotificationSetting stores a user's notification level for one project or
// group. At most one document exists per (user_id, source_type, source_id).
//
// Level is one of "disabled", "mention", "participating", "watch" or
// "global" (defer to the next broader scope).
type NotificationSetting struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	SourceType string             `bson:"source_type" json:"source_type"` // project | group
	SourceID   primitive.ObjectID `bson:"source_id" json:"source_id"`
	Level      string             `bson:"level" json:"level"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// Stored notification levels.
const (
	LevelDisabled      = "disabled"
	LevelMention       = "mention"
	LevelParticipating = "participating"
	LevelWatch         = "watch"
	LevelGlobal        = "global"
)

// ValidLevel reports whether s is a storable notification level.
func ValidLevel(s string) bool {
	switch s {
	case LevelDisabled, LevelMention, LevelParticipating, LevelWatch, LevelGlobal:
		return true
	}
	return false
}
