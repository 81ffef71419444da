// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project visibility levels.
const (
	VisibilityPrivate  = "private"
	VisibilityInternal = "internal"
	VisibilityPublic   = "public"
)

// Project is the scope work items live in. GroupID is nil for projects in a
// personal namespace.
type Project struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	Name       string              `bson:"name" json:"name"`
	NameCI     string              `bson:"name_ci" json:"name_ci"`
	Path       string              `bson:"path" json:"path"` // full path, e.g. "group/project"
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	Visibility string              `bson:"visibility" json:"visibility"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsPrivate reports whether only team members may read the project.
func (p Project) IsPrivate() bool {
	return p.Visibility == VisibilityPrivate
}
