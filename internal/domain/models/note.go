// internal/domain/models/note.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a comment attached to a work item.
//
// System notes are generated by the application (e.g. "mentioned in
// issue #4"). CrossReference marks the system notes that only record a
// reference from another item; those never notify anyone.
type Note struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	ProjectID      primitive.ObjectID `bson:"project_id" json:"project_id"`
	NoteableID     primitive.ObjectID `bson:"noteable_id" json:"noteable_id"`
	NoteableType   string             `bson:"noteable_type" json:"noteable_type"`
	AuthorID       primitive.ObjectID `bson:"author_id" json:"author_id"`
	Body           string             `bson:"body" json:"body"`
	System         bool               `bson:"system" json:"system"`
	CrossReference bool               `bson:"cross_reference,omitempty" json:"cross_reference,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
