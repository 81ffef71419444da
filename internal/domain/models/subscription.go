// internal/domain/models/subscription.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscribable kinds.
const (
	SubscribableIssue        = "issue"
	SubscribableMergeRequest = "merge_request"
	SubscribableCommit       = "commit"
	SubscribableLabel        = "label"
)

// Subscription is an explicit opt-in (Subscribed=true) or opt-out
// (Subscribed=false) by a user on a work item or label. One document per
// (subscribable_type, subscribable_id, user_id); the last write wins.
type Subscription struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubscribableType string             `bson:"subscribable_type" json:"subscribable_type"`
	SubscribableID   primitive.ObjectID `bson:"subscribable_id" json:"subscribable_id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Subscribed       bool               `bson:"subscribed" json:"subscribed"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
