// internal/domain/models/sentnotification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery statuses for a SentNotification.
const (
	DeliveryQueued = "queued"
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// SentNotification is the dispatcher's de-duplication marker. Exactly one
// document exists per (event_id, recipient_id), which makes redelivery of the
// same event a no-op for recipients already recorded.
type SentNotification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID     string              `bson:"event_id" json:"event_id"`
	EventKind   string              `bson:"event_kind" json:"event_kind"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	ProjectID   primitive.ObjectID  `bson:"project_id" json:"project_id"`
	ItemID      *primitive.ObjectID `bson:"item_id,omitempty" json:"item_id,omitempty"`
	ItemType    string              `bson:"item_type,omitempty" json:"item_type,omitempty"`
	ReplyKey    string              `bson:"reply_key" json:"reply_key"`
	Status      string              `bson:"status" json:"status"`
	Attempts    int                 `bson:"attempts" json:"attempts"`
	LastError   string              `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	SentAt      *time.Time          `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}
