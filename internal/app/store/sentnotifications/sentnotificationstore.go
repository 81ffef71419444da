// internal/app/store/sentnotifications/sentnotificationstore.go
package sentnotificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/notifyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the sent_notifications collection, the
// dispatcher's per-(event, recipient) de-duplication marker.
type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("sent notification not found")

	errEventNeeded = errors.New("event id is required")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sent_notifications")}
}

// Record inserts a queued marker for (m.EventID, m.RecipientID). When the
// marker already exists the stored one is returned with created=false, so
// redelivery of an event can tell which recipients are already handled.
func (s *Store) Record(ctx context.Context, m models.SentNotification) (models.SentNotification, bool, error) {
	if m.EventID == "" {
		return models.SentNotification{}, false, errEventNeeded
	}
	m.ID = primitive.NewObjectID()
	m.ReplyKey = uuid.NewString()
	m.Status = models.DeliveryQueued
	m.Attempts = 0
	m.LastError = ""
	m.SentAt = nil
	m.CreatedAt = time.Now().UTC()

	_, err := s.c.InsertOne(ctx, m)
	if err == nil {
		return m, true, nil
	}
	if !wafflemongo.IsDup(err) {
		return models.SentNotification{}, false, err
	}

	var existing models.SentNotification
	err = s.c.FindOne(ctx, bson.M{"event_id": m.EventID, "recipient_id": m.RecipientID}).Decode(&existing)
	if err != nil {
		return models.SentNotification{}, false, err
	}
	return existing, false, nil
}

// MarkAttempt counts one delivery attempt.
func (s *Store) MarkAttempt(ctx context.Context, id primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{"$inc": bson.M{"attempts": 1}})
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	return s.update(ctx, id, bson.M{
		"$set":   bson.M{"status": models.DeliverySent, "sent_at": now},
		"$unset": bson.M{"last_error": ""},
	})
}

// MarkFailed records that delivery gave up, with the last error seen.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, lastErr string) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{"status": models.DeliveryFailed, "last_error": lastErr}})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByReplyKey finds the marker a reply or unsubscribe link refers to.
func (s *Store) GetByReplyKey(ctx context.Context, key string) (models.SentNotification, error) {
	var m models.SentNotification
	if err := s.c.FindOne(ctx, bson.M{"reply_key": key}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SentNotification{}, ErrNotFound
		}
		return models.SentNotification{}, err
	}
	return m, nil
}

// ListByEvent returns every marker recorded for the event.
func (s *Store) ListByEvent(ctx context.Context, eventID string) ([]models.SentNotification, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SentNotification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan removes markers created before cutoff.
// Returns the number of documents deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
