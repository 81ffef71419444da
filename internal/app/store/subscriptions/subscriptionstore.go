// internal/app/store/subscriptions/subscriptionstore.go
package subscriptionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/notifyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the subscriptions collection. Writes are
// upserts keyed by (kind, subject, user), so the last write wins.
type Store struct {
	c *mongo.Collection
}

var errBadKind = errors.New(`subscribable type must be "issue"|"merge_request"|"commit"|"label"`)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("subscriptions")}
}

// ValidKind reports whether kind can be subscribed to.
func ValidKind(kind string) bool {
	switch kind {
	case models.SubscribableIssue, models.SubscribableMergeRequest,
		models.SubscribableCommit, models.SubscribableLabel:
		return true
	}
	return false
}

// Set records an explicit subscribe (true) or unsubscribe (false).
func (s *Store) Set(ctx context.Context, kind string, subjectID, userID primitive.ObjectID, subscribed bool) error {
	if !ValidKind(kind) {
		return errBadKind
	}
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"subscribable_type": kind, "subscribable_id": subjectID, "user_id": userID},
		bson.M{
			"$set":         bson.M{"subscribed": subscribed, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true))
	return err
}

// Get returns the user's explicit flag on the subject, or nil when there is
// none.
func (s *Store) Get(ctx context.Context, kind string, subjectID, userID primitive.ObjectID) (*bool, error) {
	var sub models.Subscription
	err := s.c.FindOne(ctx, bson.M{
		"subscribable_type": kind,
		"subscribable_id":   subjectID,
		"user_id":           userID,
	}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub.Subscribed, nil
}

// Subscribers returns the users with subscribed=true on the subject.
func (s *Store) Subscribers(ctx context.Context, kind string, subjectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"subscribable_id":   subjectID,
		"subscribable_type": kind,
		"subscribed":        true,
	}, options.Find().SetProjection(bson.M{"user_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			UserID primitive.ObjectID `bson:"user_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.UserID)
	}
	return ids, cur.Err()
}
