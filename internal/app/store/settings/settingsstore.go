// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/notifyhub/internal/app/system/normalize"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the notification_settings collection.
// Each (user, source) pair has at most one document.
type Store struct {
	c *mongo.Collection
}

var (
	errBadSource = errors.New(`source type must be "project"|"group"`)
	errBadLevel  = errors.New(`level must be "disabled"|"mention"|"participating"|"watch"|"global"`)
)

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notification_settings")}
}

// Get returns the stored level for (user, source) and whether a setting
// exists.
func (s *Store) Get(ctx context.Context, userID primitive.ObjectID, sourceType string, sourceID primitive.ObjectID) (string, bool, error) {
	var ns models.NotificationSetting
	err := s.c.FindOne(ctx, bson.M{
		"user_id":     userID,
		"source_type": sourceType,
		"source_id":   sourceID,
	}).Decode(&ns)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return ns.Level, true, nil
}

// Save stores the level for (user, source).
// Uses upsert so it works whether the setting exists or not.
func (s *Store) Save(ctx context.Context, userID primitive.ObjectID, sourceType string, sourceID primitive.ObjectID, level string) error {
	level = normalize.Level(level)
	if sourceType != models.SourceProject && sourceType != models.SourceGroup {
		return errBadSource
	}
	if !models.ValidLevel(level) {
		return errBadLevel
	}

	now := time.Now().UTC()
	filter := bson.M{"user_id": userID, "source_type": sourceType, "source_id": sourceID}
	update := bson.M{
		"$set": bson.M{
			"level":      level,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Delete removes the setting for (user, source), which has the same effect
// as storing "global".
func (s *Store) Delete(ctx context.Context, userID primitive.ObjectID, sourceType string, sourceID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "source_type": sourceType, "source_id": sourceID})
	return err
}

// ListByUser returns every setting the user has stored.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.NotificationSetting, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "source_type", Value: 1}, {Key: "source_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.NotificationSetting
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
