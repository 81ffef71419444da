// internal/app/store/notes/notestore.go
package notestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/notifyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("note not found")

	errBodyNeeded = errors.New("note body is required")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notes")}
}

// Create inserts a note. Only system notes may be cross references.
func (s *Store) Create(ctx context.Context, n models.Note) (models.Note, error) {
	if strings.TrimSpace(n.Body) == "" {
		return models.Note{}, errBodyNeeded
	}
	if !n.System {
		n.CrossReference = false
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Note, error) {
	var n models.Note
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Note{}, ErrNotFound
		}
		return models.Note{}, err
	}
	return n, nil
}

// ListByNoteable returns the notes on an item, oldest first.
func (s *Store) ListByNoteable(ctx context.Context, noteableID primitive.ObjectID) ([]models.Note, error) {
	cur, err := s.c.Find(ctx, bson.M{"noteable_id": noteableID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Note
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
