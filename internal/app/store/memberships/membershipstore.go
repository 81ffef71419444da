// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/notifyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("project_members")}
}

var (
	ErrDuplicateMembership = errors.New("user is already a member of this project")
	ErrNotFound            = errors.New("membership not found")

	errBadAccessLevel = errors.New("access level must be one of 10, 20, 30, 40, 50")
)

// Add creates a membership.
func (s *Store) Add(ctx context.Context, projectID, userID primitive.ObjectID, accessLevel int) error {
	if !models.ValidAccessLevel(accessLevel) {
		return errBadAccessLevel
	}
	now := time.Now().UTC()
	_, err := s.c.InsertOne(ctx, models.ProjectMember{
		ID:          primitive.NewObjectID(),
		ProjectID:   projectID,
		UserID:      userID,
		AccessLevel: accessLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// SetAccessLevel changes an existing membership's tier.
func (s *Store) SetAccessLevel(ctx context.Context, projectID, userID primitive.ObjectID, accessLevel int) error {
	if !models.ValidAccessLevel(accessLevel) {
		return errBadAccessLevel
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"project_id": projectID, "user_id": userID},
		bson.M{"$set": bson.M{"access_level": accessLevel, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the membership document for (projectID, userID).
func (s *Store) Remove(ctx context.Context, projectID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	return err
}

// AccessLevel returns the user's tier on the project, or 0 when the user has
// no membership.
func (s *Store) AccessLevel(ctx context.Context, projectID, userID primitive.ObjectID) (int, error) {
	var m models.ProjectMember
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return m.AccessLevel, nil
}

// ListByProject returns every membership on the project.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.ProjectMember, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ProjectMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserIDsByProject returns the ids of every team member of the project.
func (s *Store) UserIDsByProject(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ms, err := s.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// DeleteByProject removes all memberships for a project.
// Returns the number of documents deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
