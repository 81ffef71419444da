// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/notifyhub/internal/app/system/normalize"
	"github.com/dalemusser/notifyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicatePath = errors.New("a project with this path already exists")
	ErrNotFound      = errors.New("project not found")

	errPathNeeded    = errors.New("project path is required")
	errBadVisibility = errors.New(`visibility must be "private"|"internal"|"public"`)
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// Create inserts a project. Visibility defaults to private.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	p.Path = normalize.Path(p.Path)
	if p.Visibility == "" {
		p.Visibility = models.VisibilityPrivate
	}
	if p.Path == "" {
		return models.Project{}, errPathNeeded
	}
	if !validVisibility(p.Visibility) {
		return models.Project{}, errBadVisibility
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Project{}, ErrDuplicatePath
		}
		return models.Project{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetByPath(ctx context.Context, path string) (models.Project, error) {
	return s.findOne(ctx, bson.M{"path": normalize.Path(path)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}
	return p, nil
}

// Move changes the project's path and owning group, returning the project
// as it was before the move.
func (s *Store) Move(ctx context.Context, id primitive.ObjectID, newPath string, groupID *primitive.ObjectID) (models.Project, error) {
	newPath = normalize.Path(newPath)
	if newPath == "" {
		return models.Project{}, errPathNeeded
	}
	set := bson.M{"path": newPath, "updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if groupID != nil {
		set["group_id"] = *groupID
	} else {
		update["$unset"] = bson.M{"group_id": ""}
	}

	var before models.Project
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Project{}, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.Project{}, ErrDuplicatePath
		}
		return models.Project{}, err
	}
	return before, nil
}

func validVisibility(v string) bool {
	switch v {
	case models.VisibilityPrivate, models.VisibilityInternal, models.VisibilityPublic:
		return true
	}
	return false
}
