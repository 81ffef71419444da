// internal/app/store/users/userstore.go
package userstore

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
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateHandle is returned when another user already has the handle.
	ErrDuplicateHandle = errors.New("a user with this handle already exists")
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")

	errHandleNeeded = errors.New("handle is required")
	errBadRole      = errors.New(`role must be "admin"|"user"`)
	errBadStatus    = errors.New(`status must be "active"|"blocked"`)
	errBadLevel     = errors.New(`notification level must be "disabled"|"mention"|"participating"|"watch"|"global"`)
)

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Handle = normalize.Handle(u.Handle)
	u.HandleCI = text.Fold(u.Handle)
	u.FullName = normalize.Name(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	u.NotificationLevel = normalize.Level(u.NotificationLevel)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}

	if u.Handle == "" {
		return models.User{}, errHandleNeeded
	}
	if u.Role != models.RoleAdmin && u.Role != models.RoleUser {
		return models.User{}, errBadRole
	}
	if !validStatus(u.Status) {
		return models.User{}, errBadStatus
	}
	if u.NotificationLevel != "" && !models.ValidLevel(u.NotificationLevel) {
		return models.User{}, errBadLevel
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateHandle
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByHandle looks up a user by case-insensitive handle.
func (s *Store) GetByHandle(ctx context.Context, handle string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"handle_ci": text.Fold(normalize.Handle(handle))}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// ListByHandles returns the users matching any of the handles
// (case-insensitive). Unknown handles are skipped.
func (s *Store) ListByHandles(ctx context.Context, handles []string) ([]models.User, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	folded := make([]string, 0, len(handles))
	for _, h := range handles {
		if h = normalize.Handle(h); h != "" {
			folded = append(folded, text.Fold(h))
		}
	}
	return s.find(ctx, bson.M{"handle_ci": bson.M{"$in": folded}})
}

// ListByIDs returns the users with the given ids. Unknown ids are skipped.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetNotificationLevel stores the account-wide default level. An empty
// level clears it.
func (s *Store) SetNotificationLevel(ctx context.Context, id primitive.ObjectID, level string) error {
	level = normalize.Level(level)
	if level != "" && !models.ValidLevel(level) {
		return errBadLevel
	}
	return s.update(ctx, id, bson.M{"notification_level": level})
}

// SetStatus blocks or reactivates a user.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if !validStatus(status) {
		return errBadStatus
	}
	return s.update(ctx, id, bson.M{"status": status})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IsAdmin reports whether the user exists and has the admin role.
func (s *Store) IsAdmin(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": id, "role": models.RoleAdmin}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func validStatus(s string) bool {
	return s == models.UserStatusActive || s == models.UserStatusBlocked
}
