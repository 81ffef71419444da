// internal/app/store/workitems/workitemstore.go
package workitemstore

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
	ErrNotFound = errors.New("work item not found")

	errBadKind      = errors.New(`kind must be "issue"|"merge_request"|"commit"`)
	errTitleNeeded  = errors.New("title is required")
	errBadState     = errors.New(`state must be "opened"|"closed"|"merged"`)
	errConfidential = errors.New("only issues can be confidential")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("work_items")}
}

// Create inserts a work item. The per-project IID is the next free number
// for the item's kind.
func (s *Store) Create(ctx context.Context, w models.WorkItem) (models.WorkItem, error) {
	switch w.Kind {
	case models.WorkItemIssue, models.WorkItemMergeRequest, models.WorkItemCommit:
	default:
		return models.WorkItem{}, errBadKind
	}
	w.Title = strings.TrimSpace(w.Title)
	if w.Title == "" {
		return models.WorkItem{}, errTitleNeeded
	}
	if w.Confidential && w.Kind != models.WorkItemIssue {
		return models.WorkItem{}, errConfidential
	}
	if w.State == "" {
		w.State = models.StateOpened
	}

	iid, err := s.nextIID(ctx, w.ProjectID, w.Kind)
	if err != nil {
		return models.WorkItem{}, err
	}
	now := time.Now().UTC()
	w.ID = primitive.NewObjectID()
	w.IID = iid
	w.CreatedAt = now
	w.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, w); err != nil {
		return models.WorkItem{}, err
	}
	return w, nil
}

func (s *Store) nextIID(ctx context.Context, projectID primitive.ObjectID, kind string) (int, error) {
	var last models.WorkItem
	err := s.c.FindOne(ctx,
		bson.M{"project_id": projectID, "kind": kind},
		options.FindOne().SetSort(bson.D{{Key: "iid", Value: -1}}).SetProjection(bson.M{"iid": 1}),
	).Decode(&last)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.IID + 1, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.WorkItem, error) {
	var w models.WorkItem
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.WorkItem{}, ErrNotFound
		}
		return models.WorkItem{}, err
	}
	return w, nil
}

// SetAssignee replaces the assignee (nil unassigns) and returns the
// previous one.
func (s *Store) SetAssignee(ctx context.Context, id primitive.ObjectID, assignee *primitive.ObjectID) (*primitive.ObjectID, error) {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if assignee != nil {
		update["$set"].(bson.M)["assignee_id"] = *assignee
	} else {
		update["$unset"] = bson.M{"assignee_id": ""}
	}
	before, err := s.updateReturningBefore(ctx, id, update)
	if err != nil {
		return nil, err
	}
	return before.AssigneeID, nil
}

// AddLabels attaches labels and returns the ones that were not already
// attached.
func (s *Store) AddLabels(ctx context.Context, id primitive.ObjectID, labels []primitive.ObjectID) ([]primitive.ObjectID, error) {
	before, err := s.updateReturningBefore(ctx, id, bson.M{
		"$addToSet": bson.M{"label_ids": bson.M{"$each": labels}},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return nil, err
	}
	had := make(map[primitive.ObjectID]bool, len(before.LabelIDs))
	for _, l := range before.LabelIDs {
		had[l] = true
	}
	var added []primitive.ObjectID
	for _, l := range labels {
		if !had[l] {
			had[l] = true
			added = append(added, l)
		}
	}
	return added, nil
}

// SetState changes the item state.
func (s *Store) SetState(ctx context.Context, id primitive.ObjectID, state string) error {
	switch state {
	case models.StateOpened, models.StateClosed, models.StateMerged:
	default:
		return errBadState
	}
	_, err := s.updateReturningBefore(ctx, id, bson.M{"$set": bson.M{"state": state, "updated_at": time.Now().UTC()}})
	return err
}

func (s *Store) updateReturningBefore(ctx context.Context, id primitive.ObjectID, update bson.M) (models.WorkItem, error) {
	var before models.WorkItem
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.WorkItem{}, ErrNotFound
		}
		return models.WorkItem{}, err
	}
	return before, nil
}
