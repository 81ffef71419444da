// internal/domain/models/workitem.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Work item kinds. The values double as subscribable kinds.
const (
	WorkItemIssue        = "issue"
	WorkItemMergeRequest = "merge_request"
	WorkItemCommit       = "commit"
)

// Work item states.
const (
	StateOpened = "opened"
	StateClosed = "closed"
	StateMerged = "merged"
)

// WorkItem is an issue, merge request or commit that notes can be attached
// to. Confidential only has meaning for issues. For commits, AuthorID is the
// committer and Title holds the commit SHA.
type WorkItem struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Kind         string               `bson:"kind" json:"kind"`
	ProjectID    primitive.ObjectID   `bson:"project_id" json:"project_id"`
	IID          int                  `bson:"iid,omitempty" json:"iid,omitempty"` // per-project number
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	AuthorID     primitive.ObjectID   `bson:"author_id" json:"author_id"`
	AssigneeID   *primitive.ObjectID  `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	Confidential bool                 `bson:"confidential" json:"confidential"`
	LabelIDs     []primitive.ObjectID `bson:"label_ids,omitempty" json:"label_ids,omitempty"`
	State        string               `bson:"state" json:"state"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
