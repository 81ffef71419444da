package notify

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipantBuilder computes the participants of an item. Nothing is
// cached between calls because notes can be added between resolutions.
type ParticipantBuilder struct {
	directory TeamDirectory
	mentions  MentionExtractor
}

// NewParticipantBuilder returns a builder using dir for handle lookups and
// ext for mention extraction.
func NewParticipantBuilder(dir TeamDirectory, ext MentionExtractor) *ParticipantBuilder {
	return &ParticipantBuilder{directory: dir, mentions: ext}
}

// Participants returns the author, the current assignee, the previous
// assignee when one is given, every note author, and every team member or
// admin referenced by a non-broadcast mention in the item's text or notes.
func (b *ParticipantBuilder) Participants(ctx context.Context, cache *AccessCache, item *Item, previousAssignee *primitive.ObjectID) (UserSet, error) {
	set := NewUserSet(item.AuthorID)
	if item.AssigneeID != nil {
		set.Add(*item.AssigneeID)
	}
	if previousAssignee != nil {
		set.Add(*previousAssignee)
	}

	texts := []string{item.Title, item.Description}
	for _, n := range item.Notes {
		set.Add(n.AuthorID)
		texts = append(texts, n.Body)
	}

	var handles []string
	for _, t := range texts {
		handles = append(handles, b.mentions.Extract(t).Handles...)
	}
	mentioned, err := b.resolveHandles(ctx, cache, item.ProjectID, handles)
	if err != nil {
		return nil, err
	}
	for id := range mentioned {
		set.Add(id)
	}
	return set, nil
}

// resolveHandles maps handles to users who are team members of the project
// or admins. Unknown handles and outsiders are dropped.
func (b *ParticipantBuilder) resolveHandles(ctx context.Context, cache *AccessCache, projectID primitive.ObjectID, handles []string) (UserSet, error) {
	out := NewUserSet()
	if len(handles) == 0 {
		return out, nil
	}
	users, err := b.directory.UsersByHandle(ctx, dedupeHandles(handles))
	if err != nil {
		return nil, unavailable("team directory", err)
	}
	for _, u := range users {
		ok, err := cache.MemberOrAdmin(ctx, projectID, u.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Add(u.ID)
		}
	}
	return out, nil
}

func dedupeHandles(handles []string) []string {
	seen := make(map[string]struct{}, len(handles))
	out := handles[:0:0]
	for _, h := range handles {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
