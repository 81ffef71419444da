package notify

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tierKey struct {
	project primitive.ObjectID
	user    primitive.ObjectID
}

// AccessCache memoizes access lookups for one batch of resolutions.
// Create a new cache (or call Reset) for each unrelated batch; it is not
// meant to outlive the data it was filled from. Failed lookups are not
// cached. Safe for concurrent use.
type AccessCache struct {
	provider AccessLevelProvider

	mu     sync.Mutex
	tiers  map[tierKey]Tier
	admins map[primitive.ObjectID]bool
}

// NewAccessCache returns an empty cache in front of provider.
func NewAccessCache(provider AccessLevelProvider) *AccessCache {
	return &AccessCache{
		provider: provider,
		tiers:    make(map[tierKey]Tier),
		admins:   make(map[primitive.ObjectID]bool),
	}
}

// Tier returns the user's access tier on the project.
func (c *AccessCache) Tier(ctx context.Context, projectID, userID primitive.ObjectID) (Tier, error) {
	key := tierKey{project: projectID, user: userID}
	c.mu.Lock()
	t, ok := c.tiers[key]
	c.mu.Unlock()
	if ok {
		return t, nil
	}

	t, err := c.provider.TeamAccessLevel(ctx, projectID, userID)
	if err != nil {
		return TierNone, unavailable("access levels", err)
	}
	c.mu.Lock()
	c.tiers[key] = t
	c.mu.Unlock()
	return t, nil
}

// IsAdmin reports whether the user holds the administrative override.
func (c *AccessCache) IsAdmin(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	c.mu.Lock()
	a, ok := c.admins[userID]
	c.mu.Unlock()
	if ok {
		return a, nil
	}

	a, err := c.provider.IsAdmin(ctx, userID)
	if err != nil {
		return false, unavailable("access levels", err)
	}
	c.mu.Lock()
	c.admins[userID] = a
	c.mu.Unlock()
	return a, nil
}

// MemberOrAdmin reports whether the user is on the project team or is an
// admin.
func (c *AccessCache) MemberOrAdmin(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	t, err := c.Tier(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if t.IsMember() {
		return true, nil
	}
	return c.IsAdmin(ctx, userID)
}

// Reset drops every cached answer.
func (c *AccessCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiers = make(map[tierKey]Tier)
	c.admins = make(map[primitive.ObjectID]bool)
}
