package notify

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PreferenceResolver computes effective notification levels.
type PreferenceResolver struct {
	settings SettingsSource
}

// NewPreferenceResolver returns a resolver reading settings from src.
func NewPreferenceResolver(src SettingsSource) *PreferenceResolver {
	return &PreferenceResolver{settings: src}
}

// levelLookup returns a level and whether one is present.
type levelLookup func(ctx context.Context) (Level, bool, error)

// Resolve returns the effective level of u in project p. Lookups run from
// the narrowest scope outward and the first present, non-global value wins:
// project setting, group setting, account default, then Participating.
func (r *PreferenceResolver) Resolve(ctx context.Context, u User, p Project) (Level, error) {
	lookups := []levelLookup{r.stored(u.ID, Scope{Kind: ScopeProject, ID: p.ID})}
	if p.GroupID != nil {
		lookups = append(lookups, r.stored(u.ID, Scope{Kind: ScopeGroup, ID: *p.GroupID}))
	}
	lookups = append(lookups, accountDefault(u))
	return foldLevels(ctx, lookups)
}

func (r *PreferenceResolver) stored(userID primitive.ObjectID, scope Scope) levelLookup {
	return func(ctx context.Context) (Level, bool, error) {
		l, ok, err := r.settings.Setting(ctx, userID, scope)
		if err != nil {
			return "", false, unavailable("settings", err)
		}
		return l, ok, nil
	}
}

func accountDefault(u User) levelLookup {
	return func(context.Context) (Level, bool, error) {
		return u.DefaultLevel, u.DefaultLevel != "", nil
	}
}

// foldLevels short-circuits on the first lookup holding an effective level.
// Global, empty and unrecognized values fall through.
func foldLevels(ctx context.Context, lookups []levelLookup) (Level, error) {
	for _, lookup := range lookups {
		l, ok, err := lookup(ctx)
		if err != nil {
			return "", err
		}
		if ok && l.rank() > 0 {
			return l, nil
		}
	}
	return LevelParticipating, nil
}
