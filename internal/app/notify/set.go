package notify

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSet is a set of user ids. It is the engine's output type.
type UserSet map[primitive.ObjectID]struct{}

// NewUserSet returns a set holding ids.
func NewUserSet(ids ...primitive.ObjectID) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. The zero ObjectID is ignored.
func (s UserSet) Add(id primitive.ObjectID) {
	if id.IsZero() {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s UserSet) Has(id primitive.ObjectID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids.
func (s UserSet) Len() int { return len(s) }

// Sorted returns the ids ordered by their hex form.
func (s UserSet) Sorted() []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out
}

// Equal reports whether both sets hold the same ids.
func (s UserSet) Equal(o UserSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}
