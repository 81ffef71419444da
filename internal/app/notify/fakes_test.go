package notify

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errDown = errors.New("backend down")

type subKey struct {
	subject primitive.ObjectID
	kind    SubjectKind
	user    primitive.ObjectID
}

type settingKey struct {
	user  primitive.ObjectID
	scope Scope
}

// world is an in-memory implementation of every collaborator.
type world struct {
	users    map[primitive.ObjectID]User
	tiers    map[primitive.ObjectID]map[primitive.ObjectID]Tier
	settings map[settingKey]Level
	subs     map[subKey]bool

	failDirectory bool
	failAccess    bool
	failSubs      bool
	failSettings  bool

	tierCalls int
}

func newWorld() *world {
	return &world{
		users:    make(map[primitive.ObjectID]User),
		tiers:    make(map[primitive.ObjectID]map[primitive.ObjectID]Tier),
		settings: make(map[settingKey]Level),
		subs:     make(map[subKey]bool),
	}
}

func (w *world) user(handle string) User {
	u := User{ID: primitive.NewObjectID(), Handle: handle}
	w.users[u.ID] = u
	return u
}

func (w *world) update(u User) { w.users[u.ID] = u }

func (w *world) member(project primitive.ObjectID, u User, t Tier) {
	if w.tiers[project] == nil {
		w.tiers[project] = make(map[primitive.ObjectID]Tier)
	}
	w.tiers[project][u.ID] = t
}

func (w *world) projectLevel(u User, project primitive.ObjectID, l Level) {
	w.settings[settingKey{u.ID, Scope{Kind: ScopeProject, ID: project}}] = l
}

func (w *world) groupLevel(u User, group primitive.ObjectID, l Level) {
	w.settings[settingKey{u.ID, Scope{Kind: ScopeGroup, ID: group}}] = l
}

func (w *world) subscribe(subject primitive.ObjectID, kind SubjectKind, u User, on bool) {
	w.subs[subKey{subject, kind, u.ID}] = on
}

func (w *world) MembersOf(_ context.Context, project primitive.ObjectID) ([]User, error) {
	if w.failDirectory {
		return nil, errDown
	}
	var out []User
	for id := range w.tiers[project] {
		out = append(out, w.users[id])
	}
	return out, nil
}

func (w *world) UsersByHandle(_ context.Context, handles []string) ([]User, error) {
	if w.failDirectory {
		return nil, errDown
	}
	var out []User
	for _, h := range handles {
		for _, u := range w.users {
			if strings.EqualFold(u.Handle, h) {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (w *world) UsersByID(_ context.Context, ids []primitive.ObjectID) ([]User, error) {
	if w.failDirectory {
		return nil, errDown
	}
	var out []User
	for _, id := range ids {
		if u, ok := w.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (w *world) TeamAccessLevel(_ context.Context, project, user primitive.ObjectID) (Tier, error) {
	w.tierCalls++
	if w.failAccess {
		return TierNone, errDown
	}
	return w.tiers[project][user], nil
}

func (w *world) IsAdmin(_ context.Context, user primitive.ObjectID) (bool, error) {
	if w.failAccess {
		return false, errDown
	}
	return w.users[user].Admin, nil
}

func (w *world) IsConfidential(_ context.Context, item *Item) (bool, error) {
	if w.failAccess {
		return false, errDown
	}
	return item.Kind == ItemIssue && item.Confidential, nil
}

func (w *world) Get(_ context.Context, subject primitive.ObjectID, kind SubjectKind, user primitive.ObjectID) (*bool, error) {
	if w.failSubs {
		return nil, errDown
	}
	v, ok := w.subs[subKey{subject, kind, user}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (w *world) Subscribers(_ context.Context, subject primitive.ObjectID, kind SubjectKind) ([]primitive.ObjectID, error) {
	if w.failSubs {
		return nil, errDown
	}
	var out []primitive.ObjectID
	for k, on := range w.subs {
		if on && k.subject == subject && k.kind == kind {
			out = append(out, k.user)
		}
	}
	return out, nil
}

func (w *world) Setting(_ context.Context, user primitive.ObjectID, scope Scope) (Level, bool, error) {
	if w.failSettings {
		return "", false, errDown
	}
	l, ok := w.settings[settingKey{user, scope}]
	return l, ok, nil
}

// wordMentions treats every whitespace-separated @word as a mention.
type wordMentions struct{}

func (wordMentions) Extract(text string) Mentions {
	var m Mentions
	for _, f := range strings.Fields(text) {
		if !strings.HasPrefix(f, "@") {
			continue
		}
		h := strings.TrimRight(strings.TrimPrefix(f, "@"), ".,;:!?")
		if h == "all" {
			m.Broadcast = true
			continue
		}
		if h != "" {
			m.Handles = append(m.Handles, h)
		}
	}
	return m
}

func (w *world) engine() *Engine {
	return NewEngine(Deps{
		Directory:     w,
		Access:        w,
		Subscriptions: w,
		Settings:      w,
		Mentions:      wordMentions{},
	}, nil)
}
