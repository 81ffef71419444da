package notify

import (
	"context"

	"github.com/dalemusser/notifyhub/internal/app/policy/issuepolicy"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Stage names reported in Decision.DroppedAt.
const (
	StageUnknownUser = "unknown_user"
	StageBlocked     = "blocked"
	StageLevel       = "level"
	StageUnsubscribe = "unsubscribed"
	StageAccess      = "access"
	StageActor       = "actor"
)

// Deps are the collaborators the engine reads from.
type Deps struct {
	Directory     TeamDirectory
	Access        AccessLevelProvider
	Subscriptions SubscriptionStore
	Settings      SettingsSource
	Mentions      MentionExtractor
}

// Engine resolves the recipients of events. It holds no mutable state and
// may be shared by concurrent callers.
type Engine struct {
	deps         Deps
	prefs        *PreferenceResolver
	participants *ParticipantBuilder
	log          *zap.Logger
}

// NewEngine wires an engine over deps.
func NewEngine(deps Deps, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		deps:         deps,
		prefs:        NewPreferenceResolver(deps.Settings),
		participants: NewParticipantBuilder(deps.Directory, deps.Mentions),
		log:          logger.Named("notify"),
	}
}

// Preferences returns the engine's preference resolver.
func (e *Engine) Preferences() *PreferenceResolver { return e.prefs }

// Decision describes what happened to one candidate.
type Decision struct {
	UserID  primitive.ObjectID
	Handle  string
	Reasons Reason
	// Level is empty when the candidate was dropped before level lookup.
	Level Level
	// DroppedAt names the stage that removed the candidate. Empty means the
	// candidate is a recipient.
	DroppedAt string
}

// Resolve returns the recipients of ev using a fresh access cache.
func (e *Engine) Resolve(ctx context.Context, ev Event) (UserSet, error) {
	return e.ResolveBatch(ctx, NewAccessCache(e.deps.Access), ev)
}

// ResolveBatch is Resolve with a caller-owned cache, for resolving several
// related events against the same access snapshot.
func (e *Engine) ResolveBatch(ctx context.Context, cache *AccessCache, ev Event) (UserSet, error) {
	r, err := e.run(ctx, cache, ev)
	if err != nil {
		return nil, err
	}
	return r.recipients(), nil
}

// Explain resolves ev and reports every candidate with the reasons it was
// considered and, if removed, the stage that removed it.
func (e *Engine) Explain(ctx context.Context, ev Event) ([]Decision, error) {
	r, err := e.run(ctx, NewAccessCache(e.deps.Access), ev)
	if err != nil {
		return nil, err
	}
	ids := make(UserSet, len(r.pool))
	for id := range r.pool {
		ids.Add(id)
	}
	out := make([]Decision, 0, len(r.pool))
	for _, id := range ids.Sorted() {
		c := r.pool[id]
		out = append(out, Decision{
			UserID:    id,
			Handle:    c.user.Handle,
			Reasons:   c.reasons,
			Level:     c.level,
			DroppedAt: c.dropped,
		})
	}
	return out, nil
}

type candidate struct {
	reasons Reason
	user    User
	loaded  bool
	level   Level
	dropped string
}

// resolution is the working state of one Resolve call.
type resolution struct {
	e     *Engine
	ev    Event
	spec  eventSpec
	cache *AccessCache
	pool  map[primitive.ObjectID]*candidate
}

func (r *resolution) add(id primitive.ObjectID, reason Reason) *candidate {
	if id.IsZero() {
		return nil
	}
	c, ok := r.pool[id]
	if !ok {
		c = &candidate{}
		r.pool[id] = c
	}
	c.reasons |= reason
	return c
}

func (r *resolution) addUser(u User, reason Reason) {
	if c := r.add(u.ID, reason); c != nil && !c.loaded {
		c.user, c.loaded = u, true
	}
}

func (r *resolution) addAll(ids UserSet, reason Reason) {
	for id := range ids {
		r.add(id, reason)
	}
}

// live iterates the candidates not yet removed.
func (r *resolution) live(fn func(id primitive.ObjectID, c *candidate) error) error {
	for id, c := range r.pool {
		if c.dropped != "" {
			continue
		}
		if err := fn(id, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolution) recipients() UserSet {
	out := NewUserSet()
	for id, c := range r.pool {
		if c.dropped == "" {
			out.Add(id)
		}
	}
	return out
}

func (e *Engine) run(ctx context.Context, cache *AccessCache, ev Event) (*resolution, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	r := &resolution{
		e:     e,
		ev:    ev,
		spec:  eventSpecs[ev.Kind],
		cache: cache,
		pool:  make(map[primitive.ObjectID]*candidate),
	}

	if r.spec.note && ev.Note.System && ev.Note.CrossReference {
		e.log.Debug("cross reference note, no recipients",
			zap.String("event_id", ev.ID))
		return r, nil
	}

	stages := []func(context.Context) error{
		r.collectCandidates,
		r.gateLevels,
		r.applyUnsubscribes,
		r.filterAccess,
		r.excludeActor,
	}
	for _, stage := range stages {
		if err := stage(ctx); err != nil {
			e.log.Warn("recipient resolution aborted",
				zap.String("event_id", ev.ID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
			return nil, err
		}
	}

	e.log.Debug("recipients resolved",
		zap.String("event_id", ev.ID),
		zap.String("kind", string(ev.Kind)),
		zap.Int("candidates", len(r.pool)),
		zap.Int("recipients", r.recipients().Len()))
	return r, nil
}

// collectCandidates is Stage A: the union of watchers, participants,
// subscribers, mentioned users and, on broadcast, the whole team.
func (r *resolution) collectCandidates(ctx context.Context) error {
	ev := r.ev

	if r.spec.projectWide() {
		members, err := r.members(ctx)
		if err != nil {
			return err
		}
		for _, m := range members {
			r.addUser(m, ReasonParticipant)
		}
		return nil
	}

	if r.spec.labels == labelsAdded {
		return r.addLabelSubscribers(ctx, ev.AddedLabels)
	}

	members, err := r.members(ctx)
	if err != nil {
		return err
	}
	for _, m := range members {
		level, err := r.e.prefs.Resolve(ctx, m, ev.Project)
		if err != nil {
			return err
		}
		if level == LevelWatch {
			r.addUser(m, ReasonWatched)
		}
	}

	item := r.itemWithEventNote()
	var prev *primitive.ObjectID
	if r.spec.reassignment {
		prev = ev.PreviousAssignee
	}
	participants, err := r.e.participants.Participants(ctx, r.cache, item, prev)
	if err != nil {
		return err
	}
	r.addAll(participants, ReasonParticipant)

	subs, err := r.e.deps.Subscriptions.Subscribers(ctx, item.ID, item.Kind.Subject())
	if err != nil {
		return unavailable("subscriptions", err)
	}
	for _, id := range subs {
		r.add(id, ReasonSubscribed)
	}
	if r.spec.labels == labelsAll {
		if err := r.addLabelSubscribers(ctx, item.LabelIDs); err != nil {
			return err
		}
	}

	if r.spec.mentionText != nil {
		m := r.e.deps.Mentions.Extract(r.spec.mentionText(ev))
		mentioned, err := r.e.participants.resolveHandles(ctx, r.cache, ev.Project.ID, m.Handles)
		if err != nil {
			return err
		}
		r.addAll(mentioned, ReasonMentioned)
		if m.Broadcast {
			for _, u := range members {
				r.addUser(u, ReasonBroadcast)
			}
		}
	}

	if r.spec.reassignment {
		if item.AssigneeID != nil {
			r.add(*item.AssigneeID, ReasonMentioned)
		}
		if ev.PreviousAssignee != nil {
			r.add(*ev.PreviousAssignee, ReasonMentioned)
		}
	}
	return nil
}

func (r *resolution) members(ctx context.Context) ([]User, error) {
	members, err := r.e.deps.Directory.MembersOf(ctx, r.ev.Project.ID)
	if err != nil {
		return nil, unavailable("team directory", err)
	}
	return members, nil
}

func (r *resolution) addLabelSubscribers(ctx context.Context, labels []primitive.ObjectID) error {
	for _, l := range labels {
		subs, err := r.e.deps.Subscriptions.Subscribers(ctx, l, SubjectLabel)
		if err != nil {
			return unavailable("subscriptions", err)
		}
		for _, id := range subs {
			r.add(id, ReasonSubscribed)
		}
	}
	return nil
}

// itemWithEventNote returns the event item with the event's note attached
// when the caller did not already include it.
func (r *resolution) itemWithEventNote() *Item {
	item := r.ev.Item
	n := r.ev.Note
	if n == nil {
		return item
	}
	for _, existing := range item.Notes {
		if !n.ID.IsZero() && existing.ID == n.ID {
			return item
		}
	}
	cp := *item
	cp.Notes = append(append([]Note(nil), item.Notes...), *n)
	return &cp
}

// gateLevels is Stage B. It also drops unknown and blocked users, who can
// never receive anything.
func (r *resolution) gateLevels(ctx context.Context) error {
	var missing []primitive.ObjectID
	for id, c := range r.pool {
		if !c.loaded {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		users, err := r.e.deps.Directory.UsersByID(ctx, missing)
		if err != nil {
			return unavailable("team directory", err)
		}
		for _, u := range users {
			if c, ok := r.pool[u.ID]; ok {
				c.user, c.loaded = u, true
			}
		}
	}

	return r.live(func(_ primitive.ObjectID, c *candidate) error {
		switch {
		case !c.loaded:
			c.dropped = StageUnknownUser
			return nil
		case c.user.Blocked:
			c.dropped = StageBlocked
			return nil
		}
		level, err := r.e.prefs.Resolve(ctx, c.user, r.ev.Project)
		if err != nil {
			return err
		}
		c.level = level
		if !level.Allows(c.reasons) {
			c.dropped = StageLevel
		}
		return nil
	})
}

// applyUnsubscribes is Stage C: an explicit opt-out on the item beats every
// inclusion reason.
func (r *resolution) applyUnsubscribes(ctx context.Context) error {
	item := r.ev.Item
	if item == nil {
		return nil
	}
	kind := item.Kind.Subject()
	return r.live(func(id primitive.ObjectID, c *candidate) error {
		sub, err := r.e.deps.Subscriptions.Get(ctx, item.ID, kind, id)
		if err != nil {
			return unavailable("subscriptions", err)
		}
		if sub != nil && !*sub {
			c.dropped = StageUnsubscribe
		}
		return nil
	})
}

// filterAccess is Stage D: only users who may read the item stay.
func (r *resolution) filterAccess(ctx context.Context) error {
	target := issuepolicy.Item{PrivateProject: r.ev.Project.Private}
	item := r.ev.Item
	if item != nil {
		conf, err := r.e.deps.Access.IsConfidential(ctx, item)
		if err != nil {
			return unavailable("access levels", err)
		}
		target.Confidential = conf
	}
	if !target.Confidential && !target.PrivateProject {
		return nil
	}

	return r.live(func(id primitive.ObjectID, c *candidate) error {
		tier, err := r.cache.Tier(ctx, r.ev.Project.ID, id)
		if err != nil {
			return err
		}
		admin, err := r.cache.IsAdmin(ctx, id)
		if err != nil {
			return err
		}
		reader := issuepolicy.Reader{Admin: admin, AccessLevel: int(tier)}
		if item != nil {
			reader.IsAuthor = item.AuthorID == id
			reader.IsAssignee = item.AssigneeID != nil && *item.AssigneeID == id
		}
		if !issuepolicy.CanRead(target, reader) {
			c.dropped = StageAccess
		}
		return nil
	})
}

// excludeActor is Stage E. A previous assignee stays eligible unless they
// are the actor.
func (r *resolution) excludeActor(context.Context) error {
	drop := func(id primitive.ObjectID) {
		if c, ok := r.pool[id]; ok && c.dropped == "" {
			c.dropped = StageActor
		}
	}
	drop(r.ev.Actor)
	if r.ev.Note != nil {
		drop(r.ev.Note.AuthorID)
	}
	return nil
}
