package notify

import "strings"

// Reason records why a candidate entered the pool. A candidate can hold
// several reasons at once.
type Reason uint8

const (
	ReasonWatched Reason = 1 << iota
	ReasonParticipant
	ReasonMentioned
	ReasonBroadcast
	ReasonSubscribed
)

const anyReason = ReasonWatched | ReasonParticipant | ReasonMentioned | ReasonBroadcast | ReasonSubscribed

// sufficient lists, per effective level, the reasons that keep a candidate
// in the pool. Disabled has none: no mention, subscription or watch
// overrides it.
var sufficient = map[Level]Reason{
	LevelWatch:         anyReason,
	LevelParticipating: ReasonParticipant | ReasonMentioned | ReasonBroadcast | ReasonSubscribed,
	LevelMention:       ReasonMentioned | ReasonBroadcast | ReasonSubscribed,
	LevelDisabled:      0,
}

// Allows reports whether reasons are enough for a user at level l.
func (l Level) Allows(reasons Reason) bool {
	return reasons&sufficient[l] != 0
}

func (r Reason) String() string {
	names := []struct {
		bit  Reason
		name string
	}{
		{ReasonWatched, "watched"},
		{ReasonParticipant, "participant"},
		{ReasonMentioned, "mentioned"},
		{ReasonBroadcast, "broadcast"},
		{ReasonSubscribed, "subscribed"},
	}
	var parts []string
	for _, n := range names {
		if r&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
