package notify

import (
	"fmt"

	"github.com/dalemusser/notifyhub/internal/domain/models"
)

// Level is a notification preference level.
//
// LevelGlobal is only valid as a stored setting; it means "use the next
// broader scope". Effective levels are always one of Disabled, Mention,
// Participating or Watch.
type Level string

const (
	LevelDisabled      Level = models.LevelDisabled
	LevelMention       Level = models.LevelMention
	LevelParticipating Level = models.LevelParticipating
	LevelWatch         Level = models.LevelWatch
	LevelGlobal        Level = models.LevelGlobal
)

// ParseLevel converts a stored or user-supplied value to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown notification level %q", s)
	}
	return l, nil
}

// Valid reports whether l is one of the known levels, including Global.
func (l Level) Valid() bool {
	return models.ValidLevel(string(l))
}

// rank orders the effective levels. Global and unknown values rank 0.
func (l Level) rank() int {
	switch l {
	case LevelDisabled:
		return 1
	case LevelMention:
		return 2
	case LevelParticipating:
		return 3
	case LevelWatch:
		return 4
	}
	return 0
}

// AtLeast reports whether l is an effective level at or above o.
func (l Level) AtLeast(o Level) bool {
	return l.rank() > 0 && l.rank() >= o.rank()
}

func (l Level) String() string { return string(l) }
