package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPreferenceResolver_Resolve(t *testing.T) {
	group := primitive.NewObjectID()
	project := Project{ID: primitive.NewObjectID(), GroupID: &group}
	ungrouped := Project{ID: primitive.NewObjectID()}

	tests := []struct {
		name     string
		project  Project
		def      Level
		projectL Level
		groupL   Level
		want     Level
	}{
		{name: "nothing set", project: project, want: LevelParticipating},
		{name: "account default", project: project, def: LevelWatch, want: LevelWatch},
		{name: "group beats default", project: project, def: LevelWatch, groupL: LevelMention, want: LevelMention},
		{name: "project beats group", project: project, groupL: LevelMention, projectL: LevelDisabled, want: LevelDisabled},
		{name: "project global defers to group", project: project, groupL: LevelWatch, projectL: LevelGlobal, want: LevelWatch},
		{name: "both global defer to default", project: project, def: LevelMention, groupL: LevelGlobal, projectL: LevelGlobal, want: LevelMention},
		{name: "global default means participating", project: project, def: LevelGlobal, want: LevelParticipating},
		{name: "garbage setting ignored", project: project, projectL: Level("loud"), def: LevelDisabled, want: LevelDisabled},
		{name: "no group", project: ungrouped, def: LevelMention, want: LevelMention},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			u := w.user("u")
			u.DefaultLevel = tt.def
			if tt.projectL != "" {
				w.projectLevel(u, tt.project.ID, tt.projectL)
			}
			if tt.groupL != "" {
				w.groupLevel(u, group, tt.groupL)
			}

			got, err := NewPreferenceResolver(w).Resolve(context.Background(), u, tt.project)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreferenceResolver_Unavailable(t *testing.T) {
	w := newWorld()
	w.failSettings = true
	_, err := NewPreferenceResolver(w).Resolve(context.Background(), w.user("u"), Project{ID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
}

func TestLevel_Allows(t *testing.T) {
	tests := []struct {
		level   Level
		reasons Reason
		want    bool
	}{
		{LevelWatch, ReasonWatched, true},
		{LevelWatch, ReasonParticipant, true},
		{LevelParticipating, ReasonWatched, false},
		{LevelParticipating, ReasonParticipant, true},
		{LevelParticipating, ReasonBroadcast, true},
		{LevelMention, ReasonParticipant, false},
		{LevelMention, ReasonParticipant | ReasonMentioned, true},
		{LevelMention, ReasonSubscribed, true},
		{LevelMention, ReasonBroadcast, true},
		{LevelDisabled, anyReason, false},
		{LevelGlobal, anyReason, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.Allows(tt.reasons), "%s allows %s", tt.level, tt.reasons)
	}
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "none", Reason(0).String())
	assert.Equal(t, "participant|subscribed", (ReasonSubscribed | ReasonParticipant).String())
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("watch")
	require.NoError(t, err)
	assert.Equal(t, LevelWatch, l)
	assert.True(t, LevelWatch.AtLeast(LevelParticipating))
	assert.False(t, LevelGlobal.AtLeast(LevelDisabled))

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
