package mentions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		handles   []string
		broadcast bool
	}{
		{name: "none", text: "nothing to see"},
		{name: "single", text: "@alice please look", handles: []string{"alice"}},
		{name: "punctuation", text: "thanks @bob, and @carol.", handles: []string{"bob", "carol"}},
		{name: "dedupe case-insensitive", text: "@Dave and @dave", handles: []string{"Dave"}},
		{name: "broadcast", text: "heads up @all", broadcast: true},
		{name: "broadcast and handle", text: "@ALL and @erin", handles: []string{"erin"}, broadcast: true},
		{name: "email is not a mention", text: "mail frank@example.com"},
		{name: "code span ignored", text: "run `@grace` then ping @heidi", handles: []string{"heidi"}},
		{name: "fenced code ignored", text: "```\n@ivan\n```\n\n@judy", handles: []string{"judy"}},
		{name: "emphasis", text: "**@kim** and _@leo_", handles: []string{"kim", "leo"}},
		{name: "list and quote", text: "- @mallory\n\n> @niaj", handles: []string{"mallory", "niaj"}},
		{name: "dotted handle", text: "cc @o.brien-", handles: []string{"o.brien"}},
		{name: "reference not mention", text: "see group/@sub", handles: nil},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			assert.Equal(t, tt.handles, got.Handles)
			assert.Equal(t, tt.broadcast, got.Broadcast)
		})
	}
}
