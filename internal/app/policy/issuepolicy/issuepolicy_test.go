package issuepolicy_test

import (
	"testing"

	"github.com/dalemusser/notifyhub/internal/app/policy/issuepolicy"
	"github.com/dalemusser/notifyhub/internal/domain/models"
)

func TestCanReadConfidential(t *testing.T) {
	tests := []struct {
		name   string
		reader issuepolicy.Reader
		want   bool
	}{
		{"admin without membership", issuepolicy.Reader{Admin: true}, true},
		{"author without membership", issuepolicy.Reader{IsAuthor: true}, true},
		{"assignee without membership", issuepolicy.Reader{IsAssignee: true}, true},
		{"guest", issuepolicy.Reader{AccessLevel: models.AccessGuest}, false},
		{"reporter", issuepolicy.Reader{AccessLevel: models.AccessReporter}, false},
		{"developer", issuepolicy.Reader{AccessLevel: models.AccessDeveloper}, true},
		{"master", issuepolicy.Reader{AccessLevel: models.AccessMaster}, true},
		{"non-member", issuepolicy.Reader{}, false},
		{"unknown tier above developer", issuepolicy.Reader{AccessLevel: 35}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := issuepolicy.CanReadConfidential(tt.reader); got != tt.want {
				t.Errorf("CanReadConfidential() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanRead(t *testing.T) {
	public := issuepolicy.Item{}
	private := issuepolicy.Item{PrivateProject: true}
	confidential := issuepolicy.Item{Confidential: true}

	if !issuepolicy.CanRead(public, issuepolicy.Reader{}) {
		t.Error("anyone should read a public item")
	}
	if issuepolicy.CanRead(private, issuepolicy.Reader{}) {
		t.Error("non-member should not read a private item")
	}
	if !issuepolicy.CanRead(private, issuepolicy.Reader{AccessLevel: models.AccessGuest}) {
		t.Error("guest should read a private item")
	}
	if !issuepolicy.CanRead(private, issuepolicy.Reader{Admin: true}) {
		t.Error("admin should read a private item")
	}
	if issuepolicy.CanRead(confidential, issuepolicy.Reader{AccessLevel: models.AccessReporter}) {
		t.Error("reporter should not read a confidential issue")
	}
}
