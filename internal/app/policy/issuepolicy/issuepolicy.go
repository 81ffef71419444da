// Package issuepolicy provides read-authorization rules for work items.
//
// Authorization rules:
//   - Admins can read every item
//   - Confidential issues can be read by their author, their assignee, and
//     team members with Developer access or higher
//   - Other items in private projects can be read by team members only
//   - Other items in public or internal projects can be read by anyone
//
// Access levels that are not one of the known tiers are treated as no
// membership, so an unexpected value can only ever deny access.
package issuepolicy

import "github.com/dalemusser/notifyhub/internal/domain/models"

// Item holds the item facts the rules depend on.
type Item struct {
	Confidential   bool
	PrivateProject bool
}

// Reader holds the reader facts the rules depend on.
type Reader struct {
	Admin       bool
	AccessLevel int // 0 when the reader has no membership
	IsAuthor    bool
	IsAssignee  bool
}

// CanRead reports whether reader may see item.
func CanRead(item Item, reader Reader) bool {
	if reader.Admin {
		return true
	}
	if item.Confidential {
		return CanReadConfidential(reader)
	}
	if item.PrivateProject {
		return isMember(reader.AccessLevel)
	}
	return true
}

// CanReadConfidential reports whether reader may see a confidential issue.
//
// Authorization:
//   - Admin: always
//   - Author or assignee: always
//   - Team member: Developer or higher
//   - Others: never
func CanReadConfidential(reader Reader) bool {
	switch {
	case reader.Admin:
		return true
	case reader.IsAuthor, reader.IsAssignee:
		return true
	case isMember(reader.AccessLevel):
		return reader.AccessLevel >= models.AccessDeveloper
	default:
		return false
	}
}

func isMember(level int) bool {
	return models.ValidAccessLevel(level)
}
