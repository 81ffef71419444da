package notify

import "github.com/dalemusser/notifyhub/internal/domain/models"

// Tier is a team access level. TierNone means the user has no membership
// record for the project.
type Tier int

const (
	TierNone      Tier = 0
	TierGuest     Tier = models.AccessGuest
	TierReporter  Tier = models.AccessReporter
	TierDeveloper Tier = models.AccessDeveloper
	TierMaster    Tier = models.AccessMaster
	TierAdmin     Tier = models.AccessAdmin
)

// IsMember reports whether t is a known membership tier.
// Unknown values are treated as no membership.
func (t Tier) IsMember() bool {
	return models.ValidAccessLevel(int(t))
}

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierGuest:
		return "guest"
	case TierReporter:
		return "reporter"
	case TierDeveloper:
		return "developer"
	case TierMaster:
		return "master"
	case TierAdmin:
		return "admin"
	}
	return "unknown"
}
