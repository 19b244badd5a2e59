package collection

import (
	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/object"
	"github.com/byteness/pasmigrate/permissions"
)

// Owner-inference verdicts for sets without exactly one full-control user.
const (
	// NoOwnersFound is the verdict when no user holds full control.
	NoOwnersFound = "No owners found"
	// MultipleOwnersFound is the verdict when several users hold full
	// control; ambiguity is reported, not resolved.
	MultipleOwnersFound = "Multiple potential owners found"
)

// DetermineOwner infers a set's owner from its own ACL: the single User
// principal holding a full-control grant in either bitmask family. The
// verdict is stored on the set and returned.
func DetermineOwner(set *object.Set) string {
	var owners []string
	for _, entry := range set.AccessEntries {
		if entry.Principal.Type != acl.PrincipalUser {
			continue
		}
		if entry.Grant.Mask == permissions.OwnerMask || entry.Grant.Mask == permissions.OwnerMaskExtended {
			owners = append(owners, entry.Principal.Name)
		}
	}

	switch len(owners) {
	case 0:
		set.PotentialOwner = NoOwnersFound
	case 1:
		set.PotentialOwner = owners[0]
	default:
		set.PotentialOwner = MultipleOwnersFound
	}
	return set.PotentialOwner
}
