package collection

import (
	"testing"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/object"
	"github.com/byteness/pasmigrate/permissions"
)

func userEntry(name string, mask int64) acl.Entry {
	return acl.Entry{
		Principal: acl.Principal{Name: name, Type: acl.PrincipalUser},
		Grant:     permissions.NewGrant(permissions.ObjectTypeSet, mask),
	}
}

func roleEntry(name string, mask int64) acl.Entry {
	return acl.Entry{
		Principal: acl.Principal{Name: name, Type: acl.PrincipalRole},
		Grant:     permissions.NewGrant(permissions.ObjectTypeSet, mask),
	}
}

func TestDetermineOwner(t *testing.T) {
	tests := []struct {
		name    string
		entries []acl.Entry
		want    string
	}{
		{
			"single owner via standard mask",
			[]acl.Entry{userEntry("alice", permissions.OwnerMask), userEntry("bob", 4)},
			"alice",
		},
		{
			"single owner via extended mask",
			[]acl.Entry{userEntry("carol", permissions.OwnerMaskExtended)},
			"carol",
		},
		{
			"no owners",
			[]acl.Entry{userEntry("bob", 4), userEntry("dan", 12)},
			NoOwnersFound,
		},
		{
			"multiple owners reported not resolved",
			[]acl.Entry{userEntry("alice", permissions.OwnerMask), userEntry("bob", permissions.OwnerMaskExtended)},
			MultipleOwnersFound,
		},
		{
			"full-control role is not an owner",
			[]acl.Entry{roleEntry("admins", permissions.OwnerMask)},
			NoOwnersFound,
		},
		{
			"near-owner mask does not qualify",
			[]acl.Entry{userEntry("eve", permissions.OwnerMask - 1)},
			NoOwnersFound,
		},
		{
			"empty ACL",
			nil,
			NoOwnersFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := &object.Set{ID: "s", Name: "s", AccessEntries: tt.entries}
			if got := DetermineOwner(set); got != tt.want {
				t.Errorf("DetermineOwner() = %q, want %q", got, tt.want)
			}
			if set.PotentialOwner != tt.want {
				t.Errorf("PotentialOwner = %q, want %q", set.PotentialOwner, tt.want)
			}
		})
	}
}
