package permissions

import (
	"sort"
	"strconv"
	"strings"
)

// Grant is a decoded permission bitmask for one object.
type Grant struct {
	// ObjectType is the tenant object type the mask applies to.
	ObjectType ObjectType
	// Mask is the raw 64-bit grant value as reported by the tenant.
	Mask int64
	// Binary is the mask rendered in base 2, kept for diagnostics.
	Binary string
	// Flags are the decoded flag names in lexical order.
	Flags []string
}

// Decode maps (objectType, mask) to the named flags whose bits are set.
// Flags are returned sorted lexically by name so output is deterministic;
// downstream classification matches on the joined string. An unknown object
// type has an empty flag table and decodes to no flags without error.
func Decode(t ObjectType, mask int64) []string {
	table := familyFlags[FamilyOf(t)]

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	flags := make([]string, 0, len(names))
	for _, name := range names {
		if mask&table[name] != 0 {
			flags = append(flags, name)
		}
	}
	return flags
}

// NewGrant builds a Grant with its decoded flags and binary rendering.
func NewGrant(t ObjectType, mask int64) Grant {
	return Grant{
		ObjectType: t,
		Mask:       mask,
		Binary:     strconv.FormatInt(mask, 2),
		Flags:      Decode(t, mask),
	}
}

// FlagString joins the decoded flags with "|", the form the migration
// mapper classifies on (e.g. "Grant|Owner" membership tests).
func (g Grant) FlagString() string {
	return strings.Join(g.Flags, "|")
}

// HasFlag reports whether the decoded grant includes the named flag.
func (g Grant) HasFlag(name string) bool {
	for _, f := range g.Flags {
		if f == name {
			return true
		}
	}
	return false
}
