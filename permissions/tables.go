package permissions

// Flag tables per family. Bit values mirror the tenant's grant encoding and
// must not be reordered or renumbered; OwnerMask and OwnerMaskExtended are
// derived from them below.
var familyFlags = map[Family]map[string]int64{
	FamilySecret: {
		"Grant":    1,
		"View":     4,
		"Edit":     8,
		"Delete":   64,
		"Retrieve": 65536,
	},
	FamilySet: {
		"Grant":  1,
		"View":   4,
		"Edit":   8,
		"Add":    16,
		"Remove": 32,
		"Delete": 64,
		"Rename": 128,
	},
	FamilyFolder: {
		"Grant":  1,
		"View":   4,
		"Edit":   8,
		"Add":    16,
		"Remove": 32,
		"Delete": 64,
		"Rename": 128,
	},
	FamilyServer: {
		"Grant":           1,
		"View":            4,
		"Edit":            8,
		"Delete":          64,
		"ManageSession":   128,
		"AgentAuth":       256,
		"RequestZoneRole": 512,
	},
	FamilyAccount: {
		"Owner":          1,
		"View":           4,
		"Edit":           8,
		"Login":          16,
		"Checkout":       32,
		"Delete":         64,
		"UpdatePassword": 128,
		"Naked":          65536,
	},
	FamilyDatabase: {
		"Owner":          1,
		"View":           4,
		"Edit":           8,
		"Checkout":       32,
		"Delete":         64,
		"UpdatePassword": 128,
		"Naked":          65536,
	},
}

// ReadBit is the bare read permission. Entries held by the built-in Super
// role are normalized to this value regardless of what the tenant reports.
const ReadBit int64 = 4

// OwnerMask is the full-control mask for the ordinary (set/collection)
// grant family, derived from the flag table rather than hardcoded so a
// table change cannot silently diverge from owner inference.
var OwnerMask = orFlags(FamilySet)

// OwnerMaskExtended is the full-control mask for the extended (account)
// grant family.
var OwnerMaskExtended = orFlags(FamilyAccount)

// orFlags returns the OR of every flag bit in a family's table.
func orFlags(f Family) int64 {
	var mask int64
	for _, bit := range familyFlags[f] {
		mask |= bit
	}
	return mask
}

// FlagTable returns a copy of the flag table for an object type.
// Unknown object types yield an empty table.
func FlagTable(t ObjectType) map[string]int64 {
	table := familyFlags[FamilyOf(t)]
	out := make(map[string]int64, len(table))
	for name, bit := range table {
		out[name] = bit
	}
	return out
}
