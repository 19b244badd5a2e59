// Package acl resolves access-control entries for tenant objects.
// It fetches raw ACE rows from the ACL endpoints, decodes their grant
// bitmasks, and filters out synthetic system entries that are not part of
// the visible permission model.
package acl

import (
	"fmt"

	"github.com/byteness/pasmigrate/permissions"
)

// PrincipalType classifies the holder of an access entry.
type PrincipalType string

const (
	// PrincipalUser is an individual user.
	PrincipalUser PrincipalType = "User"
	// PrincipalGroup is a directory group.
	PrincipalGroup PrincipalType = "Group"
	// PrincipalRole is a tenant role.
	PrincipalRole PrincipalType = "Role"
)

// Principal identifies the holder of a grant. Identity is immutable once
// resolved.
type Principal struct {
	// ID is the tenant identifier of the principal.
	ID string
	// Name is the display name of the principal.
	Name string
	// Type is the principal classification.
	Type PrincipalType
}

// Entry is one access-control grant to a single principal on a single
// object (a "row ace" in tenant terms).
type Entry struct {
	// Principal is the grant holder.
	Principal Principal
	// Grant is the decoded permission bitmask.
	Grant permissions.Grant
	// Inherited reports whether the grant arrived via inheritance rather
	// than a direct assignment on the object.
	Inherited bool
	// SourceID is the id of the object the ACL was fetched for.
	SourceID string
}

// globalRootType marks synthetic root entries the tenant injects into every
// ACL. They are filtered at resolution time and never surface to callers.
const globalRootType = "GlobalRoot"

// superRoleType marks the built-in default role. Its reported grant value is
// meaningless; resolution rewrites it to the bare read bit.
const superRoleType = "Super"

// ReservedSupportPrincipal is the built-in support-access principal whose
// entries are excluded from the visible model.
const ReservedSupportPrincipal = "Technical Support Access"

// EntryError reports a single ACL row that could not be converted into a
// typed Entry. The offending raw row and any partially decoded grant are
// retained for diagnostics; resolution fails as a whole when one occurs.
type EntryError struct {
	// RawRow is the undecoded ACE row.
	RawRow map[string]any
	// PartialGrant is whatever grant decoding produced before the failure.
	PartialGrant permissions.Grant
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *EntryError) Error() string {
	return fmt.Sprintf("access entry construction failed: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *EntryError) Unwrap() error {
	return e.Err
}
