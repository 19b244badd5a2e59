package object

import (
	"context"
	"time"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/permissions"
)

// SetKind distinguishes the three collection flavors.
type SetKind string

const (
	// SetManualBucket is a manually curated member list.
	SetManualBucket SetKind = "ManualBucket"
	// SetSqlDynamic is a server-computed dynamic set; its member list is
	// opaque and never resolved client-side.
	SetSqlDynamic SetKind = "SqlDynamic"
	// SetPhantom is a folder surfaced as a set.
	SetPhantom SetKind = "Phantom"
)

// Member is one resolved set member.
type Member struct {
	// ID is the member's tenant identifier.
	ID string
	// Name is the resolved display name; accounts use the composite
	// "ParentName\Username" form.
	Name string
	// Type is the member's table tag (DataVault, VaultAccount, Server).
	Type string
}

// Set is a collection record: its own ACL, the ACL applying to its members,
// and (once resolved) the member list.
type Set struct {
	// ID is the tenant identifier.
	ID string
	// Kind is the collection flavor.
	Kind SetKind
	// ObjectType is the kind of thing the set collects, as a table tag.
	ObjectType permissions.ObjectType
	// Name is the set's display name.
	Name string
	// Description is the operator-facing description.
	Description string
	// Created is when the set was created.
	Created time.Time
	// AccessEntries is the set object's own ACL.
	AccessEntries []acl.Entry
	// MemberAccessEntries is the ACL granted to members of the set,
	// distinct from the set's own ACL. Nil for dynamic sets.
	MemberAccessEntries []acl.Entry
	// MemberIDs are the raw member ids, populated by membership
	// resolution. Always empty for dynamic sets.
	MemberIDs []string
	// Members are the resolved members with display names.
	Members []Member
	// PotentialOwner is the owner-inference verdict: a principal name,
	// "No owners found", or "Multiple potential owners found".
	PotentialOwner string
}

// NewSet builds a Set from a query row, resolving its own ACL and, for
// non-dynamic sets, the member ACL. Member lists are resolved separately
// by the collection package.
func NewSet(ctx context.Context, resolver *acl.Resolver, row api.Row) (*Set, error) {
	id := row.String("ID")
	name := row.String("Name")
	if id == "" || name == "" {
		return nil, platformerrors.New(platformerrors.ErrCodeObjectRowInvalid,
			"set row missing ID or Name",
			platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), nil)
	}

	s := &Set{
		ID:          id,
		Kind:        SetKind(row.String("CollectionType")),
		ObjectType:  permissions.ObjectType(row.String("ObjectType")),
		Name:        name,
		Description: row.String("Description"),
	}
	if t, ok := row.OptTime("WhenCreated"); ok {
		s.Created = t
	}

	own, err := resolver.RowAces(ctx, permissions.ObjectTypeSet, id)
	if err != nil {
		return nil, err
	}
	s.AccessEntries = own

	if s.Kind != SetSqlDynamic {
		member, err := resolver.CollectionAces(ctx, s.ObjectType, id)
		if err != nil {
			return nil, err
		}
		s.MemberAccessEntries = member
	}

	return s, nil
}
