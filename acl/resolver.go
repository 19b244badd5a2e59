package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/permissions"
)

// ACL endpoints of the tenant.
const (
	// RowAcesEndpoint lists the grants on an object itself.
	RowAcesEndpoint = "/Acl/GetRowAces"
	// CollectionAcesEndpoint lists the grants applying to members of a
	// set, a materially different list than the set object's own ACL.
	CollectionAcesEndpoint = "/Acl/GetCollectionAces"
)

// aclTableOf maps an object-type family to the ACL lookup table name.
var aclTableOf = map[permissions.Family]string{
	permissions.FamilySecret:   "DataVault",
	permissions.FamilySet:      "Collections",
	permissions.FamilyFolder:   "Collections",
	permissions.FamilyServer:   "Server",
	permissions.FamilyAccount:  "VaultAccount",
	permissions.FamilyDatabase: "VaultDatabase",
}

// TableFor returns the ACL lookup table for an object type, or "" for an
// unmapped type.
func TableFor(t permissions.ObjectType) string {
	return aclTableOf[permissions.FamilyOf(t)]
}

// Resolver fetches and types access entries through a tenant caller.
type Resolver struct {
	caller api.Caller
}

// NewResolver creates a Resolver over the given caller.
func NewResolver(caller api.Caller) *Resolver {
	return &Resolver{caller: caller}
}

// aceRequest is the body of both ACL endpoints.
type aceRequest struct {
	Table string `json:"Table"`
	ID    string `json:"ID"`
}

// RowAces returns the typed access entries on the object itself.
// GlobalRoot entries and the reserved support principal are excluded.
func (r *Resolver) RowAces(ctx context.Context, objectType permissions.ObjectType, id string) ([]Entry, error) {
	return r.aces(ctx, RowAcesEndpoint, objectType, id)
}

// CollectionAces returns the typed access entries granted to members of a
// set, as opposed to the set object's own ACL.
func (r *Resolver) CollectionAces(ctx context.Context, objectType permissions.ObjectType, id string) ([]Entry, error) {
	return r.aces(ctx, CollectionAcesEndpoint, objectType, id)
}

func (r *Resolver) aces(ctx context.Context, endpoint string, objectType permissions.ObjectType, id string) ([]Entry, error) {
	table := TableFor(objectType)
	if table == "" {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.ErrCodeACLFetchFailed,
				fmt.Sprintf("no ACL table mapping for object type %q", objectType),
				platformerrors.GetSuggestion(platformerrors.ErrCodeACLFetchFailed), nil),
			"object_type", string(objectType))
	}

	result, err := r.caller.Invoke(ctx, endpoint, aceRequest{Table: table, ID: id})
	if err != nil {
		return nil, err
	}

	var raws []map[string]any
	if err := json.Unmarshal(result, &raws); err != nil {
		return nil, platformerrors.WrapRemoteCallError(err, endpoint, id)
	}

	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		entry, keep, err := buildEntry(raw, objectType, id)
		if err != nil {
			// One malformed row fails the whole resolution; callers in
			// batch loops can errors.As the EntryError and skip the object.
			return nil, err
		}
		if keep {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// buildEntry converts one raw ACE row into a typed Entry. The boolean is
// false for rows filtered out of the visible model.
func buildEntry(raw map[string]any, objectType permissions.ObjectType, sourceID string) (Entry, bool, error) {
	row := api.Row(raw)

	aceType := row.String("Type")
	if aceType == globalRootType {
		return Entry{}, false, nil
	}

	name := row.String("Principal")
	if name == ReservedSupportPrincipal {
		return Entry{}, false, nil
	}
	if name == "" {
		return Entry{}, false, &EntryError{
			RawRow: raw,
			Err:    fmt.Errorf("ACE row has no principal name"),
		}
	}

	mask, err := parseRights(raw["Rights"])
	if err != nil {
		return Entry{}, false, &EntryError{
			RawRow:       raw,
			PartialGrant: permissions.Grant{ObjectType: objectType},
			Err:          err,
		}
	}

	principalType := PrincipalType(aceType)
	if aceType == superRoleType {
		// The built-in default role reports an unbounded grant; normalize
		// it to bare read.
		principalType = PrincipalRole
		mask = permissions.ReadBit
	}

	switch principalType {
	case PrincipalUser, PrincipalGroup, PrincipalRole:
	default:
		return Entry{}, false, &EntryError{
			RawRow:       raw,
			PartialGrant: permissions.NewGrant(objectType, mask),
			Err:          fmt.Errorf("unknown principal type %q", aceType),
		}
	}

	return Entry{
		Principal: Principal{
			ID:   row.String("PrincipalId"),
			Name: name,
			Type: principalType,
		},
		Grant:     permissions.NewGrant(objectType, mask),
		Inherited: row.Bool("Inherited"),
		SourceID:  sourceID,
	}, true, nil
}

// parseRights decodes the Rights column, which arrives as a JSON number or
// a decimal string depending on endpoint version.
func parseRights(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("ACE row has no Rights value")
	case float64:
		return int64(t), nil
	case json.Number:
		return t.Int64()
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable Rights value %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported Rights type %T", v)
	}
}
