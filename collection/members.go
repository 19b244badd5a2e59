// Package collection resolves set membership: member-id listing, display
// name lookup, owner inference, and the bulk SetBank reverse index used by
// the migration mapper.
package collection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/object"
)

// Membership endpoints.
const (
	// GetMembersEndpoint lists members of a manual set.
	GetMembersEndpoint = "/Collection/GetMembers"
	// IsMemberEndpoint tests one object's membership in one set.
	IsMemberEndpoint = "/Collection/IsMember"
	// folderChildrenEndpoint lists secrets and folders under a folder;
	// phantom (folder) sets use it instead of GetMembers.
	folderChildrenEndpoint = "/ServerManage/GetSecretsAndFolders"
)

// memberRef is the uniform member shape both listing paths produce.
type memberRef struct {
	Key       string `json:"Key"`
	TableName string `json:"TableName"`
}

// MemberIDs fetches the raw member-id list of a set without resolving
// display names. Dynamic sets are server-computed and always return nil.
func MemberIDs(ctx context.Context, caller api.Caller, set *object.Set) ([]string, error) {
	refs, err := memberRefs(ctx, caller, set)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.Key)
	}
	return ids, nil
}

func memberRefs(ctx context.Context, caller api.Caller, set *object.Set) ([]memberRef, error) {
	switch set.Kind {
	case object.SetSqlDynamic:
		return nil, nil

	case object.SetPhantom:
		// Folders have no member list; synthesize one from the
		// folder-children listing.
		result, err := caller.Invoke(ctx, folderChildrenEndpoint, map[string]string{"Parent": set.ID})
		if err != nil {
			return nil, err
		}
		var children struct {
			Results []struct {
				Row struct {
					ID string `json:"ID"`
				} `json:"Row"`
			} `json:"Results"`
		}
		if err := json.Unmarshal(result, &children); err != nil {
			return nil, platformerrors.WrapRemoteCallError(err, folderChildrenEndpoint, set.ID)
		}
		refs := make([]memberRef, 0, len(children.Results))
		for _, c := range children.Results {
			refs = append(refs, memberRef{Key: c.Row.ID, TableName: "DataVault"})
		}
		return refs, nil

	case object.SetManualBucket:
		result, err := caller.Invoke(ctx, GetMembersEndpoint, map[string]string{"ID": set.ID})
		if err != nil {
			return nil, err
		}
		var refs []memberRef
		if err := json.Unmarshal(result, &refs); err != nil {
			return nil, platformerrors.WrapRemoteCallError(err, GetMembersEndpoint, set.ID)
		}
		return refs, nil

	default:
		return nil, fmt.Errorf("unknown set kind %q", set.Kind)
	}
}

// ResolveMembers populates set.MemberIDs and set.Members, looking up each
// member's display name with a secondary query keyed by its table tag.
// Dynamic sets resolve to an empty member list.
func ResolveMembers(ctx context.Context, caller api.Caller, set *object.Set) error {
	refs, err := memberRefs(ctx, caller, set)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(refs))
	members := make([]object.Member, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.Key)
		name, err := memberName(ctx, caller, ref)
		if err != nil {
			return err
		}
		members = append(members, object.Member{ID: ref.Key, Name: name, Type: ref.TableName})
	}

	set.MemberIDs = ids
	set.Members = members
	return nil
}

// memberName resolves one member's display name by table tag. Accounts use
// the composite "ParentName\Username" form.
func memberName(ctx context.Context, caller api.Caller, ref memberRef) (string, error) {
	switch ref.TableName {
	case "DataVault":
		rows, err := caller.Query(ctx, fmt.Sprintf("SELECT SecretName FROM DataVault WHERE ID = '%s'", ref.Key))
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "", nil
		}
		return rows[0].String("SecretName"), nil

	case "VaultAccount":
		rows, err := caller.Query(ctx, fmt.Sprintf("SELECT User, Name FROM VaultAccount WHERE ID = '%s'", ref.Key))
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "", nil
		}
		return rows[0].String("Name") + `\` + rows[0].String("User"), nil

	case "Server":
		rows, err := caller.Query(ctx, fmt.Sprintf("SELECT Name FROM Server WHERE ID = '%s'", ref.Key))
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "", nil
		}
		return rows[0].String("Name"), nil
	}
	return "", fmt.Errorf("unknown member table %q", ref.TableName)
}

// IsMember asks the tenant whether an object belongs to a set.
type isMemberRequest struct {
	ID    string `json:"ID"`
	Table string `json:"Table"`
	Key   string `json:"Key"`
}

// IsMember tests one object's membership in one set via the membership
// endpoint. The SetBank reverse index is the fast path; this is the
// per-set fallback and must agree with it.
func IsMember(ctx context.Context, caller api.Caller, set *object.Set, table, objectID string) (bool, error) {
	result, err := caller.Invoke(ctx, IsMemberEndpoint, isMemberRequest{ID: set.ID, Table: table, Key: objectID})
	if err != nil {
		return false, err
	}
	var isMember bool
	if err := json.Unmarshal(result, &isMember); err != nil {
		return false, platformerrors.WrapRemoteCallError(err, IsMemberEndpoint, set.ID)
	}
	return isMember, nil
}
