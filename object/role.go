package object

import (
	"context"
	"encoding/json"

	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
)

// Role membership and rights endpoints.
const (
	roleMembersEndpoint = "/Roles/GetRoleMembers"
	roleRightsEndpoint  = "/Core/GetAssignedAdministrativeRights"
)

// RoleMember is one member of a tenant role.
type RoleMember struct {
	// ID is the member's tenant identifier.
	ID string
	// Name is the member's display name.
	Name string
	// Type is "User", "Group", or "Role".
	Type string
}

// RightGrant is one administrative right assigned to a role.
type RightGrant struct {
	// Path is the right's identifier path.
	Path string
	// ServiceName is the owning service.
	ServiceName string
	// Description is the operator-facing description.
	Description string
}

// Role is a tenant role with its members and assigned rights.
type Role struct {
	// ID is the tenant identifier.
	ID string
	// Name is the role name.
	Name string
	// Description is the operator-facing description.
	Description string
	// Members are the role members.
	Members []RoleMember
	// Rights are the assigned administrative rights.
	Rights []RightGrant
}

// NewRole builds a Role from a query row and fetches its members and
// assigned rights.
func NewRole(ctx context.Context, caller api.Caller, row api.Row) (*Role, error) {
	id := row.String("ID")
	name := row.String("Name")
	if id == "" || name == "" {
		return nil, platformerrors.New(platformerrors.ErrCodeObjectRowInvalid,
			"role row missing ID or Name",
			platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), nil)
	}

	r := &Role{
		ID:          id,
		Name:        name,
		Description: row.String("Description"),
	}

	membersRaw, err := caller.Invoke(ctx, roleMembersEndpoint, map[string]string{"Name": id})
	if err != nil {
		return nil, err
	}
	var members struct {
		Results []struct {
			Row struct {
				Guid string `json:"Guid"`
				Name string `json:"Name"`
				Type string `json:"Type"`
			} `json:"Row"`
		} `json:"Results"`
	}
	if err := json.Unmarshal(membersRaw, &members); err != nil {
		return nil, platformerrors.WrapRemoteCallError(err, roleMembersEndpoint, id)
	}
	for _, m := range members.Results {
		r.Members = append(r.Members, RoleMember{ID: m.Row.Guid, Name: m.Row.Name, Type: m.Row.Type})
	}

	rightsRaw, err := caller.Invoke(ctx, roleRightsEndpoint, map[string]string{"Role": id})
	if err != nil {
		return nil, err
	}
	var rights struct {
		Results []struct {
			Row struct {
				Path        string `json:"Path"`
				ServiceName string `json:"ServiceName"`
				Description string `json:"Description"`
			} `json:"Row"`
		} `json:"Results"`
	}
	if err := json.Unmarshal(rightsRaw, &rights); err != nil {
		return nil, platformerrors.WrapRemoteCallError(err, roleRightsEndpoint, id)
	}
	for _, g := range rights.Results {
		r.Rights = append(r.Rights, RightGrant{Path: g.Row.Path, ServiceName: g.Row.ServiceName, Description: g.Row.Description})
	}

	return r, nil
}
