package object

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/permissions"
)

// ZoneRole is a zone role offered on a system, with its approval chain
// when zone-role workflow is enabled.
type ZoneRole struct {
	// Name is the zone role name.
	Name string
	// Approvers is the approval chain for requesting the role.
	Approvers []Approver
}

// System is an enrolled system record.
type System struct {
	// ID is the tenant identifier.
	ID string
	// Name is the system's display name.
	Name string
	// FQDN is the resolvable host name.
	FQDN string
	// ComputerClass is the platform class (Unix, Windows, ...).
	ComputerClass string
	// SessionType is the login protocol (Ssh, Rdp).
	SessionType string
	// ZoneRoleWorkflowEnabled reports whether zone-role requests need
	// approval on this system.
	ZoneRoleWorkflowEnabled bool
	// ZoneRoles are the requestable zone roles, populated only when
	// ZoneRoleWorkflowEnabled is set.
	ZoneRoles []ZoneRole
	// AccessEntries is the system's own ACL.
	AccessEntries []acl.Entry
	// LocalAccounts are the vaulted local accounts, populated by
	// LoadLocalAccounts.
	LocalAccounts []*Account
}

// NewSystem builds a System from a query row, resolving its ACL and, when
// zone-role workflow is enabled, the zone roles and their approvers.
func NewSystem(ctx context.Context, resolver *acl.Resolver, row api.Row) (*System, error) {
	id := row.String("ID")
	name := row.String("Name")
	if id == "" || name == "" {
		return nil, platformerrors.New(platformerrors.ErrCodeObjectRowInvalid,
			"system row missing ID or Name",
			platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), nil)
	}

	s := &System{
		ID:                      id,
		Name:                    name,
		FQDN:                    row.String("FQDN"),
		ComputerClass:           row.String("ComputerClass"),
		SessionType:             row.String("SessionType"),
		ZoneRoleWorkflowEnabled: row.Bool("DomainOperationsEnabled"),
	}

	aces, err := resolver.RowAces(ctx, permissions.ObjectTypeServer, id)
	if err != nil {
		return nil, err
	}
	s.AccessEntries = aces

	if s.ZoneRoleWorkflowEnabled {
		roles, err := parseZoneRoles(row.String("ZoneRoleWorkflowRoles"), row.String("ZoneRoleWorkflowApproversList"))
		if err != nil {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.ErrCodeObjectRowInvalid, err.Error(),
					platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), err),
				"system", name)
		}
		s.ZoneRoles = roles
	}

	return s, nil
}

// parseZoneRoles decodes the zone-role list and attaches the shared
// approver chain to each role.
func parseZoneRoles(rolesJSON, approversJSON string) ([]ZoneRole, error) {
	if rolesJSON == "" {
		return nil, nil
	}
	var raw []struct {
		Name string `json:"Name"`
	}
	if err := json.Unmarshal([]byte(rolesJSON), &raw); err != nil {
		return nil, fmt.Errorf("unparseable zone role list: %w", err)
	}

	approvers, err := ParseApprovers(approversJSON)
	if err != nil {
		return nil, err
	}

	roles := make([]ZoneRole, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, ZoneRole{Name: r.Name, Approvers: approvers})
	}
	return roles, nil
}

// LoadLocalAccounts fetches and materializes the system's vaulted local
// accounts. Separate from construction because most callers don't need it.
func (s *System) LoadLocalAccounts(ctx context.Context, caller api.Caller, resolver *acl.Resolver) error {
	rows, err := caller.Query(ctx, fmt.Sprintf("SELECT * FROM VaultAccount WHERE Host = '%s'", s.ID))
	if err != nil {
		return err
	}

	accounts := make([]*Account, 0, len(rows))
	for _, row := range rows {
		a, err := NewAccount(ctx, caller, resolver, row)
		if err != nil {
			return err
		}
		accounts = append(accounts, a)
	}
	s.LocalAccounts = accounts
	return nil
}
