// Package object materializes typed domain records from flat query rows.
// Each constructor populates the record's own fields first, then its access
// entries, then any nested objects (hosting vault, approver chains, zone
// roles) in that order.
package object

import (
	"encoding/json"
	"fmt"
)

// Approver is a workflow approver: a user, a role, or the "requestor's
// manager" fallback with an optional backup. The variants are an explicit
// tagged union; construction never copies arbitrary fields by name.
type Approver interface {
	// Display renders the approver for listings.
	Display() string
	approver()
}

// UserApprover is a directly assigned approving user.
type UserApprover struct {
	// ID is the tenant identifier of the user.
	ID string
	// Name is the user's display name.
	Name string
}

func (UserApprover) approver() {}

// Display renders the approver for listings.
func (a UserApprover) Display() string { return a.Name }

// RoleApprover is an approving role; any member may approve.
type RoleApprover struct {
	// ID is the tenant identifier of the role.
	ID string
	// Name is the role's display name.
	Name string
}

func (RoleApprover) approver() {}

// Display renders the approver for listings.
func (a RoleApprover) Display() string { return a.Name + " (role)" }

// ManagerFallbackApprover routes the request to the requestor's manager,
// falling back to Backup when the requestor has none.
type ManagerFallbackApprover struct {
	// Backup approves when the requestor has no manager. May be nil.
	Backup Approver
}

func (ManagerFallbackApprover) approver() {}

// Display renders the approver for listings.
func (a ManagerFallbackApprover) Display() string {
	if a.Backup != nil {
		return fmt.Sprintf("requestor's manager (backup: %s)", a.Backup.Display())
	}
	return "requestor's manager"
}

// rawApprover is the wire shape of one approver list element.
type rawApprover struct {
	Type            string       `json:"Type"`
	Guid            string       `json:"Guid"`
	Name            string       `json:"Name"`
	OptionsSelector bool         `json:"OptionsSelector"`
	BackupApprover  *rawApprover `json:"BackupApprover"`
}

// ParseApprovers decodes a workflow approver list from its JSON column
// value. The manager-fallback marker is an element with OptionsSelector set;
// its backup approver is resolved recursively.
func ParseApprovers(raw string) ([]Approver, error) {
	if raw == "" {
		return nil, nil
	}
	var rows []rawApprover
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("unparseable approver list: %w", err)
	}

	approvers := make([]Approver, 0, len(rows))
	for _, r := range rows {
		a, err := buildApprover(r)
		if err != nil {
			return nil, err
		}
		approvers = append(approvers, a)
	}
	return approvers, nil
}

func buildApprover(r rawApprover) (Approver, error) {
	if r.OptionsSelector {
		var backup Approver
		if r.BackupApprover != nil {
			b, err := buildApprover(*r.BackupApprover)
			if err != nil {
				return nil, err
			}
			backup = b
		}
		return ManagerFallbackApprover{Backup: backup}, nil
	}

	switch r.Type {
	case "User":
		return UserApprover{ID: r.Guid, Name: r.Name}, nil
	case "Role":
		return RoleApprover{ID: r.Guid, Name: r.Name}, nil
	default:
		return nil, fmt.Errorf("unknown approver type %q", r.Type)
	}
}
