package object

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/permissions"
)

// Account lifecycle endpoints.
const (
	checkoutPasswordEndpoint = "/ServerManage/CheckoutPassword"
	checkinPasswordEndpoint  = "/ServerManage/CheckinPassword"
	manageAccountEndpoint    = "/ServerManage/ManageAccount"
	unmanageAccountEndpoint  = "/ServerManage/UnmanageAccount"
	updatePasswordEndpoint   = "/ServerManage/UpdatePassword"
)

// AccountType is the vaulted-account subtype. The subtype decides which
// source column carries the account's parent: a host, a domain, a database,
// or a cloud provider.
type AccountType string

const (
	// AccountLocal is a local account on an enrolled system.
	AccountLocal AccountType = "Local"
	// AccountDomain is a directory-domain account.
	AccountDomain AccountType = "Domain"
	// AccountDatabase is a database account.
	AccountDatabase AccountType = "Database"
	// AccountCloud is a cloud-provider account.
	AccountCloud AccountType = "Cloud"
)

// Account is a vaulted account record. SourceID and SourceType form a
// tagged union over the subtype: host id for Local, domain id for Domain,
// database id for Database, provider id for Cloud.
type Account struct {
	// ID is the tenant identifier.
	ID string
	// Type is the account subtype.
	Type AccountType
	// Username is the account name inside its source.
	Username string
	// SourceName is the display name of the hosting object.
	SourceName string
	// SourceID identifies the hosting object; semantics follow Type.
	SourceID string
	// SourceType names the hosting table ("Server", "VaultDomain", ...).
	SourceType string
	// Managed reports whether the tenant rotates the password.
	Managed bool
	// Health is the last reported health state.
	Health string
	// LastHealthCheck is the last health probe time, if any.
	LastHealthCheck *time.Time
	// AccessEntries is the account's own ACL.
	AccessEntries []acl.Entry
	// WorkflowEnabled reports whether checkout requires approval.
	WorkflowEnabled bool
	// Approvers is the approval chain, populated only when
	// WorkflowEnabled is set.
	Approvers []Approver
	// Vault is the external vault integration, when the account row
	// carried a vault id.
	Vault *VaultLink

	// checkoutID is the open checkout handle, empty when checked in.
	checkoutID string
}

// sourceColumns maps each subtype to (id column, source table name).
var sourceColumns = []struct {
	column  string
	acctype AccountType
	table   string
}{
	{"Host", AccountLocal, "Server"},
	{"DomainID", AccountDomain, "VaultDomain"},
	{"DatabaseID", AccountDatabase, "VaultDatabase"},
	{"CloudProviderID", AccountCloud, "CloudProvider"},
}

// ClassifyAccountRow determines the account subtype from which source
// column is populated. Exactly one of Host/DomainID/DatabaseID/
// CloudProviderID is non-null on a well-formed row.
func ClassifyAccountRow(row api.Row) (AccountType, string, string, error) {
	for _, sc := range sourceColumns {
		if id, ok := row.OptString(sc.column); ok && id != "" {
			return sc.acctype, id, sc.table, nil
		}
	}
	return "", "", "", fmt.Errorf("account row has no populated source column")
}

// NewAccount builds an Account from a query row: subtype classification,
// own ACL, then the nested vault link and approver chain when present.
func NewAccount(ctx context.Context, caller api.Caller, resolver *acl.Resolver, row api.Row) (*Account, error) {
	id := row.String("ID")
	user := row.String("User")
	if id == "" || user == "" {
		return nil, platformerrors.New(platformerrors.ErrCodeObjectRowInvalid,
			"account row missing ID or User",
			platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), nil)
	}

	acctype, sourceID, sourceTable, err := ClassifyAccountRow(row)
	if err != nil {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.ErrCodeObjectRowInvalid, err.Error(),
				platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), err),
			"account", user)
	}

	a := &Account{
		ID:              id,
		Type:            acctype,
		Username:        user,
		SourceName:      row.String("Name"),
		SourceID:        sourceID,
		SourceType:      sourceTable,
		Managed:         row.Bool("IsManaged"),
		Health:          row.String("Healthy"),
		WorkflowEnabled: row.Bool("WorkflowEnabled"),
	}
	if t, ok := row.OptTime("LastHealthCheck"); ok {
		a.LastHealthCheck = &t
	}

	aces, err := resolver.RowAces(ctx, permissions.ObjectTypeVaultAccount, id)
	if err != nil {
		return nil, err
	}
	a.AccessEntries = aces

	if vaultID, ok := row.OptString("VaultId"); ok && vaultID != "" {
		vault, err := FetchVaultLink(ctx, caller, vaultID)
		if err != nil {
			return nil, err
		}
		a.Vault = vault
	}

	if a.WorkflowEnabled {
		approvers, err := ParseApprovers(row.String("WorkflowApproversList"))
		if err != nil {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.ErrCodeObjectRowInvalid, err.Error(),
					platformerrors.GetSuggestion(platformerrors.ErrCodeObjectRowInvalid), err),
				"account", user)
		}
		a.Approvers = approvers
	}

	return a, nil
}

// checkoutResult is the Result payload of the checkout endpoint.
type checkoutResult struct {
	Password string `json:"Password"`
	COID     string `json:"COID"`
}

// Checkout retrieves the account password and opens a checkout handle.
func (a *Account) Checkout(ctx context.Context, caller api.Caller, reason string) (string, error) {
	result, err := caller.Invoke(ctx, checkoutPasswordEndpoint, map[string]string{
		"ID":          a.ID,
		"Description": reason,
	})
	if err != nil {
		return "", err
	}
	var cr checkoutResult
	if err := json.Unmarshal(result, &cr); err != nil {
		return "", platformerrors.WrapRemoteCallError(err, checkoutPasswordEndpoint, a.ID)
	}
	a.checkoutID = cr.COID
	return cr.Password, nil
}

// Checkin closes the open checkout handle.
func (a *Account) Checkin(ctx context.Context, caller api.Caller) error {
	if a.checkoutID == "" {
		return fmt.Errorf("account %s has no open checkout", a.Username)
	}
	if _, err := caller.Invoke(ctx, checkinPasswordEndpoint, map[string]string{"ID": a.checkoutID}); err != nil {
		return err
	}
	a.checkoutID = ""
	return nil
}

// SetManaged switches tenant password management on or off.
func (a *Account) SetManaged(ctx context.Context, caller api.Caller, managed bool) error {
	endpoint := unmanageAccountEndpoint
	if managed {
		endpoint = manageAccountEndpoint
	}
	if _, err := caller.Invoke(ctx, endpoint, map[string]string{"ID": a.ID}); err != nil {
		return err
	}
	a.Managed = managed
	return nil
}

// UpdatePassword stores a new password for the account.
func (a *Account) UpdatePassword(ctx context.Context, caller api.Caller, password string) error {
	_, err := caller.Invoke(ctx, updatePasswordEndpoint, map[string]string{
		"ID":       a.ID,
		"Password": password,
	})
	return err
}

// DisplayName renders the composite "ParentName\Username" form used by set
// member listings.
func (a *Account) DisplayName() string {
	return a.SourceName + `\` + a.Username
}
