package object

import (
	"context"
	"fmt"
	"time"

	"github.com/byteness/pasmigrate/api"
)

// VaultLink references an external vaulting integration an account is
// synchronized with.
type VaultLink struct {
	// ID is the tenant identifier of the integration.
	ID string
	// Type is the integration kind (e.g. "SecretServer").
	Type string
	// Name is the integration's display name.
	Name string
	// URL is the remote vault URL.
	URL string
	// Username is the sync account username.
	Username string
	// SyncInterval is the sync period in minutes.
	SyncInterval int64
	// LastSync is the last completed sync, if any.
	LastSync *time.Time
}

// NewVaultLink builds a VaultLink from a query row.
func NewVaultLink(row api.Row) (*VaultLink, error) {
	id := row.String("ID")
	if id == "" {
		return nil, fmt.Errorf("vault row missing ID")
	}
	v := &VaultLink{
		ID:           id,
		Type:         row.String("Type"),
		Name:         row.String("VaultName"),
		URL:          row.String("Url"),
		Username:     row.String("Username"),
		SyncInterval: row.Int64("SyncInterval"),
	}
	if t, ok := row.OptTime("LastSync"); ok {
		v.LastSync = &t
	}
	return v, nil
}

// FetchVaultLink looks up a vault integration by id. Returns (nil, nil)
// when the id no longer resolves, which callers treat as "no vault".
func FetchVaultLink(ctx context.Context, caller api.Caller, id string) (*VaultLink, error) {
	rows, err := caller.Query(ctx, fmt.Sprintf("SELECT * FROM Vault WHERE ID = '%s'", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return NewVaultLink(rows[0])
}
