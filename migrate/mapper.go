package migrate

import (
	"context"
	"fmt"

	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/collection"
	"github.com/byteness/pasmigrate/object"
	"github.com/byteness/pasmigrate/permissions"
)

// Mapper produces migration records. It holds the candidate set list of
// the tenant and, optionally, a precomputed SetBank; with a bank present
// membership resolution is a local scan, without one it issues one
// IsMember call per candidate set. Both paths produce the same memberships.
type Mapper struct {
	caller    api.Caller
	sets      []*object.Set
	bank      *collection.Bank
	overrides map[string]string
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithBank supplies a precomputed membership reverse index.
func WithBank(bank *collection.Bank) MapperOption {
	return func(m *Mapper) { m.bank = bank }
}

// WithTemplateOverrides supplies operator template-mapping overrides,
// keyed "<subtype>" or "<subtype>/<class>".
func WithTemplateOverrides(overrides map[string]string) MapperOption {
	return func(m *Mapper) { m.overrides = overrides }
}

// NewMapper creates a Mapper over the tenant's candidate sets.
func NewMapper(caller api.Caller, sets []*object.Set, opts ...MapperOption) *Mapper {
	m := &Mapper{caller: caller, sets: sets}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromAccount flattens a vaulted account into a migration record: template
// resolution, own-ACL classification, then membership resolution with
// conflict detection.
func (m *Mapper) FromAccount(ctx context.Context, account *object.Account) (*Record, error) {
	class, err := m.sourceClass(ctx, account)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		SecretTemplateName: templateFor(account.Type, class, m.overrides),
		SecretName:         account.DisplayName(),
		Target:             account.SourceName,
		Username:           account.Username,
		Permissions:        classifyEntries(account.AccessEntries),
		SourceID:           account.ID,
		SourceKind:         SourceAccount,
	}

	if err := m.ResolveMemberships(ctx, rec, permissions.ObjectTypeVaultAccount, account.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

// FromExternalCredential flattens a supplied credential tuple. No remote
// lookups are made; memberships are empty and conflict-free.
func (m *Mapper) FromExternalCredential(cred ExternalCredential) *Record {
	return &Record{
		SecretTemplateName: cred.TemplateName,
		SecretName:         cred.Target + `\` + cred.Username,
		Target:             cred.Target,
		Username:           cred.Username,
		Password:           cred.Password,
		Folder:             cred.Folder,
		Permissions:        []Permission{},
		FolderPermissions:  []Permission{},
		SetPermissions:     []Permission{},
		MemberOfSets:       nil,
		HasConflicts:       false,
		SourceKind:         SourceExternal,
	}
}

// FromSecret flattens a secret record the same way FromAccount does for
// accounts; the secret's text becomes the credential value when retrieved.
func (m *Mapper) FromSecret(ctx context.Context, secret *object.Secret) (*Record, error) {
	rec := &Record{
		SecretName:  secret.Name,
		Target:      secret.ParentPath,
		Password:    secret.Text,
		Permissions: classifyEntries(secret.AccessEntries),
		SourceID:    secret.ID,
		SourceKind:  SourceSecret,
	}
	if err := m.ResolveMemberships(ctx, rec, permissions.ObjectTypeDataVault, secret.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

// sourceClass fetches the subtype class qualifier used by template lookup:
// the host's computer class for local accounts, the database engine for
// database accounts. Other subtypes need none.
func (m *Mapper) sourceClass(ctx context.Context, account *object.Account) (string, error) {
	switch account.Type {
	case object.AccountLocal:
		rows, err := m.caller.Query(ctx, fmt.Sprintf("SELECT ComputerClass FROM Server WHERE ID = '%s'", account.SourceID))
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "", nil
		}
		return rows[0].String("ComputerClass"), nil
	case object.AccountDatabase:
		rows, err := m.caller.Query(ctx, fmt.Sprintf("SELECT DatabaseClass FROM VaultDatabase WHERE ID = '%s'", account.SourceID))
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "", nil
		}
		return rows[0].String("DatabaseClass"), nil
	}
	return "", nil
}

// ResolveMemberships (re)computes which candidate sets the object belongs
// to, merges their permission views into the record, and recomputes
// HasConflicts. The bank-indexed path and the per-set IsMember path are
// functionally equivalent.
func (m *Mapper) ResolveMemberships(ctx context.Context, rec *Record, objectType permissions.ObjectType, objectID string) error {
	family := permissions.FamilyOf(objectType)
	table := tableForFamily(family)

	var memberOf []*object.Set
	for _, set := range m.sets {
		if permissions.FamilyOf(set.ObjectType) != family {
			continue
		}

		isMember, err := m.membershipOf(ctx, set, table, objectID)
		if err != nil {
			return err
		}
		if isMember {
			memberOf = append(memberOf, set)
		}
	}

	folderPerms := []Permission{}
	setPerms := []Permission{}
	var folder string
	for _, set := range memberOf {
		switch set.Kind {
		case object.SetPhantom:
			folderPerms = append(folderPerms, classifyEntries(set.MemberAccessEntries)...)
			if folder == "" {
				folder = set.Name
			}
		default:
			setPerms = append(setPerms, classifyEntries(set.MemberAccessEntries)...)
		}
	}

	rec.MemberOfSets = memberOf
	rec.FolderPermissions = folderPerms
	rec.SetPermissions = setPerms
	if rec.Folder == "" {
		rec.Folder = folder
	}
	rec.HasConflicts = len(memberOf) > 1
	return nil
}

// membershipOf answers one set-membership question, preferring the bank.
func (m *Mapper) membershipOf(ctx context.Context, set *object.Set, table, objectID string) (bool, error) {
	if m.bank != nil {
		if _, banked := m.bank.MemberIDs(set.ID); banked {
			return m.bank.Contains(set.ID, objectID), nil
		}
	}
	return collection.IsMember(ctx, m.caller, set, table, objectID)
}

// tableForFamily maps an object-type family to its membership table tag.
func tableForFamily(f permissions.Family) string {
	switch f {
	case permissions.FamilySecret:
		return "DataVault"
	case permissions.FamilyAccount:
		return "VaultAccount"
	case permissions.FamilyServer:
		return "Server"
	}
	return string(f)
}
