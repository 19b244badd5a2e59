package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/collection"
	"github.com/byteness/pasmigrate/object"
	"github.com/byteness/pasmigrate/permissions"
)

// mockCaller scripts membership answers per set id and query rows per SQL.
type mockCaller struct {
	membership map[string]bool
	queries    map[string][]api.Row
	isMember   int
}

func (m *mockCaller) Invoke(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	if endpoint != collection.IsMemberEndpoint {
		return nil, fmt.Errorf("unexpected endpoint %s", endpoint)
	}
	m.isMember++
	raw, _ := json.Marshal(body)
	var req struct {
		ID string `json:"ID"`
	}
	_ = json.Unmarshal(raw, &req)
	in, ok := m.membership[req.ID]
	if !ok {
		return nil, fmt.Errorf("unexpected membership probe for %s", req.ID)
	}
	return json.RawMessage(fmt.Sprintf("%v", in)), nil
}

func (m *mockCaller) Query(ctx context.Context, sql string) ([]api.Row, error) {
	rows, ok := m.queries[sql]
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", sql)
	}
	return rows, nil
}

func memberAces(mask int64) []acl.Entry {
	return []acl.Entry{{
		Principal: acl.Principal{Name: "ops", Type: acl.PrincipalGroup},
		Grant:     permissions.NewGrant(permissions.ObjectTypeVaultAccount, mask),
	}}
}

func testAccount() *object.Account {
	return &object.Account{
		ID:         "a1",
		Type:       object.AccountLocal,
		Username:   "root",
		SourceName: "web-01",
		SourceID:   "srv-1",
		SourceType: "Server",
		AccessEntries: []acl.Entry{{
			Principal: acl.Principal{Name: "alice", Type: acl.PrincipalUser},
			Grant:     permissions.NewGrant(permissions.ObjectTypeVaultAccount, 32),
		}},
	}
}

func writeBank(t *testing.T, members map[string][]string) *collection.Bank {
	t.Helper()
	data, err := json.Marshal(map[string]any{"members": members})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	bank, err := collection.LoadBank(path)
	if err != nil {
		t.Fatal(err)
	}
	return bank
}

func TestFromAccount_WithBank(t *testing.T) {
	caller := &mockCaller{
		queries: map[string][]api.Row{
			"SELECT ComputerClass FROM Server WHERE ID = 'srv-1'": {{"ComputerClass": "Unix"}},
		},
	}
	sets := []*object.Set{
		{ID: "set-1", Name: "prod accounts", Kind: object.SetManualBucket, ObjectType: permissions.ObjectTypeVaultAccount, MemberAccessEntries: memberAces(32)},
		{ID: "fold-1", Name: "Linux", Kind: object.SetPhantom, ObjectType: permissions.ObjectTypeLocal, MemberAccessEntries: memberAces(4)},
		{ID: "other", Name: "unrelated", Kind: object.SetManualBucket, ObjectType: permissions.ObjectTypeVaultAccount, MemberAccessEntries: memberAces(1)},
	}
	bank := writeBank(t, map[string][]string{
		"set-1":  {"a1", "a2"},
		"fold-1": {"a1"},
		"other":  {"zz"},
	})

	mapper := NewMapper(caller, sets, WithBank(bank))
	rec, err := mapper.FromAccount(context.Background(), testAccount())
	if err != nil {
		t.Fatalf("FromAccount() error = %v", err)
	}

	if rec.SecretTemplateName != "Unix Account (SSH)" {
		t.Errorf("SecretTemplateName = %q, want Unix Account (SSH)", rec.SecretTemplateName)
	}
	if rec.SecretName != `web-01\root` {
		t.Errorf("SecretName = %q", rec.SecretName)
	}
	if len(rec.Permissions) != 1 || rec.Permissions[0].Bucket != BucketView {
		t.Errorf("Permissions = %+v, want one View entry", rec.Permissions)
	}
	if len(rec.MemberOfSets) != 2 {
		t.Fatalf("MemberOfSets = %d, want 2", len(rec.MemberOfSets))
	}
	if !rec.HasConflicts {
		t.Error("HasConflicts = false, want true (two memberships)")
	}
	if rec.Folder != "Linux" {
		t.Errorf("Folder = %q, want Linux", rec.Folder)
	}
	if len(rec.FolderPermissions) != 1 || rec.FolderPermissions[0].Bucket != BucketList {
		t.Errorf("FolderPermissions = %+v", rec.FolderPermissions)
	}
	if len(rec.SetPermissions) != 1 || rec.SetPermissions[0].Bucket != BucketView {
		t.Errorf("SetPermissions = %+v", rec.SetPermissions)
	}
	if caller.isMember != 0 {
		t.Errorf("bank path made %d IsMember calls, want 0", caller.isMember)
	}
}

func TestFromAccount_FallbackIsMember(t *testing.T) {
	caller := &mockCaller{
		membership: map[string]bool{"set-1": true, "other": false},
		queries: map[string][]api.Row{
			"SELECT ComputerClass FROM Server WHERE ID = 'srv-1'": {{"ComputerClass": "Unix"}},
		},
	}
	sets := []*object.Set{
		{ID: "set-1", Name: "prod accounts", Kind: object.SetManualBucket, ObjectType: permissions.ObjectTypeVaultAccount, MemberAccessEntries: memberAces(32)},
		{ID: "other", Name: "unrelated", Kind: object.SetManualBucket, ObjectType: permissions.ObjectTypeVaultAccount, MemberAccessEntries: memberAces(1)},
	}

	mapper := NewMapper(caller, sets)
	rec, err := mapper.FromAccount(context.Background(), testAccount())
	if err != nil {
		t.Fatalf("FromAccount() error = %v", err)
	}

	if len(rec.MemberOfSets) != 1 || rec.MemberOfSets[0].ID != "set-1" {
		t.Errorf("MemberOfSets = %+v, want [set-1]", rec.MemberOfSets)
	}
	if rec.HasConflicts {
		t.Error("HasConflicts = true, want false (single membership)")
	}
	if caller.isMember != 2 {
		t.Errorf("fallback made %d IsMember calls, want 2", caller.isMember)
	}
}

func TestResolveMemberships_FamilyFilter(t *testing.T) {
	caller := &mockCaller{
		membership: map[string]bool{"acct-set": false},
		queries: map[string][]api.Row{
			"SELECT ComputerClass FROM Server WHERE ID = 'srv-1'": {{"ComputerClass": "Unix"}},
		},
	}
	sets := []*object.Set{
		{ID: "acct-set", Kind: object.SetManualBucket, ObjectType: permissions.ObjectTypeVaultAccount},
		// A secret set is never probed for an account object.
		{ID: "secret-set", Kind: object.SetManualBucket, ObjectType: permissions.ObjectTypeDataVault},
	}

	mapper := NewMapper(caller, sets)
	if _, err := mapper.FromAccount(context.Background(), testAccount()); err != nil {
		t.Fatalf("FromAccount() error = %v", err)
	}
	if caller.isMember != 1 {
		t.Errorf("probed %d sets, want 1 (family filter)", caller.isMember)
	}
}

func TestFromExternalCredential(t *testing.T) {
	mapper := NewMapper(&mockCaller{}, nil)

	rec := mapper.FromExternalCredential(ExternalCredential{
		Target:       "legacy-db",
		Username:     "sa",
		Password:     "pw",
		Folder:       "imported",
		TemplateName: "SQL Server Account",
	})

	if rec.SecretName != `legacy-db\sa` {
		t.Errorf("SecretName = %q", rec.SecretName)
	}
	if rec.SourceKind != SourceExternal {
		t.Errorf("SourceKind = %q, want external", rec.SourceKind)
	}
	if rec.HasConflicts || len(rec.MemberOfSets) != 0 {
		t.Errorf("external record has memberships: %+v", rec.MemberOfSets)
	}
	if rec.Folder != "imported" || rec.Password != "pw" {
		t.Errorf("record = %+v", rec)
	}
}

func TestFromSecret(t *testing.T) {
	caller := &mockCaller{membership: map[string]bool{"secret-set": true}}
	sets := []*object.Set{
		{ID: "secret-set", Name: "configs", Kind: object.SetManualBucket, ObjectType: permissions.ObjectTypeDataVault, MemberAccessEntries: memberAces(65536)},
	}

	secret := &object.Secret{
		ID: "s1", Name: "Cfg", Type: object.SecretText, ParentPath: "infra",
		Text: "hunter2",
		AccessEntries: []acl.Entry{{
			Principal: acl.Principal{Name: "alice", Type: acl.PrincipalUser},
			Grant:     permissions.NewGrant(permissions.ObjectTypeSecret, 65536),
		}},
	}

	rec, err := NewMapper(caller, sets).FromSecret(context.Background(), secret)
	if err != nil {
		t.Fatalf("FromSecret() error = %v", err)
	}
	if rec.SourceKind != SourceSecret {
		t.Errorf("SourceKind = %q, want secret", rec.SourceKind)
	}
	if rec.Password != "hunter2" {
		t.Errorf("Password = %q", rec.Password)
	}
	if len(rec.Permissions) != 1 || rec.Permissions[0].Bucket != BucketView {
		t.Errorf("Permissions = %+v", rec.Permissions)
	}
	if len(rec.MemberOfSets) != 1 || rec.HasConflicts {
		t.Errorf("memberships = %+v, HasConflicts = %v", rec.MemberOfSets, rec.HasConflicts)
	}
}
