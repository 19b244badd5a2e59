package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/permissions"
)

// mockCaller scripts Invoke responses by endpoint.
type mockCaller struct {
	responses map[string]string
	lastBody  any
}

func (m *mockCaller) Invoke(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	m.lastBody = body
	resp, ok := m.responses[endpoint]
	if !ok {
		return nil, fmt.Errorf("unexpected endpoint %s", endpoint)
	}
	return json.RawMessage(resp), nil
}

func (m *mockCaller) Query(ctx context.Context, sql string) ([]api.Row, error) {
	return nil, fmt.Errorf("unexpected query %q", sql)
}

func TestRowAces(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		RowAcesEndpoint: `[
			{"Type":"User","Principal":"alice","PrincipalId":"u1","Rights":253,"Inherited":false},
			{"Type":"Role","Principal":"admins","PrincipalId":"r1","Rights":"12","Inherited":true},
			{"Type":"GlobalRoot","Principal":"root","Rights":1},
			{"Type":"User","Principal":"Technical Support Access","Rights":253}
		]`,
	}}

	entries, err := NewResolver(caller).RowAces(context.Background(), permissions.ObjectTypeSet, "set-1")
	if err != nil {
		t.Fatalf("RowAces() error = %v", err)
	}

	// GlobalRoot and the reserved support principal are filtered out.
	if len(entries) != 2 {
		t.Fatalf("RowAces() returned %d entries, want 2", len(entries))
	}

	alice := entries[0]
	if alice.Principal.Name != "alice" || alice.Principal.Type != PrincipalUser {
		t.Errorf("entries[0].Principal = %+v", alice.Principal)
	}
	if alice.Grant.Mask != permissions.OwnerMask {
		t.Errorf("alice mask = %d, want %d", alice.Grant.Mask, permissions.OwnerMask)
	}
	if alice.SourceID != "set-1" {
		t.Errorf("alice SourceID = %q, want set-1", alice.SourceID)
	}

	admins := entries[1]
	if admins.Principal.Type != PrincipalRole || !admins.Inherited {
		t.Errorf("entries[1] = %+v, want inherited role", admins)
	}
	if admins.Grant.Mask != 12 {
		t.Errorf("admins mask = %d, want 12 (string Rights)", admins.Grant.Mask)
	}
}

func TestRowAces_SuperRoleNormalized(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		RowAcesEndpoint: `[{"Type":"Super","Principal":"System Administrator","Rights":2147483647}]`,
	}}

	entries, err := NewResolver(caller).RowAces(context.Background(), permissions.ObjectTypeSecret, "s1")
	if err != nil {
		t.Fatalf("RowAces() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	// The built-in role's unbounded grant is rewritten to bare read.
	e := entries[0]
	if e.Principal.Type != PrincipalRole {
		t.Errorf("principal type = %q, want Role", e.Principal.Type)
	}
	if e.Grant.Mask != permissions.ReadBit {
		t.Errorf("mask = %d, want %d", e.Grant.Mask, permissions.ReadBit)
	}
}

func TestRowAces_MalformedRowFailsResolution(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		RowAcesEndpoint: `[
			{"Type":"User","Principal":"alice","Rights":4},
			{"Type":"User","Principal":"bob","Rights":"garbage"}
		]`,
	}}

	_, err := NewResolver(caller).RowAces(context.Background(), permissions.ObjectTypeSecret, "s1")
	if err == nil {
		t.Fatal("RowAces() with malformed row returned nil error")
	}

	var entryErr *EntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("error type = %T, want *EntryError", err)
	}
	if entryErr.RawRow["Principal"] != "bob" {
		t.Errorf("EntryError.RawRow.Principal = %v, want bob", entryErr.RawRow["Principal"])
	}
}

func TestRowAces_MissingPrincipalName(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		RowAcesEndpoint: `[{"Type":"User","Rights":4}]`,
	}}

	_, err := NewResolver(caller).RowAces(context.Background(), permissions.ObjectTypeSecret, "s1")
	var entryErr *EntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("error = %v, want *EntryError", err)
	}
}

func TestRowAces_UnknownPrincipalType(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		RowAcesEndpoint: `[{"Type":"Robot","Principal":"r2d2","Rights":4}]`,
	}}

	_, err := NewResolver(caller).RowAces(context.Background(), permissions.ObjectTypeSecret, "s1")
	var entryErr *EntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("error = %v, want *EntryError", err)
	}
	if entryErr.PartialGrant.Mask != 4 {
		t.Errorf("PartialGrant.Mask = %d, want 4", entryErr.PartialGrant.Mask)
	}
}

func TestCollectionAces_UsesCollectionEndpoint(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		CollectionAcesEndpoint: `[{"Type":"Group","Principal":"ops","Rights":36}]`,
	}}

	entries, err := NewResolver(caller).CollectionAces(context.Background(), permissions.ObjectTypeVaultAccount, "set-9")
	if err != nil {
		t.Fatalf("CollectionAces() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Principal.Type != PrincipalGroup {
		t.Fatalf("entries = %+v", entries)
	}

	req, ok := caller.lastBody.(aceRequest)
	if !ok {
		t.Fatalf("request body type = %T, want aceRequest", caller.lastBody)
	}
	if req.Table != "VaultAccount" || req.ID != "set-9" {
		t.Errorf("request = %+v, want Table=VaultAccount ID=set-9", req)
	}
}

func TestTableFor(t *testing.T) {
	tests := []struct {
		objectType permissions.ObjectType
		want       string
	}{
		{permissions.ObjectTypeSecret, "DataVault"},
		{permissions.ObjectTypeDataVault, "DataVault"},
		{permissions.ObjectTypeSet, "Collections"},
		{permissions.ObjectTypeFolder, "Collections"},
		{permissions.ObjectTypeServer, "Server"},
		{permissions.ObjectTypeVaultAccount, "VaultAccount"},
		{permissions.ObjectTypeVaultDatabase, "VaultDatabase"},
		{permissions.ObjectType("Widget"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.objectType), func(t *testing.T) {
			if got := TableFor(tt.objectType); got != tt.want {
				t.Errorf("TableFor(%s) = %q, want %q", tt.objectType, got, tt.want)
			}
		})
	}
}

func TestRowAces_UnmappedObjectType(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{}}
	_, err := NewResolver(caller).RowAces(context.Background(), permissions.ObjectType("Widget"), "w1")
	if err == nil {
		t.Fatal("RowAces() with unmapped object type returned nil error")
	}
}
