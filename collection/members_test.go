package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/object"
)

// mockCaller scripts Invoke responses keyed "endpoint:setID" and Query
// responses keyed by SQL.
type mockCaller struct {
	responses map[string]string
	queries   map[string][]api.Row
	calls     int
}

func (m *mockCaller) Invoke(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	m.calls++
	raw, _ := json.Marshal(body)
	var keyed struct {
		ID     string `json:"ID"`
		Parent string `json:"Parent"`
	}
	_ = json.Unmarshal(raw, &keyed)
	id := keyed.ID
	if id == "" {
		id = keyed.Parent
	}
	resp, ok := m.responses[endpoint+":"+id]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s for %s", endpoint, id)
	}
	return json.RawMessage(resp), nil
}

func (m *mockCaller) Query(ctx context.Context, sql string) ([]api.Row, error) {
	rows, ok := m.queries[sql]
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", sql)
	}
	return rows, nil
}

func TestMemberIDs_ManualSet(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		GetMembersEndpoint + ":set-1": `[
			{"Key":"a1","TableName":"VaultAccount"},
			{"Key":"a2","TableName":"VaultAccount"}
		]`,
	}}

	set := &object.Set{ID: "set-1", Kind: object.SetManualBucket}
	ids, err := MemberIDs(context.Background(), caller, set)
	if err != nil {
		t.Fatalf("MemberIDs() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a1", "a2"}, ids); diff != "" {
		t.Errorf("MemberIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestMemberIDs_DynamicSetIsOpaque(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{}}
	set := &object.Set{ID: "dyn-1", Kind: object.SetSqlDynamic}

	ids, err := MemberIDs(context.Background(), caller, set)
	if err != nil {
		t.Fatalf("MemberIDs() error = %v", err)
	}
	if ids != nil {
		t.Errorf("MemberIDs() = %v, want nil for dynamic set", ids)
	}
	if caller.calls != 0 {
		t.Errorf("dynamic set made %d remote calls, want 0", caller.calls)
	}
}

func TestMemberIDs_PhantomSetUsesFolderListing(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		folderChildrenEndpoint + ":fold-1": `{"Results":[
			{"Row":{"ID":"s1"}},
			{"Row":{"ID":"s2"}}
		]}`,
	}}

	set := &object.Set{ID: "fold-1", Kind: object.SetPhantom}
	ids, err := MemberIDs(context.Background(), caller, set)
	if err != nil {
		t.Fatalf("MemberIDs() error = %v", err)
	}
	if diff := cmp.Diff([]string{"s1", "s2"}, ids); diff != "" {
		t.Errorf("MemberIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveMembers_AccountCompositeName(t *testing.T) {
	caller := &mockCaller{
		responses: map[string]string{
			GetMembersEndpoint + ":set-1": `[{"Key":"a1","TableName":"VaultAccount"}]`,
		},
		queries: map[string][]api.Row{
			"SELECT User, Name FROM VaultAccount WHERE ID = 'a1'": {
				{"User": "root", "Name": "web-01"},
			},
		},
	}

	set := &object.Set{ID: "set-1", Kind: object.SetManualBucket}
	if err := ResolveMembers(context.Background(), caller, set); err != nil {
		t.Fatalf("ResolveMembers() error = %v", err)
	}
	if len(set.Members) != 1 {
		t.Fatalf("Members = %d, want 1", len(set.Members))
	}
	if set.Members[0].Name != `web-01\root` {
		t.Errorf("member name = %q, want web-01\\root", set.Members[0].Name)
	}
	if diff := cmp.Diff([]string{"a1"}, set.MemberIDs); diff != "" {
		t.Errorf("MemberIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestIsMember(t *testing.T) {
	caller := &mockCaller{responses: map[string]string{
		IsMemberEndpoint + ":set-1": `true`,
		IsMemberEndpoint + ":set-2": `false`,
	}}

	in, err := IsMember(context.Background(), caller, &object.Set{ID: "set-1"}, "VaultAccount", "a1")
	if err != nil || !in {
		t.Errorf("IsMember(set-1) = (%v, %v), want (true, nil)", in, err)
	}
	out, err := IsMember(context.Background(), caller, &object.Set{ID: "set-2"}, "VaultAccount", "a1")
	if err != nil || out {
		t.Errorf("IsMember(set-2) = (%v, %v), want (false, nil)", out, err)
	}
}
