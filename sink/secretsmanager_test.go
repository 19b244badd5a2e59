package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// mockSecretsManager records calls and scripts per-name failures.
type mockSecretsManager struct {
	created  []string
	updated  []string
	existing map[string]bool
	failOn   map[string]error
}

func (m *mockSecretsManager) CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	name := *params.Name
	if err, ok := m.failOn[name]; ok {
		return nil, err
	}
	if m.existing[name] {
		return nil, &smtypes.ResourceExistsException{}
	}
	m.created = append(m.created, name)
	return &secretsmanager.CreateSecretOutput{}, nil
}

func (m *mockSecretsManager) PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	m.updated = append(m.updated, *params.SecretId)
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func TestSecretsManagerSink_Write(t *testing.T) {
	mock := &mockSecretsManager{}
	s := newSecretsManagerSinkWithClient(mock, "pasmigrate")

	report, err := s.Write(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report.Written != 2 || len(report.Failed) != 0 {
		t.Errorf("report = %+v, want 2 written", report)
	}

	// Backslashes never reach Secrets Manager names.
	if len(mock.created) != 2 || mock.created[0] != "pasmigrate/Linux/web-01_root" {
		t.Errorf("created = %v", mock.created)
	}
	if mock.created[1] != "pasmigrate/Cfg" {
		t.Errorf("created[1] = %q, want pasmigrate/Cfg (no username falls back to secret name)", mock.created[1])
	}
}

func TestSecretsManagerSink_ExistingGetsNewVersion(t *testing.T) {
	mock := &mockSecretsManager{existing: map[string]bool{"pasmigrate/Linux/web-01_root": true}}
	s := newSecretsManagerSinkWithClient(mock, "pasmigrate")

	report, err := s.Write(context.Background(), testRecords()[:1])
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report.Written != 1 {
		t.Errorf("Written = %d, want 1", report.Written)
	}
	if len(mock.updated) != 1 || mock.updated[0] != "pasmigrate/Linux/web-01_root" {
		t.Errorf("updated = %v, want the existing secret", mock.updated)
	}
}

func TestSecretsManagerSink_PerRecordFaultIsolation(t *testing.T) {
	mock := &mockSecretsManager{failOn: map[string]error{
		"pasmigrate/Linux/web-01_root": errors.New("access denied"),
	}}
	s := newSecretsManagerSinkWithClient(mock, "pasmigrate")

	report, err := s.Write(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report.Written != 1 {
		t.Errorf("Written = %d, want 1 (failure does not abort the batch)", report.Written)
	}
	if _, ok := report.Failed[`web-01\root`]; !ok {
		t.Errorf("Failed = %v, want entry for web-01\\root", report.Failed)
	}
}

func TestSecretsManagerSink_PayloadShape(t *testing.T) {
	var captured string
	mock := &mockSecretsManager{}
	s := newSecretsManagerSinkWithClient(&captureClient{mockSecretsManager: mock, value: &captured}, "")

	if _, err := s.Write(context.Background(), testRecords()[:1]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var payload struct {
		Target   string `json:"target"`
		Username string `json:"username"`
		Password string `json:"password"`
		Template string `json:"template"`
	}
	if err := json.Unmarshal([]byte(captured), &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.Target != "web-01" || payload.Username != "root" || payload.Password != "pw" {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Template != "Unix Account (SSH)" {
		t.Errorf("template = %q", payload.Template)
	}
}

// captureClient snapshots the secret string passed to CreateSecret.
type captureClient struct {
	*mockSecretsManager
	value *string
}

func (c *captureClient) CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	*c.value = *params.SecretString
	return c.mockSecretsManager.CreateSecret(ctx, params, optFns...)
}
