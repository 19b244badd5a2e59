package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	platformerrors "github.com/byteness/pasmigrate/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PASMIGRATE_CONFIG_FILE", path)
	return path
}

func TestLoadFile(t *testing.T) {
	writeConfig(t, `
[profile acme]
tenant = https://acme.my.centrify.net
user = admin@acme
rate_limit = 8
setbank_path = /tmp/acme-bank.json
template_overrides = /tmp/overrides.yaml

[profile lab]
tenant = https://lab.my.centrify.net
oauth_app_id = migrator
oauth_client_id = svc-migrate@lab

[default]
something = ignored
`)

	f, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if diff := cmp.Diff([]string{"acme", "lab"}, f.ProfileNames()); diff != "" {
		t.Errorf("ProfileNames() mismatch (-want +got):\n%s", diff)
	}

	acme, err := f.Profile("acme")
	if err != nil {
		t.Fatalf("Profile(acme) error = %v", err)
	}
	if acme.Tenant != "https://acme.my.centrify.net" || acme.User != "admin@acme" {
		t.Errorf("acme = %+v", acme)
	}
	if acme.RateLimit != 8 {
		t.Errorf("RateLimit = %v, want 8", acme.RateLimit)
	}
	if acme.SetBankPath != "/tmp/acme-bank.json" || acme.TemplateOverridesPath != "/tmp/overrides.yaml" {
		t.Errorf("paths = (%q, %q)", acme.SetBankPath, acme.TemplateOverridesPath)
	}

	lab, err := f.Profile("lab")
	if err != nil {
		t.Fatalf("Profile(lab) error = %v", err)
	}
	if lab.OAuthAppID != "migrator" || lab.OAuthClientID != "svc-migrate@lab" {
		t.Errorf("lab oauth = (%q, %q)", lab.OAuthAppID, lab.OAuthClientID)
	}
}

func TestLoadFile_MissingIsEmpty(t *testing.T) {
	t.Setenv("PASMIGRATE_CONFIG_FILE", filepath.Join(t.TempDir(), "absent"))

	f, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(f.ProfileNames()) != 0 {
		t.Errorf("ProfileNames() = %v, want empty", f.ProfileNames())
	}
}

func TestProfile_NotFound(t *testing.T) {
	writeConfig(t, "[profile acme]\ntenant = https://acme.my.centrify.net\n")

	f, err := LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Profile("nope")
	if code := platformerrors.GetCode(err); code != platformerrors.ErrCodeConfigProfileNotFound {
		t.Errorf("error code = %q, want %q", code, platformerrors.ErrCodeConfigProfileNotFound)
	}
}

func TestProfile_InvalidTenant(t *testing.T) {
	writeConfig(t, "[profile bad]\ntenant = http://insecure.example\n")

	f, err := LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Profile("bad")
	if code := platformerrors.GetCode(err); code != platformerrors.ErrCodeConfigInvalidTenant {
		t.Errorf("error code = %q, want %q", code, platformerrors.ErrCodeConfigInvalidTenant)
	}
}

func TestLoadTemplateOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := "templates:\n  Local/Unix: Custom Unix\n  Domain: Custom AD\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	overrides, err := LoadTemplateOverrides(path)
	if err != nil {
		t.Fatalf("LoadTemplateOverrides() error = %v", err)
	}
	want := map[string]string{"Local/Unix": "Custom Unix", "Domain": "Custom AD"}
	if diff := cmp.Diff(want, overrides); diff != "" {
		t.Errorf("overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTemplateOverrides_EmptyPath(t *testing.T) {
	overrides, err := LoadTemplateOverrides("")
	if err != nil || overrides != nil {
		t.Errorf("LoadTemplateOverrides(\"\") = (%v, %v), want (nil, nil)", overrides, err)
	}
}
