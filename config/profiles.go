// Package config loads the pasmigrate configuration: the ini profile file
// describing tenants and the yaml template-mapping override file consumed
// by the migration mapper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	platformerrors "github.com/byteness/pasmigrate/errors"
)

// DefaultConfigPath is the profile file location, overridable with the
// PASMIGRATE_CONFIG_FILE environment variable.
const DefaultConfigPath = "~/.pasmigrate/config"

// Profile describes one tenant connection.
type Profile struct {
	// Name is the profile's section name.
	Name string
	// Tenant is the full https tenant URL.
	Tenant string
	// User is the login user for interactive MFA sessions.
	User string
	// OAuthAppID is the OAuth application id for client-credential
	// sessions; empty selects the interactive flow.
	OAuthAppID string
	// OAuthClientID is the confidential client id.
	OAuthClientID string
	// RateLimit caps outbound calls per second; 0 means unlimited.
	RateLimit float64
	// SetBankPath is the membership snapshot file for this tenant.
	SetBankPath string
	// TemplateOverridesPath points at a yaml template-mapping override
	// file for migration.
	TemplateOverridesPath string
}

// File is a loaded profile file.
type File struct {
	// Path is where the file was loaded from.
	Path string

	profiles map[string]Profile
	order    []string
}

// ConfigPath resolves the profile file path, expanding the leading tilde.
func ConfigPath() (string, error) {
	path := DefaultConfigPath
	if env, ok := os.LookupEnv("PASMIGRATE_CONFIG_FILE"); ok {
		path = env
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}

// LoadFile loads the profile file. A missing file yields an empty File,
// not an error; commands requiring a profile fail later with a pointed
// message.
func LoadFile() (*File, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	f := &File{Path: path, profiles: make(map[string]Profile)}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	for _, section := range cfg.Sections() {
		// Sections are named [profile acme]; anything else is ignored.
		if !strings.HasPrefix(section.Name(), "profile ") {
			continue
		}
		name := strings.TrimPrefix(section.Name(), "profile ")
		p := Profile{
			Name:                  name,
			Tenant:                section.Key("tenant").String(),
			User:                  section.Key("user").String(),
			OAuthAppID:            section.Key("oauth_app_id").String(),
			OAuthClientID:         section.Key("oauth_client_id").String(),
			SetBankPath:           section.Key("setbank_path").String(),
			TemplateOverridesPath: section.Key("template_overrides").String(),
		}
		p.RateLimit, _ = section.Key("rate_limit").Float64()
		f.profiles[name] = p
		f.order = append(f.order, name)
	}
	return f, nil
}

// ProfileNames returns the profile names in file order.
func (f *File) ProfileNames() []string {
	return append([]string(nil), f.order...)
}

// Profile looks up one profile and validates its tenant URL.
func (f *File) Profile(name string) (Profile, error) {
	p, ok := f.profiles[name]
	if !ok {
		return Profile{}, platformerrors.WithContext(
			platformerrors.New(platformerrors.ErrCodeConfigProfileNotFound,
				fmt.Sprintf("profile %q not found in %s", name, f.Path),
				platformerrors.GetSuggestion(platformerrors.ErrCodeConfigProfileNotFound), nil),
			"profile", name)
	}
	if !strings.HasPrefix(p.Tenant, "https://") {
		return Profile{}, platformerrors.WithContext(
			platformerrors.New(platformerrors.ErrCodeConfigInvalidTenant,
				fmt.Sprintf("profile %q has tenant %q", name, p.Tenant),
				platformerrors.GetSuggestion(platformerrors.ErrCodeConfigInvalidTenant), nil),
			"profile", name)
	}
	return p, nil
}
