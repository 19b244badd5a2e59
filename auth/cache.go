package auth

import (
	"encoding/json"
	"fmt"

	"github.com/byteness/keyring"

	"github.com/byteness/pasmigrate/api"
)

// KeyringConfigDefaults is the session-cache keyring configuration.
// Sessions never sync off the machine and are unavailable when locked.
var KeyringConfigDefaults = keyring.Config{
	ServiceName:             "pasmigrate",
	LibSecretCollectionName: "pasmigrate",
	KWalletAppID:            "pasmigrate",
	KWalletFolder:           "pasmigrate",
	WinCredPrefix:           "pasmigrate",
	FileDir:                 "~/.pasmigrate/keys/",

	KeychainTrustApplication:       true,
	KeychainAccessibleWhenUnlocked: false,
	KeychainSynchronizable:         false,

	KeyCtlScope: "user",
	KeyCtlPerm:  0x3f000000,
}

// SessionCache stores established sessions in the OS keyring keyed by
// profile name, so re-runs inside the session lifetime skip the MFA
// handshake.
type SessionCache struct {
	ring keyring.Keyring
}

// OpenSessionCache opens the keyring-backed cache. backend optionally
// restricts the keyring backend type ("" for automatic selection).
func OpenSessionCache(backend string) (*SessionCache, error) {
	cfg := KeyringConfigDefaults
	if backend != "" {
		cfg.AllowedBackends = []keyring.BackendType{keyring.BackendType(backend)}
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &SessionCache{ring: ring}, nil
}

// Save stores a session under the profile name.
func (c *SessionCache) Save(profile string, session *api.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.ring.Set(keyring.Item{
		Key:         profile,
		Data:        data,
		Label:       fmt.Sprintf("pasmigrate session (%s)", profile),
		Description: "PAS tenant session",
	})
}

// Load restores the session cached for a profile. Returns (nil, nil) when
// no session is cached.
func (c *SessionCache) Load(profile string) (*api.Session, error) {
	item, err := c.ring.Get(profile)
	if err == keyring.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session api.Session
	if err := json.Unmarshal(item.Data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a cached session.
func (c *SessionCache) Delete(profile string) error {
	err := c.ring.Remove(profile)
	if err == keyring.ErrKeyNotFound {
		return nil
	}
	return err
}
