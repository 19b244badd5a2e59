// Package api implements the outbound JSON RPC client for a PAS tenant.
// Every remote interaction goes through Client.Invoke, which posts a JSON
// body to a tenant endpoint and unwraps the {success, Result, Message}
// envelope. Query is the SQL front-end over the generic query endpoint.
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Session holds the authenticated transport credentials for one tenant.
// It is produced by the auth flow (or restored from the keyring cache) and
// consumed read-only by the client; multiple tenants mean multiple sessions.
type Session struct {
	// Tenant is the full https tenant URL, e.g. "https://acme.my.centrify.net".
	Tenant string `json:"tenant"`
	// User is the authenticated principal, for diagnostics only.
	User string `json:"user"`
	// BearerToken is set for OAuth2 client-credential sessions.
	BearerToken string `json:"bearer_token,omitempty"`
	// Cookie is the session cookie value for interactive MFA sessions.
	Cookie string `json:"cookie,omitempty"`
	// Established is when the session was created.
	Established time.Time `json:"established"`
}

// Connected reports whether the session carries usable credentials.
// Every public client operation checks this before touching the network.
func (s *Session) Connected() bool {
	if s == nil || s.Tenant == "" {
		return false
	}
	return s.BearerToken != "" || s.Cookie != ""
}

// apply attaches the session credentials to an outbound request.
func (s *Session) apply(req *http.Request) {
	if s.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.BearerToken)
		return
	}
	req.AddCookie(&http.Cookie{Name: ".ASPXAUTH", Value: s.Cookie})
}

// URL joins the tenant host with an endpoint path.
func (s *Session) URL(endpoint string) string {
	return strings.TrimRight(s.Tenant, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// String renders the session for status output without exposing credentials.
func (s *Session) String() string {
	if !s.Connected() {
		return "not connected"
	}
	mode := "cookie"
	if s.BearerToken != "" {
		mode = "bearer"
	}
	return fmt.Sprintf("%s as %s (%s)", s.Tenant, s.User, mode)
}
