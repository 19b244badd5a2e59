package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/byteness/pasmigrate/api"
	platformerrors "github.com/byteness/pasmigrate/errors"
)

// ClientCredentials performs the OAuth2 client-credential exchange against
// the tenant's confidential-client application and returns a bearer
// session. appID is the OAuth application id configured on the tenant.
func ClientCredentials(ctx context.Context, tenant, appID, clientID, clientSecret, scope string) (*api.Session, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	if scope != "" {
		form.Set("scope", scope)
	}

	endpoint := strings.TrimRight(tenant, "/") + "/oauth2/token/" + appID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpc := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, platformerrors.WrapRemoteCallError(err, endpoint, "")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, platformerrors.WrapRemoteCallError(err, endpoint, "")
	}
	if resp.StatusCode != http.StatusOK || token.AccessToken == "" {
		msg := token.Description
		if msg == "" {
			msg = token.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.ErrCodeAuthTokenRejected, msg,
				platformerrors.GetSuggestion(platformerrors.ErrCodeAuthTokenRejected), nil),
			"client_id", clientID)
	}

	return &api.Session{
		Tenant:      tenant,
		User:        clientID,
		BearerToken: token.AccessToken,
		Established: time.Now().UTC(),
	}, nil
}

// PromptClientSecret reads the confidential client secret from the
// terminal without echo. The environment variable PASMIGRATE_CLIENT_SECRET
// takes precedence for unattended runs.
func PromptClientSecret() (string, error) {
	if secret, ok := os.LookupEnv("PASMIGRATE_CLIENT_SECRET"); ok {
		return secret, nil
	}
	fmt.Fprint(os.Stderr, "Client secret: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(os.Stderr)
	return string(b), nil
}
