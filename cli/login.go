package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/auth"
)

// LoginCommandInput holds the login command's parsed flags.
type LoginCommandInput struct {
	// User overrides the profile's login user.
	User string
	// OAuth selects the client-credential flow over interactive MFA.
	OAuth bool
	// Federated opens the tenant login page in the browser instead of
	// running the native handshake.
	Federated bool
}

// ConfigureLoginCommand registers the login command.
func ConfigureLoginCommand(app *kingpin.Application, p *PasMigrate) {
	input := LoginCommandInput{}

	cmd := app.Command("login", "Authenticate to the tenant and cache the session")
	cmd.Flag("user", "Login user (defaults to the profile's user)").
		StringVar(&input.User)
	cmd.Flag("oauth", "Use the OAuth2 client-credential flow").
		BoolVar(&input.OAuth)
	cmd.Flag("federated", "Open the browser for IdP-federated login").
		BoolVar(&input.Federated)

	cmd.Action(func(c *kingpin.ParseContext) error {
		return LoginCommand(context.Background(), input, p)
	})
}

// LoginCommand establishes a session and stores it in the keyring cache.
func LoginCommand(ctx context.Context, input LoginCommandInput, p *PasMigrate) error {
	profile, err := p.Profile()
	if err != nil {
		return err
	}

	if input.Federated {
		fmt.Printf("Opening %s in the browser; complete the IdP login there.\n", profile.Tenant)
		return auth.OpenFederatedLogin(profile.Tenant)
	}

	session, err := establishSession(ctx, input, profile.Tenant, profile.User, profile.OAuthAppID, profile.OAuthClientID)
	if err != nil {
		return err
	}

	cache, err := p.SessionCache()
	if err != nil {
		return err
	}
	if err := cache.Save(profile.Name, session); err != nil {
		return err
	}

	fmt.Printf("Session established: %s\n", session)
	return nil
}

// establishSession runs either the OAuth2 or the interactive MFA flow.
func establishSession(ctx context.Context, input LoginCommandInput, tenant, profileUser, appID, clientID string) (*api.Session, error) {
	if input.OAuth {
		if appID == "" || clientID == "" {
			return nil, fmt.Errorf("profile has no oauth_app_id/oauth_client_id configured")
		}
		secret, err := auth.PromptClientSecret()
		if err != nil {
			return nil, err
		}
		return auth.ClientCredentials(ctx, tenant, appID, clientID, secret, "")
	}

	user := input.User
	if user == "" {
		user = profileUser
	}
	if user == "" {
		return nil, fmt.Errorf("no login user: set --user or the profile's user key")
	}
	return auth.NewAuthenticator(tenant).Login(ctx, user)
}

// ConfigureLogoutCommand registers the logout command.
func ConfigureLogoutCommand(app *kingpin.Application, p *PasMigrate) {
	cmd := app.Command("logout", "Discard the cached tenant session")
	cmd.Action(func(c *kingpin.ParseContext) error {
		profile, err := p.Profile()
		if err != nil {
			return err
		}
		cache, err := p.SessionCache()
		if err != nil {
			return err
		}
		if err := cache.Delete(profile.Name); err != nil {
			return err
		}
		fmt.Printf("Session for %s discarded.\n", profile.Name)
		return nil
	})
}
