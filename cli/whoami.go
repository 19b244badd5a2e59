package cli

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

// ConfigureWhoamiCommand registers the session status command.
func ConfigureWhoamiCommand(app *kingpin.Application, p *PasMigrate) {
	cmd := app.Command("whoami", "Show the cached session for the selected profile")
	cmd.Action(func(c *kingpin.ParseContext) error {
		return WhoamiCommand(p)
	})
}

// WhoamiCommand prints the cached session state without touching the
// tenant.
func WhoamiCommand(p *PasMigrate) error {
	profile, err := p.Profile()
	if err != nil {
		return err
	}
	cache, err := p.SessionCache()
	if err != nil {
		return err
	}
	session, err := cache.Load(profile.Name)
	if err != nil {
		return err
	}

	fmt.Printf("Profile: %s\n", profile.Name)
	fmt.Printf("Tenant:  %s\n", profile.Tenant)
	if session == nil || !session.Connected() {
		fmt.Println(warnStyle.Render("No session cached; run `pasmigrate login`."))
		return nil
	}
	fmt.Printf("Session: %s\n", session)
	fmt.Printf("Since:   %s\n", session.Established.Format("2006-01-02 15:04:05 MST"))
	return nil
}
