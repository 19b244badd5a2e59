// Package cli wires the pasmigrate command tree. Commands follow the
// ConfigureXCommand(app, globals) pattern; globals carry the profile file,
// the session cache, and the debug switch shared by every command.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/charmbracelet/huh"
	isatty "github.com/mattn/go-isatty"

	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/auth"
	"github.com/byteness/pasmigrate/config"
	"github.com/byteness/pasmigrate/logging"
)

// PasMigrate holds global CLI state shared by all commands.
type PasMigrate struct {
	// Debug enables log output and JSON query logging.
	Debug bool
	// ProfileName selects the tenant profile; prompted for when empty.
	ProfileName string
	// KeyringBackend restricts the session-cache keyring backend.
	KeyringBackend string

	configFile *config.File
	cache      *auth.SessionCache
}

// isATerminal reports whether stdout is an interactive terminal.
func isATerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ConfigFile lazily loads the profile file.
func (p *PasMigrate) ConfigFile() (*config.File, error) {
	if p.configFile == nil {
		var err error
		p.configFile, err = config.LoadFile()
		if err != nil {
			return nil, err
		}
	}
	return p.configFile, nil
}

// SessionCache lazily opens the keyring session cache.
func (p *PasMigrate) SessionCache() (*auth.SessionCache, error) {
	if p.cache == nil {
		var err error
		p.cache, err = auth.OpenSessionCache(p.KeyringBackend)
		if err != nil {
			return nil, err
		}
	}
	return p.cache, nil
}

// Profile resolves the selected profile, prompting with a picker when no
// --profile was given and stdout is a terminal.
func (p *PasMigrate) Profile() (config.Profile, error) {
	f, err := p.ConfigFile()
	if err != nil {
		return config.Profile{}, err
	}

	name := p.ProfileName
	if name == "" {
		names := f.ProfileNames()
		switch {
		case len(names) == 0:
			return config.Profile{}, fmt.Errorf("no profiles configured in %s", f.Path)
		case len(names) == 1:
			name = names[0]
		case isATerminal():
			picked, err := pickProfile(names)
			if err != nil {
				return config.Profile{}, err
			}
			name = picked
		default:
			return config.Profile{}, fmt.Errorf("--profile is required (available: %v)", names)
		}
	}
	return f.Profile(name)
}

// pickProfile asks the operator to choose a profile.
func pickProfile(names []string) (string, error) {
	var name string
	opts := make([]huh.Option[string], 0, len(names))
	for _, n := range names {
		opts = append(opts, huh.NewOption(n, n))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose tenant profile:").
				Options(opts...).
				Value(&name)))
	if err := form.Run(); err != nil {
		return "", err
	}
	return name, nil
}

// Client builds an API client over the cached session for the selected
// profile. Fails with the not-connected suggestion when no session is
// cached; login establishes one.
func (p *PasMigrate) Client() (*api.Client, config.Profile, error) {
	profile, err := p.Profile()
	if err != nil {
		return nil, config.Profile{}, err
	}
	cache, err := p.SessionCache()
	if err != nil {
		return nil, profile, err
	}
	session, err := cache.Load(profile.Name)
	if err != nil {
		return nil, profile, err
	}
	if session == nil {
		session = &api.Session{}
	}

	opts := []api.Option{}
	if p.Debug {
		opts = append(opts, api.WithLogger(logging.NewJSONLogger(os.Stderr)))
	}
	if profile.RateLimit > 0 {
		opts = append(opts, api.WithRateLimit(profile.RateLimit))
	}
	return api.NewClient(session, opts...), profile, nil
}

// ConfigureGlobals registers the global flags and returns the shared state.
func ConfigureGlobals(app *kingpin.Application) *PasMigrate {
	p := &PasMigrate{}

	app.Flag("debug", "Show debugging output").
		BoolVar(&p.Debug)

	app.Flag("profile", "Tenant profile from ~/.pasmigrate/config").
		Envar("PASMIGRATE_PROFILE").
		StringVar(&p.ProfileName)

	app.Flag("backend", "Keyring backend for the session cache").
		Envar("PASMIGRATE_BACKEND").
		StringVar(&p.KeyringBackend)

	app.PreAction(func(c *kingpin.ParseContext) error {
		if !p.Debug {
			log.SetOutput(io.Discard)
		}
		log.Printf("pasmigrate %s", app.Model().Version)
		return nil
	})

	return p
}
