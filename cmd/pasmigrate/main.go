package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/byteness/pasmigrate/cli"
)

// Version is provided at compile time
var Version = "dev"

func main() {
	app := kingpin.New("pasmigrate", "Inventory, export, and migration tooling for a PAS tenant")
	app.Version(Version)

	p := cli.ConfigureGlobals(app)

	// Session commands
	cli.ConfigureLoginCommand(app, p)
	cli.ConfigureLogoutCommand(app, p)
	cli.ConfigureWhoamiCommand(app, p)

	// Inventory commands
	cli.ConfigureQueryCommand(app, p)
	cli.ConfigureSetsCommand(app, p)
	cli.ConfigureStatsCommand(app, p)

	// Migration commands
	cli.ConfigureExportCommand(app, p)
	cli.ConfigureMigrateCommand(app, p)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
