package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/logging"
	"github.com/byteness/pasmigrate/object"
)

// Styles for export summaries.
var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// ExportCommandInput holds the export command's parsed flags.
type ExportCommandInput struct {
	// Dir is the export base directory.
	Dir string
	// Folder restricts the export to one parent path.
	Folder string
}

// ConfigureExportCommand registers the bulk secret export command.
func ConfigureExportCommand(app *kingpin.Application, p *PasMigrate) {
	input := ExportCommandInput{}

	cmd := app.Command("export", "Retrieve and export all secrets to disk")
	cmd.Flag("dir", "Export base directory").
		Default("./export").
		StringVar(&input.Dir)
	cmd.Flag("folder", "Only export secrets under this parent path").
		StringVar(&input.Folder)

	cmd.Action(func(c *kingpin.ParseContext) error {
		return ExportCommand(context.Background(), input, p)
	})
}

// ExportCommand runs the fault-isolated bulk export loop: a failure on one
// secret is reported and the batch moves on; nothing is retried.
func ExportCommand(ctx context.Context, input ExportCommandInput, p *PasMigrate) error {
	client, _, err := p.Client()
	if err != nil {
		return err
	}
	resolver := acl.NewResolver(client)

	sql := "SELECT * FROM DataVault"
	if input.Folder != "" {
		sql = fmt.Sprintf("SELECT * FROM DataVault WHERE ParentPath = '%s'", input.Folder)
	}
	rows, err := client.Query(ctx, sql)
	if err != nil {
		return err
	}

	logger := logging.Logger(logging.NewNopLogger())
	if p.Debug {
		logger = logging.NewJSONLogger(os.Stderr)
	}

	fsys := object.OSFS{}
	dl := object.NewHTTPDownloader()

	var exported, skipped, failed int
	for _, row := range rows {
		name := row.String("SecretName")
		result, err := exportOne(ctx, client, resolver, fsys, dl, input.Dir, row)
		entry := logging.ExportLogEntry{
			Timestamp:  time.Now().UTC(),
			SecretID:   row.String("ID"),
			SecretName: name,
			Action:     "export",
			Path:       result.Path,
			Skipped:    result.Skipped,
			Success:    err == nil,
		}
		switch {
		case err != nil:
			failed++
			entry.Error = err.Error()
			fmt.Println(failStyle.Render(fmt.Sprintf("FAIL  %s: %v", name, err)))
		case result.Skipped:
			skipped++
			fmt.Println(warnStyle.Render(fmt.Sprintf("SKIP  %s (already exported)", name)))
		default:
			exported++
			fmt.Println(okStyle.Render(fmt.Sprintf("OK    %s -> %s", name, result.Path)))
		}
		logger.LogExport(entry)
	}

	fmt.Printf("\n%d exported, %d skipped, %d failed of %d secrets\n", exported, skipped, failed, len(rows))
	return nil
}

// exportOne constructs, retrieves, and exports a single secret.
func exportOne(ctx context.Context, client api.Caller, resolver *acl.Resolver, fsys object.FS, dl object.Downloader, dir string, row api.Row) (object.ExportResult, error) {
	secret, err := object.NewSecret(ctx, resolver, row)
	if err != nil {
		return object.ExportResult{}, err
	}
	if err := secret.Retrieve(ctx, client); err != nil {
		return object.ExportResult{}, err
	}
	return secret.Export(ctx, fsys, dl, dir)
}
