package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

// QueryCommandInput holds the query command's parsed flags.
type QueryCommandInput struct {
	// SQL is the query text forwarded to the tenant.
	SQL string
}

// ConfigureQueryCommand registers the raw query command.
func ConfigureQueryCommand(app *kingpin.Application, p *PasMigrate) {
	input := QueryCommandInput{}

	cmd := app.Command("query", "Run a raw SQL query against the tenant")
	cmd.Arg("sql", "Query text").Required().StringVar(&input.SQL)

	cmd.Action(func(c *kingpin.ParseContext) error {
		return QueryCommand(context.Background(), input, p)
	})
}

// QueryCommand runs the query and prints the rows as JSON lines.
func QueryCommand(ctx context.Context, input QueryCommandInput, p *PasMigrate) error {
	client, _, err := p.Client()
	if err != nil {
		return err
	}

	rows, err := client.Query(ctx, input.SQL)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "%d rows\n", len(rows))
	return nil
}
