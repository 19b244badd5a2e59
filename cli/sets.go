package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/collection"
	"github.com/byteness/pasmigrate/object"
)

// SetsCommandInput holds the sets command's parsed flags.
type SetsCommandInput struct {
	// Members resolves and prints member names per set.
	Members bool
	// Bank builds the membership reverse index and saves a snapshot.
	Bank bool
	// BankPath overrides the profile's snapshot path.
	BankPath string
	// Workers bounds the bank build pool.
	Workers int
}

// ConfigureSetsCommand registers the set listing and bank build commands.
func ConfigureSetsCommand(app *kingpin.Application, p *PasMigrate) {
	input := SetsCommandInput{}

	cmd := app.Command("sets", "List sets, infer owners, optionally build the membership bank")
	cmd.Flag("members", "Resolve and print member names").
		BoolVar(&input.Members)
	cmd.Flag("bank", "Build the membership bank and save a snapshot").
		BoolVar(&input.Bank)
	cmd.Flag("bank-path", "Snapshot path for --bank (defaults to the profile's set_bank_path)").
		StringVar(&input.BankPath)
	cmd.Flag("workers", "Worker pool size for --bank").
		Default(fmt.Sprintf("%d", collection.DefaultBankWorkers)).
		IntVar(&input.Workers)

	cmd.Action(func(c *kingpin.ParseContext) error {
		return SetsCommand(context.Background(), input, p)
	})
}

// SetsCommand lists every collection with its kind, inferred owner, and
// member counts, and optionally builds and saves the membership bank.
func SetsCommand(ctx context.Context, input SetsCommandInput, p *PasMigrate) error {
	client, profile, err := p.Client()
	if err != nil {
		return err
	}

	sets, err := loadSets(ctx, client, input.Members)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tOBJECT TYPE\tOWNER\tMEMBERS")
	for _, s := range sets {
		members := "-"
		if s.Kind == object.SetSqlDynamic {
			members = "dynamic"
		} else if input.Members {
			members = fmt.Sprintf("%d", len(s.Members))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Kind, s.ObjectType, s.PotentialOwner, members)
	}
	w.Flush()

	if !input.Bank {
		return nil
	}

	path := input.BankPath
	if path == "" {
		path = profile.SetBankPath
	}
	if path == "" {
		return fmt.Errorf("--bank needs --bank-path or the profile's set_bank_path key")
	}

	bank, report := collection.BuildBank(ctx, client, sets, input.Workers)
	for setID, err := range report.Failed {
		fmt.Println(failStyle.Render(fmt.Sprintf("FAIL  set %s: %v", setID, err)))
	}
	if err := bank.Save(path); err != nil {
		return err
	}
	fmt.Printf("\nBank: %d sets built, %d skipped, %d failed; snapshot saved to %s\n",
		report.Built, report.Skipped, len(report.Failed), path)
	return nil
}

// loadSets queries every collection, resolves ACLs and owners, and
// optionally the member lists. One failed set skips that set, not the run.
func loadSets(ctx context.Context, client api.Caller, members bool) ([]*object.Set, error) {
	rows, err := client.Query(ctx, "SELECT * FROM Sets")
	if err != nil {
		return nil, err
	}

	resolver := acl.NewResolver(client)
	sets := make([]*object.Set, 0, len(rows))
	for _, row := range rows {
		s, err := object.NewSet(ctx, resolver, row)
		if err != nil {
			fmt.Fprintln(os.Stderr, failStyle.Render(fmt.Sprintf("skipping set %s: %v", row.String("Name"), err)))
			continue
		}
		collection.DetermineOwner(s)
		if members && s.Kind != object.SetSqlDynamic {
			if err := collection.ResolveMembers(ctx, client, s); err != nil {
				fmt.Fprintln(os.Stderr, failStyle.Render(fmt.Sprintf("members of %s: %v", s.Name, err)))
			}
		}
		sets = append(sets, s)
	}
	return sets, nil
}
