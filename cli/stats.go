package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/metrics"
	"github.com/byteness/pasmigrate/object"
)

// StatsCommandInput holds the stats command's parsed flags.
type StatsCommandInput struct {
	// Members resolves set member lists for the member histogram.
	Members bool
}

// ConfigureStatsCommand registers the tenant inventory statistics command.
func ConfigureStatsCommand(app *kingpin.Application, p *PasMigrate) {
	input := StatsCommandInput{}

	cmd := app.Command("stats", "Summarize the tenant's secrets, accounts, and sets")
	cmd.Flag("members", "Resolve set members for the member-count histogram").
		BoolVar(&input.Members)

	cmd.Action(func(c *kingpin.ParseContext) error {
		return StatsCommand(context.Background(), input, p)
	})
}

// StatsCommand fetches the tenant inventory and prints descriptive
// summaries. Objects that fail to materialize are skipped and counted.
func StatsCommand(ctx context.Context, input StatsCommandInput, p *PasMigrate) error {
	client, _, err := p.Client()
	if err != nil {
		return err
	}
	resolver := acl.NewResolver(client)

	var skipped int

	secretRows, err := client.Query(ctx, "SELECT * FROM DataVault")
	if err != nil {
		return err
	}
	secrets := make([]*object.Secret, 0, len(secretRows))
	for _, row := range secretRows {
		s, err := object.NewSecret(ctx, resolver, row)
		if err != nil {
			skipped++
			continue
		}
		secrets = append(secrets, s)
	}

	accountRows, err := client.Query(ctx, "SELECT * FROM VaultAccount")
	if err != nil {
		return err
	}
	accounts := make([]*object.Account, 0, len(accountRows))
	for _, row := range accountRows {
		a, err := object.NewAccount(ctx, client, resolver, row)
		if err != nil {
			skipped++
			continue
		}
		accounts = append(accounts, a)
	}

	sets, err := loadSets(ctx, client, input.Members)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	ss := metrics.SummarizeSecrets(secrets)
	fmt.Fprintf(w, "SECRETS\t%d\n", ss.Total)
	for _, k := range sortedKeys(ss.ByType) {
		fmt.Fprintf(w, "  %s\t%d\n", k, ss.ByType[object.SecretType(k)])
	}
	fmt.Fprintf(w, "  workflow-enabled\t%d\n", ss.WorkflowEnabled)
	fmt.Fprintf(w, "  file bytes\t%d\n", ss.TotalFileBytes)
	if ss.Unparsed > 0 {
		fmt.Fprintf(w, "  unparsed sizes\t%d\n", ss.Unparsed)
	}

	as := metrics.SummarizeAccounts(accounts)
	fmt.Fprintf(w, "ACCOUNTS\t%d\n", as.Total)
	for _, k := range sortedKeys(as.ByType) {
		fmt.Fprintf(w, "  %s\t%d\n", k, as.ByType[object.AccountType(k)])
	}
	fmt.Fprintf(w, "  managed\t%d\n", as.Managed)
	fmt.Fprintf(w, "  workflow-enabled\t%d\n", as.WorkflowEnabled)
	fmt.Fprintf(w, "  vault-linked\t%d\n", as.Vaulted)

	cs := metrics.SummarizeSets(sets)
	fmt.Fprintf(w, "SETS\t%d\n", cs.Total)
	for _, k := range sortedKeys(cs.ByKind) {
		fmt.Fprintf(w, "  %s\t%d\n", k, cs.ByKind[object.SetKind(k)])
	}
	fmt.Fprintf(w, "  with single owner\t%d\n", cs.WithOwner)
	if input.Members {
		for _, bucket := range []string{"0", "1-10", "11-100", "100+"} {
			if n := cs.MemberHistogram[bucket]; n > 0 {
				fmt.Fprintf(w, "  members %s\t%d\n", bucket, n)
			}
		}
	}

	w.Flush()
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "%d objects skipped (malformed rows or ACL failures)\n", skipped)
	}
	return nil
}

// sortedKeys returns the map's keys as sorted strings for stable output.
func sortedKeys[K ~string, V any](m map[K]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}
