package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/byteness/pasmigrate/acl"
	"github.com/byteness/pasmigrate/api"
	"github.com/byteness/pasmigrate/collection"
	"github.com/byteness/pasmigrate/config"
	"github.com/byteness/pasmigrate/logging"
	"github.com/byteness/pasmigrate/migrate"
	"github.com/byteness/pasmigrate/object"
	"github.com/byteness/pasmigrate/sink"
)

// MigrateCommandInput holds the migrate command's parsed flags.
type MigrateCommandInput struct {
	// SinkName selects the record target: json, csv, or secretsmanager.
	SinkName string
	// Out is the output file for the file sinks.
	Out string
	// AWSProfile is the shared-config profile for the secretsmanager sink.
	AWSProfile string
	// AWSRegion is the region for the secretsmanager sink.
	AWSRegion string
	// Prefix is the secret-name prefix for the secretsmanager sink.
	Prefix string
	// Checkout retrieves each account's password into its record.
	Checkout bool
	// CheckoutReason is the audit reason attached to each checkout.
	CheckoutReason string
	// IncludeSecrets also maps vaulted text secrets into records.
	IncludeSecrets bool
	// BankPath overrides the profile's membership-bank snapshot path.
	BankPath string
}

// ConfigureMigrateCommand registers the migration command.
func ConfigureMigrateCommand(app *kingpin.Application, p *PasMigrate) {
	input := MigrateCommandInput{}

	cmd := app.Command("migrate", "Flatten accounts into migration records and write them to a sink")
	cmd.Flag("sink", "Record target: json, csv, or secretsmanager").
		Default("json").
		EnumVar(&input.SinkName, "json", "csv", "secretsmanager")
	cmd.Flag("out", "Output file for the json/csv sinks").
		Default("./records.json").
		StringVar(&input.Out)
	cmd.Flag("aws-profile", "AWS shared-config profile for the secretsmanager sink").
		StringVar(&input.AWSProfile)
	cmd.Flag("aws-region", "AWS region for the secretsmanager sink").
		StringVar(&input.AWSRegion)
	cmd.Flag("prefix", "Secret-name prefix for the secretsmanager sink").
		Default("pasmigrate").
		StringVar(&input.Prefix)
	cmd.Flag("checkout", "Check out each account password into its record").
		BoolVar(&input.Checkout)
	cmd.Flag("reason", "Audit reason attached to checkouts").
		Default("pasmigrate bulk migration").
		StringVar(&input.CheckoutReason)
	cmd.Flag("include-secrets", "Also map vaulted text secrets").
		BoolVar(&input.IncludeSecrets)
	cmd.Flag("bank-path", "Membership-bank snapshot (defaults to the profile's set_bank_path)").
		StringVar(&input.BankPath)

	cmd.Action(func(c *kingpin.ParseContext) error {
		return MigrateCommand(context.Background(), input, p)
	})
}

// MigrateCommand maps every vaulted account (and optionally every text
// secret) into a migration record and writes the batch to the selected
// sink. Per-object failures are reported and skipped; the run continues.
func MigrateCommand(ctx context.Context, input MigrateCommandInput, p *PasMigrate) error {
	client, profile, err := p.Client()
	if err != nil {
		return err
	}

	target, err := buildSink(ctx, input)
	if err != nil {
		return err
	}

	mapper, err := buildMapper(ctx, client, profile, input.BankPath)
	if err != nil {
		return err
	}

	logger := logging.Logger(logging.NewNopLogger())
	if p.Debug {
		logger = logging.NewJSONLogger(os.Stderr)
	}

	resolver := acl.NewResolver(client)
	var records []*migrate.Record
	var failed int

	accountRows, err := client.Query(ctx, "SELECT * FROM VaultAccount")
	if err != nil {
		return err
	}
	for _, row := range accountRows {
		rec, err := mapAccount(ctx, client, resolver, mapper, row, input)
		logMigration(logger, rec, row.String("ID"), "account", target.Name(), err)
		if err != nil {
			failed++
			fmt.Println(failStyle.Render(fmt.Sprintf("FAIL  account %s: %v", row.String("User"), err)))
			continue
		}
		records = append(records, rec)
	}

	if input.IncludeSecrets {
		secretRows, err := client.Query(ctx, "SELECT * FROM DataVault WHERE Type = 'Text'")
		if err != nil {
			return err
		}
		for _, row := range secretRows {
			rec, err := mapSecret(ctx, client, resolver, mapper, row)
			logMigration(logger, rec, row.String("ID"), "secret", target.Name(), err)
			if err != nil {
				failed++
				fmt.Println(failStyle.Render(fmt.Sprintf("FAIL  secret %s: %v", row.String("SecretName"), err)))
				continue
			}
			records = append(records, rec)
		}
	}

	report, err := target.Write(ctx, records)
	if err != nil {
		return err
	}
	for name, werr := range report.Failed {
		fmt.Println(failStyle.Render(fmt.Sprintf("FAIL  write %s: %v", name, werr)))
	}

	var conflicted int
	for _, rec := range records {
		if rec.HasConflicts {
			conflicted++
		}
	}
	fmt.Printf("\n%d records written to %s sink, %d mapping failures, %d write failures, %d with set conflicts\n",
		report.Written, target.Name(), failed, len(report.Failed), conflicted)
	return nil
}

// buildSink constructs the selected record target.
func buildSink(ctx context.Context, input MigrateCommandInput) (sink.Sink, error) {
	switch input.SinkName {
	case "json":
		return &sink.JSONSink{Path: input.Out}, nil
	case "csv":
		return &sink.CSVSink{Path: input.Out}, nil
	case "secretsmanager":
		return sink.NewSecretsManagerSink(ctx, input.AWSProfile, input.AWSRegion, input.Prefix)
	}
	return nil, fmt.Errorf("unknown sink %q", input.SinkName)
}

// buildMapper assembles the mapper: candidate sets, the optional bank
// snapshot, and the profile's template overrides.
func buildMapper(ctx context.Context, client *api.Client, profile config.Profile, bankPath string) (*migrate.Mapper, error) {
	sets, err := loadSets(ctx, client, false)
	if err != nil {
		return nil, err
	}

	opts := []migrate.MapperOption{}

	if bankPath == "" {
		bankPath = profile.SetBankPath
	}
	if bankPath != "" {
		bank, err := collection.LoadBank(bankPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			fmt.Fprintf(os.Stderr, "no bank snapshot at %s; falling back to per-set membership calls\n", bankPath)
		} else {
			opts = append(opts, migrate.WithBank(bank))
		}
	}

	overrides, err := config.LoadTemplateOverrides(profile.TemplateOverridesPath)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		opts = append(opts, migrate.WithTemplateOverrides(overrides))
	}

	return migrate.NewMapper(client, sets, opts...), nil
}

// mapAccount flattens one account row, optionally checking the password out.
func mapAccount(ctx context.Context, client *api.Client, resolver *acl.Resolver, mapper *migrate.Mapper, row api.Row, input MigrateCommandInput) (*migrate.Record, error) {
	account, err := object.NewAccount(ctx, client, resolver, row)
	if err != nil {
		return nil, err
	}
	rec, err := mapper.FromAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if input.Checkout {
		password, err := account.Checkout(ctx, client, input.CheckoutReason)
		if err != nil {
			return nil, err
		}
		rec.Password = password
		if err := account.Checkin(ctx, client); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// mapSecret flattens one text-secret row, retrieving its content first.
func mapSecret(ctx context.Context, client *api.Client, resolver *acl.Resolver, mapper *migrate.Mapper, row api.Row) (*migrate.Record, error) {
	secret, err := object.NewSecret(ctx, resolver, row)
	if err != nil {
		return nil, err
	}
	if err := secret.Retrieve(ctx, client); err != nil {
		return nil, err
	}
	return mapper.FromSecret(ctx, secret)
}

// logMigration records one mapping attempt.
func logMigration(logger logging.Logger, rec *migrate.Record, sourceID, kind, sinkName string, err error) {
	entry := logging.MigrationLogEntry{
		Timestamp:  time.Now().UTC(),
		SourceID:   sourceID,
		SourceKind: kind,
		Sink:       sinkName,
		Success:    err == nil,
	}
	if rec != nil {
		entry.SecretName = rec.SecretName
		entry.TemplateName = rec.SecretTemplateName
		entry.SetCount = len(rec.MemberOfSets)
		entry.HasConflicts = rec.HasConflicts
	}
	if err != nil {
		entry.Error = err.Error()
	}
	logger.LogMigration(entry)
}
