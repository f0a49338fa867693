// Package apply provides the apply command.
package apply

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/cmdutil"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/output"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/table"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/seeder"
)

// Flags holds the apply command flags.
type Flags struct {
	DryRun       bool
	Diff         bool
	IgnoreFields []string
	*cmdutil.ReconcileFlags
}

// Report is the machine-readable apply outcome.
type Report struct {
	Summary         string        `json:"summary" yaml:"summary"`
	DryRun          bool          `json:"dry_run" yaml:"dry_run"`
	Added           int           `json:"added" yaml:"added"`
	Updated         int           `json:"updated" yaml:"updated"`
	Unchanged       int           `json:"unchanged" yaml:"unchanged"`
	Skipped         []identity.ID `json:"skipped" yaml:"skipped"`
	AliasesRecorded int           `json:"aliases_recorded" yaml:"aliases_recorded"`
	DurationMs      int64         `json:"duration_ms" yaml:"duration_ms"`
}

// NewCommand creates the apply command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "apply",
		GroupID: "core",
		Short:   "Reconcile batches and seed them into the store",
		Long: `Apply reconciles every configured batch and writes the result to the
store in one transaction. Running it again writes nothing. Ids the store
knows as superseded are never written again.`,
		Args: cobra.NoArgs,
		Example: `  wircatalog apply
  wircatalog apply --dry-run --diff
  wircatalog apply --ignore-field active
  wircatalog apply --store mysql --dsn 'user:pass@tcp(db:3306)/boxes?parseTime=true' --lock redis`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Compute the changes without writing them")
	cmd.Flags().BoolVar(&flags.Diff, "diff", false, "Print every changed record")
	cmd.Flags().StringSliceVar(&flags.IgnoreFields, "ignore-field", nil,
		"Leave a stored record alone when only this field differs (repeatable)")
	flags.ReconcileFlags = cmdutil.AddReconcileFlags(cmd)

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := logging.WithLogger(cmd.Context(), app.Logger())

	result, _, err := cmdutil.Reconcile(ctx, app, flags.ReconcileFlags)
	if err != nil {
		return err
	}
	cmdutil.LogReport(app, result)

	s, err := app.Store(ctx)
	if err != nil {
		return err
	}
	locker, err := app.Locker(ctx)
	if err != nil {
		return err
	}

	sd, err := seeder.New(s,
		seeder.WithDryRun(flags.DryRun),
		seeder.WithTimeout(app.ApplyTimeout()),
		seeder.WithLocker(locker),
		seeder.WithLogger(app.Logger()),
		seeder.WithIgnoredFields(flags.IgnoreFields...),
	)
	if err != nil {
		return err
	}

	applied, err := sd.Apply(ctx, result)
	if err != nil {
		return err
	}

	format, err := cmdutil.Format(app)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if format != output.FormatTable {
		return output.Print(w, format, NewReport(applied), table.Data{})
	}
	return printTables(w, applied, flags.Diff)
}

// NewReport builds the report of an apply.
func NewReport(applied *seeder.ApplyResult) Report {
	skipped := applied.Skipped
	if skipped == nil {
		skipped = []identity.ID{}
	}
	return Report{
		Summary:         applied.Summary(),
		DryRun:          applied.DryRun,
		Added:           applied.Changeset.Summary.Added,
		Updated:         applied.Changeset.Summary.Updated,
		Unchanged:       applied.Changeset.Summary.Unchanged,
		Skipped:         skipped,
		AliasesRecorded: applied.AliasesRecorded,
		DurationMs:      applied.Duration.Milliseconds(),
	}
}

func printTables(w io.Writer, applied *seeder.ApplyResult, diff bool) error {
	if _, err := fmt.Fprintln(w, applied.Summary()); err != nil {
		return err
	}
	if err := output.Section(w, "changes", table.ChangesetToTableData(applied.Changeset)); err != nil {
		return err
	}
	if diff && !applied.Changeset.IsEmpty() {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		applied.Changeset.Print(w)
	}
	return nil
}
