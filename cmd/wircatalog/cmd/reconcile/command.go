// Package reconcile provides the reconcile command.
package reconcile

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/cmdutil"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/output"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/table"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/reconciler"
)

// Report is the machine-readable merge report.
type Report struct {
	Summary    string                 `json:"summary" yaml:"summary"`
	Batches    []string               `json:"batches" yaml:"batches"`
	Precedence string                 `json:"precedence" yaml:"precedence"`
	Strict     bool                   `json:"strict" yaml:"strict"`
	Records    map[identity.Kind]int  `json:"records" yaml:"records"`
	Aliases    []reconciler.Alias     `json:"aliases" yaml:"aliases"`
	Overwrites []reconciler.Overwrite `json:"overwrites" yaml:"overwrites"`
	Warnings   []string               `json:"warnings" yaml:"warnings"`
	Errors     []string               `json:"errors" yaml:"errors"`
}

// NewReport builds the merge report of a reconciliation, failed or not.
func NewReport(result *reconciler.Result) Report {
	return Report{
		Summary:    result.Summary(),
		Batches:    result.Metadata.Batches,
		Precedence: result.Metadata.Precedence,
		Strict:     result.Metadata.Strict,
		Records:    result.Metadata.Stats.KindCounts,
		Aliases:    result.Report.Aliases,
		Overwrites: result.Report.Overwrites,
		Warnings:   result.Report.Warnings,
		Errors:     result.Report.Errors,
	}
}

// NewCommand creates the reconcile command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.ReconcileFlags

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Reconcile batches and print the merge report",
		Long: `Reconcile merges every configured batch into one target catalog without
touching the store. The report lists superseded ids, same-id overwrites,
warnings and, when reconciliation fails, every fatal error found.`,
		Args: cobra.NoArgs,
		Example: `  wircatalog reconcile
  wircatalog reconcile --strict -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, _, rerr := cmdutil.Reconcile(cmd.Context(), app, flags)
			if result == nil {
				return rerr
			}
			cmdutil.LogReport(app, result)

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if format != output.FormatTable {
				err = output.Print(w, format, NewReport(result), table.Data{})
			} else {
				err = printTables(w, result)
			}
			if err != nil {
				return err
			}
			return rerr
		},
	}

	flags = cmdutil.AddReconcileFlags(cmd)
	return cmd
}

func printTables(w io.Writer, result *reconciler.Result) error {
	if _, err := fmt.Fprintln(w, result.Summary()); err != nil {
		return err
	}
	if err := output.Section(w, "records", table.KindCountsToTableData(result.Metadata.Stats)); err != nil {
		return err
	}
	if err := output.Section(w, "superseded ids", table.AliasesToTableData(result.Report.Aliases)); err != nil {
		return err
	}
	if err := output.Section(w, "overwrites", table.OverwritesToTableData(result.Report.Overwrites)); err != nil {
		return err
	}
	for _, warning := range result.Report.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	for _, msg := range result.Report.Errors {
		if _, err := fmt.Fprintf(w, "error: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}
