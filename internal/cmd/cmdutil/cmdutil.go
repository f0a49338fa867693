// Package cmdutil provides helpers shared by wircatalog commands.
package cmdutil

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/output"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/reconciler"
)

// ReconcileFlags holds flags for commands that reconcile batches.
type ReconcileFlags struct {
	Strict bool
}

// AddReconcileFlags adds reconciliation flags to a command.
func AddReconcileFlags(cmd *cobra.Command) *ReconcileFlags {
	flags := &ReconcileFlags{}
	cmd.Flags().BoolVar(&flags.Strict, "strict", false,
		"Treat identity anomalies as errors")
	return flags
}

// Format returns the output format for the command, auto-detected when
// none is configured.
func Format(app application.Application) (output.Format, error) {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return "", errors.NewValidationError("format", app.OutputFormat(), err.Error())
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	return format, nil
}

// Reconcile loads the configured batches and reconciles them. A failed
// reconciliation returns the result together with the joined errors.
func Reconcile(ctx context.Context, app application.Application, flags *ReconcileFlags) (*reconciler.Result, []*batch.Batch, error) {
	batches, err := app.Batches()
	if err != nil {
		return nil, nil, err
	}

	var opts []reconciler.Option
	if flags != nil && flags.Strict {
		opts = append(opts, reconciler.WithStrict(true))
	}
	r, err := app.Reconciler(opts...)
	if err != nil {
		return nil, batches, err
	}

	ctx = logging.WithLogger(ctx, app.Logger())
	result, err := r.Reconcile(ctx, batches)
	if err != nil {
		return result, batches, err
	}
	if !result.IsSuccess() {
		return result, batches, errors.Join(result.Errors...)
	}
	return result, batches, nil
}

// LogReport logs the merge report of a reconciliation.
func LogReport(app application.Application, result *reconciler.Result) {
	logger := app.Logger()
	for _, a := range result.Report.Aliases {
		logger.Info().Str("alias", a.String()).Msg("Superseded id")
	}
	for _, o := range result.Report.Overwrites {
		logger.Info().Str("overwrite", o.String()).Msg("Overwrote record")
	}
	for _, w := range result.Report.Warnings {
		logger.Warn().Msg(w)
	}
}
