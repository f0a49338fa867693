// Package validate provides the validate command.
package validate

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/cmdutil"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/output"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/table"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// BatchReport is the validation outcome of one batch.
type BatchReport struct {
	Batch    string   `json:"batch" yaml:"batch"`
	Records  int      `json:"records" yaml:"records"`
	Valid    bool     `json:"valid" yaml:"valid"`
	Problems []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		GroupID: "inspection",
		Short:   "Parse and validate seed batches",
		Long: `Validate parses every configured batch and checks each record on its own
and the identity contract within each batch. Batches are not reconciled.`,
		Args: cobra.NoArgs,
		Example: `  wircatalog validate
  wircatalog validate --batch-dir ./seeds --embedded=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batches, err := app.Batches()
			if err != nil {
				return err
			}

			reports := Validate(batches)

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			if err := output.Print(cmd.OutOrStdout(), format, reports, toTableData(reports)); err != nil {
				return err
			}

			invalid := 0
			for _, r := range reports {
				if !r.Valid {
					invalid++
				}
			}
			if invalid > 0 {
				return errors.NewValidationError("batches", invalid, fmt.Sprintf("%d of %d batches are invalid", invalid, len(reports)))
			}
			app.Logger().Info().Int("batches", len(reports)).Msg("All batches are valid")
			return nil
		},
	}
}

// Validate checks every batch against the WIR codes declared by all of them.
func Validate(batches []*batch.Batch) []BatchReport {
	var codes []string
	for _, b := range batches {
		codes = append(codes, b.WIRCodes()...)
	}
	v := catalogs.NewValidator(codes...)

	reports := make([]BatchReport, 0, len(batches))
	for _, b := range batches {
		report := BatchReport{Batch: b.Name, Records: b.Len(), Valid: true}
		if err := b.Validate(v); err != nil {
			report.Valid = false
			for _, e := range unjoin(err) {
				report.Problems = append(report.Problems, e.Error())
			}
		}
		reports = append(reports, report)
	}
	return reports
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func toTableData(reports []BatchReport) table.Data {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		status := "ok"
		if !r.Valid {
			status = strconv.Itoa(len(r.Problems)) + " problems"
		}
		rows = append(rows, []string{r.Batch, strconv.Itoa(r.Records), status})
		for _, p := range r.Problems {
			rows = append(rows, []string{"", "", p})
		}
	}
	return table.Data{
		Headers:         []string{"BATCH", "RECORDS", "STATUS"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignDefault, table.AlignRight, table.AlignDefault},
	}
}
