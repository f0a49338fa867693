// Package batches provides the batches command.
package batches

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/cmdutil"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/output"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/table"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// Entry describes one batch in precedence order.
type Entry struct {
	Name       string                `json:"name" yaml:"name"`
	Generation int                   `json:"generation" yaml:"generation"`
	Source     string                `json:"source,omitempty" yaml:"source,omitempty"`
	CreatedAt  time.Time             `json:"created_at" yaml:"created_at"`
	Records    map[identity.Kind]int `json:"records" yaml:"records"`
}

// NewCommand creates the batches command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "batches",
		GroupID: "inspection",
		Short:   "List batches in precedence order",
		Long: `Batches lists the configured seed batches oldest first. When batches
collide, the later one wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			batches, err := app.Batches()
			if err != nil {
				return err
			}

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), format, Entries(batches), table.BatchesToTableData(batches))
		},
	}
}

// Entries describes batches for structured output.
func Entries(batches []*batch.Batch) []Entry {
	entries := make([]Entry, 0, len(batches))
	for _, b := range batches {
		entries = append(entries, Entry{
			Name:       b.Name,
			Generation: b.Generation,
			Source:     b.Source,
			CreatedAt:  b.CreatedAt,
			Records:    b.Counts(),
		})
	}
	return entries
}
