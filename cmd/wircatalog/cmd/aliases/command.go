// Package aliases provides the aliases command.
package aliases

import (
	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/cmdutil"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/output"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/cmd/table"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// NewCommand creates the aliases command.
func NewCommand(app application.Application) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "aliases",
		GroupID: "inspection",
		Short:   "List the superseded ids persisted in the store",
		Args:    cobra.NoArgs,
		Example: `  wircatalog aliases
  wircatalog aliases --kind category -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter identity.Kind
			if kind != "" {
				k, err := identity.ParseKind(kind)
				if err != nil {
					return err
				}
				filter = k
			}

			s, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			all, err := store.ReadAliases(cmd.Context(), s)
			if err != nil {
				return err
			}

			aliases := make([]store.AliasRecord, 0, len(all))
			for _, a := range all {
				if filter == identity.KindUnknown || a.Kind == filter {
					aliases = append(aliases, a)
				}
			}

			format, err := cmdutil.Format(app)
			if err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), format, aliases, table.StoredAliasesToTableData(aliases))
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list aliases of this kind (category, reference, checklist_item, wir_master)")
	return cmd
}
