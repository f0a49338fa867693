// Package version provides the version command.
package version

import (
	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
)

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("wircatalog %s\n", app.Version())
			if verbose {
				cmd.Printf("  commit:   %s\n", app.Commit())
				cmd.Printf("  built:    %s\n", app.Date())
				cmd.Printf("  built by: %s\n", app.BuiltBy())
			}
		},
	}

	cmd.Flags().BoolVar(&verbose, "long", false, "Include build details")
	return cmd
}
