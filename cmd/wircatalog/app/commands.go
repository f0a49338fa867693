package app

import (
	"github.com/spf13/cobra"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/wircatalog/cmd/aliases"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/wircatalog/cmd/apply"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/wircatalog/cmd/batches"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/wircatalog/cmd/reconcile"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/wircatalog/cmd/validate"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/wircatalog/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(reconcile.NewCommand(a))
	rootCmd.AddCommand(apply.NewCommand(a))

	// Inspection commands
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(batches.NewCommand(a))
	rootCmd.AddCommand(aliases.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
