package app

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs the wircatalog CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "wircatalog",
		Short:   "WIR inspection checklist catalog",
		Version: a.version,
		Long: `wircatalog reconciles the generations of the WIR inspection checklist
catalog and seeds them into a database.

Batches are reconciled by business key: when two generations declare the
same category, reference or checklist item under different ids, the latest
generation wins and the older id is recorded as superseded. Applying the
result is idempotent and never reintroduces a superseded id.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspection",
		Title: "Inspection Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.wircatalog.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("store", a.config.Store, "store backend: sqlite, mysql, memory")
	flags.String("dsn", a.config.DSN, "store data source name")
	flags.String("batch-dir", a.config.BatchDir, "directory of additional seed batches")
	flags.Bool("embedded", a.config.Embedded, "include the embedded batches")
	flags.String("lock", a.config.Lock, "apply lock backend: local, redis")
	flags.String("redis-addr", a.config.RedisAddr, "redis address for the redis lock")

	a.bindFlags(flags)

	if a.out != nil {
		rootCmd.SetOut(a.out)
	}
	rootCmd.SetVersionTemplate("wircatalog {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// bindFlags binds every persistent flag to the viper key of the same name
// with dashes replaced by underscores.
func (a *App) bindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := a.viper.BindPFlag(key, f); err != nil {
			panic("programming error: failed to bind flag " + f.Name + ": " + err.Error())
		}
	})
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	return a.reload()
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
