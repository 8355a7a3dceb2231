package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkstudio/shopsync/pkg/logging"
)

// Execute runs the shopsync CLI with the given arguments. This is the main
// entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "shopsync",
		Short:   "Etsy digital product sync tool",
		Version: a.version,
		Long: `Shopsync keeps a workspace of local digital products in step with an
Etsy shop. It mirrors the shop's listings into a local catalog, maps
product folders to listings (automatically by SKU or title, interactively
by fuzzy match otherwise), and uploads freshly packaged zip artifacts to
their listings, replacing the previous attachment.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("shopsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand runs before any command and reinitializes the logger from
// the parsed global flags.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	level := a.config.LogLevel
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = "debug"
	}
	if q, _ := cmd.Flags().GetBool("quiet"); q {
		level = "warn"
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}
	noColor, _ := cmd.Flags().GetBool("no-color")

	a.config.LogLevel = level
	a.logger = logging.New(&logging.Config{
		Level:   level,
		Format:  a.config.LogFormat,
		NoColor: noColor,
	})
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewSyncCommand())
	rootCmd.AddCommand(a.NewUploadCommand())
	rootCmd.AddCommand(a.NewReceiptsCommand())
	rootCmd.AddCommand(a.NewPingCommand())
	rootCmd.AddCommand(a.NewStatusCommand())
}

// ContextWithSignals creates a context cancelled on interrupt or
// termination signals, enabling graceful shutdown.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ExitOnError prints an error to stderr and exits with status 1. It is
// meant for top-level error handling in main.go.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
