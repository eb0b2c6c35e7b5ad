package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-version/internal/buildinfo"
	"github.com/oshokin/app-version/internal/logger"
	"github.com/oshokin/app-version/internal/service/cli"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// versionFile overrides the version record path.
	versionFile string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "app-version",
		Short: "Manage the version of your application.",
		Long: `Keeps the version of an application in a YAML record and renders it in
named formats.

Version numbers, the commit counter and the timestamp are either incremented
by the commands below or absorbed from git, depending on their mode in the
record. Running without a subcommand prints the full version.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.Show(ctx, "")
			})
		},
	}
)

// Execute runs the app-version CLI and exits with non-zero status on error.
func Execute() {
	buildinfo.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}

// run loads the settings and runs fn until it returns or the process is interrupted.
func run(cmd *cobra.Command, fn func(ctx context.Context, c *cli.Command) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx = logger.WithName(ctx, "app-version")

	c, err := cli.New(ctx, &cli.Options{
		ConfigPath:    configPath,
		VersionFile:   versionFile,
		LogLevel:      logLevel,
		ServerAddress: serverAddress,
		Out:           cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	return fn(ctx, c)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to settings file (default ./app-version-settings.yaml when present)")
	rootCmd.PersistentFlags().StringVarP(&versionFile, "file", "f", "", "path to the version record (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}
