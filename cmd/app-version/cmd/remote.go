package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-version/internal/service/cli"
)

var (
	// serverAddress overrides the configured server for remote commands.
	serverAddress string
	// remoteBy is the explicit commit delta of remote increment.
	remoteBy int64

	remoteCmd = &cobra.Command{
		Use:   "remote",
		Short: "Work with the version record of an app-version-server.",
	}

	remoteShowCmd = &cobra.Command{
		Use:   "show [format]",
		Short: "Print a format rendered by the server.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}

			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.RemoteShow(ctx, name)
			})
		},
	}

	remoteIncrementCmd = &cobra.Command{
		Use:       "increment <major|minor|patch|commit|timestamp>",
		Short:     "Increment a version part on the server.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"major", "minor", "patch", "commit", "timestamp"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var by *int64
			if cmd.Flags().Changed("by") {
				by = &remoteBy
			}

			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.RemoteIncrement(ctx, args[0], by)
			})
		},
	}

	remoteAbsorbCmd = &cobra.Command{
		Use:   "absorb",
		Short: "Absorb version data from git on the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.RemoteAbsorb(ctx)
			})
		},
	}

	remoteRecordCmd = &cobra.Command{
		Use:   "record",
		Short: "Print the whole version record of the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.RemoteRecord(ctx)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	remoteCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "server address (overrides settings)")
	remoteIncrementCmd.Flags().Int64Var(&remoteBy, "by", 1, "delta for commit increments")

	remoteCmd.AddCommand(remoteShowCmd, remoteIncrementCmd, remoteAbsorbCmd, remoteRecordCmd)
	rootCmd.AddCommand(remoteCmd)
}
