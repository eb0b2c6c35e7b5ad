package cmd

import (
	"context"

	"github.com/spf13/cobra"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/service/cli"
)

var (
	// commitBy is the explicit delta of the commit command.
	commitBy int64
	// showTimestamp prints the stored timestamp instead of refreshing it.
	showTimestamp bool
)

// newIncrementCommand builds a command that increments part.
func newIncrementCommand(part domain.Part, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(part),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var by *int64
			if cmd.Flags().Changed("by") {
				by = &commitBy
			}

			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.Increment(ctx, part, by)
			})
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	commitCmd := newIncrementCommand(domain.PartCommit, "Increment the hexadecimal commit counter.")
	commitCmd.Flags().Int64Var(&commitBy, "by", 1, "delta to add instead of commit.increment-by (0 uses commit.increment-by)")

	timestampCmd := &cobra.Command{
		Use:   string(domain.PartTimestamp),
		Short: "Set the timestamp to the current time, or print it with --show.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				if showTimestamp {
					return c.ShowTimestamp(ctx)
				}

				return c.Increment(ctx, domain.PartTimestamp, nil)
			})
		},
	}
	timestampCmd.Flags().BoolVar(&showTimestamp, "show", false, "print the stored timestamp without changing it")

	absorbCmd := &cobra.Command{
		Use:   "absorb",
		Short: "Take version, commit and timestamp from git for fields in absorb mode.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.Absorb(ctx)
			})
		},
	}

	rootCmd.AddCommand(
		newIncrementCommand(domain.PartMajor, "Increment the major version and reset minor and patch."),
		newIncrementCommand(domain.PartMinor, "Increment the minor version and reset patch."),
		newIncrementCommand(domain.PartPatch, "Increment the patch version."),
		commitCmd,
		timestampCmd,
		absorbCmd,
	)
}
