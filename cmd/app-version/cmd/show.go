package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-version/internal/service/cli"
)

var (
	showCmd = &cobra.Command{
		Use:   "show [format]",
		Short: "Print a version format.",
		Long:  "Print the named format from the record, or the full format when no name is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}

			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.Show(ctx, name)
			})
		},
	}

	currentCmd = &cobra.Command{
		Use:   "current",
		Short: "Print the version number.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.Current(ctx)
			})
		},
	}

	formatsCmd = &cobra.Command{
		Use:   "formats",
		Short: "List the formats with their templates and values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.Formats(ctx)
			})
		},
	}

	renderOutput string

	renderCmd = &cobra.Command{
		Use:   "render <template-file>",
		Short: "Render a text/template file with the version function.",
		Long: `Render a Go text/template file. Inside the template, {{ version "name" }}
prints a format, {{ .Version }} the version number and {{ .AppName }} the
application name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *cli.Command) error {
				return c.Render(ctx, args[0], renderOutput)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write to a file instead of stdout")

	rootCmd.AddCommand(showCmd, currentCmd, formatsCmd, renderCmd)
}
