package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-version/internal/buildinfo"
	"github.com/oshokin/app-version/internal/service/server"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// versionFile overrides the version record path.
	versionFile string
	// metricsAddress overrides the Prometheus endpoint address.
	metricsAddress string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "app-version-server [listen-address]",
		Short: "Serve the version record over gRPC.",
		Long: `Starts the gRPC server that owns the version record and handles
format, increment and absorb requests from remote clients.

Only the port from server_addr in the settings is used for listening (e.g., :50051).
Listen address can be provided as argument to override settings (e.g., :9090, 0.0.0.0:50051).
The record file stays locked while the server is running.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on settings.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:     configPath,
				ListenAddress:  listenAddress,
				VersionFile:    versionFile,
				MetricsAddress: metricsAddress,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the app-version-server CLI and exits with non-zero status on error.
func Execute() {
	buildinfo.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to settings file (default ./app-version-settings.yaml when present)")
	rootCmd.Flags().StringVarP(&versionFile, "file", "f", "", "path to the version record (overrides settings)")
	rootCmd.Flags().StringVar(&metricsAddress, "metrics-addr", "", "address of the Prometheus endpoint (overrides settings)")
}
