package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/app-version/internal/api/grpc/version"
	"github.com/oshokin/app-version/internal/config"
	"github.com/oshokin/app-version/internal/logger"
	"github.com/oshokin/app-version/internal/observability"
	"github.com/oshokin/app-version/internal/repository/record"
	"github.com/oshokin/app-version/internal/service/common"
)

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 5 * time.Second

// Options controls the app-version-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// VersionFile overrides the record path from the settings.
	VersionFile string
	// MetricsAddress overrides the Prometheus endpoint address from the settings.
	MetricsAddress string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// The record lock is held for the whole run so local commands cannot write behind the server.
func Run(ctx context.Context, opts *Options) (err error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "app-version-server")

	loader := config.NewLoader()
	loader.SetConfigFile(opts.ConfigPath)

	settings, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.VersionFile != "" {
		settings.VersionFile = opts.VersionFile
	}

	if opts.MetricsAddress != "" {
		settings.MetricsAddress = opts.MetricsAddress
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	lock, err := record.AcquireLock(ctx, settings.VersionFile)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, lock.Release())
	}()

	metrics := observability.NewMetrics()

	ws, err := common.OpenWorkspace(ctx, settings)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	watchVersion(ctx, ws.Manager, metrics)

	if settings.MetricsAddress != "" {
		metricsServer := observability.NewServer(settings.MetricsAddress, metrics.Registry())
		if err = metricsServer.Start(ctx); err != nil {
			return err
		}

		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			err = errors.Join(err, metricsServer.Stop(stopCtx))
		}()
	}

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(metrics.UnaryServerInterceptor(), loggerInterceptor(ctx)),
	)
	api.RegisterVersionServiceServer(grpcServer, api.NewServer(ws.Manager))

	logger.InfoKV(ctx, "Version server listening",
		"listen_address", listenAddress, "version_file", ws.Repo.Path(), "version", ws.Manager.Current())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err = grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// loggerInterceptor hands the server logger to request handlers.
func loggerInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	named := logger.FromContext(base)

	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(logger.ToContext(ctx, named), req)
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
