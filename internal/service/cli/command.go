package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/app-version/internal/config"
	"github.com/oshokin/app-version/internal/git"
	"github.com/oshokin/app-version/internal/logger"
	"github.com/oshokin/app-version/internal/repository/record"
	"github.com/oshokin/app-version/internal/service/common"
	service "github.com/oshokin/app-version/internal/service/version"
)

// Options controls settings loading and output of the commands.
type Options struct {
	// ConfigPath is an explicit settings file. Empty looks for the default file.
	ConfigPath string
	// VersionFile overrides the record path from the settings.
	VersionFile string
	// LogLevel overrides the log level from the settings.
	LogLevel string
	// ServerAddress overrides the server address used by remote commands.
	ServerAddress string
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// Runner replaces the git process runner.
	Runner git.Runner
	// Now replaces the clock used for timestamps.
	Now func() time.Time
}

var (
	// ErrFormatNotFound is returned when a requested format does not exist.
	ErrFormatNotFound = errors.New("format not found")
	// ErrTimestampNotSet is returned when the record holds no timestamp yet.
	ErrTimestampNotSet = errors.New("timestamp is not set")
)

// Command runs app-version commands with loaded settings.
type Command struct {
	opts     *Options
	settings *config.Config
	out      io.Writer
}

// New loads the settings and applies the overrides of opts.
func New(ctx context.Context, opts *Options) (*Command, error) {
	if opts == nil {
		opts = new(Options)
	}

	loader := config.NewLoader()
	loader.SetConfigFile(opts.ConfigPath)

	settings, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.VersionFile != "" {
		settings.VersionFile = opts.VersionFile
	}

	if opts.ServerAddress != "" {
		settings.ServerAddress = opts.ServerAddress
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	} else {
		logger.WarnKV(ctx, "Unknown log level, using warn", "level", settings.LogLevel)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Command{opts: opts, settings: settings, out: out}, nil
}

// Settings returns the effective settings.
func (c *Command) Settings() *config.Config {
	return c.settings
}

// open loads the record for reading.
func (c *Command) open(ctx context.Context) (*service.Manager, error) {
	var opts []common.OpenOption

	if c.opts.Runner != nil {
		opts = append(opts, common.WithRunner(c.opts.Runner))
	}

	if c.opts.Now != nil {
		opts = append(opts, common.WithManagerOptions(service.WithNow(c.opts.Now)))
	}

	ws, err := common.OpenWorkspace(ctx, c.settings, opts...)
	if err != nil {
		return nil, err
	}

	return ws.Manager, nil
}

// mutate holds the record lock while fn changes the record.
func (c *Command) mutate(ctx context.Context, fn func(*service.Manager) error) (err error) {
	lock, err := record.AcquireLock(ctx, c.settings.VersionFile)
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	manager, err := c.open(ctx)
	if err != nil {
		return err
	}

	return fn(manager)
}

// printf writes to the command output.
func (c *Command) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// printVersion prints the application name with its full version.
func (c *Command) printVersion(full string) {
	c.printf("%s %s\n", c.settings.AppName, full)
}
