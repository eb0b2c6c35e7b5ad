package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/app-version/internal/git"
)

// Config holds the tool settings. The version record itself lives in VersionFile.
type Config struct {
	// VersionFile is the path to the YAML version record.
	VersionFile string `yaml:"version_file" mapstructure:"version_file"`
	// AppName prefixes the full version printed after a mutation.
	AppName string `yaml:"app_name" mapstructure:"app_name"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// ServerAddress is the gRPC address served by app-version-server and used by remote commands.
	ServerAddress string `yaml:"server_addr" mapstructure:"server_addr"`
	// MetricsAddress enables the Prometheus endpoint of the server when set.
	MetricsAddress string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
	// Timeout bounds RPC calls.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Git configures the source absorbed from.
	Git GitConfig `yaml:"git" mapstructure:"git"`
}

// GitConfig selects and configures the git source.
type GitConfig struct {
	Binary     string        `yaml:"binary" mapstructure:"binary"`
	From       string        `yaml:"from" mapstructure:"from"`
	Repository string        `yaml:"repository" mapstructure:"repository"`
	Branch     string        `yaml:"branch" mapstructure:"branch"`
	Remote     string        `yaml:"remote" mapstructure:"remote"`
	WorkDir    string        `yaml:"work_dir" mapstructure:"work_dir"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

const (
	// DefaultConfigFilename is the settings file looked up in the working directory.
	DefaultConfigFilename = "app-version-settings.yaml"

	// DefaultVersionFilename is the default version record.
	DefaultVersionFilename = "version.yaml"

	// DefaultAppName is printed when no application name is configured.
	DefaultAppName = "app"

	// DefaultServerAddress is the default gRPC address.
	DefaultServerAddress = "127.0.0.1:50051"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errVersionFileRequired is returned when the record path is empty.
	errVersionFileRequired = errors.New("version file must be provided")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
)

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		VersionFile:   DefaultVersionFilename,
		AppName:       DefaultAppName,
		LogLevel:      "warn",
		ServerAddress: DefaultServerAddress,
		Timeout:       DefaultTimeout,
		Git: GitConfig{
			Binary:  "git",
			From:    string(git.FromLocal),
			Branch:  "master",
			Remote:  "origin",
			WorkDir: ".",
			Timeout: git.DefaultTimeout,
		},
	}
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling zero durations with defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(settings.VersionFile) == "" {
		return errVersionFileRequired
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.Git.Timeout <= 0 {
		settings.Git.Timeout = git.DefaultTimeout
	}

	if settings.AppName == "" {
		settings.AppName = DefaultAppName
	}

	// NewSource applies the same rules; checking here reports them at startup.
	if _, err := git.NewSource(settings.GitOptions(), nil); err != nil {
		return fmt.Errorf("invalid git settings: %w", err)
	}

	return nil
}

// GitOptions converts the git settings for git.NewSource.
func (c *Config) GitOptions() git.Options {
	return git.Options{
		Binary:     c.Git.Binary,
		From:       git.From(c.Git.From),
		Repository: c.Git.Repository,
		Branch:     c.Git.Branch,
		Remote:     c.Git.Remote,
		WorkDir:    c.Git.WorkDir,
	}
}
