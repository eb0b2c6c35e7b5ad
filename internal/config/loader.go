package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "APP_VERSION"

	// DefaultEnvFile is loaded into the environment when present.
	DefaultEnvFile = ".env"

	// legacyRepositoryEnv is accepted as an alias of APP_VERSION_GIT_REPOSITORY.
	legacyRepositoryEnv = "APP_GIT_REPOSITORY"
)

// Loader handles settings loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
	envFile    string
}

// NewLoader creates a new settings loader.
func NewLoader() *Loader {
	return &Loader{
		v:       viper.New(),
		envFile: DefaultEnvFile,
	}
}

// SetConfigFile sets an explicit settings file path. Loading fails when it cannot be read.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetEnvFile overrides the .env file location. An empty path disables it.
func (l *Loader) SetEnvFile(path string) {
	l.envFile = path
}

// Load loads settings with the precedence:
// defaults < settings file < environment (.env included).
func (l *Loader) Load() (*Config, error) {
	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := Default()

	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}

// Load is a shortcut for a loader reading path.
func Load(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)

	return loader.Load()
}

// loadEnvFile populates the environment from the .env file without
// overriding variables that are already set.
func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}

	if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", l.envFile, err)
	}

	return nil
}

// loadConfigFile reads the explicit file, or the default one when it exists.
func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)

		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read settings: %w", err)
		}

		return nil
	}

	l.v.SetConfigName(strings.TrimSuffix(DefaultConfigFilename, ".yaml"))
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")

	err := l.v.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read settings: %w", err)
	}

	return nil
}

// setupViper registers defaults and environment bindings.
func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := map[string]any{
		"version_file":   cfg.VersionFile,
		"app_name":       cfg.AppName,
		"log_level":      cfg.LogLevel,
		"server_addr":    cfg.ServerAddress,
		"metrics_addr":   cfg.MetricsAddress,
		"timeout":        cfg.Timeout,
		"git.binary":     cfg.Git.Binary,
		"git.from":       cfg.Git.From,
		"git.repository": cfg.Git.Repository,
		"git.branch":     cfg.Git.Branch,
		"git.remote":     cfg.Git.Remote,
		"git.work_dir":   cfg.Git.WorkDir,
		"git.timeout":    cfg.Git.Timeout,
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
		// Explicit bindings make Unmarshal see nested keys.
		_ = v.BindEnv(key)
	}

	_ = v.BindEnv("git.repository", EnvPrefix+"_GIT_REPOSITORY", legacyRepositoryEnv)
}
