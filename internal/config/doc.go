// Package config defines the tool settings shared by the app-version binaries
// and provides helpers to load, validate and save them.
//
// Settings come from defaults, an optional YAML settings file, an optional
// .env file and APP_VERSION_* environment variables, in increasing priority.
package config
