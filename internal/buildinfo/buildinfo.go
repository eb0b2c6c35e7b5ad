package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

const unknown = "unknown"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "dev"
	// Commit is the short git SHA embedded at build time.
	Commit = unknown
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = unknown
)

// shortCommitLength matches git's default abbreviation.
const shortCommitLength = 7

var stampOnce sync.Once

// Info is the build metadata of the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
}

// Get returns the build metadata, filling gaps from the VCS stamp.
func Get() Info {
	stampOnce.Do(fillFromBuildInfo)

	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// Short returns only the semantic version string.
func Short() string {
	return Get().Version
}

// Full returns a human-readable version string with commit, build time and Go version.
func Full() string {
	info := Get()

	return fmt.Sprintf("version: %s, commit: %s, built at: %s, go: %s",
		info.Version, info.Commit, info.BuildTime, info.GoVersion)
}

func fillFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown && setting.Value != "" {
				Commit = setting.Value
				if len(Commit) > shortCommitLength {
					Commit = Commit[:shortCommitLength]
				}
			}
		case "vcs.time":
			if BuildTime == unknown && setting.Value != "" {
				BuildTime = setting.Value
			}
		}
	}
}
