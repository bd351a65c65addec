package app

import (
	"fmt"
	"runtime/debug"
)

// Overridden with -ldflags "-X github.com/heartmarshall/calc-content-backend/internal/app.Version=1.4.0".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
}

// String renders the info for startup logs and /health.
func (b BuildInfo) String() string {
	commit := b.Commit
	if b.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, commit, b.BuildTime)
}

// CurrentBuild returns ldflags values, filling Commit and BuildTime from the
// module's VCS stamp when they were not injected.
func CurrentBuild() BuildInfo {
	info, _ := debug.ReadBuildInfo()
	return buildInfo(info)
}

func buildInfo(info *debug.BuildInfo) BuildInfo {
	b := BuildInfo{Version: Version, Commit: Commit, BuildTime: BuildTime}
	if info == nil {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" {
				b.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if b.BuildTime == "unknown" {
				b.BuildTime = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// BuildVersion is CurrentBuild().String().
func BuildVersion() string {
	return CurrentBuild().String()
}
