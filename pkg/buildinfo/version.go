// Package buildinfo reports the lzdraw version.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/lzdw/lzdraw/pkg/buildinfo.Version=v1.0.0" ./cmd/lzdraw
//
// Anything left unstamped is taken from the module and VCS data the go
// tool embeds, so `go install` builds still report a useful version.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version string
	Commit  string
	Date    string
)

func init() {
	bi, _ := debug.ReadBuildInfo()
	Version, Commit, Date = resolve(Version, Commit, Date, bi)
}

// resolve fills empty stamped values from bi, then from placeholders.
func resolve(version, commit, date string, bi *debug.BuildInfo) (string, string, string) {
	if bi != nil {
		if v := bi.Main.Version; version == "" && v != "" && v != "(devel)" {
			version = v
		}
		var revision string
		dirty := false
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.time":
				if date == "" {
					date = s.Value
				}
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if commit == "" && revision != "" {
			commit = revision
			if dirty {
				commit += "-dirty"
			}
		}
	}
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "none"
	}
	if date == "" {
		date = "unknown"
	}
	return version, commit, date
}

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template.
func Template() string {
	return "{{.Name}} " + Version + " (" + Commit + ", " + Date + ")\n"
}

// UserAgent identifies lzdraw in outgoing requests and generated files.
func UserAgent() string {
	return "lzdraw/" + Version
}
