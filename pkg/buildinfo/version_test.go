package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	vcs := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	tests := []struct {
		name                  string
		version, commit, date string
		bi                    *debug.BuildInfo
		want                  [3]string
	}{
		{"no build info", "", "", "", nil, [3]string{"dev", "none", "unknown"}},
		{"devel module", "", "", "", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, [3]string{"dev", "none", "unknown"}},
		{"vcs data", "", "", "", vcs, [3]string{"v0.4.1", "abc123-dirty", "2026-01-02T03:04:05Z"}},
		{"stamped wins", "v1.0.0", "fff", "today", vcs, [3]string{"v1.0.0", "fff", "today"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c, d := resolve(tt.version, tt.commit, tt.date, tt.bi)
			if got := [3]string{v, c, d}; got != tt.want {
				t.Errorf("resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	got := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
	if Version == "" || Commit == "" || Date == "" {
		t.Error("init should leave no field empty")
	}
}

func TestUserAgent(t *testing.T) {
	if got, want := UserAgent(), "lzdraw/"+Version; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}
