package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFromKeepsLdflags(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "v1.0.0", "none", "unknown"
	fillFrom(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.9.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	if Version != "v1.0.0" {
		t.Errorf("Version = %q, ldflags value must win", Version)
	}
	if Commit != "abc123" || Date != "2026-01-02T03:04:05Z" {
		t.Errorf("Commit, Date = %q, %q", Commit, Date)
	}
}

func TestFillFromDevelBuild(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "dev", "none", "unknown"
	fillFrom(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if Version != "dev" || Commit != "none" || Date != "unknown" {
		t.Errorf("devel build changed defaults: %s %s %s", Version, Commit, Date)
	}
}

func TestTemplate(t *testing.T) {
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} ") || !strings.Contains(got, Version) {
		t.Errorf("Template() = %q", got)
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q", String())
	}
}
