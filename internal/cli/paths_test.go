package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := filepath.Join(t.TempDir(), "custom-cache")
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	c := New(os.Stderr, LogInfo)
	path, err := c.configPath()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(path, xdg) || filepath.Base(path) != "config.toml" {
		t.Errorf("configPath() = %q", path)
	}

	c.ConfigPath = "/etc/weekflow.toml"
	if path, _ := c.configPath(); path != "/etc/weekflow.toml" {
		t.Errorf("configPath() with override = %q", path)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "", defaultOutputBase},
		{"", "trees/team.json", "trees/team"},
		{"out/week.svg", "", "out/week"},
		{"out/week.png", "team.json", "out/week"},
		{"out/week", "", "out/week"},
		{"out/week.v2", "", "out/week.v2"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   []string{"svg", "json"},
		output:    filepath.Join(dir, "nested", "week.svg"),
	})
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := []string{filepath.Join(dir, "nested", "week.svg"), filepath.Join(dir, "nested", "week.json")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(want[1])
	if err != nil || string(data) != "{}" {
		t.Errorf("json artifact = %q, %v", data, err)
	}

	// A single format keeps the exact output name.
	single := filepath.Join(dir, "diagram.out")
	paths, err = writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   []string{"svg"},
		output:    single,
	})
	if err != nil || len(paths) != 1 || paths[0] != single {
		t.Errorf("single format paths = %v, %v", paths, err)
	}
}
