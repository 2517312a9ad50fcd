package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/weekflow/pkg/breakdown"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/pipeline"
)

func parseFlags(t *testing.T, args ...string) (*cobra.Command, *sourceFlags, *layoutFlags) {
	t.Helper()
	var (
		source sourceFlags
		geom   layoutFlags
	)
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	source.register(cmd)
	geom.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return cmd, &source, &geom
}

func TestLayoutFlagsOverrideOnlyChanged(t *testing.T) {
	cmd, _, geom := parseFlags(t, "--level-gap", "42", "--branch-spread=0.5")

	base := layout.DefaultParams()
	base.BaseWidth = 1234 // from the config file
	got := geom.resolve(cmd, base)

	if got.LevelGap != 42 || got.BranchSpread != 0.5 {
		t.Errorf("changed flags not applied: %+v", got)
	}
	if got.BaseWidth != 1234 {
		t.Errorf("BaseWidth = %v, want config value 1234", got.BaseWidth)
	}
	if got.BarThickness != base.BarThickness {
		t.Errorf("BarThickness = %v, want %v", got.BarThickness, base.BarThickness)
	}
}

func TestSourceFlagsApply(t *testing.T) {
	hours := breakdown.DefaultInputs()

	tests := []struct {
		name   string
		args   []string
		source string
		file   string
	}{
		{"default", nil, pipeline.SourceBreakdown, ""},
		{"demo", []string{"--demo"}, pipeline.SourceDemo, ""},
		{"tree file", []string{"--tree", "team.json"}, pipeline.SourceFile, "team.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, source, _ := parseFlags(t, tt.args...)
			var opts pipeline.Options
			source.apply(&opts, hours)
			if opts.Source != tt.source || opts.TreeFile != tt.file {
				t.Errorf("source = %q file = %q, want %q %q", opts.Source, opts.TreeFile, tt.source, tt.file)
			}
			if opts.Hours == nil || *opts.Hours != hours {
				t.Error("hours not copied")
			}
		})
	}
}

func TestSourceFlagsToggles(t *testing.T) {
	_, source, _ := parseFlags(t, "--demo", "--toggle", "free", "--toggle", "total", "--strict")
	var opts pipeline.Options
	source.apply(&opts, breakdown.Inputs{})
	if len(opts.Toggles) != 2 || opts.Toggles[0] != "free" || opts.Toggles[1] != "total" {
		t.Errorf("Toggles = %v", opts.Toggles)
	}
	if !opts.Strict {
		t.Error("Strict not set")
	}
}
