package breakdown

import (
	"math"
	"testing"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/tree"
)

func TestComputeDefaults(t *testing.T) {
	b := Compute(DefaultInputs())

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"sleep", b.Sleep, 56},
		{"awake", b.Awake, 112},
		{"maintenance", b.Maintenance, 24},
		{"active rest", b.ActiveRest, 15},
		{"classes", b.Classes, 32},
		{"class lectures", b.ClassLectures, 12},
		{"class hw", b.ClassHW, 20},
		{"non-class", b.NonClass, 12},
		{"work", b.Work, 44},
		{"unallocated", b.Unallocated, 29},
		{"pph", b.ProductiveProjectHours, 8},
		{"overcommitted", b.Overcommitted(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestComputeOvercommitted(t *testing.T) {
	in := DefaultInputs()
	in.NonClass.Productive = 60
	b := Compute(in)

	if b.Unallocated != 0 {
		t.Errorf("Unallocated = %v, want 0", b.Unallocated)
	}
	if b.Overcommitted() != 23 {
		t.Errorf("Overcommitted() = %v, want 23", b.Overcommitted())
	}

	tr, err := Tree(in)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	ms := tr.CheckConsistency(tree.DefaultTolerance)
	if len(ms) != 1 || ms[0].NodeID != IDAwake {
		t.Errorf("CheckConsistency = %v, want a single awake mismatch", ms)
	}
}

func TestTreeDefaults(t *testing.T) {
	tr, err := Tree(DefaultInputs())
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if tr.Len() != 18 {
		t.Errorf("Len() = %d, want 18", tr.Len())
	}
	if ms := tr.CheckConsistency(tree.DefaultTolerance); len(ms) != 0 {
		t.Errorf("default breakdown inconsistent: %v", ms)
	}
	if got := tr.ExpandedIDs(); len(got) != 1 || got[0] != IDTotal {
		t.Errorf("ExpandedIDs() = %v, want only total", got)
	}

	n, _ := tr.Node(IDActiveRest)
	if n.Name != "Active Rest" || n.Parent != IDAwake {
		t.Errorf("active rest node = %+v", n)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Inputs)
	}{
		{"negative sleep", func(in *Inputs) { in.SleepPerNight = -1 }},
		{"too much sleep", func(in *Inputs) { in.SleepPerNight = 25 }},
		{"negative hobby", func(in *Inputs) { in.ActiveRest.Hobby = -2 }},
		{"nan class count", func(in *Inputs) { in.Classes.Count = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInputs()
			tt.mutate(&in)
			if _, err := Tree(in); !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Tree() err = %v, want INVALID_INPUT", err)
			}
		})
	}

	if err := DefaultInputs().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestDemo(t *testing.T) {
	tr, err := tree.Build(Demo())
	if err != nil {
		t.Fatalf("Build(Demo()): %v", err)
	}
	if tr.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tr.Len())
	}
}
