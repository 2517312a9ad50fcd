// Package breakdown derives a weekly hours tree from a handful of budget
// inputs.
//
// A week has [WeekHours] hours. Sleep is taken per night; everything else
// is weekly. The remaining awake time that no category claims is reported as
// unallocated and never goes negative. When the categories claim more than
// the awake hours, the resulting tree is inconsistent and
// [tree.Tree.CheckConsistency] will say so.
package breakdown

import (
	"fmt"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/tree"
)

// WeekHours is the length of the budgeted week.
const WeekHours = 168.0

// Node IDs of the generated tree.
const (
	IDTotal         = "total"
	IDAsleep        = "asleep"
	IDAwake         = "awake"
	IDMaintenance   = "maintenance"
	IDEating        = "eating"
	IDCommute       = "commute"
	IDHygiene       = "hygiene"
	IDActiveRest    = "active-rest"
	IDExercise      = "exercise"
	IDHobby         = "hobby"
	IDWork          = "work"
	IDClasses       = "classes"
	IDClassLectures = "class-lectures"
	IDClassHW       = "class-hw"
	IDNonClass      = "non-class"
	IDProductive    = "productive"
	IDUnproductive  = "unproductive"
	IDUnallocated   = "unallocated"
)

// Maintenance groups the weekly upkeep hours.
type Maintenance struct {
	Eating  float64 `json:"eating" toml:"eating"`
	Commute float64 `json:"commute" toml:"commute"`
	Hygiene float64 `json:"hygiene" toml:"hygiene"`
}

// ActiveRest groups the weekly recreation hours.
type ActiveRest struct {
	Exercise float64 `json:"exercise" toml:"exercise"`
	Hobby    float64 `json:"hobby" toml:"hobby"`
}

// Classes describes the course load. Lecture and HW are per class.
type Classes struct {
	Count   float64 `json:"count" toml:"count"`
	Lecture float64 `json:"lecture" toml:"lecture"`
	HW      float64 `json:"hw" toml:"hw"`
}

// NonClass groups weekly work outside of classes.
type NonClass struct {
	Productive   float64 `json:"productive" toml:"productive"`
	Unproductive float64 `json:"unproductive" toml:"unproductive"`
}

// Inputs are the user-supplied budget figures.
type Inputs struct {
	SleepPerNight float64     `json:"sleep_per_night" toml:"sleep_per_night"`
	Maintenance   Maintenance `json:"maintenance" toml:"maintenance"`
	ActiveRest    ActiveRest  `json:"active_rest" toml:"active_rest"`
	Classes       Classes     `json:"classes" toml:"classes"`
	NonClass      NonClass    `json:"non_class" toml:"non_class"`
}

// DefaultInputs returns a typical student week.
func DefaultInputs() Inputs {
	return Inputs{
		SleepPerNight: 8,
		Maintenance:   Maintenance{Eating: 10, Commute: 7, Hygiene: 7},
		ActiveRest:    ActiveRest{Exercise: 5, Hobby: 10},
		Classes:       Classes{Count: 4, Lecture: 3, HW: 5},
		NonClass:      NonClass{Productive: 8, Unproductive: 4},
	}
}

// Validate checks that every figure is finite and non-negative and that
// sleep fits in a day.
func (in Inputs) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"sleep_per_night", in.SleepPerNight},
		{"maintenance.eating", in.Maintenance.Eating},
		{"maintenance.commute", in.Maintenance.Commute},
		{"maintenance.hygiene", in.Maintenance.Hygiene},
		{"active_rest.exercise", in.ActiveRest.Exercise},
		{"active_rest.hobby", in.ActiveRest.Hobby},
		{"classes.count", in.Classes.Count},
		{"classes.lecture", in.Classes.Lecture},
		{"classes.hw", in.Classes.HW},
		{"non_class.productive", in.NonClass.Productive},
		{"non_class.unproductive", in.NonClass.Unproductive},
	}
	for _, f := range fields {
		if err := errs.ValidateHours(f.name, f.v); err != nil {
			return err
		}
	}
	if in.SleepPerNight > 24 {
		return errs.New(errs.ErrCodeInvalidInput, "sleep_per_night must be at most 24, got %v", in.SleepPerNight)
	}
	return nil
}

// Breakdown holds the derived weekly totals.
type Breakdown struct {
	Sleep         float64
	Awake         float64
	Maintenance   float64
	ActiveRest    float64
	Work          float64
	Classes       float64
	ClassLectures float64
	ClassHW       float64
	NonClass      float64
	Unallocated   float64
	// ProductiveProjectHours is the weekly time that advances personal
	// projects.
	ProductiveProjectHours float64

	in Inputs
}

// Compute derives the weekly totals from in. It does not validate.
func Compute(in Inputs) Breakdown {
	b := Breakdown{in: in}
	b.Sleep = in.SleepPerNight * 7
	b.Awake = WeekHours - b.Sleep
	b.Maintenance = in.Maintenance.Eating + in.Maintenance.Commute + in.Maintenance.Hygiene
	b.ActiveRest = in.ActiveRest.Exercise + in.ActiveRest.Hobby
	b.ClassLectures = in.Classes.Count * in.Classes.Lecture
	b.ClassHW = in.Classes.Count * in.Classes.HW
	b.Classes = in.Classes.Count * (in.Classes.Lecture + in.Classes.HW)
	b.NonClass = in.NonClass.Productive + in.NonClass.Unproductive
	b.Work = b.Classes + b.NonClass

	accounted := b.Maintenance + b.ActiveRest + b.Work
	b.Unallocated = max(0, b.Awake-accounted)
	b.ProductiveProjectHours = in.NonClass.Productive
	return b
}

// Overcommitted reports how many hours the categories claim beyond the awake
// time, or zero.
func (b Breakdown) Overcommitted() float64 {
	return max(0, b.Maintenance+b.ActiveRest+b.Work-b.Awake)
}

// Spec returns the nested tree of the breakdown. Only the root starts
// expanded.
func (b Breakdown) Spec() tree.Spec {
	in := b.in
	leaf := func(id, name string, h float64) tree.Spec {
		return tree.Spec{ID: id, Name: name, Hours: h}
	}
	return tree.Spec{
		ID: IDTotal, Name: "Total", Hours: WeekHours, Expanded: true,
		Children: []tree.Spec{
			leaf(IDAsleep, "Asleep", b.Sleep),
			{
				ID: IDAwake, Name: "Awake", Hours: b.Awake,
				Children: []tree.Spec{
					{
						ID: IDMaintenance, Name: "Maintenance", Hours: b.Maintenance,
						Children: []tree.Spec{
							leaf(IDEating, "Eating", in.Maintenance.Eating),
							leaf(IDCommute, "Commute", in.Maintenance.Commute),
							leaf(IDHygiene, "Hygiene", in.Maintenance.Hygiene),
						},
					},
					{
						ID: IDActiveRest, Name: "Active Rest", Hours: b.ActiveRest,
						Children: []tree.Spec{
							leaf(IDExercise, "Exercise", in.ActiveRest.Exercise),
							leaf(IDHobby, "Hobby", in.ActiveRest.Hobby),
						},
					},
					{
						ID: IDWork, Name: "Work", Hours: b.Work,
						Children: []tree.Spec{
							{
								ID: IDClasses, Name: "Classes", Hours: b.Classes,
								Children: []tree.Spec{
									leaf(IDClassLectures, "Class Lectures", b.ClassLectures),
									leaf(IDClassHW, "Class HW", b.ClassHW),
								},
							},
							{
								ID: IDNonClass, Name: "Non-Class Work", Hours: b.NonClass,
								Children: []tree.Spec{
									leaf(IDProductive, "Productive", in.NonClass.Productive),
									leaf(IDUnproductive, "Unproductive", in.NonClass.Unproductive),
								},
							},
						},
					},
					leaf(IDUnallocated, "Unallocated", b.Unallocated),
				},
			},
		},
	}
}

// Tree validates in and builds the breakdown tree.
func Tree(in Inputs) (*tree.Tree, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := tree.Build(Compute(in).Spec())
	if err != nil {
		return nil, fmt.Errorf("build breakdown tree: %w", err)
	}
	return t, nil
}

// Demo returns the small Busy/Free tree used for examples.
func Demo() tree.Spec {
	return tree.Spec{
		ID: IDTotal, Name: "Total", Hours: 100, Expanded: true,
		Children: []tree.Spec{
			{ID: "busy", Name: "Busy", Hours: 80},
			{ID: "free", Name: "Free", Hours: 20, Expanded: true, Children: []tree.Spec{
				{ID: "prod", Name: "Productive", Hours: 10},
				{ID: "unprod", Name: "Unproductive", Hours: 10},
			}},
		},
	}
}
