package icicle

import (
	"maps"

	"github.com/lucasb-eyer/go-colorful"
)

// FallbackColor is used for names missing from a palette.
const FallbackColor = "#888888"

// Palette maps node names to hex colors.
type Palette map[string]string

var defaultPalette = Palette{
	"Total":          "#0d6efd",
	"Asleep":         "#6610f2",
	"Awake":          "#0dcaf0",
	"Maintenance":    "#d63384",
	"Eating":         "#fd7e14",
	"Commute":        "#ffc107",
	"Hygiene":        "#20c997",
	"Active Rest":    "#198754",
	"Exercise":       "#0d6efd",
	"Hobby":          "#6f42c1",
	"Work":           "#6c757d",
	"Classes":        "#e83e8c",
	"Class Lectures": "#fd7e14",
	"Class HW":       "#ffc107",
	"Non-Class Work": "#0dcaf0",
	"Productive":     "#198754",
	"Unproductive":   "#dc3545",
	"Unallocated":    "#adb5bd",
}

// DefaultPalette returns a copy of the built-in palette for the weekly
// breakdown categories.
func DefaultPalette() Palette {
	return maps.Clone(defaultPalette)
}

// With returns a copy of p with overrides applied. Colors that do not parse
// are skipped.
func (p Palette) With(overrides map[string]string) Palette {
	out := maps.Clone(p)
	if out == nil {
		out = Palette{}
	}
	for name, c := range overrides {
		if _, err := colorful.Hex(c); err != nil {
			continue
		}
		out[name] = c
	}
	return out
}

// Color returns the color for name, or [FallbackColor].
func (p Palette) Color(name string) string {
	if c, ok := p[name]; ok {
		return c
	}
	return FallbackColor
}

// RGB resolves name to a color. Malformed palette entries resolve to the
// fallback.
func (p Palette) RGB(name string) colorful.Color {
	c, err := colorful.Hex(p.Color(name))
	if err != nil {
		c, _ = colorful.Hex(FallbackColor)
	}
	return c
}

// Contrast returns a near-black or white text color, whichever reads better
// on the color for name.
func (p Palette) Contrast(name string) string {
	l, _, _ := p.RGB(name).Lab()
	if l > 0.6 {
		return labelColor
	}
	return "#ffffff"
}
