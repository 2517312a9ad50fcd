package icicle

import (
	"math"
	"strconv"

	"github.com/matzehuels/weekflow/pkg/layout"
)

// Drawing constants shared by the SVG and PNG sinks.
const (
	barRadius      = 8.0
	barOpacity     = 0.9
	barStroke      = "#ffffff"
	barStrokeWidth = 2.0
	flowOpacity    = 0.22

	labelColor    = "#212529"
	labelFontSize = 12.0
	labelPadX     = 8.0
	labelBaseline = 4.0
	labelCharW    = 7.2 // average advance of the bold 12px label font

	markerColor  = "#6c757d"
	markerSize   = 8.0
	markerRight  = 14.0
	markerBottom = 6.0
	markerSpace  = 24.0
)

// canvasSize mirrors the top-left margin on the bottom-right so the diagram
// sits centered in its frame.
func canvasSize(res layout.Result) (w, h float64) {
	minX, minY, maxX, maxY := res.Bounds()
	return maxX + math.Max(0, minX), maxY + math.Max(0, minY)
}

// formatHours prints hours without trailing zeros, rounded to two decimals.
func formatHours(h float64) string {
	return strconv.FormatFloat(math.Round(h*100)/100, 'f', -1, 64)
}

func labelText(p layout.Placement) string {
	return p.Name + ": " + formatHours(p.Hours) + "h"
}

// fitLabel shortens s to fit avail using measure, or returns "" when not even
// a few characters fit.
func fitLabel(s string, avail float64, measure func(string) float64) string {
	if measure(s) <= avail {
		return s
	}
	r := []rune(s)
	for n := len(r) - 1; n >= 3; n-- {
		t := string(r[:n]) + ".."
		if measure(t) <= avail {
			return t
		}
	}
	return ""
}

func estimateWidth(s string) float64 {
	return float64(len([]rune(s))) * labelCharW
}

func labelAvail(p layout.Placement) float64 {
	avail := p.Width - 2*labelPadX
	if p.Expandable {
		avail -= markerSpace - labelPadX
	}
	return avail
}

type point struct{ X, Y float64 }

// marker returns the triangle for an expandable bar: pointing down when
// expanded, up when collapsed.
func marker(p layout.Placement) [3]point {
	xc := p.X + p.Width - markerRight
	yb := p.Y + p.Height - markerBottom
	if p.Expanded {
		return [3]point{{xc - markerSize, yb - markerSize}, {xc + markerSize, yb - markerSize}, {xc, yb}}
	}
	return [3]point{{xc - markerSize, yb}, {xc + markerSize, yb}, {xc, yb - markerSize}}
}

// flowShape is a flow resolved to drawing coordinates.
type flowShape struct {
	c      layout.Corners
	y0, y1 float64
	cy     float64
}

func shapeOf(f layout.Flow, inset float64) flowShape {
	return flowShape{c: f.Corners(inset), y0: f.TopY, y1: f.BottomY, cy: f.ControlOffset()}
}
