// Package brush turns an agent's position history into strokes on a surface.
//
// Brushes are plain values with no mutable state: applying one twice to the
// same history paints the same pixels.
package brush

import (
	"image/color"

	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// Surface is the drawing side of a canvas.
type Surface interface {
	DrawLine(a, b geom.Point, c color.RGBA, width int)
	DrawPolyline(pts []geom.Point, c color.RGBA, width int)
}

// Brush paints a position history onto a surface.
type Brush interface {
	Apply(s Surface, history []geom.Point)
}

// Func adapts a plain function to the Brush interface.
type Func func(s Surface, history []geom.Point)

// Apply calls f.
func (f Func) Apply(s Surface, history []geom.Point) { f(s, history) }

// None draws nothing.
var None Brush = Func(func(Surface, []geom.Point) {})

// StraightLine draws the latest segment of the history.
type StraightLine struct {
	Color color.RGBA
	Width int
}

// Apply draws from the second-to-last point to the last one.
func (b StraightLine) Apply(s Surface, history []geom.Point) {
	n := len(history)
	if n < 2 {
		return
	}
	s.DrawLine(history[n-2], history[n-1], b.Color, b.Width)
}

// BorderedPolyline draws the whole history as an outlined stroke: a wide
// border pass first, then the fill on top.
type BorderedPolyline struct {
	Fill            color.RGBA
	Border          color.RGBA
	Width           int
	BorderThickness int
}

// DefaultBorderedPolyline is a white stroke outlined in black.
var DefaultBorderedPolyline = BorderedPolyline{
	Fill:            color.RGBA{255, 255, 255, 255},
	Border:          color.RGBA{0, 0, 0, 255},
	Width:           10,
	BorderThickness: 2,
}

// Apply draws the history in insertion order.
func (b BorderedPolyline) Apply(s Surface, history []geom.Point) {
	if len(history) == 0 {
		return
	}
	s.DrawPolyline(history, b.Border, b.Width+2*b.BorderThickness)
	s.DrawPolyline(history, b.Fill, b.Width)
}
