package agent

import (
	"image/color"

	"github.com/olivierh59500/flowwalkers/internal/brush"
	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// FieldVisualizer draws one glyph showing the field at its position and dies.
type FieldVisualizer struct {
	Base
	magnitude float64
	direction float64
}

// NewFieldVisualizer builds a glyph of the given length and colour.
func NewFieldVisualizer(id ID, pos geom.Point, magnitude, direction float64, c color.RGBA) *FieldVisualizer {
	return &FieldVisualizer{
		Base:      newBase(id, pos, brush.StraightLine{Color: c, Width: 1}, DefaultLifespan, DefaultAgingRate),
		magnitude: magnitude,
		direction: direction,
	}
}

func (v *FieldVisualizer) Variant() Variant { return VariantFieldVisualizer }

// Step draws a segment from the position along the direction. The position
// never changes.
func (v *FieldVisualizer) Step(env *Env) {
	if !v.Alive() {
		return
	}
	end := v.pos.Add(geom.Polar(v.magnitude, v.direction))
	v.brush.Apply(env.Canvas, []geom.Point{v.pos, end})
	v.die(Done)
}
