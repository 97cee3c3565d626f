// Package field provides the static vector field the walkers follow: a grid
// of directions in radians, the same extent as the canvas, built once before
// a run and never mutated afterwards.
package field

import (
	"fmt"
	"math"

	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// Field is an immutable h x w grid of directions in radians.
type Field struct {
	h, w   int
	values []float64
}

// New returns a zero field of the given extent.
func New(h, w int) *Field {
	if h < 0 || w < 0 {
		panic(fmt.Sprintf("field: negative extent %dx%d", h, w))
	}
	return &Field{h: h, w: w, values: make([]float64, h*w)}
}

// FromValues builds a field from rows of directions. All rows must have the
// same length.
func FromValues(rows [][]float64) (*Field, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	f := New(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != f.w {
			return nil, fmt.Errorf("field: row %d has %d values, want %d", r, len(row), f.w)
		}
		copy(f.values[r*f.w:], row)
	}
	return f, nil
}

// Extent returns the field's height and width.
func (f *Field) Extent() (int, int) { return f.h, f.w }

// ValueAt returns the direction stored at p. Points outside the extent yield
// an error wrapping geom.ErrOutOfBounds; the field never clamps.
func (f *Field) ValueAt(p geom.Point) (float64, error) {
	if !p.In(f.h, f.w) {
		return 0, geom.OutOfBounds("field", p, f.h, f.w)
	}
	return f.values[p.Row*f.w+p.Col], nil
}

// set is only used by constructors while the field is still private to them.
func (f *Field) set(row, col int, v float64) {
	f.values[row*f.w+col] = v
}

// Quantize returns a copy of f with every direction snapped to the nearest of
// levels evenly spaced angles around the circle. Neighbouring cells then share
// exactly equal values across plateaus.
func (f *Field) Quantize(levels int) *Field {
	q := New(f.h, f.w)
	if levels <= 0 {
		copy(q.values, f.values)
		return q
	}
	step := 2 * math.Pi / float64(levels)
	for i, v := range f.values {
		k := math.Round(normalize(v) / step)
		q.values[i] = math.Mod(k, float64(levels)) * step
	}
	return q
}

// normalize maps an angle into [0, 2π).
func normalize(v float64) float64 {
	v = math.Mod(v, 2*math.Pi)
	if v < 0 {
		v += 2 * math.Pi
	}
	return v
}
