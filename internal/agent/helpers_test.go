package agent

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olivierh59500/flowwalkers/internal/canvas"
	"github.com/olivierh59500/flowwalkers/internal/field"
	"github.com/olivierh59500/flowwalkers/internal/geom"
)

var black = color.RGBA{0, 0, 0, 255}

// fixedRand returns the same values forever.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(int) int     { return r.n }

// countingCanvas counts draw calls on top of a real canvas.
type countingCanvas struct {
	*canvas.Canvas
	lines, polylines int
}

func newCountingCanvas(h, w int) *countingCanvas {
	return &countingCanvas{Canvas: canvas.New(h, w, black)}
}

func (c *countingCanvas) DrawLine(a, b geom.Point, col color.RGBA, width int) {
	c.lines++
	c.Canvas.DrawLine(a, b, col, width)
}

func (c *countingCanvas) DrawPolyline(pts []geom.Point, col color.RGBA, width int) {
	c.polylines++
	c.Canvas.DrawPolyline(pts, col, width)
}

func (c *countingCanvas) draws() int { return c.lines + c.polylines }

func uniformField(t *testing.T, h, w int, v float64) *field.Field {
	t.Helper()
	rows := make([][]float64, h)
	for r := range rows {
		rows[r] = make([]float64, w)
		for c := range rows[r] {
			rows[r][c] = v
		}
	}
	f, err := field.FromValues(rows)
	require.NoError(t, err)
	return f
}

// fieldWith is a uniform field with some cells overridden.
func fieldWith(t *testing.T, h, w int, v float64, cells map[geom.Point]float64) *field.Field {
	t.Helper()
	rows := make([][]float64, h)
	for r := range rows {
		rows[r] = make([]float64, w)
		for c := range rows[r] {
			rows[r][c] = v
			if o, ok := cells[geom.Pt(r, c)]; ok {
				rows[r][c] = o
			}
		}
	}
	f, err := field.FromValues(rows)
	require.NoError(t, err)
	return f
}

var errBroken = errors.New("broken sensor")

// brokenField fails every lookup with an error that is not out of bounds.
type brokenField struct{ h, w int }

func (f brokenField) ValueAt(geom.Point) (float64, error) { return 0, errBroken }
func (f brokenField) Extent() (int, int)                  { return f.h, f.w }

func newEnv(c Canvas, f Field, rng Rand) *Env {
	return &Env{Seeder: NewSeeder(f, rng), Canvas: c}
}

// stepCounter counts how often it is stepped and dies on the first step.
type stepCounter struct {
	Base
	steps int
}

func (s *stepCounter) Variant() Variant { return Variant(99) }

func (s *stepCounter) Step(*Env) {
	s.steps++
	s.die(Done)
}
