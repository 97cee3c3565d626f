// Package geom holds the integer grid geometry shared by the field, the
// canvas and the agents. Points are (row, col) pairs in canvas-index space.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a point lies outside a grid's extent.
var ErrOutOfBounds = errors.New("out of bounds")

// Point is a (row, col) grid position.
type Point struct {
	Row, Col int
}

// Pt is shorthand for Point{row, col}.
func Pt(row, col int) Point { return Point{Row: row, Col: col} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{Row: p.Row + q.Row, Col: p.Col + q.Col} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{Row: p.Row - q.Row, Col: p.Col - q.Col} }

// In reports whether p lies within [0,h) x [0,w).
func (p Point) In(h, w int) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < h && p.Col < w
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// OutOfBounds wraps ErrOutOfBounds with the offending point and extent.
func OutOfBounds(what string, p Point, h, w int) error {
	return fmt.Errorf("%s: %w: %v outside %dx%d", what, ErrOutOfBounds, p, h, w)
}

// Polar converts a (distance, radians) vector into a grid offset rounded to
// the nearest integer. The row axis takes the cosine component.
func Polar(distance, radians float64) Point {
	return Point{
		Row: int(math.Round(distance * math.Cos(radians))),
		Col: int(math.Round(distance * math.Sin(radians))),
	}
}

// PolarDegrees is Polar with the direction given in degrees.
func PolarDegrees(distance, degrees float64) Point {
	return Polar(distance, degrees*math.Pi/180)
}
