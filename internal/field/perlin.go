package field

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// PerlinOptions tune the noise behind NewPerlin.
type PerlinOptions struct {
	Alpha  float64 // weight when the sum is formed, usually 2
	Beta   float64 // harmonic scaling, usually 2
	Octave int32   // number of iterations
	Scale  float64 // cells per noise unit; larger is smoother
	Turns  float64 // how many full rotations the noise range spans
	Seed   int64
}

// DefaultPerlinOptions mirrors the look of a 4x4 period noise grid over a
// 480x640 canvas.
func DefaultPerlinOptions() PerlinOptions {
	return PerlinOptions{
		Alpha:  2,
		Beta:   2,
		Octave: 3,
		Scale:  160,
		Turns:  1,
	}
}

// NewPerlin samples 2D Perlin noise into an h x w field of directions.
// Noise in [-1,1] maps onto [0, 2π·Turns).
func NewPerlin(h, w int, opts PerlinOptions) *Field {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Turns == 0 {
		opts.Turns = 1
	}
	noise := perlin.NewPerlin(opts.Alpha, opts.Beta, opts.Octave, opts.Seed)

	f := New(h, w)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			n := noise.Noise2D(float64(c)/opts.Scale, float64(r)/opts.Scale)
			f.set(r, c, (n+1)/2*2*math.Pi*opts.Turns)
		}
	}
	return f
}
