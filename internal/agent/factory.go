package agent

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// Factory produces a batch of agents for seeding or refilling a population.
type Factory func(s Seeder) []Agent

// RadialCrystals starts crystal drawers from one random point, one every
// angleBetween degrees around the circle plus a random offset.
func RadialCrystals(angleBetween int, opts CrystalOptions) Factory {
	return func(s Seeder) []Agent {
		if angleBetween <= 0 {
			return nil
		}
		h, w := s.Extent()
		if h == 0 || w == 0 {
			return nil
		}
		offset := int(float64(angleBetween) * s.Rand.Float64())
		point := geom.Pt(s.Rand.Intn(h), s.Rand.Intn(w))

		var out []Agent
		for theta := 0; theta < 360; theta += angleBetween {
			o := opts
			o.StepDirection = float64(theta + offset)
			out = append(out, NewCrystalDrawer(s.NextID(), point, o))
		}
		return out
	}
}

// RandomWalkers places n walkers at uniformly random positions, each heading
// along the field where it starts.
func RandomWalkers(n int, opts WalkerOptions) Factory {
	return func(s Seeder) []Agent {
		h, w := s.Extent()
		if h == 0 || w == 0 {
			return nil
		}
		out := make([]Agent, 0, n)
		for i := 0; i < n; i++ {
			pos := geom.Pt(s.Rand.Intn(h), s.Rand.Intn(w))
			dir, ok := s.direction(pos)
			if !ok {
				continue
			}
			out = append(out, NewFieldWalker(s.NextID(), pos, dir, opts))
		}
		return out
	}
}

// GridWalkers places one walker every step cells in both directions.
func GridWalkers(step int, opts WalkerOptions) Factory {
	return func(s Seeder) []Agent {
		var out []Agent
		eachCell(s, step, func(pos geom.Point, dir float64) {
			out = append(out, NewFieldWalker(s.NextID(), pos, dir, opts))
		})
		return out
	}
}

// LineWalkers places forward and backward walker pairs every step rows down
// the vertical centre line.
func LineWalkers(step int, opts WalkerOptions) Factory {
	return func(s Seeder) []Agent {
		if step <= 0 {
			return nil
		}
		h, w := s.Extent()
		var out []Agent
		for row := 0; row < h; row += step {
			out = append(out, pairAt(s, geom.Pt(row, w/2), opts)...)
		}
		return out
	}
}

// PairAt places a single forward and backward walker pair at p, as when the
// user clicks on the canvas.
func PairAt(p geom.Point, opts WalkerOptions) Factory {
	return func(s Seeder) []Agent {
		return pairAt(s, p, opts)
	}
}

func pairAt(s Seeder, p geom.Point, opts WalkerOptions) []Agent {
	dir, ok := s.direction(p)
	if !ok {
		return nil
	}
	fw := NewFieldWalker(s.NextID(), p, dir, opts)
	bw := NewBackwardFieldWalker(s.NextID(), p, dir, fw.ID(), opts)
	return []Agent{fw, bw}
}

// FieldGlyphs draws the field itself: one visualizer every granularity cells,
// half a cell long.
func FieldGlyphs(granularity int, c color.RGBA) Factory {
	return glyphs(granularity, func(float64) color.RGBA { return c })
}

// HueGlyphs is FieldGlyphs with each glyph coloured by its direction.
func HueGlyphs(granularity int) Factory {
	return glyphs(granularity, func(dir float64) color.RGBA {
		deg := math.Mod(dir*180/math.Pi, 360)
		if deg < 0 {
			deg += 360
		}
		r, g, b := colorful.Hsv(deg, 1, 1).RGB255()
		return color.RGBA{r, g, b, 255}
	})
}

func glyphs(granularity int, colorOf func(dir float64) color.RGBA) Factory {
	return func(s Seeder) []Agent {
		var out []Agent
		length := float64(granularity) / 2
		eachCell(s, granularity, func(pos geom.Point, dir float64) {
			out = append(out, NewFieldVisualizer(s.NextID(), pos, length, dir, colorOf(dir)))
		})
		return out
	}
}

func eachCell(s Seeder, step int, fn func(pos geom.Point, dir float64)) {
	if step <= 0 {
		return
	}
	h, w := s.Extent()
	for row := 0; row < h; row += step {
		for col := 0; col < w; col += step {
			pos := geom.Pt(row, col)
			if dir, ok := s.direction(pos); ok {
				fn(pos, dir)
			}
		}
	}
}

// direction samples the field for a factory. Positions come from the field's
// own extent, so a failure here is unexpected and gets logged.
func (s Seeder) direction(p geom.Point) (float64, bool) {
	v, err := s.Field.ValueAt(p)
	if err != nil {
		Logger().Warn("factory skipped position", "pos", p, "err", err)
		return 0, false
	}
	return v, true
}
