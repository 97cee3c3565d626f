package agent

import (
	"image/color"

	"github.com/olivierh59500/flowwalkers/internal/brush"
	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// MinStepDistance is the shortest step a crystal drawer will take. Shorter
// drawers are born dead.
const MinStepDistance = 1.0

// Decay scales a child crystal relative to its parent.
type Decay struct {
	Distance float64 // step distance factor
	Spawn    float64 // spawn probability factor, result capped at 1
	Lifespan float64 // lifespan factor, result truncated
	Angle    float64 // degrees added to or taken from the parent heading
}

// DefaultDecay shrinks each generation so branching dies out on its own.
func DefaultDecay() Decay {
	return Decay{Distance: 0.8, Spawn: 0.8, Lifespan: 0.9, Angle: 30}
}

// CrystalOptions configure a crystal drawer.
type CrystalOptions struct {
	StepDistance     float64
	StepDirection    float64 // degrees
	SpawnProbability float64
	Color            color.RGBA
	StrokeWidth      int
	Lifespan         int
	AgingRate        int
	Decay            Decay
}

// DefaultCrystalOptions returns the white, one pixel crystal.
func DefaultCrystalOptions() CrystalOptions {
	return CrystalOptions{
		StepDistance:     10,
		StepDirection:    140,
		SpawnProbability: 0.9,
		Color:            color.RGBA{255, 255, 255, 255},
		StrokeWidth:      1,
		Lifespan:         DefaultLifespan,
		AgingRate:        DefaultAgingRate,
		Decay:            DefaultDecay(),
	}
}

// child derives the options of a branch heading off at angle degrees.
func (o CrystalOptions) child(angle float64) CrystalOptions {
	c := o
	c.StepDirection = o.StepDirection + angle
	c.StepDistance = o.StepDistance * o.Decay.Distance
	c.SpawnProbability = min(o.SpawnProbability*o.Decay.Spawn, 1.0)
	c.Lifespan = int(float64(o.Lifespan) * o.Decay.Lifespan)
	return c
}

// CrystalDrawer grows straight segments at a fixed heading and branches at
// random. It stops on leaving a plateau of equal field values or on meeting
// ink of its own colour.
type CrystalDrawer struct {
	Base
	opts CrystalOptions
}

// NewCrystalDrawer places a drawer at pos. A step distance under
// MinStepDistance yields an agent that is already dead.
func NewCrystalDrawer(id ID, pos geom.Point, opts CrystalOptions) *CrystalDrawer {
	opts.Color.A = 255
	d := &CrystalDrawer{
		Base: newBase(id, pos, brush.StraightLine{Color: opts.Color, Width: opts.StrokeWidth}, opts.Lifespan, opts.AgingRate),
		opts: opts,
	}
	if opts.StepDistance < MinStepDistance {
		d.die(Stalled)
	}
	return d
}

func (d *CrystalDrawer) Variant() Variant { return VariantCrystalDrawer }

// Options returns the drawer's configuration.
func (d *CrystalDrawer) Options() CrystalOptions { return d.opts }

// Step grows the crystal by one segment.
func (d *CrystalDrawer) Step(env *Env) {
	if !d.Alive() {
		return
	}
	candidate := d.pos.Add(geom.PolarDegrees(d.opts.StepDistance, d.opts.StepDirection))
	if d.checkCommon(candidate, env.Canvas) {
		return
	}
	if d.leavesPlateau(candidate, env.Field) || d.collides(candidate, env.Canvas) {
		return
	}
	if env.Rand.Float64() < d.opts.SpawnProbability {
		d.spawn(env)
	}
	d.paint(candidate, env.Canvas)
	d.move(candidate)
}

// leavesPlateau compares field values with exact equality; only cells sharing
// the very same value count as one region.
func (d *CrystalDrawer) leavesPlateau(candidate geom.Point, f Field) bool {
	here, err := f.ValueAt(d.pos)
	if err != nil {
		d.fail(err)
		return true
	}
	there, err := f.ValueAt(candidate)
	if err != nil {
		d.fail(err)
		return true
	}
	if here != there {
		d.die(ColorMismatch)
		return true
	}
	return false
}

// collides walks the rasterized path between the current position and the
// candidate, both ends excluded, and looks for pixels already painted in the
// drawer's colour. A segment may end on existing ink.
func (d *CrystalDrawer) collides(candidate geom.Point, c Canvas) bool {
	for _, p := range geom.Line(d.pos, candidate) {
		if p == d.pos || p == candidate {
			continue
		}
		px, err := c.Pixel(p)
		if err != nil {
			d.fail(err)
			return true
		}
		if px == d.opts.Color {
			d.die(CollisionDetected)
			return true
		}
	}
	return false
}

// spawn starts a branch from the current, pre-step position.
func (d *CrystalDrawer) spawn(env *Env) {
	angle := d.opts.Decay.Angle
	if env.Rand.Intn(2) == 1 {
		angle = -angle
	}
	child := NewCrystalDrawer(env.NextID(), d.pos, d.opts.child(angle))
	if !child.Alive() {
		return
	}
	env.Spawn(child)
}
