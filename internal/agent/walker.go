package agent

import (
	"github.com/olivierh59500/flowwalkers/internal/brush"
	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// WalkerOptions configure field-following agents.
type WalkerOptions struct {
	Magnitude float64
	Brush     brush.Brush
	Lifespan  int
	AgingRate int
}

// DefaultWalkerOptions returns ten-cell steps drawn with the bordered brush.
func DefaultWalkerOptions() WalkerOptions {
	return WalkerOptions{
		Magnitude: 10,
		Brush:     brush.DefaultBorderedPolyline,
		Lifespan:  DefaultLifespan,
		AgingRate: DefaultAgingRate,
	}
}

// follower is the state shared by both walker directions.
type follower struct {
	Base
	magnitude float64
	direction float64
}

// Direction returns the heading in radians used for the next step.
func (f *follower) Direction() float64 { return f.direction }

// Magnitude returns the step length.
func (f *follower) Magnitude() float64 { return f.magnitude }

// resample reads the field under the current position. Doing this after the
// move, not before the next one, is what lags direction one tick behind.
func (f *follower) resample(fld Field) {
	v, err := fld.ValueAt(f.pos)
	if err != nil {
		f.fail(err)
		return
	}
	f.direction = v
}

// FieldWalker follows the field and draws its whole trail each tick.
type FieldWalker struct {
	follower
}

// NewFieldWalker places a walker at pos heading along direction (radians).
func NewFieldWalker(id ID, pos geom.Point, direction float64, opts WalkerOptions) *FieldWalker {
	return &FieldWalker{follower{
		Base:      newBase(id, pos, opts.Brush, opts.Lifespan, opts.AgingRate),
		magnitude: opts.Magnitude,
		direction: direction,
	}}
}

func (w *FieldWalker) Variant() Variant { return VariantFieldWalker }

// Step moves one magnitude along the current heading.
func (w *FieldWalker) Step(env *Env) {
	if !w.Alive() {
		return
	}
	candidate := w.pos.Add(geom.Polar(w.magnitude, w.direction))
	if w.checkCommon(candidate, env.Canvas) {
		return
	}
	w.paint(candidate, env.Canvas)
	w.move(candidate)
	w.resample(env.Field)
}

// BackwardFieldWalker walks against the field without drawing. Each point it
// reaches is pushed onto the front of its partner's history, so the partner's
// stroke grows in both directions from their shared seed.
type BackwardFieldWalker struct {
	follower
	partner ID
}

// NewBackwardFieldWalker pairs a backward walker with the forward walker
// identified by partner.
func NewBackwardFieldWalker(id ID, pos geom.Point, direction float64, partner ID, opts WalkerOptions) *BackwardFieldWalker {
	opts.Brush = brush.None
	return &BackwardFieldWalker{
		follower: follower{
			Base:      newBase(id, pos, opts.Brush, opts.Lifespan, opts.AgingRate),
			magnitude: opts.Magnitude,
			direction: direction,
		},
		partner: partner,
	}
}

func (w *BackwardFieldWalker) Variant() Variant { return VariantBackwardFieldWalker }

// Partner returns the forward walker this one feeds.
func (w *BackwardFieldWalker) Partner() ID { return w.partner }

// Step moves one magnitude against the current heading and hands the new
// point to the partner instead of drawing it.
func (w *BackwardFieldWalker) Step(env *Env) {
	if !w.Alive() {
		return
	}
	candidate := w.pos.Add(geom.Polar(-w.magnitude, w.direction))
	if w.checkCommon(candidate, env.Canvas) {
		return
	}
	env.PrependHistory(w.partner, candidate)
	w.history = append(w.history, candidate)
	w.move(candidate)
	w.resample(env.Field)
}
