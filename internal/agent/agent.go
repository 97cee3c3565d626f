// Package agent implements the drawing agents and the population that steps
// them once per tick.
//
// Every agent runs the same five-part step: compute a candidate position,
// run the death checks (the first that fires ends the agent and nothing is
// drawn), optionally spawn, draw through its brush, then commit the move.
// Agents never touch the population directly; spawns and the backward
// walker's history injection are queued on the tick's Env and applied by the
// population once every agent has stepped.
package agent

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/olivierh59500/flowwalkers/internal/brush"
	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// Agent defaults.
const (
	HistoryCap       = 5000
	DefaultLifespan  = 50000
	DefaultAgingRate = 500
)

// Canvas is what an agent may do with the picture: draw and read back.
type Canvas interface {
	brush.Surface
	Pixel(p geom.Point) (color.RGBA, error)
	Extent() (int, int)
}

// Field is the read-only direction grid.
type Field interface {
	ValueAt(p geom.Point) (float64, error)
	Extent() (int, int)
}

// Rand is the slice of *rand.Rand the agents and factories use.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// ID identifies an agent within its population.
type ID uint64

// Variant names an agent kind.
type Variant int

const (
	VariantFieldWalker Variant = iota
	VariantBackwardFieldWalker
	VariantFieldVisualizer
	VariantCrystalDrawer
)

func (v Variant) String() string {
	switch v {
	case VariantFieldWalker:
		return "FieldWalker"
	case VariantBackwardFieldWalker:
		return "BackwardFieldWalker"
	case VariantFieldVisualizer:
		return "FieldVisualizer"
	case VariantCrystalDrawer:
		return "CrystalDrawer"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// DeathReason records why an agent stopped. The zero value means alive.
type DeathReason int

const (
	Alive DeathReason = iota
	Aged
	HistoryFull
	OutOfRange
	ColorMismatch
	CollisionDetected
	Done    // single-shot agent finished
	Stalled // step too short to move
	Fault   // unexpected error, see Agent.Err
)

func (r DeathReason) String() string {
	switch r {
	case Alive:
		return "alive"
	case Aged:
		return "aged"
	case HistoryFull:
		return "history full"
	case OutOfRange:
		return "out of range"
	case ColorMismatch:
		return "color mismatch"
	case CollisionDetected:
		return "collision"
	case Done:
		return "done"
	case Stalled:
		return "stalled"
	case Fault:
		return "fault"
	default:
		return fmt.Sprintf("DeathReason(%d)", int(r))
	}
}

// Agent is one drawing agent. The set of implementations is closed to this
// package.
type Agent interface {
	ID() ID
	Variant() Variant
	Position() geom.Point
	// History returns the visited positions, oldest first. The slice is
	// shared; callers must not modify it.
	History() []geom.Point
	Age() int
	Alive() bool
	Reason() DeathReason
	Err() error
	// Step advances the agent by one tick. Dead agents ignore it.
	Step(env *Env)

	core() *Base
}

// Base is the state every agent carries.
type Base struct {
	id        ID
	pos       geom.Point
	history   []geom.Point
	age       int
	agingRate int
	lifespan  int
	brush     brush.Brush
	reason    DeathReason
	err       error
}

func newBase(id ID, pos geom.Point, b brush.Brush, lifespan, agingRate int) Base {
	if b == nil {
		b = brush.None
	}
	return Base{
		id:        id,
		pos:       pos,
		history:   []geom.Point{pos},
		lifespan:  lifespan,
		agingRate: agingRate,
		brush:     b,
	}
}

func (b *Base) ID() ID                { return b.id }
func (b *Base) Position() geom.Point  { return b.pos }
func (b *Base) History() []geom.Point { return b.history }
func (b *Base) Age() int              { return b.age }
func (b *Base) Alive() bool           { return b.reason == Alive }
func (b *Base) Reason() DeathReason   { return b.reason }
func (b *Base) Err() error            { return b.err }
func (b *Base) core() *Base           { return b }

func (b *Base) die(r DeathReason) {
	if b.reason == Alive {
		b.reason = r
	}
}

// fail turns a lookup error into a death. Out of bounds means the agent
// wandered off the grid; anything else is kept for the population to report.
func (b *Base) fail(err error) {
	if errors.Is(err, geom.ErrOutOfBounds) {
		b.die(OutOfRange)
		return
	}
	b.err = err
	b.die(Fault)
}

// checkCommon runs the death checks shared by every moving agent, in order.
// It reports whether the agent died.
func (b *Base) checkCommon(candidate geom.Point, c Canvas) bool {
	if b.age > b.lifespan {
		b.die(Aged)
		return true
	}
	if len(b.history)+1 > HistoryCap {
		b.die(HistoryFull)
		return true
	}
	h, w := c.Extent()
	if !candidate.In(h, w) {
		b.die(OutOfRange)
		return true
	}
	return false
}

// paint extends the history with the candidate and hands it to the brush.
func (b *Base) paint(candidate geom.Point, c Canvas) {
	b.history = append(b.history, candidate)
	b.brush.Apply(c, b.history)
}

// move commits the candidate as the new position and ages the agent.
// The history must already end with candidate.
func (b *Base) move(candidate geom.Point) {
	b.pos = candidate
	b.age += b.agingRate
}

// prependHistory is the only cross-agent write: a partner pushes a point onto
// the front of this agent's history. Full histories drop the point.
func (b *Base) prependHistory(p geom.Point) {
	if len(b.history) >= HistoryCap {
		return
	}
	b.history = append(b.history, geom.Point{})
	copy(b.history[1:], b.history)
	b.history[0] = p
}
