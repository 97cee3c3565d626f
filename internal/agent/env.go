package agent

import "github.com/olivierh59500/flowwalkers/internal/geom"

// Seeder hands factories the collaborators they need and allocates IDs from
// the owning population.
type Seeder struct {
	Field Field
	Rand  Rand

	ids *ID
}

// NewSeeder returns a seeder drawing IDs from its own counter, starting at 1.
// IDs are unique only within that seeder; agents that must not collide with
// a population's agents should come from Population.Seeder.
func NewSeeder(f Field, rng Rand) Seeder {
	return Seeder{Field: f, Rand: rng, ids: new(ID)}
}

// NextID allocates a fresh agent ID.
func (s Seeder) NextID() ID {
	*s.ids++
	return *s.ids
}

// Extent returns the field extent, which is also the canvas extent.
func (s Seeder) Extent() (int, int) { return s.Field.Extent() }

// prepend asks for p to be pushed onto the front of target's history.
type prepend struct {
	target ID
	point  geom.Point
}

// Env is everything an agent sees during one tick. Side effects on other
// agents are queued here and applied after the whole population has stepped.
type Env struct {
	Seeder
	Tick   int
	Canvas Canvas

	spawned  []Agent
	prepends []prepend
}

// Spawn queues a new agent; it joins the population after the current pass.
func (e *Env) Spawn(a Agent) {
	e.spawned = append(e.spawned, a)
}

// PrependHistory queues a point for the front of target's history.
func (e *Env) PrependHistory(target ID, p geom.Point) {
	e.prepends = append(e.prepends, prepend{target: target, point: p})
}
