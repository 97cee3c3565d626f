package agent

import "log/slog"

// Population owns the live agents and steps them once per tick.
type Population struct {
	// Floor is the size below which Refill is invoked after a tick.
	Floor int
	// Refill tops the population up. Nil disables refilling.
	Refill Factory

	agents []Agent
	nextID ID
}

// NewPopulation returns an empty population.
func NewPopulation() *Population {
	return &Population{}
}

// Seeder returns a seeder allocating IDs from this population.
func (p *Population) Seeder(f Field, rng Rand) Seeder {
	return Seeder{Field: f, Rand: rng, ids: &p.nextID}
}

// Add appends live agents. Dead ones are dropped.
func (p *Population) Add(agents ...Agent) {
	for _, a := range agents {
		if a != nil && a.Alive() {
			p.agents = append(p.agents, a)
		}
	}
}

// Seed runs a factory and adds what it produces. It returns the number of
// agents added.
func (p *Population) Seed(factory Factory, f Field, rng Rand) int {
	before := len(p.agents)
	p.Add(factory(p.Seeder(f, rng))...)
	return len(p.agents) - before
}

// Len returns the number of agents.
func (p *Population) Len() int { return len(p.agents) }

// Agents returns a copy of the agent list in insertion order.
func (p *Population) Agents() []Agent {
	return append([]Agent(nil), p.agents...)
}

// Counts returns the number of agents per variant.
func (p *Population) Counts() map[Variant]int {
	counts := make(map[Variant]int)
	for _, a := range p.agents {
		counts[a.Variant()]++
	}
	return counts
}

// Clear removes every agent. IDs keep counting up.
func (p *Population) Clear() {
	clear(p.agents)
	p.agents = p.agents[:0]
}

// Tick steps every agent alive at the start of the tick, in insertion order.
// Spawns and history injections queue on the Env and are applied after the
// pass; dead agents are then swept, new agents appended, and the population
// refilled if it fell below Floor. Agents spawned this tick are not stepped
// until the next one.
func (p *Population) Tick(tick int, c Canvas, f Field, rng Rand) {
	env := &Env{Seeder: p.Seeder(f, rng), Tick: tick, Canvas: c}

	pass := p.agents[:len(p.agents):len(p.agents)]
	for _, a := range pass {
		if !a.Alive() {
			continue
		}
		a.Step(env)
	}

	p.applyPrepends(env.prepends)
	p.sweep(tick)
	p.Add(env.spawned...)

	if p.Refill != nil && len(p.agents) < p.Floor {
		n := p.Seed(p.Refill, f, rng)
		Logger().Debug("population refilled", "tick", tick, "added", n, "size", len(p.agents))
	}
}

func (p *Population) applyPrepends(cmds []prepend) {
	if len(cmds) == 0 {
		return
	}
	byID := make(map[ID]*Base, len(p.agents))
	for _, a := range p.agents {
		byID[a.ID()] = a.core()
	}
	for _, cmd := range cmds {
		if target, ok := byID[cmd.target]; ok {
			target.prependHistory(cmd.point)
		}
	}
}

// sweep drops dead agents, logging why each one died.
func (p *Population) sweep(tick int) {
	log := Logger()
	live := p.agents[:0]
	for _, a := range p.agents {
		if a.Alive() {
			live = append(live, a)
			continue
		}
		attrs := []any{
			"tick", tick,
			"id", a.ID(),
			"variant", a.Variant(),
			"pos", a.Position(),
			"reason", a.Reason(),
		}
		if err := a.Err(); err != nil {
			log.Warn("agent failed", append(attrs, slog.Any("err", err))...)
			continue
		}
		log.Debug("agent died", attrs...)
	}
	clear(p.agents[len(live):])
	p.agents = live
}
