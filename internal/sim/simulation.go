// Package sim drives a population of drawing agents over a canvas: it builds
// the field and canvas from a Config, ticks the population while drawing,
// post-processes the result while eroding and exports it at the end.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/olivierh59500/flowwalkers/internal/agent"
	"github.com/olivierh59500/flowwalkers/internal/canvas"
	"github.com/olivierh59500/flowwalkers/internal/field"
	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// Phase is the stage a simulation is in. Phases only move forward.
type Phase int

const (
	Drawing Phase = iota
	Eroding
	Ended
)

func (p Phase) String() string {
	switch p {
	case Drawing:
		return "drawing"
	case Eroding:
		return "eroding"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger for phase changes and exports.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithField replaces the field the config would build.
func WithField(f *field.Field) Option {
	return func(s *Simulation) { s.field = f }
}

// WithRand replaces the generator seeded from the config.
func WithRand(rng agent.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// Simulation owns the field, canvas, population and snapshot history of one
// run. It is not safe for concurrent use; frontends call it from one goroutine.
type Simulation struct {
	cfg      Config
	scenario scenario
	field    *field.Field
	canvas   *canvas.Canvas
	pop      *agent.Population
	rng      agent.Rand
	rec      *canvas.Recorder
	waiter   *Waiter
	log      *slog.Logger

	phase  Phase
	tick   int
	passes int
	seed   int64
}

// New builds a simulation from cfg and seeds its population.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc, err := buildScenario(cfg)
	if err != nil {
		return nil, err
	}

	s := &Simulation{cfg: cfg, scenario: sc, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}

	s.seed = cfg.Seed
	if s.seed == 0 {
		s.seed = time.Now().UnixNano()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.seed))
	}
	if s.field == nil {
		if s.field, err = buildField(cfg, s.seed); err != nil {
			return nil, err
		}
	}
	levels := cfg.Field.Quantize
	if levels == 0 {
		levels = sc.levels
	}
	if levels > 0 {
		s.field = s.field.Quantize(levels)
	}

	bg, err := field.ParseBackground(cfg.Background)
	if err != nil {
		return nil, err
	}
	s.canvas = canvas.FromImage(s.field.Render(bg))
	s.rec = canvas.NewRecorder(cfg.Record.Every, cfg.Record.Limit)
	s.rec.Capture(s.canvas)

	s.pop = agent.NewPopulation()
	s.pop.Floor = sc.floor
	s.pop.Refill = sc.refill
	n := s.pop.Seed(sc.seed, s.field, s.rng)

	h, w := s.field.Extent()
	s.log.Info("simulation ready",
		"scenario", cfg.Scenario,
		"size", fmt.Sprintf("%dx%d", w, h),
		"seed", s.seed,
		"agents", n,
		"levels", levels)
	return s, nil
}

// buildField derives the field from the configured image, or from Perlin
// noise when there is none.
func buildField(cfg Config, seed int64) (*field.Field, error) {
	fc := cfg.Field
	if fc.Image != "" {
		img, err := canvas.LoadImage(fc.Image)
		if err != nil {
			return nil, fmt.Errorf("sim: field image: %w", err)
		}
		return field.FromImage(img), nil
	}
	return field.NewPerlin(cfg.Height, cfg.Width, field.PerlinOptions{
		Alpha:  fc.Alpha,
		Beta:   fc.Beta,
		Octave: fc.Octaves,
		Scale:  fc.Scale,
		Turns:  fc.Turns,
		Seed:   seed,
	}), nil
}

// Phase returns the current phase.
func (s *Simulation) Phase() Phase { return s.phase }

// Tick returns the number of population ticks run so far.
func (s *Simulation) Tick() int { return s.tick }

// Passes returns the number of erode passes run so far.
func (s *Simulation) Passes() int { return s.passes }

// Seed returns the seed the run was built with.
func (s *Simulation) Seed() int64 { return s.seed }

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() Config { return s.cfg }

// Canvas returns the canvas being drawn on.
func (s *Simulation) Canvas() *canvas.Canvas { return s.canvas }

// Field returns the direction field, after quantization.
func (s *Simulation) Field() *field.Field { return s.field }

// Population returns the live agents.
func (s *Simulation) Population() *agent.Population { return s.pop }

// Census lists the live agents per variant, e.g. "FieldWalker 3,
// BackwardFieldWalker 3". It is empty when no agent is alive.
func (s *Simulation) Census() string {
	counts := s.pop.Counts()
	parts := make([]string, 0, len(counts))
	for _, v := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s %d", v, counts[v]))
	}
	return strings.Join(parts, ", ")
}

// Recorder returns the snapshot history.
func (s *Simulation) Recorder() *canvas.Recorder { return s.rec }

// Frame advances the current phase by one frame. While drawing it runs
// StepsPerFrame ticks; while eroding it runs at most one pass, and only once
// the erode interval has elapsed since the last one.
func (s *Simulation) Frame(now time.Time) {
	switch s.phase {
	case Drawing:
		for i := 0; i < s.cfg.StepsPerFrame; i++ {
			s.step()
			if s.cfg.MaxTicks > 0 && s.tick >= s.cfg.MaxTicks {
				s.Next(now)
				return
			}
		}
	case Eroding:
		if !s.waiter.Done(now) {
			return
		}
		s.erode()
		if s.cfg.Erode.Passes > 0 && s.passes >= s.cfg.Erode.Passes {
			s.Next(now)
		}
	}
}

func (s *Simulation) step() {
	s.pop.Tick(s.tick, s.canvas, s.field, s.rng)
	s.tick++
	s.rec.Capture(s.canvas)
}

func (s *Simulation) erode() {
	e := s.cfg.Erode
	if e.BlurSize > 0 {
		s.canvas.Blur(e.BlurSize)
	}
	if e.ErodeSize > 0 {
		s.canvas.Erode(e.ErodeSize)
	}
	if e.DilateSize > 0 {
		s.canvas.Dilate(e.DilateSize)
	}
	s.passes++
	s.rec.Capture(s.canvas)
}

// Next moves to the following phase. Ended is final. Agents are dropped once
// drawing is over.
func (s *Simulation) Next(now time.Time) {
	switch s.phase {
	case Drawing:
		s.phase = Eroding
		s.waiter = NewWaiter(s.cfg.Erode.Interval(), now)
	case Eroding:
		s.phase = Ended
	default:
		return
	}
	s.log.Info("phase changed", "phase", s.phase, "tick", s.tick, "agents", s.pop.Len())
	s.pop.Clear()
}

// Quit ends the run from any phase.
func (s *Simulation) Quit() {
	if s.phase == Ended {
		return
	}
	s.phase = Ended
	s.log.Info("phase changed", "phase", s.phase, "tick", s.tick, "agents", s.pop.Len())
	s.pop.Clear()
}

// SpawnAt adds a forward and backward walker pair at p and returns how many
// agents joined. Nothing spawns outside the drawing phase or off the field.
func (s *Simulation) SpawnAt(p geom.Point) int {
	if s.phase != Drawing {
		return 0
	}
	opts, err := walkerOptions(s.cfg.Walkers)
	if err != nil {
		return 0
	}
	n := s.pop.Seed(agent.PairAt(p, opts), s.field, s.rng)
	s.log.Debug("spawned pair", "pos", p, "agents", n)
	return n
}

// Save writes the canvas and, when snapshots were recorded, an animated GIF
// of the run into dir. Files are named after the current unix time. It
// returns the paths written.
func (s *Simulation) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("sim: create output dir: %w", err)
	}
	base := filepath.Join(dir, fmt.Sprintf("time%d", time.Now().Unix()))

	imagePath := base + "." + s.cfg.Record.Format
	if err := s.canvas.Save(imagePath); err != nil {
		return nil, err
	}
	paths := []string{imagePath}

	gifPath := base + ".gif"
	err := s.rec.SaveGIF(gifPath, s.cfg.Record.Delay)
	switch {
	case errors.Is(err, canvas.ErrNoFrames):
		s.log.Debug("no snapshots to animate")
	case err != nil:
		return paths, err
	default:
		paths = append(paths, gifPath)
	}
	s.log.Info("saved", "paths", paths, "frames", s.rec.Len())
	return paths, nil
}

// Run drives the simulation without a presenter until it ends or ctx is
// done. Drawing stops once the population is empty with nothing to refill
// it, and eroding is paced by a ticker at the erode interval. An Endless
// config only stops through ctx.
func (s *Simulation) Run(ctx context.Context) error {
	interval := s.cfg.Erode.Interval()
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for s.phase != Ended {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch s.phase {
		case Drawing:
			s.Frame(time.Now())
			if s.phase == Drawing && s.pop.Len() == 0 {
				s.Next(time.Now())
			}
		case Eroding:
			if s.cfg.Erode.Passes <= 0 {
				s.Next(time.Now())
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				s.Frame(now)
			}
		}
	}
	return nil
}
