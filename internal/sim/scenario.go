package sim

import (
	"errors"
	"fmt"
	"slices"

	"github.com/olivierh59500/flowwalkers/internal/agent"
	"github.com/olivierh59500/flowwalkers/internal/brush"
)

// ErrUnknownScenario is returned for a scenario name that is not registered.
var ErrUnknownScenario = errors.New("sim: unknown scenario")

// Scenario names.
const (
	ScenarioWalkers  = "walkers"
	ScenarioGrid     = "grid"
	ScenarioRandom   = "random"
	ScenarioCrystals = "crystals"
	ScenarioField    = "field"
)

var scenarioNames = []string{ScenarioWalkers, ScenarioGrid, ScenarioRandom, ScenarioCrystals, ScenarioField}

// Scenarios lists the registered scenario names.
func Scenarios() []string { return slices.Clone(scenarioNames) }

func knownScenario(name string) bool { return slices.Contains(scenarioNames, name) }

// scenario is how a simulation populates itself.
type scenario struct {
	seed   agent.Factory
	refill agent.Factory
	floor  int
	levels int // field quantization, 0 for none
}

func buildScenario(cfg Config) (scenario, error) {
	walkers, err := walkerOptions(cfg.Walkers)
	if err != nil {
		return scenario{}, err
	}
	wc := cfg.Walkers

	switch cfg.Scenario {
	case ScenarioWalkers:
		return scenario{
			seed:   agent.LineWalkers(wc.Spacing, walkers),
			refill: agent.RandomWalkers(wc.Count, walkers),
			floor:  wc.Floor,
		}, nil
	case ScenarioGrid:
		return scenario{
			seed:   agent.GridWalkers(wc.Spacing, walkers),
			refill: agent.GridWalkers(wc.Spacing, walkers),
			floor:  wc.Floor,
		}, nil
	case ScenarioRandom:
		return scenario{
			seed:   agent.RandomWalkers(wc.Count, walkers),
			refill: agent.RandomWalkers(wc.Count, walkers),
			floor:  wc.Floor,
		}, nil
	case ScenarioCrystals:
		opts, err := crystalOptions(cfg.Crystals)
		if err != nil {
			return scenario{}, err
		}
		radial := agent.RadialCrystals(cfg.Crystals.AngleBetween, opts)
		return scenario{
			seed:   radial,
			refill: radial,
			floor:  cfg.Crystals.Floor,
			levels: cfg.Crystals.Levels,
		}, nil
	case ScenarioField:
		g := cfg.Glyphs
		if g.Hue {
			return scenario{seed: agent.HueGlyphs(g.Granularity)}, nil
		}
		c, err := parseColor(g.Color)
		if err != nil {
			return scenario{}, err
		}
		return scenario{seed: agent.FieldGlyphs(g.Granularity, c)}, nil
	default:
		return scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, cfg.Scenario)
	}
}

func walkerOptions(wc WalkerConfig) (agent.WalkerOptions, error) {
	fill, err := parseColor(wc.Fill)
	if err != nil {
		return agent.WalkerOptions{}, err
	}
	outline, err := parseColor(wc.Outline)
	if err != nil {
		return agent.WalkerOptions{}, err
	}
	return agent.WalkerOptions{
		Magnitude: wc.Magnitude,
		Brush: brush.BorderedPolyline{
			Fill:            fill,
			Border:          outline,
			Width:           wc.Width,
			BorderThickness: wc.Border,
		},
		Lifespan:  wc.Lifespan,
		AgingRate: wc.AgingRate,
	}, nil
}

func crystalOptions(cc CrystalConfig) (agent.CrystalOptions, error) {
	c, err := parseColor(cc.Color)
	if err != nil {
		return agent.CrystalOptions{}, err
	}
	return agent.CrystalOptions{
		StepDistance:     cc.StepDistance,
		SpawnProbability: cc.SpawnProbability,
		Color:            c,
		StrokeWidth:      cc.StrokeWidth,
		Lifespan:         cc.Lifespan,
		AgingRate:        cc.AgingRate,
		Decay: agent.Decay{
			Distance: cc.DistanceDecay,
			Spawn:    cc.SpawnDecay,
			Lifespan: cc.LifespanDecay,
			Angle:    cc.BranchAngle,
		},
	}, nil
}
