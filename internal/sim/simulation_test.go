package sim

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivierh59500/flowwalkers/internal/canvas"
	"github.com/olivierh59500/flowwalkers/internal/field"
	"github.com/olivierh59500/flowwalkers/internal/geom"
)

func testConfig(scenario string) Config {
	cfg := DefaultConfig()
	cfg.Scenario = scenario
	cfg.Width, cfg.Height = 40, 30
	cfg.Seed = 7
	cfg.Field.Scale = 10
	cfg.Walkers.Spacing = 10
	cfg.Walkers.Magnitude = 3
	cfg.Walkers.Width = 2
	cfg.Walkers.Border = 1
	cfg.Erode.IntervalMS = 1
	cfg.Erode.Passes = 2
	cfg.Record.Every = 1
	return cfg
}

func newSim(t *testing.T, cfg Config, opts ...Option) *Simulation {
	t.Helper()
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestNewScenarios(t *testing.T) {
	tests := []struct {
		scenario string
		agents   int
	}{
		{ScenarioWalkers, 6},
		{ScenarioGrid, 12},
		{ScenarioRandom, 100},
		{ScenarioCrystals, 6},
		{ScenarioField, 4},
	}
	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			s := newSim(t, testConfig(tt.scenario))
			assert.Equal(t, tt.agents, s.Population().Len())
			assert.Equal(t, Drawing, s.Phase())
			h, w := s.Canvas().Extent()
			assert.Equal(t, 30, h)
			assert.Equal(t, 40, w)
			assert.Equal(t, 1, s.Recorder().Len(), "initial snapshot")
		})
	}
}

func TestCensus(t *testing.T) {
	s := newSim(t, testConfig(ScenarioWalkers))
	assert.Equal(t, "FieldWalker 3, BackwardFieldWalker 3", s.Census())

	g := newSim(t, testConfig(ScenarioField))
	assert.Equal(t, "FieldVisualizer 4", g.Census())
	g.Quit()
	assert.Empty(t, g.Census())
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig("fireworks")
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestNewRejectsBadBackground(t *testing.T) {
	cfg := testConfig(ScenarioWalkers)
	cfg.Background = "plaid"
	s, err := New(cfg)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestCrystalsQuantizeField(t *testing.T) {
	s := newSim(t, testConfig(ScenarioCrystals))
	step := 2 * math.Pi / 8
	h, w := s.Field().Extent()
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			v, err := s.Field().ValueAt(geom.Pt(r, c))
			require.NoError(t, err)
			k := v / step
			assert.InDelta(t, math.Round(k), k, 1e-9)
		}
	}
}

func TestSameSeedSameField(t *testing.T) {
	a := newSim(t, testConfig(ScenarioWalkers))
	b := newSim(t, testConfig(ScenarioWalkers))
	assert.Equal(t, int64(7), a.Seed())
	assert.Equal(t, a.Canvas().Image().Pix, b.Canvas().Image().Pix)
}

func TestWithFieldAndRand(t *testing.T) {
	f, err := field.FromValues([][]float64{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)
	cfg := testConfig(ScenarioField)
	cfg.Glyphs.Granularity = 2

	s := newSim(t, cfg, WithField(f), WithRand(rand0{}))
	h, w := s.Canvas().Extent()
	assert.Equal(t, 2, h)
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, s.Population().Len())
}

type rand0 struct{}

func (rand0) Float64() float64 { return 0 }
func (rand0) Intn(int) int     { return 0 }

func TestFrameDrawing(t *testing.T) {
	cfg := testConfig(ScenarioWalkers)
	cfg.StepsPerFrame = 3
	s := newSim(t, cfg)

	s.Frame(time.Now())
	assert.Equal(t, 3, s.Tick())
	assert.Equal(t, Drawing, s.Phase())
	assert.Equal(t, 4, s.Recorder().Len())
}

func TestMaxTicksStartsEroding(t *testing.T) {
	cfg := testConfig(ScenarioWalkers)
	cfg.StepsPerFrame = 5
	cfg.MaxTicks = 2
	s := newSim(t, cfg)

	s.Frame(time.Now())
	assert.Equal(t, 2, s.Tick())
	assert.Equal(t, Eroding, s.Phase())
}

func TestErodeIsThrottled(t *testing.T) {
	s := newSim(t, testConfig(ScenarioWalkers))
	t0 := time.Unix(1000, 0)
	s.Next(t0)
	require.Equal(t, Eroding, s.Phase())

	s.Frame(t0)
	assert.Equal(t, 0, s.Passes(), "interval not elapsed")
	s.Frame(t0.Add(2 * time.Millisecond))
	assert.Equal(t, 1, s.Passes())
	s.Frame(t0.Add(2 * time.Millisecond))
	assert.Equal(t, 1, s.Passes())
	s.Frame(t0.Add(4 * time.Millisecond))
	assert.Equal(t, 2, s.Passes())
	assert.Equal(t, Ended, s.Phase(), "configured passes done")

	tick := s.Tick()
	s.Frame(t0.Add(time.Second))
	assert.Equal(t, tick, s.Tick(), "ended runs nothing")
	assert.Equal(t, 2, s.Passes())
}

func TestErodeSoftensCanvas(t *testing.T) {
	cfg := testConfig(ScenarioField)
	cfg.Background = string(field.BackgroundBlack)
	cfg.Glyphs.Granularity = 20
	cfg.Glyphs.Color = "#ffffff"
	s := newSim(t, cfg)
	s.Frame(time.Now())
	before := bytes.Clone(s.Canvas().Image().Pix)

	t0 := time.Unix(1000, 0)
	s.Next(t0)
	s.Frame(t0.Add(time.Second))
	assert.Equal(t, 1, s.Passes())
	assert.NotEqual(t, before, s.Canvas().Image().Pix)
}

func TestNextAndQuit(t *testing.T) {
	s := newSim(t, testConfig(ScenarioWalkers))
	now := time.Now()
	s.Next(now)
	assert.Equal(t, Eroding, s.Phase())
	s.Next(now)
	assert.Equal(t, Ended, s.Phase())
	s.Next(now)
	assert.Equal(t, Ended, s.Phase())

	q := newSim(t, testConfig(ScenarioWalkers))
	q.Quit()
	assert.Equal(t, Ended, q.Phase())
	assert.Equal(t, 0, q.Population().Len())
}

func TestErodingDropsAgents(t *testing.T) {
	s := newSim(t, testConfig(ScenarioWalkers))
	require.Positive(t, s.Population().Len())
	s.Next(time.Now())
	assert.Equal(t, 0, s.Population().Len())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "drawing", Drawing.String())
	assert.Equal(t, "eroding", Eroding.String())
	assert.Equal(t, "ended", Ended.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
}

func TestSpawnAt(t *testing.T) {
	s := newSim(t, testConfig(ScenarioField))
	before := s.Population().Len()

	assert.Equal(t, 2, s.SpawnAt(geom.Pt(5, 5)))
	assert.Equal(t, before+2, s.Population().Len())
	assert.Equal(t, 0, s.SpawnAt(geom.Pt(500, 500)), "off the field")

	s.Next(time.Now())
	assert.Equal(t, 0, s.SpawnAt(geom.Pt(5, 5)), "only while drawing")
}

func TestSave(t *testing.T) {
	s := newSim(t, testConfig(ScenarioWalkers))
	for i := 0; i < 3; i++ {
		s.Frame(time.Now())
	}
	dir := t.TempDir()

	paths, err := s.Save(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Regexp(t, `time\d+\.png$`, paths[0])
	assert.Regexp(t, `time\d+\.gif$`, paths[1])

	img, err := canvas.LoadImage(paths[0])
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	info, err := os.Stat(paths[1])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSaveWithoutRecording(t *testing.T) {
	cfg := testConfig(ScenarioWalkers)
	cfg.Record.Limit = 0
	cfg.Record.Format = string(canvas.FormatBMP)
	s := newSim(t, cfg)

	paths, err := s.Save(t.TempDir())
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Regexp(t, `\.bmp$`, paths[0])
}

func TestRunHeadless(t *testing.T) {
	cfg := testConfig(ScenarioRandom)
	cfg.MaxTicks = 5
	s := newSim(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	assert.Equal(t, Ended, s.Phase())
	assert.Equal(t, 5, s.Tick())
	assert.Equal(t, 2, s.Passes())
}

func TestRunStopsWhenPopulationEmpties(t *testing.T) {
	cfg := testConfig(ScenarioField)
	cfg.Erode.Passes = 0
	s := newSim(t, cfg)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, s.Tick(), "glyphs all die on their first tick")
	assert.Equal(t, Ended, s.Phase())
	assert.Equal(t, 0, s.Passes())
}

func TestRunCancelled(t *testing.T) {
	s := newSim(t, testConfig(ScenarioCrystals))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestLogsPhaseChanges(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s := newSim(t, testConfig(ScenarioWalkers), WithLogger(log))
	s.Next(time.Now())

	out := buf.String()
	assert.Contains(t, out, "simulation ready")
	assert.Contains(t, out, "seed=7")
	assert.Contains(t, out, "phase=eroding")
}
