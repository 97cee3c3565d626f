package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivierh59500/flowwalkers/internal/canvas"
	"github.com/olivierh59500/flowwalkers/internal/field"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestDefaultConfigUsesPerlinDefaults(t *testing.T) {
	noise := field.DefaultPerlinOptions()
	fc := DefaultConfig().Field
	assert.Equal(t, noise.Alpha, fc.Alpha)
	assert.Equal(t, noise.Beta, fc.Beta)
	assert.Equal(t, noise.Octave, fc.Octaves)
	assert.Equal(t, noise.Scale, fc.Scale)
	assert.Equal(t, noise.Turns, fc.Turns)
}

func TestEndless(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		endless bool
	}{
		{name: "default walkers", mutate: func(c *Config) {}},
		{name: "crystals refill", mutate: func(c *Config) { c.Scenario = ScenarioCrystals }, endless: true},
		{name: "crystals with tick limit", mutate: func(c *Config) {
			c.Scenario = ScenarioCrystals
			c.MaxTicks = 100
		}},
		{name: "crystals without floor", mutate: func(c *Config) {
			c.Scenario = ScenarioCrystals
			c.Crystals.Floor = 0
		}},
		{name: "random walkers refill", mutate: func(c *Config) {
			c.Scenario = ScenarioRandom
			c.Walkers.Floor = 10
		}, endless: true},
		{name: "field glyphs", mutate: func(c *Config) { c.Scenario = ScenarioField }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Equal(t, tt.endless, cfg.Endless())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{name: "empty canvas", mutate: func(c *Config) { c.Width = 0 }},
		{name: "no steps", mutate: func(c *Config) { c.StepsPerFrame = 0 }},
		{name: "unknown scenario", mutate: func(c *Config) { c.Scenario = "fireworks" }, target: ErrUnknownScenario},
		{name: "bad background", mutate: func(c *Config) { c.Background = "plaid" }},
		{name: "bad format", mutate: func(c *Config) { c.Record.Format = "webp" }, target: canvas.ErrUnsupportedFormat},
		{name: "bad colour", mutate: func(c *Config) { c.Crystals.Color = "white" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scenario":"crystals","width":100,"crystals":{"levels":4}}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ScenarioCrystals, cfg.Scenario)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, 4, cfg.Crystals.Levels)
	assert.Equal(t, 60, cfg.Crystals.AngleBetween)
}

func TestSaveConfigThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	want := DefaultConfig()
	want.Seed = 42
	want.Glyphs.Hue = true
	require.NoError(t, SaveConfig(path, want))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"width":`), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(128), c.G)
	assert.Equal(t, uint8(0), c.B)
	assert.Equal(t, uint8(255), c.A)
}

func TestWaiter(t *testing.T) {
	t0 := time.Unix(1000, 0)
	w := NewWaiter(100*time.Millisecond, t0)

	assert.False(t, w.Done(t0.Add(50*time.Millisecond)))
	assert.False(t, w.Done(t0.Add(100*time.Millisecond)), "must be strictly past the deadline")
	assert.True(t, w.Done(t0.Add(101*time.Millisecond)))
	assert.False(t, w.Done(t0.Add(150*time.Millisecond)), "next wait starts at the last success")
	assert.True(t, w.Done(t0.Add(202*time.Millisecond)))
}
