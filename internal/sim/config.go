package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivierh59500/flowwalkers/internal/canvas"
	"github.com/olivierh59500/flowwalkers/internal/field"
)

// Config holds everything needed to build a simulation. The zero value is not
// useful; start from DefaultConfig.
type Config struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Scenario      string `json:"scenario"`
	Seed          int64  `json:"seed"` // 0 picks a seed from the clock
	StepsPerFrame int    `json:"steps_per_frame"`
	MaxTicks      int    `json:"max_ticks"` // 0 draws until told to stop
	Background    string `json:"background"`

	Field    FieldConfig   `json:"field"`
	Walkers  WalkerConfig  `json:"walkers"`
	Crystals CrystalConfig `json:"crystals"`
	Glyphs   GlyphConfig   `json:"glyphs"`
	Erode    ErodeConfig   `json:"erode"`
	Record   RecordConfig  `json:"record"`
}

// FieldConfig selects and tunes the direction field.
type FieldConfig struct {
	Image    string  `json:"image,omitempty"` // derive the field from this image instead of noise
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	Octaves  int32   `json:"octaves"`
	Scale    float64 `json:"scale"`
	Turns    float64 `json:"turns"`
	Quantize int     `json:"quantize"` // 0 keeps the raw field
}

// WalkerConfig configures the walkers, grid and random scenarios and the
// pairs spawned by clicking.
type WalkerConfig struct {
	Count     int     `json:"count"`
	Spacing   int     `json:"spacing"`
	Magnitude float64 `json:"magnitude"`
	Width     int     `json:"width"`
	Border    int     `json:"border"`
	Fill      string  `json:"fill"`
	Outline   string  `json:"outline"`
	Lifespan  int     `json:"lifespan"`
	AgingRate int     `json:"aging_rate"`
	Floor     int     `json:"floor"`
}

// CrystalConfig configures the crystals scenario.
type CrystalConfig struct {
	AngleBetween     int     `json:"angle_between"`
	StepDistance     float64 `json:"step_distance"`
	SpawnProbability float64 `json:"spawn_probability"`
	Color            string  `json:"color"`
	StrokeWidth      int     `json:"stroke_width"`
	Lifespan         int     `json:"lifespan"`
	AgingRate        int     `json:"aging_rate"`
	DistanceDecay    float64 `json:"distance_decay"`
	SpawnDecay       float64 `json:"spawn_decay"`
	LifespanDecay    float64 `json:"lifespan_decay"`
	BranchAngle      float64 `json:"branch_angle"`
	Levels           int     `json:"levels"` // field quantization when Field.Quantize is 0
	Floor            int     `json:"floor"`
}

// GlyphConfig configures the field scenario.
type GlyphConfig struct {
	Granularity int    `json:"granularity"`
	Color       string `json:"color"`
	Hue         bool   `json:"hue"`
}

// ErodeConfig configures the post-processing phase.
type ErodeConfig struct {
	IntervalMS int `json:"interval_ms"`
	BlurSize   int `json:"blur_size"`
	ErodeSize  int `json:"erode_size"`
	DilateSize int `json:"dilate_size"` // 0 skips dilation
	Passes     int `json:"passes"`      // 0 erodes until told to stop
}

// Interval returns the minimum time between erode passes.
func (e ErodeConfig) Interval() time.Duration {
	return time.Duration(e.IntervalMS) * time.Millisecond
}

// RecordConfig controls snapshot history and export.
type RecordConfig struct {
	Every  int    `json:"every"`
	Limit  int    `json:"limit"` // 0 disables the animation
	Delay  int    `json:"delay"` // GIF frame delay in 1/100 s
	Format string `json:"format"`
}

// DefaultConfig returns the settings of the flow path generator.
func DefaultConfig() Config {
	noise := field.DefaultPerlinOptions()
	return Config{
		Width:         640,
		Height:        480,
		Scenario:      ScenarioWalkers,
		StepsPerFrame: 1,
		Background:    string(field.BackgroundGrey),
		Field: FieldConfig{
			Alpha:   noise.Alpha,
			Beta:    noise.Beta,
			Octaves: noise.Octave,
			Scale:   noise.Scale,
			Turns:   noise.Turns,
		},
		Walkers: WalkerConfig{
			Count:     100,
			Spacing:   20,
			Magnitude: 10,
			Width:     10,
			Border:    2,
			Fill:      "#ffffff",
			Outline:   "#000000",
			Lifespan:  50000,
			AgingRate: 500,
		},
		Crystals: CrystalConfig{
			AngleBetween:     60,
			StepDistance:     10,
			SpawnProbability: 0.9,
			Color:            "#ffffff",
			StrokeWidth:      1,
			Lifespan:         50000,
			AgingRate:        500,
			DistanceDecay:    0.8,
			SpawnDecay:       0.8,
			LifespanDecay:    0.9,
			BranchAngle:      30,
			Levels:           8,
			Floor:            1,
		},
		Glyphs: GlyphConfig{
			Granularity: 20,
			Color:       "#ff0000",
		},
		Erode: ErodeConfig{
			IntervalMS: 100,
			BlurSize:   5,
			ErodeSize:  2,
			Passes:     10,
		},
		Record: RecordConfig{
			Every:  10,
			Limit:  200,
			Delay:  4,
			Format: string(canvas.FormatPNG),
		},
	}
}

// Validate reports the first setting that cannot produce a simulation.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("sim: canvas must not be empty, got %dx%d", c.Width, c.Height)
	}
	if c.StepsPerFrame < 1 {
		return errors.New("sim: steps_per_frame must be at least 1")
	}
	if !knownScenario(c.Scenario) {
		return fmt.Errorf("%w: %q", ErrUnknownScenario, c.Scenario)
	}
	if _, err := field.ParseBackground(c.Background); err != nil {
		return err
	}
	switch canvas.Format(c.Record.Format) {
	case canvas.FormatPNG, canvas.FormatJPEG, canvas.FormatTIFF, canvas.FormatBMP:
	default:
		return fmt.Errorf("%w: %q", canvas.ErrUnsupportedFormat, c.Record.Format)
	}
	for _, s := range []string{c.Walkers.Fill, c.Walkers.Outline, c.Crystals.Color, c.Glyphs.Color} {
		if _, err := parseColor(s); err != nil {
			return err
		}
	}
	return nil
}

// Endless reports whether drawing never stops on its own: the scenario keeps
// its population topped up and no tick limit is set.
func (c Config) Endless() bool {
	if c.MaxTicks > 0 {
		return false
	}
	switch c.Scenario {
	case ScenarioWalkers, ScenarioGrid, ScenarioRandom:
		return c.Walkers.Floor > 0
	case ScenarioCrystals:
		return c.Crystals.Floor > 0
	}
	return false
}

// LoadConfig reads a JSON config. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sim: read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("sim: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as indented JSON.
func SaveConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("sim: encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("sim: write config: %w", err)
	}
	return nil
}

// parseColor reads a "#rrggbb" colour.
func parseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("sim: bad colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}
