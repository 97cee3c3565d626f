package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp"

	"github.com/olivierh59500/flowwalkers/internal/agent"
	"github.com/olivierh59500/flowwalkers/internal/sim"
	"github.com/olivierh59500/flowwalkers/internal/tui"
)

// Display modes
const (
	DisplayWindow   = "window"
	DisplayTerminal = "terminal"
	DisplayHeadless = "headless"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flowwalkers: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "JSON config file")
		writeConfig = flag.String("write-config", "", "write the effective config to this file and exit")
		scenario    = flag.String("scenario", "", "one of "+strings.Join(sim.Scenarios(), ", "))
		width       = flag.Int("width", 0, "canvas width")
		height      = flag.Int("height", 0, "canvas height")
		seed        = flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
		ticks       = flag.Int("ticks", 0, "stop drawing after this many ticks, 0 for no limit (required headless when the scenario refills)")
		steps       = flag.Int("steps", 0, "ticks per frame")
		fieldImage  = flag.String("field", "", "derive the field from this image")
		background  = flag.String("background", "", "black, grey or hue")
		display     = flag.String("display", DisplayWindow, "window, terminal or headless")
		outDir      = flag.String("out", "output", "directory for saved images")
		logPath     = flag.String("log", "", "log file, defaults to stderr (discarded in terminal mode)")
		verbose     = flag.Bool("v", false, "log agent deaths and other debug events")
	)
	flag.Parse()

	cfg := sim.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = sim.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	// Flags override the file only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scenario":
			cfg.Scenario = *scenario
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "seed":
			cfg.Seed = *seed
		case "ticks":
			cfg.MaxTicks = *ticks
		case "steps":
			cfg.StepsPerFrame = *steps
		case "field":
			cfg.Field.Image = *fieldImage
		case "background":
			cfg.Background = *background
		}
	})
	if *writeConfig != "" {
		return sim.SaveConfig(*writeConfig, cfg)
	}

	log, closeLog, err := newLogger(*logPath, *display, *verbose)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(log)
	agent.SetLogger(log.With("component", "agent"))

	s, err := sim.New(cfg, sim.WithLogger(log))
	if err != nil {
		return err
	}

	switch *display {
	case DisplayWindow:
		return runWindow(s, *outDir, log)
	case DisplayTerminal:
		return runTerminal(s, *outDir, log)
	case DisplayHeadless:
		if cfg.Endless() {
			return fmt.Errorf("scenario %q refills forever: set -ticks for headless runs", cfg.Scenario)
		}
		return runHeadless(s, *outDir)
	default:
		return fmt.Errorf("unknown display %q", *display)
	}
}

func newLogger(path, display string, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	closer := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		w = f
		closer = func() { _ = f.Close() }
	case display == DisplayTerminal:
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

func runWindow(s *sim.Simulation, outDir string, log *slog.Logger) error {
	h, w := s.Canvas().Extent()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("flowwalkers: " + s.Config().Scenario)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(NewGame(s, outDir, log))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func runTerminal(s *sim.Simulation, outDir string, log *slog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = tui.New(screen, s, tui.Options{OutputDir: outDir, Logger: log}).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runHeadless draws and erodes without a presenter, then saves. An interrupt
// cuts the run short but still saves what was drawn.
func runHeadless(s *sim.Simulation, outDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	paths, err := s.Save(outDir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}
