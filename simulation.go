package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/olivierh59500/flowwalkers/internal/geom"
	"github.com/olivierh59500/flowwalkers/internal/sim"
)

// Game shows a simulation in a window
type Game struct {
	sim    *sim.Simulation
	outDir string
	log    *slog.Logger

	paused  bool
	hideHUD bool
	status  string
	keys    []ebiten.Key
}

// NewGame wraps a simulation for ebiten.RunGame
func NewGame(s *sim.Simulation, outDir string, log *slog.Logger) *Game {
	return &Game{sim: s, outDir: outDir, log: log}
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	if err := g.handleInput(time.Now()); err != nil {
		return err
	}
	if !g.paused {
		g.sim.Frame(time.Now())
	}
	return nil
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.sim.Canvas().Image().Pix)
	if !g.hideHUD {
		ebitenutil.DebugPrint(screen, g.hud())
	}
}

// Layout keeps one screen pixel per canvas pixel
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	h, w := g.sim.Canvas().Extent()
	return w, h
}

// handleInput processes keyboard and mouse input. It returns
// ebiten.Termination when the window should close.
func (g *Game) handleInput(now time.Time) error {
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	if len(g.keys) > 0 {
		g.status = ""
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// Once ended, S saves and any other key closes the window.
	if g.sim.Phase() == sim.Ended {
		if len(g.keys) == 0 {
			return nil
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyS) {
			g.save()
		}
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.sim.Next(now)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.sim.Quit()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.save()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hideHUD = !g.hideHUD
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.sim.SpawnAt(geom.Pt(y, x))
	}
	return nil
}

func (g *Game) save() {
	paths, err := g.sim.Save(g.outDir)
	if err != nil {
		g.log.Error("save failed", "err", err)
		g.status = "save failed: " + err.Error()
		return
	}
	g.status = fmt.Sprintf("saved %v", paths)
}

// hud is the debug overlay text
func (g *Game) hud() string {
	if g.sim.Phase() == sim.Ended {
		return "Ended.\nPress S to save image + animation.\nPress any other key to quit.\n" + g.status
	}
	state := g.sim.Phase().String()
	if g.paused {
		state += " (paused)"
	}
	return fmt.Sprintf("%s\ntick %d  agents %d  erode %d\n%s\nTPS %0.1f\nenter: next  space: pause  s: save  q: end  h: hide\n%s",
		state, g.sim.Tick(), g.sim.Population().Len(), g.sim.Passes(), g.sim.Census(), ebiten.ActualTPS(), g.status)
}
