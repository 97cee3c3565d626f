// Package tui shows a running simulation in a terminal. Each cell renders two
// canvas rows with an upper half block: the foreground is the top pixel and
// the background the bottom one.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/olivierh59500/flowwalkers/internal/geom"
	"github.com/olivierh59500/flowwalkers/internal/sim"
)

const halfBlock = '▀'

// Options configure a Presenter.
type Options struct {
	OutputDir     string        // where s saves; defaults to "output"
	FrameInterval time.Duration // defaults to ~60 FPS
	Logger        *slog.Logger
}

// Presenter draws a simulation on a tcell screen and feeds it keyboard and
// mouse input.
type Presenter struct {
	screen tcell.Screen
	sim    *sim.Simulation
	opts   Options
	log    *slog.Logger

	paused bool
	status string
}

// New wraps an initialized screen. The caller owns the screen and calls Fini.
func New(screen tcell.Screen, s *sim.Simulation, opts Options) *Presenter {
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	screen.EnableMouse()
	screen.HideCursor()
	return &Presenter{screen: screen, sim: s, opts: opts, log: log}
}

// Run advances and redraws the simulation every frame until the user quits
// or ctx is done.
func (p *Presenter) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(p.opts.FrameInterval)
	defer ticker.Stop()

	p.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !p.handle(ev, time.Now()) {
				return nil
			}
			p.Draw()
		case now := <-ticker.C:
			if !p.paused {
				p.sim.Frame(now)
			}
			p.Draw()
		}
	}
}

// handle applies one input event. It returns false when the presenter
// should stop.
func (p *Presenter) handle(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return p.handleKey(ev, now)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			if pt, ok := p.canvasPoint(x, y); ok {
				p.sim.SpawnAt(pt)
			}
		}
	case *tcell.EventResize:
		p.screen.Sync()
	}
	return true
}

func (p *Presenter) handleKey(ev *tcell.EventKey, now time.Time) bool {
	p.status = ""
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	}

	// Once ended, s saves and anything else leaves.
	if p.sim.Phase() == sim.Ended {
		if ev.Key() == tcell.KeyRune && ev.Rune() == 's' {
			p.save()
		}
		return false
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		p.sim.Next(now)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			p.sim.Quit()
		case 's':
			p.save()
		case ' ':
			p.paused = !p.paused
		}
	}
	return true
}

func (p *Presenter) save() {
	paths, err := p.sim.Save(p.opts.OutputDir)
	if err != nil {
		p.log.Error("save failed", "err", err)
		p.status = "save failed: " + err.Error()
		return
	}
	p.status = fmt.Sprintf("saved %v", paths)
}

// layout returns the screen area used by the canvas; the last row holds the
// status line.
func (p *Presenter) layout() (cols, rows int) {
	cols, rows = p.screen.Size()
	return cols, rows - 1
}

// canvasPoint maps a screen cell to the canvas pixel shown in its top half.
func (p *Presenter) canvasPoint(x, y int) (geom.Point, bool) {
	cols, rows := p.layout()
	if x < 0 || y < 0 || x >= cols || y >= rows {
		return geom.Point{}, false
	}
	h, w := p.sim.Canvas().Extent()
	return geom.Pt(2*y*h/(2*rows), x*w/cols), true
}

// Draw renders the canvas and status line.
func (p *Presenter) Draw() {
	cols, rows := p.layout()
	if cols <= 0 || rows <= 0 {
		return
	}
	img := p.sim.Canvas().Image()
	h, w := p.sim.Canvas().Extent()
	for y := 0; y < rows; y++ {
		top := 2 * y * h / (2 * rows)
		bottom := (2*y + 1) * h / (2 * rows)
		for x := 0; x < cols; x++ {
			col := x * w / cols
			st := tcell.StyleDefault.
				Foreground(rgb(img.RGBAAt(col, top))).
				Background(rgb(img.RGBAAt(col, bottom)))
			p.screen.SetContent(x, y, halfBlock, nil, st)
		}
	}
	p.drawStatus(rows, cols)
	p.screen.Show()
}

func (p *Presenter) drawStatus(row, cols int) {
	line := p.statusLine()
	st := tcell.StyleDefault.Foreground(tcell.ColorOrange).Background(tcell.ColorBlack)
	x := 0
	for _, r := range line {
		if x >= cols {
			break
		}
		p.screen.SetContent(x, row, r, nil, st)
		x += runewidth.RuneWidth(r)
	}
	for ; x < cols; x++ {
		p.screen.SetContent(x, row, ' ', nil, st)
	}
}

func (p *Presenter) statusLine() string {
	if p.status != "" {
		return p.status
	}
	phase := p.sim.Phase()
	switch phase {
	case sim.Ended:
		return "ended. s: save image + animation, any other key: quit"
	default:
		state := phase.String()
		if p.paused {
			state += " (paused)"
		}
		agents := fmt.Sprint(p.sim.Population().Len())
		if census := p.sim.Census(); census != "" {
			agents += " (" + census + ")"
		}
		return fmt.Sprintf("%s  tick %d  agents %s  erode %d | enter: next  space: pause  s: save  q: end",
			state, p.sim.Tick(), agents, p.sim.Passes())
	}
}

// Status returns the text of the status line.
func (p *Presenter) Status() string { return p.statusLine() }

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
