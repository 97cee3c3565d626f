package canvas

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
)

// Recorder keeps a bounded history of canvas snapshots for animation export.
// When the history fills up every other frame is dropped and the capture
// interval doubles, so long runs keep an even spread over time.
type Recorder struct {
	every  int
	limit  int
	frames []*image.RGBA
	seen   int
}

// NewRecorder captures every Nth offered frame, keeping at most limit.
// A limit of zero or less disables recording.
func NewRecorder(every, limit int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every, limit: limit}
}

// Capture offers the canvas state; it is copied when it falls on the
// capture interval.
func (r *Recorder) Capture(c *Canvas) {
	if r.limit <= 0 {
		return
	}
	r.seen++
	if (r.seen-1)%r.every != 0 {
		return
	}
	if len(r.frames) >= r.limit {
		r.decimate()
	}
	r.frames = append(r.frames, c.Clone().img)
}

func (r *Recorder) decimate() {
	kept := r.frames[:0]
	for i := 0; i < len(r.frames); i += 2 {
		kept = append(kept, r.frames[i])
	}
	clear(r.frames[len(kept):])
	r.frames = kept
	r.every *= 2
}

// Len returns the number of stored frames.
func (r *Recorder) Len() int { return len(r.frames) }

// Every returns the current capture interval.
func (r *Recorder) Every() int { return r.every }

// EncodeGIF writes the history as a looping animated GIF. delay is in
// hundredths of a second.
func (r *Recorder) EncodeGIF(w io.Writer, delay int) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		p := image.NewPaletted(frame.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, frame.Bounds(), frame, image.Point{})
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("canvas: encode gif: %w", err)
	}
	return nil
}

// SaveGIF writes the history to path as an animated GIF.
func (r *Recorder) SaveGIF(path string, delay int) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("canvas: create file: %w", err)
	}
	if err := r.EncodeGIF(f, delay); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("canvas: close file: %w", err)
	}
	return nil
}
