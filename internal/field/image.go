package field

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// FromImage derives a field from an image's luminance: black maps to 0 and
// white to a full turn. The field takes the image's extent, row = y.
func FromImage(img image.Image) *Field {
	b := img.Bounds()
	f := New(b.Dy(), b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			f.set(y-b.Min.Y, x-b.Min.X, float64(g.Y)/255*2*math.Pi)
		}
	}
	return f
}

// Background selects how Render paints a field.
type Background string

const (
	BackgroundBlack Background = "black"
	BackgroundGrey  Background = "grey"
	BackgroundHue   Background = "hue"
)

// ParseBackground validates a background name.
func ParseBackground(s string) (Background, error) {
	switch b := Background(s); b {
	case BackgroundBlack, BackgroundGrey, BackgroundHue:
		return b, nil
	case "":
		return BackgroundBlack, nil
	default:
		return "", fmt.Errorf("field: unknown background %q", s)
	}
}

// Render paints the field into a new opaque RGBA image. Grey maps direction
// to brightness; hue maps it onto the colour wheel.
func (f *Field) Render(bg Background) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.w, f.h))
	for r := 0; r < f.h; r++ {
		for c := 0; c < f.w; c++ {
			v := normalize(f.values[r*f.w+c])
			var px color.RGBA
			switch bg {
			case BackgroundGrey:
				g := uint8(v / (2 * math.Pi) * 255)
				px = color.RGBA{g, g, g, 255}
			case BackgroundHue:
				hr, hg, hb := colorful.Hsv(v*180/math.Pi, 0.6, 0.35).RGB255()
				px = color.RGBA{hr, hg, hb, 255}
			default:
				px = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(c, r, px)
		}
	}
	return img
}
