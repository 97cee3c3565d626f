// Package canvas implements the mutable RGB pixel buffer the agents paint on.
//
// Positions are (row, col) grid points; row maps to image y and col to image
// x. Every drawing call clips to the buffer, so callers may pass points that
// lie partly or wholly outside it.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/olivierh59500/flowwalkers/internal/geom"
)

// Canvas is an opaque height x width RGB buffer backed by an *image.RGBA.
type Canvas struct {
	img *image.RGBA
}

// New returns a canvas filled with bg.
func New(h, w int, bg color.RGBA) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg.A = 255
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Canvas{img: img}
}

// FromImage copies src into a new canvas, forcing alpha to opaque.
func FromImage(src image.Image) *Canvas {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return &Canvas{img: img}
}

// Extent returns the canvas height and width.
func (c *Canvas) Extent() (int, int) {
	b := c.img.Bounds()
	return b.Dy(), b.Dx()
}

// Image exposes the backing image. Mutating it mutates the canvas.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clone returns a deep copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	img := image.NewRGBA(c.img.Bounds())
	copy(img.Pix, c.img.Pix)
	return &Canvas{img: img}
}

// Pixel reads the colour at p.
func (c *Canvas) Pixel(p geom.Point) (color.RGBA, error) {
	h, w := c.Extent()
	if !p.In(h, w) {
		return color.RGBA{}, geom.OutOfBounds("canvas", p, h, w)
	}
	return c.img.RGBAAt(p.Col, p.Row), nil
}

func (c *Canvas) set(p geom.Point, col color.RGBA) {
	h, w := c.Extent()
	if p.In(h, w) {
		c.img.SetRGBA(p.Col, p.Row, col)
	}
}

// DrawLine draws the segment a→b. Widths of one or less are drawn as an
// aliased Bresenham line so the exact colour lands on every covered pixel.
func (c *Canvas) DrawLine(a, b geom.Point, col color.RGBA, width int) {
	c.DrawPolyline([]geom.Point{a, b}, col, width)
}

// DrawPolyline draws pts as one connected open polyline with round joins and
// caps.
func (c *Canvas) DrawPolyline(pts []geom.Point, col color.RGBA, width int) {
	if len(pts) == 0 {
		return
	}
	col.A = 255
	if width <= 1 {
		c.set(pts[0], col)
		for i := 1; i < len(pts); i++ {
			for _, p := range geom.Line(pts[i-1], pts[i]) {
				c.set(p, col)
			}
		}
		return
	}
	c.stroke(pts, col, float32(width)/2)
}

// stroke rasterizes a thick polyline into the bounding box it touches only,
// so cost scales with the stroke rather than the canvas.
func (c *Canvas) stroke(pts []geom.Point, col color.RGBA, half float32) {
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for _, p := range pts {
		x, y := center(p)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	r := image.Rect(
		int(math.Floor(float64(minX-half)))-1, int(math.Floor(float64(minY-half)))-1,
		int(math.Ceil(float64(maxX+half)))+1, int(math.Ceil(float64(maxY+half)))+1,
	).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Over
	ox, oy := float32(r.Min.X), float32(r.Min.Y)

	// All shapes share one winding so overlaps union instead of cancelling.
	for i := 1; i < len(pts); i++ {
		x0, y0 := center(pts[i-1])
		x1, y1 := center(pts[i])
		dx, dy := x1-x0, y1-y0
		n := float32(math.Hypot(float64(dx), float64(dy)))
		if n == 0 {
			continue
		}
		nx, ny := -dy/n*half, dx/n*half
		z.MoveTo(x0+nx-ox, y0+ny-oy)
		z.LineTo(x1+nx-ox, y1+ny-oy)
		z.LineTo(x1-nx-ox, y1-ny-oy)
		z.LineTo(x0-nx-ox, y0-ny-oy)
		z.ClosePath()
	}
	for _, p := range pts {
		x, y := center(p)
		disc(z, x-ox, y-oy, half)
	}

	z.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// disc adds a circle traced in the same rotational sense as the segment quads.
func disc(z *vector.Rasterizer, cx, cy, r float32) {
	k := kappa * r
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
	z.CubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
	z.CubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
	z.CubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	z.ClosePath()
}

func center(p geom.Point) (float32, float32) {
	return float32(p.Col) + 0.5, float32(p.Row) + 0.5
}
