package canvas

import "image"

// Blur replaces the canvas with a size x size box blur. Borders reflect
// without repeating the edge pixel.
func (c *Canvas) Blur(size int) {
	if size <= 1 {
		return
	}
	b := c.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	lo := size / 2
	tmp := make([]uint32, w*h*3)
	src := c.img.Pix

	// horizontal pass into sums
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s [3]uint32
			for k := -lo; k < size-lo; k++ {
				o := y*c.img.Stride + reflect101(x+k, w)*4
				s[0] += uint32(src[o])
				s[1] += uint32(src[o+1])
				s[2] += uint32(src[o+2])
			}
			t := (y*w + x) * 3
			tmp[t], tmp[t+1], tmp[t+2] = s[0], s[1], s[2]
		}
	}

	// vertical pass back into the image
	area := uint32(size * size)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s [3]uint32
			for k := -lo; k < size-lo; k++ {
				t := (reflect101(y+k, h)*w + x) * 3
				s[0] += tmp[t]
				s[1] += tmp[t+1]
				s[2] += tmp[t+2]
			}
			o := y*c.img.Stride + x*4
			src[o] = uint8((s[0] + area/2) / area)
			src[o+1] = uint8((s[1] + area/2) / area)
			src[o+2] = uint8((s[2] + area/2) / area)
		}
	}
}

// Erode applies a size x size minimum filter, thinning bright strokes.
func (c *Canvas) Erode(size int) { c.morph(size, func(a, b uint8) bool { return a < b }) }

// Dilate applies a size x size maximum filter, thickening bright strokes.
func (c *Canvas) Dilate(size int) { c.morph(size, func(a, b uint8) bool { return a > b }) }

// morph keeps, per channel, the pixel that wins better within the kernel.
// The kernel anchor is its centre; pixels outside the canvas are ignored.
func (c *Canvas) morph(size int, better func(a, b uint8) bool) {
	if size <= 1 {
		return
	}
	b := c.img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := image.NewRGBA(b)
	copy(src.Pix, c.img.Pix)
	anchor := size / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := y*c.img.Stride + x*4
			best := [3]uint8{src.Pix[o], src.Pix[o+1], src.Pix[o+2]}
			for ky := -anchor; ky < size-anchor; ky++ {
				yy := y + ky
				if yy < 0 || yy >= h {
					continue
				}
				for kx := -anchor; kx < size-anchor; kx++ {
					xx := x + kx
					if xx < 0 || xx >= w {
						continue
					}
					so := yy*src.Stride + xx*4
					for ch := 0; ch < 3; ch++ {
						if better(src.Pix[so+ch], best[ch]) {
							best[ch] = src.Pix[so+ch]
						}
					}
				}
			}
			c.img.Pix[o], c.img.Pix[o+1], c.img.Pix[o+2] = best[0], best[1], best[2]
		}
	}
}

// reflect101 mirrors i into [0,n) without duplicating the border sample.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
