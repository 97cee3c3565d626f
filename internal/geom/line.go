package geom

// Line returns the Bresenham rasterization of the segment a→b, inclusive of
// both endpoints, ordered from a to b.
func Line(a, b Point) []Point {
	x1, y1, x2, y2 := a.Row, a.Col, b.Row, b.Col

	steep := abs(y2-y1) > abs(x2-x1)
	if steep {
		x1, y1 = y1, x1
		x2, y2 = y2, x2
	}
	reversed := false
	if x1 > x2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
		reversed = true
	}

	dx := x2 - x1
	dy := abs(y2 - y1)
	errAcc := dx / 2
	ystep := -1
	if y1 < y2 {
		ystep = 1
	}

	points := make([]Point, 0, dx+1)
	y := y1
	for x := x1; x <= x2; x++ {
		if steep {
			points = append(points, Point{Row: y, Col: x})
		} else {
			points = append(points, Point{Row: x, Col: y})
		}
		errAcc -= dy
		if errAcc < 0 {
			y += ystep
			errAcc += dx
		}
	}

	if reversed {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
