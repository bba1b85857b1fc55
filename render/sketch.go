package render

import (
	"math"
	"strings"

	"flowpad/diagram"
	"flowpad/geometry"
)

// sketchSteps is the number of segments per curved outline piece.
const sketchSteps = 8

type sketch struct {
	cols, rows int
	cells      [][]rune
}

func newSketch(cols, rows int) *sketch {
	sk := &sketch{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for r := range sk.cells {
		sk.cells[r] = []rune(strings.Repeat(" ", cols))
	}
	return sk
}

func (sk *sketch) set(col, row int, ch rune) {
	if col >= 0 && col < sk.cols && row >= 0 && row < sk.rows {
		sk.cells[row][col] = ch
	}
}

func cellOf(p geometry.Point) (float64, float64) {
	return p.X / CellWidth, p.Y / CellHeight
}

// slopeRune picks the character that best follows a segment in cell space.
func slopeRune(dx, dy float64) rune {
	switch {
	case math.Abs(dy) <= math.Abs(dx)/2:
		return '-'
	case math.Abs(dx) <= math.Abs(dy)/2:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	}
	return '/'
}

// line plots a screen space segment.
func (sk *sketch) line(a, b geometry.Point) {
	x0, y0 := cellOf(a)
	x1, y1 := cellOf(b)
	dx, dy := x1-x0, y1-y0
	ch := slopeRune(dx, dy)
	n := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	for i := 0; i <= n; i++ {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		sk.set(int(math.Floor(x0+dx*t)), int(math.Floor(y0+dy*t)), ch)
	}
}

func (sk *sketch) polyline(cam func(geometry.Point) geometry.Point, pts []geometry.Point) {
	for i := 0; i+1 < len(pts); i++ {
		sk.line(cam(pts[i]), cam(pts[i+1]))
	}
}

func arrowRune(angle float64) rune {
	deg := math.Mod(angle*180/math.Pi+360, 360)
	switch {
	case deg < 45 || deg >= 315:
		return '>'
	case deg < 135:
		return 'v'
	case deg < 225:
		return '<'
	}
	return '^'
}

// Sketch draws sc with plain characters, one per terminal cell: outlines and
// connectors as line characters, arrowheads as > < ^ v and labels as text.
func Sketch(sc *Scene, cols, rows int) []string {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	sk := newSketch(cols, rows)
	toScreen := sc.Camera.WorldToScreen

	for _, c := range sc.Connectors {
		g := c.Geometry
		sk.polyline(toScreen, g.Trace())
		if len(g.Points) >= 2 {
			x, y := cellOf(toScreen(g.Arrow.Tip))
			sk.set(int(math.Floor(x)), int(math.Floor(y)), arrowRune(g.Arrow.Angle))
		}
	}

	for _, item := range sc.Shapes {
		s := item.Shape
		center := s.Center()
		rotated := func(p geometry.Point) geometry.Point {
			if s.Rotation != 0 {
				p = geometry.RotatePoint(p, center, s.Rotation)
			}
			return toScreen(p)
		}
		for _, path := range item.Figure.Flatten(sketchSteps) {
			sk.polyline(rotated, path)
		}
		if _, ok := s.Variant.(*diagram.Checkmark); ok {
			continue
		}
		if block, ok := layoutLabel(sc, item); ok {
			block.each(cols, rows, func(col, row int, r rune, w int) {
				sk.set(col, row, r)
				if w == 2 {
					sk.set(col+1, row, 0)
				}
			})
		}
	}

	lines := make([]string, rows)
	for r, row := range sk.cells {
		var b strings.Builder
		for _, ch := range row {
			if ch != 0 {
				b.WriteRune(ch)
			}
		}
		lines[r] = strings.TrimRight(b.String(), " ")
	}
	return lines
}
