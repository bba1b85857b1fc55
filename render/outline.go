// Package render turns the editor state into pictures: a Scene describing
// what to draw, a gg rasteriser for it, and a terminal painter that shows the
// raster as half-block cells.
package render

import (
	"math"

	"flowpad/diagram"
	"flowpad/geometry"
)

type Op int

const (
	OpMove Op = iota
	OpLine
	OpQuad
	OpArc
	OpClose
)

// PathOp is one drawing instruction. OpQuad uses Ctrl and To, OpArc draws
// the arc of the ellipse with centre To and radii Radius from angle Start to
// End (radians), joining the current point with a line first.
type PathOp struct {
	Op     Op
	To     geometry.Point
	Ctrl   geometry.Point
	Radius geometry.Point
	Start  float64
	End    float64
}

// Figure is the outline of a shape in world coordinates before rotation.
// Painters rotate it about the shape centre.
type Figure struct {
	Ops []PathOp
	// Open figures are never filled.
	Open bool
	// Dashed outlines use a screen space dash.
	Dashed bool
	// StrokeWidth overrides the border width, in world units.
	StrokeWidth float64
	RoundCaps   bool
	// AlwaysStroke ignores the border flag.
	AlwaysStroke bool
}

func moveTo(x, y float64) PathOp { return PathOp{Op: OpMove, To: geometry.Pt(x, y)} }
func lineTo(x, y float64) PathOp { return PathOp{Op: OpLine, To: geometry.Pt(x, y)} }
func quadTo(cx, cy, x, y float64) PathOp {
	return PathOp{Op: OpQuad, Ctrl: geometry.Pt(cx, cy), To: geometry.Pt(x, y)}
}
func closePath() PathOp { return PathOp{Op: OpClose} }

func rectOps(r geometry.Rect) []PathOp {
	return []PathOp{
		moveTo(r.X, r.Y),
		lineTo(r.X+r.Width, r.Y),
		lineTo(r.X+r.Width, r.Y+r.Height),
		lineTo(r.X, r.Y+r.Height),
		closePath(),
	}
}

// roundedRectOps follows the edges clockwise with quadratic corners. The
// radius is clamped to half the smaller side.
func roundedRectOps(r geometry.Rect, radius float64) []PathOp {
	radius = math.Max(0, math.Min(radius, math.Min(r.Width/2, r.Height/2)))
	if radius == 0 {
		return rectOps(r)
	}
	x, y, w, h := r.X, r.Y, r.Width, r.Height
	return []PathOp{
		moveTo(x+radius, y),
		lineTo(x+w-radius, y),
		quadTo(x+w, y, x+w, y+radius),
		lineTo(x+w, y+h-radius),
		quadTo(x+w, y+h, x+w-radius, y+h),
		lineTo(x+radius, y+h),
		quadTo(x, y+h, x, y+h-radius),
		lineTo(x, y+radius),
		quadTo(x, y, x+radius, y),
		closePath(),
	}
}

// Outline returns the figure of s for its kind.
func Outline(s *diagram.Shape) Figure {
	b := s.Bounds()
	x, y, w, h := b.X, b.Y, b.Width, b.Height
	c := b.Center()

	switch v := s.Variant.(type) {
	case *diagram.Rectangle:
		return Figure{Ops: roundedRectOps(b, v.BorderRadius)}
	case *diagram.Diamond:
		return Figure{Ops: []PathOp{
			moveTo(c.X, y),
			lineTo(x+w, c.Y),
			lineTo(c.X, y+h),
			lineTo(x, c.Y),
			closePath(),
		}}
	case *diagram.Ellipse:
		return Figure{Ops: []PathOp{
			moveTo(x+w, c.Y),
			{Op: OpArc, To: c, Radius: geometry.Pt(w/2, h/2), Start: 0, End: 2 * math.Pi},
			closePath(),
		}}
	case *diagram.Pie:
		r := math.Min(w, h) / 2
		start := -math.Pi / 2
		return Figure{Ops: []PathOp{
			moveTo(c.X, c.Y),
			{Op: OpArc, To: c, Radius: geometry.Pt(r, r), Start: start, End: start + v.Angle*math.Pi/180},
			closePath(),
		}}
	case *diagram.Checkmark:
		return Figure{
			Ops: []PathOp{
				moveTo(x+0.2*w, y+0.5*h),
				lineTo(x+0.45*w, y+0.75*h),
				lineTo(x+0.8*w, y+0.25*h),
			},
			Open:         true,
			StrokeWidth:  math.Min(w, h) * 0.15,
			RoundCaps:    true,
			AlwaysStroke: true,
		}
	case *diagram.Group:
		return Figure{Ops: rectOps(b), Dashed: true}
	case *diagram.Image, *diagram.Text:
		return Figure{Ops: rectOps(b)}
	}
	return Figure{Ops: rectOps(b)}
}

// Flatten approximates the figure by line segments, steps per curved piece.
// Each sub-path is returned separately.
func (f Figure) Flatten(steps int) [][]geometry.Point {
	var (
		out   [][]geometry.Point
		cur   []geometry.Point
		start geometry.Point
	)
	last := func() geometry.Point {
		if len(cur) == 0 {
			return start
		}
		return cur[len(cur)-1]
	}
	for _, op := range f.Ops {
		switch op.Op {
		case OpMove:
			if len(cur) > 1 {
				out = append(out, cur)
			}
			start = op.To
			cur = []geometry.Point{op.To}
		case OpLine:
			cur = append(cur, op.To)
		case OpQuad:
			from := last()
			for i := 1; i <= steps; i++ {
				cur = append(cur, geometry.QuadAt(from, op.Ctrl, op.To, float64(i)/float64(steps)))
			}
		case OpArc:
			for i := 0; i <= steps; i++ {
				a := op.Start + (op.End-op.Start)*float64(i)/float64(steps)
				cur = append(cur, geometry.Pt(op.To.X+op.Radius.X*math.Cos(a), op.To.Y+op.Radius.Y*math.Sin(a)))
			}
		case OpClose:
			if len(cur) > 0 {
				cur = append(cur, start)
			}
		}
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}
