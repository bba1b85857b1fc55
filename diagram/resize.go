package diagram

import (
	"math"

	"flowpad/geometry"
)

// ResizeStart is the snapshot taken when a resize gesture begins. Resize
// always works from the snapshot so the result depends only on the total
// pointer travel.
type ResizeStart struct {
	Handle Handle
	Mouse  geometry.Point
	Bounds geometry.Rect
	Aspect float64
}

func (s *Shape) BeginResize(h Handle, mouse geometry.Point) ResizeStart {
	aspect := 1.0
	if s.Height > 0 && s.Width > 0 {
		aspect = s.Width / s.Height
	}
	return ResizeStart{Handle: h, Mouse: mouse, Bounds: s.Bounds(), Aspect: aspect}
}

// Resize applies the pointer travel since st.Mouse. The delta is measured in
// the shape's unrotated frame. Corner handles keep the opposite corner fixed
// and hold the starting aspect ratio; edge handles keep the opposite edge
// fixed. Neither side shrinks below MinSize.
func (s *Shape) Resize(st ResizeStart, mouse geometry.Point) {
	d := geometry.RotateVector(mouse.Sub(st.Mouse), -s.Rotation)
	b := st.Bounds
	w, h := b.Width, b.Height
	h0 := st.Handle

	if h0.movesLeft() {
		w -= d.X
	}
	if h0.movesRight() {
		w += d.X
	}
	if h0.movesTop() {
		h -= d.Y
	}
	if h0.movesBottom() {
		h += d.Y
	}

	switch {
	case h0.IsCorner():
		r := st.Aspect
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			r = 1
		}
		h = (w*r + h) / (r*r + 1)
		h = math.Max(h, math.Max(MinSize, MinSize/r))
		w = h * r
	case h0 == HandleLeft || h0 == HandleRight:
		w = math.Max(w, MinSize)
	case h0 == HandleTop || h0 == HandleBottom:
		h = math.Max(h, MinSize)
	default:
		return
	}

	x, y := b.X, b.Y
	if h0.movesLeft() {
		x = b.X + b.Width - w
	}
	if h0.movesTop() {
		y = b.Y + b.Height - h
	}
	s.X, s.Y, s.Width, s.Height = x, y, w, h
}

// RotateToward points the rotation handle at mouse.
func (s *Shape) RotateToward(mouse geometry.Point) {
	c := s.Center()
	s.Rotation = math.Atan2(mouse.Y-c.Y, mouse.X-c.X) + math.Pi/2
}
