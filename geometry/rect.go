package geometry

import "math"

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// Width and Height may be negative while a marquee is being dragged; call
// Normalize before testing against it.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Min() Point    { return Point{r.X, r.Y} }
func (r Rect) Max() Point    { return Point{r.X + r.Width, r.Y + r.Height} }
func (r Rect) Center() Point { return Point{r.X + r.Width/2, r.Y + r.Height/2} }

// Contains is inclusive on every edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlaps reports whether r and o share interior area. Touching edges do
// not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height && r.Y+r.Height > o.Y
}

func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Expand grows r by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// Normalize flips negative extents so that Width and Height are >= 0.
func (r Rect) Normalize() Rect {
	return Rect{
		X:      math.Min(r.X, r.X+r.Width),
		Y:      math.Min(r.Y, r.Y+r.Height),
		Width:  math.Abs(r.Width),
		Height: math.Abs(r.Height),
	}
}

// PointInRotatedRect un-rotates p about the centre of r by -rotation and
// tests it against the axis-aligned rectangle.
func PointInRotatedRect(p Point, r Rect, rotation float64) bool {
	local := RotatePoint(p, r.Center(), -rotation)
	return r.Contains(local)
}

// BoundsOf returns the smallest rectangle containing every point. ok is
// false for an empty slice.
func BoundsOf(points []Point) (r Rect, ok bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
