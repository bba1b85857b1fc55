// Package geometry holds the pure 2D math the editor is built on: points,
// rectangles, rotation, segment distance and quadratic curve sampling.
package geometry

import "math"

// Point is a position in world or screen space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point      { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point      { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point    { return Point{p.X * k, p.Y * k} }
func (p Point) Div(k float64) Point    { return Point{p.X / k, p.Y / k} }
func (p Point) Mid(q Point) Point      { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }
func (p Point) Dist(q Point) float64   { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) DistSq(q Point) float64 { dx, dy := p.X-q.X, p.Y-q.Y; return dx*dx + dy*dy }

// RotatePoint rotates p about center by angle radians.
func RotatePoint(p, center Point, angle float64) Point {
	dx := p.X - center.X
	dy := p.Y - center.Y
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}

// RotateVector rotates a direction (no translation) by angle radians.
func RotateVector(v Point, angle float64) Point {
	return RotatePoint(v, Point{}, angle)
}

// DistanceToSegmentSquared returns the squared distance from p to the closest
// point of segment ab. A zero length segment degenerates to a point.
func DistanceToSegmentSquared(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.DistSq(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := Point{a.X + t*dx, a.Y + t*dy}
	return p.DistSq(closest)
}

func DistanceToSegment(p, a, b Point) float64 {
	return math.Sqrt(DistanceToSegmentSquared(p, a, b))
}

// PointOnSegment reports whether p lies strictly within radius of segment ab.
func PointOnSegment(p, a, b Point, radius float64) bool {
	return DistanceToSegmentSquared(p, a, b) < radius*radius
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid leaves
// v untouched.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}
