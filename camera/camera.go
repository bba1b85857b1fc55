// Package camera maps between world space and screen space.
package camera

import (
	"math"

	"flowpad/geometry"
)

const (
	MinZoom           = 0.1
	MaxZoom           = 5.0
	ScrollSensitivity = 0.0005
)

// Camera applies translate(Offset) after scale(Zoom):
// screen = world*Zoom + Offset.
type Camera struct {
	Offset geometry.Point
	Zoom   float64
}

func New() Camera {
	return Camera{Zoom: 1}
}

func (c Camera) WorldToScreen(p geometry.Point) geometry.Point {
	return p.Mul(c.Zoom).Add(c.Offset)
}

func (c Camera) ScreenToWorld(s geometry.Point) geometry.Point {
	return s.Sub(c.Offset).Div(c.Zoom)
}

// HitRadius converts a tolerance in screen pixels into world units.
func (c Camera) HitRadius(pixels float64) float64 {
	return pixels / c.Zoom
}

// ZoomAt sets the zoom level, clamped to [MinZoom, MaxZoom], while keeping
// the world point under cursor (screen space) fixed. Non-positive levels stop
// at MinZoom; NaN leaves the camera unchanged.
func (c *Camera) ZoomAt(cursor geometry.Point, zoom float64) {
	if math.IsNaN(zoom) {
		return
	}
	world := c.ScreenToWorld(cursor)
	c.Zoom = math.Max(MinZoom, math.Min(MaxZoom, zoom))
	c.Offset = cursor.Sub(world.Mul(c.Zoom))
}

// Wheel applies a scroll delta the way the browser wheel event does:
// zoom' = zoom * (1 - deltaY*sensitivity).
func (c *Camera) Wheel(cursor geometry.Point, deltaY, sensitivity float64) {
	if sensitivity <= 0 {
		sensitivity = ScrollSensitivity
	}
	c.ZoomAt(cursor, c.Zoom*(1-deltaY*sensitivity))
}

// Pan shifts the view by a screen space delta.
func (c *Camera) Pan(delta geometry.Point) {
	c.Offset = c.Offset.Add(delta)
}

// Visible returns the world rectangle covered by a width x height viewport.
func (c Camera) Visible(width, height float64) geometry.Rect {
	tl := c.ScreenToWorld(geometry.Point{})
	br := c.ScreenToWorld(geometry.Pt(width, height))
	return geometry.Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// Clamp limits a stored zoom to the supported range. NaN and non-positive
// values, which only a damaged document can hold, fall back to 1.
func Clamp(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom <= 0 {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}
