package diagram

import (
	"math"

	"flowpad/geometry"
)

// Screen space sizes in pixels. Hit tests divide them by the zoom so the
// tolerance stays constant on screen.
const (
	MinSize              = 20.0
	GroupPadding         = 20.0
	CurveSteps           = 20
	PortOffset           = 15.0
	RotationHandleOffset = 30.0
	ResizeHandleSize     = 14.0
	PortSize             = 10.0
	RotationHandleRadius = 10.0
	ConnectorHitRadius   = 5.0
	EndpointHitRadius    = 10.0
	WaypointHitRadius    = 8.0
)

type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleTop
	HandleBottom
	HandleLeft
	HandleRight
)

// ResizeHandles is the hit-test order of the resize handles.
var ResizeHandles = []Handle{
	HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight,
	HandleTop, HandleBottom, HandleLeft, HandleRight,
}

func (h Handle) String() string {
	switch h {
	case HandleTopLeft:
		return "topLeft"
	case HandleTopRight:
		return "topRight"
	case HandleBottomLeft:
		return "bottomLeft"
	case HandleBottomRight:
		return "bottomRight"
	case HandleTop:
		return "top"
	case HandleBottom:
		return "bottom"
	case HandleLeft:
		return "left"
	case HandleRight:
		return "right"
	}
	return "none"
}

func (h Handle) IsCorner() bool {
	return h >= HandleTopLeft && h <= HandleBottomRight
}

func (h Handle) movesLeft() bool {
	return h == HandleTopLeft || h == HandleBottomLeft || h == HandleLeft
}

func (h Handle) movesRight() bool {
	return h == HandleTopRight || h == HandleBottomRight || h == HandleRight
}

func (h Handle) movesTop() bool {
	return h == HandleTopLeft || h == HandleTopRight || h == HandleTop
}

func (h Handle) movesBottom() bool {
	return h == HandleBottomLeft || h == HandleBottomRight || h == HandleBottom
}

// Port names a connection point on a shape edge.
type Port string

const (
	PortTop    Port = "top"
	PortBottom Port = "bottom"
	PortLeft   Port = "left"
	PortRight  Port = "right"
)

var Ports = []Port{PortTop, PortBottom, PortLeft, PortRight}

// toWorld rotates an unrotated-frame point about the shape centre.
func (s *Shape) toWorld(p geometry.Point) geometry.Point {
	if s.Rotation == 0 {
		return p
	}
	return geometry.RotatePoint(p, s.Center(), s.Rotation)
}

func (s *Shape) localHandle(h Handle) geometry.Point {
	x0, y0 := s.X, s.Y
	x1, y1 := s.X+s.Width, s.Y+s.Height
	cx, cy := s.X+s.Width/2, s.Y+s.Height/2
	switch h {
	case HandleTopLeft:
		return geometry.Pt(x0, y0)
	case HandleTopRight:
		return geometry.Pt(x1, y0)
	case HandleBottomLeft:
		return geometry.Pt(x0, y1)
	case HandleBottomRight:
		return geometry.Pt(x1, y1)
	case HandleTop:
		return geometry.Pt(cx, y0)
	case HandleBottom:
		return geometry.Pt(cx, y1)
	case HandleLeft:
		return geometry.Pt(x0, cy)
	case HandleRight:
		return geometry.Pt(x1, cy)
	}
	return geometry.Pt(cx, cy)
}

// HandlePoint returns the world position of a resize handle.
func (s *Shape) HandlePoint(h Handle) geometry.Point {
	return s.toWorld(s.localHandle(h))
}

// ResizeHandleAt returns the first resize handle within reach of pos.
func (s *Shape) ResizeHandleAt(pos geometry.Point, zoom float64) (Handle, bool) {
	limit := ResizeHandleSize / zoom / 2
	for _, h := range ResizeHandles {
		if pos.Dist(s.HandlePoint(h)) < limit {
			return h, true
		}
	}
	return HandleNone, false
}

// AttachPoint returns the world position of a connection point. The offset
// outwards from the edge is PortOffset screen pixels. Unknown ports resolve
// to the centre.
func (s *Shape) AttachPoint(port Port, zoom float64) geometry.Point {
	off := PortOffset / zoom
	c := s.Center()
	var p geometry.Point
	switch port {
	case PortTop:
		p = geometry.Pt(c.X, s.Y-off)
	case PortBottom:
		p = geometry.Pt(c.X, s.Y+s.Height+off)
	case PortLeft:
		p = geometry.Pt(s.X-off, c.Y)
	case PortRight:
		p = geometry.Pt(s.X+s.Width+off, c.Y)
	default:
		return c
	}
	return s.toWorld(p)
}

// PortAt returns the connection point within reach of pos. Shapes that do not
// allow connections never report one.
func (s *Shape) PortAt(pos geometry.Point, zoom float64) (Port, bool) {
	if !s.AllowConnections {
		return "", false
	}
	limit := PortSize / zoom / 2
	for _, p := range Ports {
		if pos.Dist(s.AttachPoint(p, zoom)) < limit {
			return p, true
		}
	}
	return "", false
}

// NearestPort returns the port whose attach point is closest to pos.
func (s *Shape) NearestPort(pos geometry.Point, zoom float64) Port {
	best, bestDist := PortTop, math.Inf(1)
	for _, p := range Ports {
		if d := pos.DistSq(s.AttachPoint(p, zoom)); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// RotationHandle returns the world position of the rotation knob, a fixed
// screen distance above the top edge.
func (s *Shape) RotationHandle(zoom float64) geometry.Point {
	c := s.Center()
	return s.toWorld(geometry.Pt(c.X, s.Y-RotationHandleOffset/zoom))
}

func (s *Shape) OnRotationHandle(pos geometry.Point, zoom float64) bool {
	return pos.Dist(s.RotationHandle(zoom)) < RotationHandleRadius/zoom
}
