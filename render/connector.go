package render

import (
	"math"

	"flowpad/diagram"
	"flowpad/geometry"
)

// Arrowhead wing lengths in world units.
const (
	ArrowLength = 10.0
	ArrowSpread = 5.0
	ArrowWidth  = 2.0
)

// Arrow is an arrowhead at Tip pointing along Angle.
type Arrow struct {
	Tip   geometry.Point
	Angle float64
}

// Wings returns the two far ends of the arrowhead lines.
func (a Arrow) Wings() (geometry.Point, geometry.Point) {
	left := geometry.RotateVector(geometry.Pt(-ArrowLength, -ArrowSpread), a.Angle)
	right := geometry.RotateVector(geometry.Pt(-ArrowLength, ArrowSpread), a.Angle)
	return a.Tip.Add(left), a.Tip.Add(right)
}

// Geometry is a connector resolved against the document: its control path,
// the curve pieces when it is drawn curved and the arrowhead at the to end.
type Geometry struct {
	Points []geometry.Point
	Quads  []geometry.Quad
	Arrow  Arrow
}

func (g Geometry) Curved() bool { return len(g.Quads) > 0 }

// Trace returns the polyline the connector is drawn as.
func (g Geometry) Trace() []geometry.Point {
	if g.Curved() {
		return geometry.Flatten(g.Quads, diagram.CurveSteps)
	}
	return g.Points
}

// geometryOf builds the geometry for a path. A curve needs at least one
// waypoint, otherwise it is drawn straight.
func geometryOf(points []geometry.Point, curved bool) Geometry {
	g := Geometry{Points: points}
	if curved && len(points) >= 3 {
		g.Quads = geometry.SmoothPath(points)
	}
	if n := len(points); n >= 2 {
		from, tip := points[n-2], points[n-1]
		g.Arrow = Arrow{Tip: tip, Angle: math.Atan2(tip.Y-from.Y, tip.X-from.X)}
	}
	return g
}

// ConnectorGeometry resolves c. It reports false when an endpoint shape is
// missing.
func ConnectorGeometry(doc *diagram.Document, c *diagram.Connector, zoom float64) (Geometry, bool) {
	path := doc.Path(c, zoom)
	if len(path) < 2 {
		return Geometry{}, false
	}
	return geometryOf(path, c.Curved()), true
}

// previewGeometry is the geometry of c while one end is dragged to pointer.
func previewGeometry(doc *diagram.Document, c *diagram.Connector, end diagram.End, pointer geometry.Point, zoom float64) (Geometry, bool) {
	path := doc.Path(c, zoom)
	if len(path) < 2 {
		return Geometry{}, false
	}
	if end == diagram.EndFrom {
		path[0] = pointer
	} else {
		path[len(path)-1] = pointer
	}
	return geometryOf(path, c.Curved()), true
}
