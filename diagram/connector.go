package diagram

import (
	"math"
	"slices"

	"flowpad/geometry"
)

type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

var LineStyles = []LineStyle{LineSolid, LineDashed, LineDotted}

type LineType string

const (
	LineStraight LineType = "line"
	LineCurve    LineType = "curve"
)

const (
	DefaultConnectorColor     = "#ddd"
	DefaultConnectorThickness = 2.0
)

// End selects one side of a connector.
type End int

const (
	EndFrom End = iota
	EndTo
)

func (e End) String() string {
	if e == EndTo {
		return "to"
	}
	return "from"
}

// Other returns the opposite end.
func (e End) Other() End {
	if e == EndTo {
		return EndFrom
	}
	return EndTo
}

// Endpoint binds a connector end to a port on a shape.
type Endpoint struct {
	ShapeID ID   `json:"shapeId"`
	Point   Port `json:"point"`
}

type Connector struct {
	ID        ID               `json:"id"`
	From      Endpoint         `json:"from"`
	To        Endpoint         `json:"to"`
	Waypoints []geometry.Point `json:"waypoints"`
	Color     string           `json:"color"`
	Thickness float64          `json:"thickness"`
	LineStyle LineStyle        `json:"lineStyle"`
	LineType  LineType         `json:"lineType"`
}

// NewConnector returns a straight solid connector with the default colour.
func NewConnector(from, to Endpoint) *Connector {
	return &Connector{
		ID:        NewConnectorID(),
		From:      from,
		To:        to,
		Waypoints: []geometry.Point{},
		Color:     DefaultConnectorColor,
		Thickness: DefaultConnectorThickness,
		LineStyle: LineSolid,
		LineType:  LineStraight,
	}
}

func (c *Connector) Endpoint(e End) Endpoint {
	if e == EndTo {
		return c.To
	}
	return c.From
}

// Rebind points one end at a new shape and port.
func (c *Connector) Rebind(e End, ep Endpoint) {
	if e == EndTo {
		c.To = ep
	} else {
		c.From = ep
	}
}

// Touches reports whether either end is bound to id.
func (c *Connector) Touches(id ID) bool {
	return c.From.ShapeID == id || c.To.ShapeID == id
}

// Curved reports whether the connector is drawn as a smoothed curve. A curve
// without waypoints is a straight line.
func (c *Connector) Curved() bool {
	return c.LineType == LineCurve && len(c.Waypoints) > 0
}

// InsertWaypoint inserts p so it becomes waypoint i. Out of range indexes are
// clamped.
func (c *Connector) InsertWaypoint(i int, p geometry.Point) {
	i = max(0, min(i, len(c.Waypoints)))
	c.Waypoints = slices.Insert(c.Waypoints, i, p)
}

func (c *Connector) RemoveWaypoint(i int) bool {
	if i < 0 || i >= len(c.Waypoints) {
		return false
	}
	c.Waypoints = slices.Delete(c.Waypoints, i, i+1)
	return true
}

// WaypointAt returns the index of the waypoint within reach of pos.
func (c *Connector) WaypointAt(pos geometry.Point, zoom float64) (int, bool) {
	limit := WaypointHitRadius / zoom
	for i, w := range c.Waypoints {
		if pos.Dist(w) < limit {
			return i, true
		}
	}
	return -1, false
}

func (c *Connector) Clone() *Connector {
	cc := *c
	cc.Waypoints = slices.Clone(c.Waypoints)
	if cc.Waypoints == nil {
		cc.Waypoints = []geometry.Point{}
	}
	return &cc
}

// Path returns [attach(from), waypoints..., attach(to)], or nil when either
// endpoint shape is missing.
func (d *Document) Path(c *Connector, zoom float64) []geometry.Point {
	from, ok := d.Shape(c.From.ShapeID)
	if !ok {
		return nil
	}
	to, ok := d.Shape(c.To.ShapeID)
	if !ok {
		return nil
	}
	path := make([]geometry.Point, 0, len(c.Waypoints)+2)
	path = append(path, from.AttachPoint(c.From.Point, zoom))
	path = append(path, c.Waypoints...)
	path = append(path, to.AttachPoint(c.To.Point, zoom))
	return path
}

// TracePath returns the polyline a pointer is tested against: the path
// itself for straight connectors, a flattening of the smoothed curve
// otherwise.
func TracePath(c *Connector, path []geometry.Point) []geometry.Point {
	if !c.Curved() || len(path) < 3 {
		return path
	}
	return geometry.Flatten(geometry.SmoothPath(path), CurveSteps)
}

// SegmentHit is the result of hit-testing connector bodies. Segment indexes
// the unflattened path: segment i runs from path[i] to path[i+1], so inserting a
// waypoint at index i splits it.
type SegmentHit struct {
	Connector *Connector
	Segment   int
}

// SegmentAt tests connectors in document order and returns the first whose
// body passes within ConnectorHitRadius pixels of pos.
func (d *Document) SegmentAt(pos geometry.Point, zoom float64) (SegmentHit, bool) {
	radius := ConnectorHitRadius / zoom
	for _, c := range d.connectors {
		path := d.Path(c, zoom)
		if len(path) < 2 {
			continue
		}
		trace := TracePath(c, path)
		hit := false
		for i := 0; i+1 < len(trace); i++ {
			if geometry.PointOnSegment(pos, trace[i], trace[i+1], radius) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		return SegmentHit{Connector: c, Segment: nearestSegment(pos, path)}, true
	}
	return SegmentHit{}, false
}

func nearestSegment(pos geometry.Point, path []geometry.Point) int {
	best, bestDist := 0, math.Inf(1)
	for i := 0; i+1 < len(path); i++ {
		if d := geometry.DistanceToSegmentSquared(pos, path[i], path[i+1]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// EndpointAt reports which end of path lies within reach of pos. The to end
// wins when both are in reach.
func EndpointAt(path []geometry.Point, pos geometry.Point, zoom float64) (End, bool) {
	if len(path) < 2 {
		return EndFrom, false
	}
	limit := EndpointHitRadius / zoom
	if pos.Dist(path[len(path)-1]) < limit {
		return EndTo, true
	}
	if pos.Dist(path[0]) < limit {
		return EndFrom, true
	}
	return EndFrom, false
}
