// Package editor turns pointer and keyboard input into document edits. It
// owns the camera, the selection and the gesture state machine.
package editor

import (
	"log/slog"

	"flowpad/camera"
	"flowpad/diagram"
	"flowpad/geometry"
)

const DefaultGrid = 20.0

type Options struct {
	Grid              float64
	Snap              bool
	ScrollSensitivity float64
	Logger            *slog.Logger
}

type Editor struct {
	Doc       *diagram.Document
	Camera    camera.Camera
	Session   Session
	Selection Selection

	grid        float64
	snap        bool
	sensitivity float64
	viewport    geometry.Point
	onChange    func()
	log         *slog.Logger
}

func New(opts Options) *Editor {
	if opts.Grid <= 0 {
		opts.Grid = DefaultGrid
	}
	if opts.ScrollSensitivity <= 0 {
		opts.ScrollSensitivity = camera.ScrollSensitivity
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Editor{
		Doc:         diagram.New(),
		Camera:      camera.New(),
		grid:        opts.Grid,
		snap:        opts.Snap,
		sensitivity: opts.ScrollSensitivity,
		log:         opts.Logger,
	}
}

// OnChange registers the redraw hook fired after every mutation.
func (e *Editor) OnChange(fn func()) { e.onChange = fn }

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// SetViewport records the canvas size in screen pixels.
func (e *Editor) SetViewport(width, height float64) {
	e.viewport = geometry.Pt(width, height)
}

func (e *Editor) Viewport() geometry.Point { return e.viewport }

func (e *Editor) Grid() float64 { return e.grid }
func (e *Editor) Snap() bool    { return e.snap }

func (e *Editor) SetSnap(on bool) {
	e.snap = on
	e.changed()
}


func (e *Editor) world(screen geometry.Point) geometry.Point {
	return e.Camera.ScreenToWorld(screen)
}

func (e *Editor) begin(s State) {
	e.Session.State = s
	e.log.Debug("gesture started", "state", s)
}

// selectedShape returns the single selected shape.
func (e *Editor) selectedShape() (*diagram.Shape, bool) {
	id, ok := e.Selection.SingleShape()
	if !ok {
		return nil, false
	}
	return e.Doc.Shape(id)
}

// PointerDown starts a gesture. Targets are tested in priority order and the
// first hit decides the gesture; pan forces panning.
func (e *Editor) PointerDown(screen geometry.Point, pan bool) {
	pos := e.world(screen)
	zoom := e.Camera.Zoom
	e.Session = Session{Pointer: pos, Last: pos, LastScreen: screen}
	e.Selection.prune(e.Doc)

	if pan {
		e.begin(Panning)
		return
	}

	for _, id := range e.Selection.Connectors() {
		c, ok := e.Doc.Connector(id)
		if !ok {
			continue
		}
		if i, ok := c.WaypointAt(pos, zoom); ok {
			e.Session.Connector, e.Session.Waypoint = c.ID, i
			e.begin(DraggingWaypoint)
			return
		}
	}
	for _, id := range e.Selection.Connectors() {
		c, ok := e.Doc.Connector(id)
		if !ok {
			continue
		}
		if end, ok := diagram.EndpointAt(e.Doc.Path(c, zoom), pos, zoom); ok {
			e.Session.Connector, e.Session.End = c.ID, end
			e.begin(Reconnecting)
			return
		}
	}

	if s, ok := e.selectedShape(); ok {
		if s.OnRotationHandle(pos, zoom) {
			e.Session.Shape = s.ID
			e.begin(Rotating)
			return
		}
		if port, ok := s.PortAt(pos, zoom); ok {
			e.Session.Shape = s.ID
			e.Session.From = diagram.Endpoint{ShapeID: s.ID, Point: port}
			e.begin(Connecting)
			return
		}
		if h, ok := s.ResizeHandleAt(pos, zoom); ok {
			e.Session.Shape = s.ID
			e.Session.Resize = s.BeginResize(h, pos)
			e.begin(Resizing)
			return
		}
	}

	if hit, ok := e.Doc.SegmentAt(pos, zoom); ok {
		e.Selection.SelectConnectors(hit.Connector.ID)
		e.changed()
		return
	}

	if s := e.Doc.ShapeAt(pos); s != nil {
		if !e.Selection.HasShape(s.ID) {
			e.Selection.SelectShapes(s.ID)
		}
		e.begin(Dragging)
		e.changed()
		return
	}

	e.Selection.Clear()
	e.Session.Marquee = geometry.Rect{X: pos.X, Y: pos.Y}
	e.begin(MarqueeSelecting)
	e.changed()
}

// PointerMove advances the running gesture.
func (e *Editor) PointerMove(screen geometry.Point) {
	pos := e.world(screen)
	sess := &e.Session
	sess.Pointer = pos

	switch sess.State {
	case Idle:
		return
	case Panning:
		e.Camera.Pan(screen.Sub(sess.LastScreen))
		sess.LastScreen = screen
	case Rotating:
		if s, ok := e.Doc.Shape(sess.Shape); ok {
			s.RotateToward(pos)
		}
	case Resizing:
		if s, ok := e.Doc.Shape(sess.Shape); ok {
			s.Resize(sess.Resize, pos)
		}
	case Dragging:
		e.Doc.Translate(e.Selection.Shapes(), pos.Sub(sess.Last))
		sess.Last = pos
	case DraggingWaypoint:
		if c, ok := e.Doc.Connector(sess.Connector); ok && sess.Waypoint < len(c.Waypoints) {
			c.Waypoints[sess.Waypoint] = pos
		}
	case MarqueeSelecting:
		sess.Marquee.Width = pos.X - sess.Marquee.X
		sess.Marquee.Height = pos.Y - sess.Marquee.Y
	case Reconnecting, Connecting:
		// Preview follows Pointer.
	}
	e.changed()
}

// PointerUp finishes the running gesture and returns to Idle.
func (e *Editor) PointerUp(screen geometry.Point) {
	pos := e.world(screen)
	zoom := e.Camera.Zoom
	sess := e.Session

	switch sess.State {
	case MarqueeSelecting:
		sess.Marquee.Width = pos.X - sess.Marquee.X
		sess.Marquee.Height = pos.Y - sess.Marquee.Y
		e.Selection.SelectShapes(e.Doc.ShapesIn(sess.Marquee)...)
	case Reconnecting:
		e.finishReconnect(sess, pos, zoom)
	case Connecting:
		target := e.Doc.ShapeAt(pos)
		if target != nil && target.ID != sess.From.ShapeID && target.AllowConnections {
			to := diagram.Endpoint{ShapeID: target.ID, Point: target.NearestPort(pos, zoom)}
			if c, err := e.Doc.Connect(sess.From, to); err == nil {
				e.log.Debug("connector created", "id", c.ID, "from", sess.From.ShapeID, "to", target.ID)
			}
		}
	case Dragging:
		if e.snap {
			for _, id := range e.Doc.WithDescendants(e.Selection.Shapes()) {
				if s, ok := e.Doc.Shape(id); ok {
					s.SnapToGrid(e.grid)
				}
			}
		}
	case Resizing:
		if s, ok := e.Doc.Shape(sess.Shape); ok && e.snap {
			s.SnapToGrid(e.grid)
		}
	}

	if sess.State != Idle {
		e.log.Debug("gesture finished", "state", sess.State)
	}
	e.Session = Session{Pointer: pos}
	e.changed()
}

func (e *Editor) finishReconnect(sess Session, pos geometry.Point, zoom float64) {
	c, ok := e.Doc.Connector(sess.Connector)
	if !ok {
		return
	}
	target := e.Doc.ShapeAt(pos)
	if target == nil || !target.AllowConnections {
		return
	}
	if target.ID == c.Endpoint(sess.End.Other()).ShapeID {
		return
	}
	c.Rebind(sess.End, diagram.Endpoint{ShapeID: target.ID, Point: target.NearestPort(pos, zoom)})
	e.log.Debug("connector rebound", "id", c.ID, "end", sess.End, "shape", target.ID)
}

// DoubleClick removes the waypoint of a selected connector under the pointer,
// or else inserts one on the connector body under the pointer.
func (e *Editor) DoubleClick(screen geometry.Point) {
	pos := e.world(screen)
	zoom := e.Camera.Zoom
	for _, id := range e.Selection.Connectors() {
		c, ok := e.Doc.Connector(id)
		if !ok {
			continue
		}
		if i, ok := c.WaypointAt(pos, zoom); ok {
			c.RemoveWaypoint(i)
			e.changed()
			return
		}
	}
	if hit, ok := e.Doc.SegmentAt(pos, zoom); ok {
		hit.Connector.InsertWaypoint(hit.Segment, pos)
		e.Selection.SelectConnectors(hit.Connector.ID)
		e.changed()
	}
}

// Wheel zooms about the cursor.
func (e *Editor) Wheel(screen geometry.Point, deltaY float64) {
	e.Camera.Wheel(screen, deltaY, e.sensitivity)
	e.changed()
}

// Pan shifts the view by a screen delta.
func (e *Editor) Pan(delta geometry.Point) {
	e.Camera.Pan(delta)
	e.changed()
}

// ZoomBy scales the zoom about the viewport centre.
func (e *Editor) ZoomBy(factor float64) {
	e.Camera.ZoomAt(e.viewport.Div(2), e.Camera.Zoom*factor)
	e.changed()
}

// ResetView returns to the origin at zoom 1.
func (e *Editor) ResetView() {
	e.Camera = camera.New()
	e.changed()
}
