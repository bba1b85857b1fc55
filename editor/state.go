package editor

import (
	"slices"

	"flowpad/diagram"
	"flowpad/geometry"
)

// State is the active pointer gesture. Exactly one is active at a time; every
// gesture starts from Idle on pointer-down and returns to Idle on pointer-up.
type State int

const (
	Idle State = iota
	Panning
	Rotating
	Reconnecting
	DraggingWaypoint
	Resizing
	Dragging
	MarqueeSelecting
	Connecting
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case Rotating:
		return "rotating"
	case Reconnecting:
		return "reconnecting"
	case DraggingWaypoint:
		return "dragging-waypoint"
	case Resizing:
		return "resizing"
	case Dragging:
		return "dragging"
	case MarqueeSelecting:
		return "marquee"
	case Connecting:
		return "connecting"
	}
	return "idle"
}

// Session is the scratch data of the running gesture. Fields a state does not
// use keep their zero value.
type Session struct {
	State State

	// Pointer is the live world position, used for rubber band previews.
	Pointer geometry.Point
	// Last is the previous world position while dragging.
	Last geometry.Point
	// LastScreen is the previous screen position while panning.
	LastScreen geometry.Point

	Shape     diagram.ID
	Resize    diagram.ResizeStart
	From      diagram.Endpoint
	Connector diagram.ID
	End       diagram.End
	Waypoint  int
	Marquee   geometry.Rect
}

// Selection holds either shapes or connectors, never both.
type Selection struct {
	shapes     []diagram.ID
	connectors []diagram.ID
}

func (s *Selection) Shapes() []diagram.ID     { return s.shapes }
func (s *Selection) Connectors() []diagram.ID { return s.connectors }

func (s *Selection) Empty() bool {
	return len(s.shapes) == 0 && len(s.connectors) == 0
}

func (s *Selection) Clear() {
	s.shapes = nil
	s.connectors = nil
}

// SelectShapes replaces the selection with the given shapes.
func (s *Selection) SelectShapes(ids ...diagram.ID) {
	s.shapes = slices.Clone(ids)
	s.connectors = nil
}

// SelectConnectors replaces the selection with the given connectors.
func (s *Selection) SelectConnectors(ids ...diagram.ID) {
	s.connectors = slices.Clone(ids)
	s.shapes = nil
}

func (s *Selection) HasShape(id diagram.ID) bool {
	return slices.Contains(s.shapes, id)
}

func (s *Selection) HasConnector(id diagram.ID) bool {
	return slices.Contains(s.connectors, id)
}

// SingleShape returns the selected shape id when exactly one is selected.
func (s *Selection) SingleShape() (diagram.ID, bool) {
	if len(s.shapes) != 1 {
		return "", false
	}
	return s.shapes[0], true
}

func (s *Selection) SingleConnector() (diagram.ID, bool) {
	if len(s.connectors) != 1 {
		return "", false
	}
	return s.connectors[0], true
}

// prune drops ids that no longer resolve in d.
func (s *Selection) prune(d *diagram.Document) {
	s.shapes = slices.DeleteFunc(s.shapes, func(id diagram.ID) bool {
		_, ok := d.Shape(id)
		return !ok
	})
	s.connectors = slices.DeleteFunc(s.connectors, func(id diagram.ID) bool {
		_, ok := d.Connector(id)
		return !ok
	})
}
