package editor

import (
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"slices"
	"testing"

	"flowpad/diagram"
	"flowpad/geometry"
)

func newTestEditor() *Editor {
	e := New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	e.SetViewport(800, 600)
	return e
}

func place(e *Editor, x, y, w, h float64) *diagram.Shape {
	s := e.Doc.AddShape(diagram.KindRectangle, geometry.Point{})
	s.X, s.Y, s.Width, s.Height = x, y, w, h
	return s
}

func click(e *Editor, p geometry.Point) {
	e.PointerDown(p, false)
	e.PointerUp(p)
}

func drag(e *Editor, from, to geometry.Point) {
	e.PointerDown(from, false)
	e.PointerMove(to)
	e.PointerUp(to)
}

func TestConnectAndReconnectScenario(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)

	click(e, geometry.Pt(50, 25))
	if id, ok := e.Selection.SingleShape(); !ok || id != a.ID {
		t.Fatalf("Expected A selected, got %v", e.Selection.Shapes())
	}

	e.PointerDown(geometry.Pt(115, 25), false)
	if e.Session.State != Connecting {
		t.Fatalf("Expected connecting from the right port, got %s", e.Session.State)
	}
	e.PointerMove(geometry.Pt(310, 25))
	if e.Session.Pointer != geometry.Pt(310, 25) {
		t.Errorf("preview should follow the pointer, got %v", e.Session.Pointer)
	}
	e.PointerUp(geometry.Pt(310, 25))
	if e.Session.State != Idle {
		t.Errorf("Expected idle after release, got %s", e.Session.State)
	}

	if len(e.Doc.Connectors()) != 1 {
		t.Fatalf("Expected one connector, got %d", len(e.Doc.Connectors()))
	}
	c := e.Doc.Connectors()[0]
	if c.From != (diagram.Endpoint{ShapeID: a.ID, Point: diagram.PortRight}) ||
		c.To != (diagram.Endpoint{ShapeID: b.ID, Point: diagram.PortLeft}) {
		t.Errorf("unexpected binding %+v -> %+v", c.From, c.To)
	}
	if len(c.Waypoints) != 0 {
		t.Errorf("Expected no waypoints, got %v", c.Waypoints)
	}

	click(e, geometry.Pt(200, 25))
	if id, ok := e.Selection.SingleConnector(); !ok || id != c.ID {
		t.Fatalf("Expected the connector selected, got %v", e.Selection.Connectors())
	}
	if len(e.Selection.Shapes()) != 0 {
		t.Error("selecting a connector should clear shapes")
	}

	e.PointerDown(geometry.Pt(285, 25), false)
	if e.Session.State != Reconnecting || e.Session.End != diagram.EndTo {
		t.Fatalf("Expected reconnecting the to end, got %s %v", e.Session.State, e.Session.End)
	}
	e.PointerMove(geometry.Pt(50, 25))
	e.PointerUp(geometry.Pt(50, 25))
	if c.To != (diagram.Endpoint{ShapeID: b.ID, Point: diagram.PortLeft}) {
		t.Errorf("dropping onto the from shape should be rejected, got %+v", c.To)
	}

	cs := place(e, 0, 200, 100, 50)
	drag(e, geometry.Pt(285, 25), geometry.Pt(50, 210))
	if c.To != (diagram.Endpoint{ShapeID: cs.ID, Point: diagram.PortTop}) {
		t.Errorf("Expected rebinding to C's top port, got %+v", c.To)
	}

	drag(e, geometry.Pt(50, 185), geometry.Pt(600, 500))
	if c.To.ShapeID != cs.ID {
		t.Error("releasing over empty space should keep the binding")
	}
}

func TestConnectRejectsInvalidTargets(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)
	b.AllowConnections = false

	click(e, geometry.Pt(50, 25))
	drag(e, geometry.Pt(115, 25), geometry.Pt(350, 25))
	drag(e, geometry.Pt(115, 25), geometry.Pt(50, 25))
	drag(e, geometry.Pt(115, 25), geometry.Pt(700, 500))
	if len(e.Doc.Connectors()) != 0 {
		t.Errorf("Expected no connectors, got %d", len(e.Doc.Connectors()))
	}

	a.AllowConnections = false
	e.PointerDown(geometry.Pt(115, 25), false)
	if e.Session.State == Connecting {
		t.Error("shape without connections should not start a connector")
	}
	e.PointerUp(geometry.Pt(115, 25))
}

func TestMarqueeGroupMoveUngroupScenario(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)

	drag(e, geometry.Pt(-50, -50), geometry.Pt(450, 100))
	if !slices.Equal(e.Selection.Shapes(), []diagram.ID{a.ID, b.ID}) {
		t.Fatalf("Expected exactly A and B selected, got %v", e.Selection.Shapes())
	}

	if err := e.Group(); err != nil {
		t.Fatal(err)
	}
	gid, ok := e.Selection.SingleShape()
	if !ok {
		t.Fatal("group should be selected")
	}
	g, _ := e.Doc.Shape(gid)
	want := geometry.Rect{X: -20, Y: -20, Width: 440, Height: 90}
	if g.Bounds() != want {
		t.Errorf("Expected group box %v, got %v", want, g.Bounds())
	}

	drag(e, geometry.Pt(200, 60), geometry.Pt(230, 80))
	if a.X != 30 || a.Y != 20 || b.X != 330 || b.Y != 20 {
		t.Errorf("members should move with the group: A(%v,%v) B(%v,%v)", a.X, a.Y, b.X, b.Y)
	}
	if g.X != 10 || g.Y != 0 {
		t.Errorf("group should move by the same delta, got (%v,%v)", g.X, g.Y)
	}

	if err := e.Ungroup(); err != nil {
		t.Fatal(err)
	}
	if a.ParentID != "" || b.ParentID != "" {
		t.Error("ungroup should clear parent ids")
	}
	if _, ok := e.Doc.Shape(gid); ok {
		t.Error("group should be removed")
	}
	if !e.Selection.Empty() {
		t.Error("ungroup should clear the selection")
	}
}

func TestMarqueeNegativeBox(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	place(e, 300, 0, 100, 50)
	drag(e, geometry.Pt(150, 100), geometry.Pt(50, 25))
	if !slices.Equal(e.Selection.Shapes(), []diagram.ID{a.ID}) {
		t.Errorf("Expected only A, got %v", e.Selection.Shapes())
	}
	click(e, geometry.Pt(700, 500))
	if !e.Selection.Empty() {
		t.Error("clicking empty space should clear the selection")
	}
}

func TestPointerDownPriority(t *testing.T) {
	tests := []struct {
		name string
		at   geometry.Point
		pan  bool
		want State
	}{
		{"pan modifier beats handles", geometry.Pt(100, 50), true, Panning},
		{"rotation handle", geometry.Pt(50, -30), false, Rotating},
		{"connection point", geometry.Pt(50, 65), false, Connecting},
		{"resize handle over body", geometry.Pt(100, 50), false, Resizing},
		{"edge handle", geometry.Pt(0, 25), false, Resizing},
		{"body", geometry.Pt(40, 20), false, Dragging},
		{"empty", geometry.Pt(500, 500), false, MarqueeSelecting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor()
			a := place(e, 0, 0, 100, 50)
			e.Selection.SelectShapes(a.ID)
			e.PointerDown(tt.at, tt.pan)
			if e.Session.State != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, e.Session.State)
			}
		})
	}
}

func TestHandlesNeedSingleSelection(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)
	e.Selection.SelectShapes(a.ID, b.ID)
	e.PointerDown(geometry.Pt(98, 48), false)
	if e.Session.State != Dragging {
		t.Errorf("Expected dragging with two shapes selected, got %s", e.Session.State)
	}
	if !slices.Equal(e.Selection.Shapes(), []diagram.ID{a.ID, b.ID}) {
		t.Error("pressing a selected shape should keep the multi-selection")
	}
	e.PointerMove(geometry.Pt(108, 58))
	e.PointerUp(geometry.Pt(108, 58))
	if a.X != 10 || b.X != 310 {
		t.Errorf("both shapes should move, got %v and %v", a.X, b.X)
	}
}

func TestConnectorBodyBeatsShape(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)
	c, _ := e.Doc.Connect(diagram.Endpoint{ShapeID: a.ID, Point: diagram.PortRight}, diagram.Endpoint{ShapeID: b.ID, Point: diagram.PortLeft})
	over := place(e, 150, 0, 100, 50)

	e.PointerDown(geometry.Pt(200, 25), false)
	if e.Session.State != Idle {
		t.Errorf("Expected to stay idle, got %s", e.Session.State)
	}
	if id, ok := e.Selection.SingleConnector(); !ok || id != c.ID {
		t.Errorf("Expected the connector selected over %s", over.ID)
	}
}

func TestResizeAndRotateGestures(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	e.Selection.SelectShapes(a.ID)

	drag(e, geometry.Pt(100, 50), geometry.Pt(150, 50))
	if math.Abs(a.Width/a.Height-2) > 1e-9 {
		t.Errorf("corner drag should keep the aspect ratio, got %vx%v", a.Width, a.Height)
	}

	e.PointerDown(a.RotationHandle(1), false)
	if e.Session.State != Rotating {
		t.Fatalf("Expected rotating, got %s", e.Session.State)
	}
	c := a.Center()
	e.PointerMove(geometry.Pt(c.X+100, c.Y))
	e.PointerUp(geometry.Pt(c.X+100, c.Y))
	if math.Abs(a.Rotation-math.Pi/2) > 1e-9 {
		t.Errorf("Expected rotation pi/2, got %v", a.Rotation)
	}
}

func TestWaypointGestures(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)
	c, _ := e.Doc.Connect(diagram.Endpoint{ShapeID: a.ID, Point: diagram.PortRight}, diagram.Endpoint{ShapeID: b.ID, Point: diagram.PortLeft})

	e.DoubleClick(geometry.Pt(200, 27))
	if len(c.Waypoints) != 1 || c.Waypoints[0] != geometry.Pt(200, 27) {
		t.Fatalf("Expected waypoint at (200,27), got %v", c.Waypoints)
	}
	if id, ok := e.Selection.SingleConnector(); !ok || id != c.ID {
		t.Error("double click should select the connector")
	}

	drag(e, geometry.Pt(201, 27), geometry.Pt(200, 120))
	if c.Waypoints[0] != geometry.Pt(200, 120) {
		t.Errorf("Expected waypoint dragged to (200,120), got %v", c.Waypoints[0])
	}

	e.DoubleClick(geometry.Pt(200, 120))
	if len(c.Waypoints) != 0 {
		t.Errorf("double click on a waypoint should remove it, got %v", c.Waypoints)
	}

	e.DoubleClick(geometry.Pt(600, 600))
	if len(c.Waypoints) != 0 {
		t.Error("double click on empty space should do nothing")
	}
}

func TestPanAndWheel(t *testing.T) {
	e := newTestEditor()
	e.PointerDown(geometry.Pt(10, 10), true)
	e.PointerMove(geometry.Pt(40, 30))
	e.PointerMove(geometry.Pt(50, 50))
	e.PointerUp(geometry.Pt(50, 50))
	if e.Camera.Offset != geometry.Pt(40, 40) {
		t.Errorf("Expected offset (40,40), got %v", e.Camera.Offset)
	}

	cursor := geometry.Pt(300, 200)
	before := e.Camera.ScreenToWorld(cursor)
	e.Wheel(cursor, -100)
	if e.Camera.Zoom <= 1 {
		t.Errorf("wheel up should zoom in, got %v", e.Camera.Zoom)
	}
	if after := e.Camera.ScreenToWorld(cursor); after.Dist(before) > 1e-9 {
		t.Errorf("world point under the cursor moved from %v to %v", before, after)
	}
}

func TestSnapAfterDrag(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	drag(e, geometry.Pt(50, 25), geometry.Pt(63, 29))
	if a.X != 13 {
		t.Errorf("without snap the shape should land at 13, got %v", a.X)
	}
	e.SetSnap(true)
	drag(e, geometry.Pt(60, 25), geometry.Pt(65, 25))
	if a.X != 20 || a.Y != 0 {
		t.Errorf("Expected snapped position (20,0), got (%v,%v)", a.X, a.Y)
	}
}

func TestSnapAfterResize(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 60)
	click(e, geometry.Pt(50, 30))
	e.SetSnap(true)
	drag(e, geometry.Pt(100, 30), geometry.Pt(133, 30))
	if a.X != 0 || a.Y != 0 || a.Width != 140 || a.Height != 60 {
		t.Errorf("Expected the resized box snapped to 0,0 140x60, got %v,%v %vx%v", a.X, a.Y, a.Width, a.Height)
	}
	if e.Session.State != Idle {
		t.Errorf("Expected idle after release, got %s", e.Session.State)
	}
}

func TestAddShapeAtViewportCentre(t *testing.T) {
	e := newTestEditor()
	changes := 0
	e.OnChange(func() { changes++ })
	s := e.AddShape(diagram.KindEllipse)
	if s.X != 325 || s.Y != 260 {
		t.Errorf("Expected shape at (325,260), got (%v,%v)", s.X, s.Y)
	}
	if id, _ := e.Selection.SingleShape(); id != s.ID {
		t.Error("new shape should be selected")
	}
	if changes != 1 {
		t.Errorf("Expected one redraw, got %d", changes)
	}
}

func TestDeleteSelectedConfirmation(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)
	e.Doc.Connect(diagram.Endpoint{ShapeID: a.ID, Point: diagram.PortRight}, diagram.Endpoint{ShapeID: b.ID, Point: diagram.PortLeft})
	e.Selection.SelectShapes(a.ID, b.ID)
	if err := e.Group(); err != nil {
		t.Fatal(err)
	}

	var asked string
	if n := e.DeleteSelected(func(p string) bool { asked = p; return false }); n != 0 {
		t.Errorf("declined delete should remove nothing, removed %d", n)
	}
	if asked != DeleteGroupPrompt {
		t.Errorf("unexpected prompt %q", asked)
	}
	if len(e.Doc.Shapes()) != 3 {
		t.Fatal("declined delete should leave the document alone")
	}
	if n := e.DeleteSelected(func(string) bool { return true }); n != 3 {
		t.Errorf("Expected group and two children removed, got %d", n)
	}
	if len(e.Doc.Connectors()) != 0 {
		t.Error("connector between deleted children should go")
	}

	c := place(e, 0, 0, 10, 10)
	e.Selection.SelectShapes(c.ID)
	if n := e.DeleteSelected(nil); n != 1 {
		t.Errorf("plain shapes delete without asking, got %d", n)
	}
}

func TestDeleteSelectedConnectors(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	b := place(e, 300, 0, 100, 50)
	c, _ := e.Doc.Connect(diagram.Endpoint{ShapeID: a.ID, Point: diagram.PortRight}, diagram.Endpoint{ShapeID: b.ID, Point: diagram.PortLeft})
	e.Selection.SelectConnectors(c.ID)
	if n := e.DeleteSelected(nil); n != 1 {
		t.Errorf("Expected one connector removed, got %d", n)
	}
	if len(e.Doc.Shapes()) != 2 {
		t.Error("deleting a connector should keep its shapes")
	}
}

func TestCopyPasteSelection(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	if _, err := e.Copy(); err != ErrNothingSelected {
		t.Errorf("Expected ErrNothingSelected, got %v", err)
	}
	e.Selection.SelectShapes(a.ID)
	data, err := e.Copy()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Paste(data); err != nil {
		t.Fatal(err)
	}
	id, ok := e.Selection.SingleShape()
	if !ok || id == a.ID {
		t.Fatalf("Expected the pasted copy selected, got %v", e.Selection.Shapes())
	}
	copied, _ := e.Doc.Shape(id)
	if copied.X != 20 || copied.Y != 20 {
		t.Errorf("Expected copy at (20,20), got (%v,%v)", copied.X, copied.Y)
	}
}

func TestSaveLoad(t *testing.T) {
	e := newTestEditor()
	a := place(e, 0, 0, 100, 50)
	e.Camera.Zoom = 2
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := e.Save(path); err != nil {
		t.Fatal(err)
	}

	other := newTestEditor()
	other.Selection.SelectShapes("stale")
	if err := other.Load(path); err != nil {
		t.Fatal(err)
	}
	if _, ok := other.Doc.Shape(a.ID); !ok || other.Camera.Zoom != 2 {
		t.Error("loaded editor should carry the saved shape and camera")
	}
	if !other.Selection.Empty() {
		t.Error("load should clear the selection")
	}
	if err := other.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error loading a missing file")
	}
}

func TestStateNames(t *testing.T) {
	if Idle.String() != "idle" || MarqueeSelecting.String() != "marquee" || DraggingWaypoint.String() != "dragging-waypoint" {
		t.Error("unexpected state names")
	}
}
