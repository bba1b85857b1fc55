package diagram

import (
	"errors"
	"slices"
	"testing"

	"flowpad/geometry"
)

func order(d *Document) []ID {
	var ids []ID
	for _, s := range d.Shapes() {
		ids = append(ids, s.ID)
	}
	return ids
}

// twoBoxes returns a document with shapes centred on (0,0) and (300,0).
func twoBoxes() (*Document, *Shape, *Shape) {
	d := New()
	a := d.AddShape(KindRectangle, geometry.Pt(0, 0))
	b := d.AddShape(KindRectangle, geometry.Pt(300, 0))
	return d, a, b
}

func TestShapeAtPrefersTopMost(t *testing.T) {
	d := New()
	under := d.AddShape(KindRectangle, geometry.Pt(0, 0))
	over := d.AddShape(KindEllipse, geometry.Pt(20, 0))
	if got := d.ShapeAt(geometry.Pt(10, 0)); got != over {
		t.Errorf("Expected top-most shape %s, got %v", over.ID, got)
	}
	if got := d.ShapeAt(geometry.Pt(-70, 0)); got != under {
		t.Errorf("Expected %s, got %v", under.ID, got)
	}
	if d.ShapeAt(geometry.Pt(1000, 1000)) != nil {
		t.Error("Expected no shape in empty space")
	}
}

func TestZOrder(t *testing.T) {
	d := New()
	s1 := d.AddShape(KindRectangle, geometry.Pt(0, 0))
	s2 := d.AddShape(KindRectangle, geometry.Pt(500, 0))
	s3 := d.AddShape(KindRectangle, geometry.Pt(1000, 0))

	d.RaiseOne(s1.ID)
	if want := []ID{s2.ID, s1.ID, s3.ID}; !slices.Equal(order(d), want) {
		t.Errorf("RaiseOne: Expected %v, got %v", want, order(d))
	}
	d.RaiseToTop(s2.ID)
	if want := []ID{s1.ID, s3.ID, s2.ID}; !slices.Equal(order(d), want) {
		t.Errorf("RaiseToTop: Expected %v, got %v", want, order(d))
	}
	d.LowerToBottom(s2.ID)
	if want := []ID{s2.ID, s1.ID, s3.ID}; !slices.Equal(order(d), want) {
		t.Errorf("LowerToBottom: Expected %v, got %v", want, order(d))
	}
	if d.LowerOne(s2.ID) {
		t.Error("bottom shape cannot be lowered")
	}
	if d.RaiseOne(s3.ID) {
		t.Error("top shape cannot be raised")
	}
	d.LowerOne(s3.ID)
	if want := []ID{s2.ID, s3.ID, s1.ID}; !slices.Equal(order(d), want) {
		t.Errorf("LowerOne: Expected %v, got %v", want, order(d))
	}
	if got, _ := d.Shape(s1.ID); got != s1 {
		t.Error("index map out of date after reorder")
	}
}

func TestGroupAndAutoParent(t *testing.T) {
	d, a, b := twoBoxes()
	g, err := d.Group([]ID{a.ID, b.ID})
	if err != nil {
		t.Fatal(err)
	}
	want := geometry.Rect{X: -95, Y: -60, Width: 490, Height: 120}
	if g.Bounds() != want {
		t.Errorf("Expected group box %v, got %v", want, g.Bounds())
	}
	if a.ParentID != g.ID || b.ParentID != g.ID {
		t.Error("members should point at the group")
	}
	if d.ZIndex(g.ID) != 2 {
		t.Errorf("group should go on top, got index %d", d.ZIndex(g.ID))
	}
	if !g.Style.Border || g.Style.Fill || g.Style.BorderColor != "#3498db" {
		t.Errorf("unexpected group style %+v", g.Style)
	}

	c := d.AddShape(KindDiamond, geometry.Pt(150, 0))
	if c.ParentID != g.ID || !slices.Contains(g.Children(), c.ID) {
		t.Error("shape dropped inside a group should become its child")
	}
	outside := d.AddShape(KindDiamond, geometry.Pt(150, 500))
	if outside.ParentID != "" {
		t.Error("shape outside every group should have no parent")
	}
	inShape := d.AddShape(KindText, geometry.Pt(700, 700))
	nested := d.AddShape(KindText, geometry.Pt(700, 700))
	if nested.ParentID != "" || len(inShape.Children()) != 0 {
		t.Error("only groups adopt children")
	}
}

func TestGroupErrors(t *testing.T) {
	d, a, _ := twoBoxes()
	if _, err := d.Group([]ID{a.ID}); !errors.Is(err, ErrTooFewShapes) {
		t.Errorf("Expected ErrTooFewShapes, got %v", err)
	}
	if _, err := d.Group([]ID{a.ID, a.ID}); !errors.Is(err, ErrTooFewShapes) {
		t.Errorf("duplicates should not count twice, got %v", err)
	}
	if err := d.Ungroup(a.ID); !errors.Is(err, ErrNotGroup) {
		t.Errorf("Expected ErrNotGroup, got %v", err)
	}
	if err := d.Ungroup("missing"); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Expected ErrUnknownShape, got %v", err)
	}
}

func TestRegroupMovesMembers(t *testing.T) {
	d, a, b := twoBoxes()
	inner, _ := d.Group([]ID{a.ID, b.ID})
	c := d.AddShape(KindEllipse, geometry.Pt(0, 400))
	outer, err := d.Group([]ID{a.ID, c.ID})
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(inner.Children(), a.ID) {
		t.Error("regrouped shape should leave its previous group")
	}
	if a.ParentID != outer.ID {
		t.Errorf("Expected parent %s, got %s", outer.ID, a.ParentID)
	}
}

func TestUngroup(t *testing.T) {
	d, a, b := twoBoxes()
	inner, _ := d.Group([]ID{a.ID, b.ID})
	c := d.AddShape(KindEllipse, geometry.Pt(0, 400))
	outer, _ := d.Group([]ID{inner.ID, c.ID})

	if err := d.Ungroup(inner.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Shape(inner.ID); ok {
		t.Error("group should be removed")
	}
	if a.ParentID != "" || b.ParentID != "" {
		t.Error("children should be released")
	}
	if slices.Contains(outer.Children(), inner.ID) {
		t.Error("removed group should leave its parent")
	}
	if len(d.Shapes()) != 4 {
		t.Errorf("Expected 4 shapes, got %d", len(d.Shapes()))
	}
}

func TestTranslateMovesDescendantsOnce(t *testing.T) {
	d, a, b := twoBoxes()
	inner, _ := d.Group([]ID{a.ID, b.ID})
	c := d.AddShape(KindEllipse, geometry.Pt(0, 400))
	outer, _ := d.Group([]ID{inner.ID, c.ID})

	d.Translate([]ID{outer.ID, a.ID, inner.ID}, geometry.Pt(10, -5))
	if a.X != -65 || a.Y != -45 {
		t.Errorf("a moved more than once: (%v,%v)", a.X, a.Y)
	}
	if b.X != 235 || c.Y != 355 {
		t.Errorf("descendants should move with the group: b.X=%v c.Y=%v", b.X, c.Y)
	}
	if inner.X != -85 {
		t.Errorf("Expected inner group at -85, got %v", inner.X)
	}
}

func TestDeleteCascades(t *testing.T) {
	d, a, b := twoBoxes()
	g, _ := d.Group([]ID{a.ID, b.ID})
	lone := d.AddShape(KindEllipse, geometry.Pt(0, 600))
	inside, _ := d.Connect(Endpoint{a.ID, PortRight}, Endpoint{b.ID, PortLeft})
	across, _ := d.Connect(Endpoint{lone.ID, PortTop}, Endpoint{b.ID, PortBottom})
	keep, _ := d.Connect(Endpoint{lone.ID, PortTop}, Endpoint{g.ID, PortBottom})

	removed := d.DeleteShapes([]ID{a.ID})
	if !slices.Equal(removed, []ID{a.ID}) {
		t.Errorf("Expected only %s removed, got %v", a.ID, removed)
	}
	if slices.Contains(g.Children(), a.ID) {
		t.Error("deleted child should leave its group")
	}
	if _, ok := d.Connector(inside.ID); ok {
		t.Error("connector touching a deleted shape should go")
	}

	removed = d.DeleteShapes([]ID{g.ID})
	if len(removed) != 2 {
		t.Errorf("Expected group and remaining child removed, got %v", removed)
	}
	if _, ok := d.Shape(b.ID); ok {
		t.Error("group children should be deleted with the group")
	}
	if _, ok := d.Connector(across.ID); ok {
		t.Error("connector to a cascaded child should go")
	}
	if _, ok := d.Connector(keep.ID); ok {
		t.Error("connector to the group should go")
	}
	if len(d.Shapes()) != 1 || len(d.Connectors()) != 0 {
		t.Errorf("Expected only the lone shape left, got %d shapes %d connectors", len(d.Shapes()), len(d.Connectors()))
	}
}

func TestConnectUnknownShape(t *testing.T) {
	d, a, _ := twoBoxes()
	_, err := d.Connect(Endpoint{a.ID, PortTop}, Endpoint{"ghost", PortTop})
	if !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Expected ErrUnknownShape, got %v", err)
	}
	if len(d.Connectors()) != 0 {
		t.Error("failed connect should not add a connector")
	}
}

func TestDeleteConnectors(t *testing.T) {
	d, a, b := twoBoxes()
	c1, _ := d.Connect(Endpoint{a.ID, PortRight}, Endpoint{b.ID, PortLeft})
	c2, _ := d.Connect(Endpoint{b.ID, PortTop}, Endpoint{a.ID, PortTop})
	if n := d.DeleteConnectors([]ID{c1.ID, "nope"}); n != 1 {
		t.Errorf("Expected 1 removed, got %d", n)
	}
	if got, ok := d.Connector(c2.ID); !ok || got != c2 {
		t.Error("remaining connector should still resolve")
	}
}

func TestShapesIn(t *testing.T) {
	d, a, b := twoBoxes()
	got := d.ShapesIn(geometry.Rect{X: 100, Y: 50, Width: -200, Height: -100})
	if !slices.Equal(got, []ID{a.ID}) {
		t.Errorf("Expected only %s, got %v", a.ID, got)
	}
	got = d.ShapesIn(geometry.Rect{X: -100, Y: -100, Width: 500, Height: 200})
	if !slices.Equal(got, []ID{a.ID, b.ID}) {
		t.Errorf("Expected both shapes, got %v", got)
	}
}
