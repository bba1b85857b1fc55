package diagram

import (
	"errors"
	"fmt"
	"slices"

	"flowpad/geometry"
)

var (
	ErrTooFewShapes = errors.New("at least two shapes are required")
	ErrNotGroup     = errors.New("shape is not a group")
	ErrUnknownShape = errors.New("unknown shape")
)

// Document holds shapes in z-order, back to front, and connectors in creation
// order. Relations between shapes are ids; index maps resolve them.
type Document struct {
	shapes     []*Shape
	index      map[ID]int
	connectors []*Connector
	connIndex  map[ID]int
}

func New() *Document {
	return &Document{index: map[ID]int{}, connIndex: map[ID]int{}}
}

func (d *Document) reindex() {
	clear(d.index)
	for i, s := range d.shapes {
		d.index[s.ID] = i
	}
	clear(d.connIndex)
	for i, c := range d.connectors {
		d.connIndex[c.ID] = i
	}
}

// Shapes returns the shapes in z-order. The slice must not be modified.
func (d *Document) Shapes() []*Shape { return d.shapes }

// Connectors returns the connectors in document order. The slice must not be
// modified.
func (d *Document) Connectors() []*Connector { return d.connectors }

func (d *Document) Shape(id ID) (*Shape, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.shapes[i], true
}

func (d *Document) Connector(id ID) (*Connector, bool) {
	i, ok := d.connIndex[id]
	if !ok {
		return nil, false
	}
	return d.connectors[i], true
}

// ZIndex returns the position of id in the z-order, -1 when absent.
func (d *Document) ZIndex(id ID) int {
	if i, ok := d.index[id]; ok {
		return i
	}
	return -1
}

func (d *Document) Empty() bool {
	return len(d.shapes) == 0 && len(d.connectors) == 0
}

// Insert appends s on top of the z-order as is.
func (d *Document) Insert(s *Shape) {
	d.index[s.ID] = len(d.shapes)
	d.shapes = append(d.shapes, s)
}

// AddShape creates a shape of the given kind centred on at. When at falls
// inside a group the new shape becomes its child (the top-most group wins).
func (d *Document) AddShape(kind Kind, at geometry.Point) *Shape {
	s := NewShape(kind, at)
	if parent := d.GroupAt(at); parent != nil {
		g, _ := parent.AsGroup()
		g.Children = append(g.Children, s.ID)
		s.ParentID = parent.ID
	}
	d.Insert(s)
	return s
}

// ShapeAt returns the top-most shape containing pos.
func (d *Document) ShapeAt(pos geometry.Point) *Shape {
	for i := len(d.shapes) - 1; i >= 0; i-- {
		if d.shapes[i].Contains(pos) {
			return d.shapes[i]
		}
	}
	return nil
}

// GroupAt returns the top-most group containing pos.
func (d *Document) GroupAt(pos geometry.Point) *Shape {
	for i := len(d.shapes) - 1; i >= 0; i-- {
		s := d.shapes[i]
		if s.IsGroup() && s.Contains(pos) {
			return s
		}
	}
	return nil
}

// ShapesIn returns the shapes whose unrotated box overlaps box.
func (d *Document) ShapesIn(box geometry.Rect) []ID {
	box = box.Normalize()
	var ids []ID
	for _, s := range d.shapes {
		if s.Bounds().Overlaps(box) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Descendants returns every shape below id in the group tree, depth first.
func (d *Document) Descendants(id ID) []ID {
	var out []ID
	seen := map[ID]bool{id: true}
	var walk func(ID)
	walk = func(id ID) {
		s, ok := d.Shape(id)
		if !ok {
			return
		}
		for _, child := range s.Children() {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)
	return out
}

// WithDescendants returns ids followed by the descendants of any group among
// them, without duplicates.
func (d *Document) WithDescendants(ids []ID) []ID {
	seen := map[ID]bool{}
	var out []ID
	add := func(id ID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range ids {
		add(id)
		for _, child := range d.Descendants(id) {
			add(child)
		}
	}
	return out
}

// Translate moves the given shapes and the descendants of any group among
// them. Every shape moves exactly once.
func (d *Document) Translate(ids []ID, delta geometry.Point) {
	for _, id := range d.WithDescendants(ids) {
		if s, ok := d.Shape(id); ok {
			s.Translate(delta)
		}
	}
}

func (d *Document) move(from, to int) bool {
	if from < 0 || from >= len(d.shapes) || to < 0 || to >= len(d.shapes) || from == to {
		return false
	}
	s := d.shapes[from]
	d.shapes = slices.Delete(d.shapes, from, from+1)
	d.shapes = slices.Insert(d.shapes, to, s)
	d.reindex()
	return true
}

// RaiseOne swaps the shape with the one above it.
func (d *Document) RaiseOne(id ID) bool {
	i := d.ZIndex(id)
	if i < 0 || i == len(d.shapes)-1 {
		return false
	}
	d.shapes[i], d.shapes[i+1] = d.shapes[i+1], d.shapes[i]
	d.reindex()
	return true
}

// LowerOne swaps the shape with the one below it.
func (d *Document) LowerOne(id ID) bool {
	i := d.ZIndex(id)
	if i <= 0 {
		return false
	}
	d.shapes[i], d.shapes[i-1] = d.shapes[i-1], d.shapes[i]
	d.reindex()
	return true
}

func (d *Document) RaiseToTop(id ID) bool {
	return d.move(d.ZIndex(id), len(d.shapes)-1)
}

func (d *Document) LowerToBottom(id ID) bool {
	return d.move(d.ZIndex(id), 0)
}

// Connect creates a default connector between two existing shapes.
func (d *Document) Connect(from, to Endpoint) (*Connector, error) {
	for _, ep := range []Endpoint{from, to} {
		if _, ok := d.Shape(ep.ShapeID); !ok {
			return nil, fmt.Errorf("connect %s: %w", ep.ShapeID, ErrUnknownShape)
		}
	}
	c := NewConnector(from, to)
	d.AddConnector(c)
	return c, nil
}

func (d *Document) AddConnector(c *Connector) {
	d.connIndex[c.ID] = len(d.connectors)
	d.connectors = append(d.connectors, c)
}

// DeleteConnectors removes the given connectors and returns how many existed.
func (d *Document) DeleteConnectors(ids []ID) int {
	drop := map[ID]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	before := len(d.connectors)
	d.connectors = slices.DeleteFunc(d.connectors, func(c *Connector) bool { return drop[c.ID] })
	d.reindex()
	return before - len(d.connectors)
}

// DeleteShapes removes the given shapes. Groups take all their descendants
// with them, removed shapes are detached from surviving parents, and every
// connector touching a removed shape goes too. It returns the removed ids.
func (d *Document) DeleteShapes(ids []ID) []ID {
	var removed []ID
	drop := map[ID]bool{}
	for _, id := range d.WithDescendants(ids) {
		if _, ok := d.Shape(id); ok {
			drop[id] = true
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	for _, id := range removed {
		s, _ := d.Shape(id)
		if s.ParentID != "" && !drop[s.ParentID] {
			d.detach(s)
		}
	}
	d.shapes = slices.DeleteFunc(d.shapes, func(s *Shape) bool { return drop[s.ID] })
	d.connectors = slices.DeleteFunc(d.connectors, func(c *Connector) bool {
		return drop[c.From.ShapeID] || drop[c.To.ShapeID]
	})
	d.reindex()
	return removed
}

// detach removes s from its parent's child list and clears its parent id.
func (d *Document) detach(s *Shape) {
	if parent, ok := d.Shape(s.ParentID); ok {
		if g, ok := parent.AsGroup(); ok {
			g.Children = slices.DeleteFunc(g.Children, func(id ID) bool { return id == s.ID })
		}
	}
	s.ParentID = ""
}

// Bounds returns the union of all shape boxes.
func (d *Document) Bounds() (geometry.Rect, bool) {
	if len(d.shapes) == 0 {
		return geometry.Rect{}, false
	}
	r := d.shapes[0].Bounds()
	for _, s := range d.shapes[1:] {
		r = r.Union(s.Bounds())
	}
	return r, true
}
