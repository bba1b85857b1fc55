package diagram

import (
	"fmt"
	"slices"
)

// Group wraps the given shapes in a new group sized to their union plus
// GroupPadding. Members leave their previous parents. The group goes on top
// of the z-order.
func (d *Document) Group(ids []ID) (*Shape, error) {
	var members []*Shape
	seen := map[ID]bool{}
	for _, id := range ids {
		s, ok := d.Shape(id)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, s)
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("group %d shapes: %w", len(members), ErrTooFewShapes)
	}

	box := members[0].Bounds()
	for _, m := range members[1:] {
		box = box.Union(m.Bounds())
	}
	box = box.Expand(GroupPadding)

	g := &Group{Children: make([]ID, 0, len(members))}
	group := &Shape{
		ID:               NewShapeID(),
		X:                box.X,
		Y:                box.Y,
		Width:            box.Width,
		Height:           box.Height,
		Style:            groupStyle(),
		Label:            Label{FontSize: 14, Color: "#ffffff"},
		AllowConnections: true,
		Variant:          g,
	}
	for _, m := range members {
		if m.ParentID != "" {
			d.detach(m)
		}
		m.ParentID = group.ID
		g.Children = append(g.Children, m.ID)
	}
	d.Insert(group)
	return group, nil
}

// Ungroup releases the direct children of a group and removes it. The group
// is detached from its own parent first.
func (d *Document) Ungroup(id ID) error {
	s, ok := d.Shape(id)
	if !ok {
		return fmt.Errorf("ungroup %s: %w", id, ErrUnknownShape)
	}
	g, ok := s.AsGroup()
	if !ok {
		return fmt.Errorf("ungroup %s: %w", id, ErrNotGroup)
	}
	for _, child := range g.Children {
		if c, ok := d.Shape(child); ok && c.ParentID == id {
			c.ParentID = ""
		}
	}
	g.Children = nil
	if s.ParentID != "" {
		d.detach(s)
	}
	d.shapes = slices.DeleteFunc(d.shapes, func(x *Shape) bool { return x.ID == id })
	d.connectors = slices.DeleteFunc(d.connectors, func(c *Connector) bool { return c.Touches(id) })
	d.reindex()
	return nil
}

// repair restores the parent/children invariant and drops connectors whose
// ends no longer resolve. Only groups keep children; a child listed by a
// group adopts it unless it already names another parent.
func (d *Document) repair() {
	d.reindex()
	for _, s := range d.shapes {
		g, ok := s.AsGroup()
		if !ok {
			continue
		}
		seen := map[ID]bool{}
		g.Children = slices.DeleteFunc(g.Children, func(child ID) bool {
			c, ok := d.Shape(child)
			if !ok || seen[child] || child == s.ID {
				return true
			}
			seen[child] = true
			if c.ParentID == "" {
				c.ParentID = s.ID
			}
			return c.ParentID != s.ID
		})
	}
	for _, s := range d.shapes {
		if s.ParentID == "" {
			continue
		}
		parent, ok := d.Shape(s.ParentID)
		if !ok || !slices.Contains(parent.Children(), s.ID) {
			s.ParentID = ""
		}
	}
	d.connectors = slices.DeleteFunc(d.connectors, func(c *Connector) bool {
		_, fromOK := d.Shape(c.From.ShapeID)
		_, toOK := d.Shape(c.To.ShapeID)
		return !fromOK || !toOK
	})
	d.reindex()
}
