package diagram

import (
	"encoding/json"
	"errors"
	"fmt"

	"flowpad/geometry"
)

// fragmentFormat is the clipboard payload: a slice of a document in the same
// layout as a file.
type fragmentFormat struct {
	Flowpad    int           `json:"flowpadFragment"`
	Shapes     []shapeRecord `json:"shapes"`
	Connectors []*Connector  `json:"connectors"`
}

const fragmentVersion = 1

var ErrNotFragment = errors.New("clipboard does not hold flowpad shapes")

// Copy serialises the given shapes, the descendants of any groups among them
// and the connectors running between copied shapes.
func (d *Document) Copy(ids []ID) ([]byte, error) {
	inSet := map[ID]bool{}
	f := fragmentFormat{Flowpad: fragmentVersion, Connectors: []*Connector{}}
	for _, id := range d.WithDescendants(ids) {
		if _, ok := d.Shape(id); ok {
			inSet[id] = true
		}
	}
	if len(inSet) == 0 {
		return nil, fmt.Errorf("copy: %w", ErrUnknownShape)
	}
	// Keep z-order.
	for _, s := range d.shapes {
		if inSet[s.ID] {
			f.Shapes = append(f.Shapes, recordOf(s))
		}
	}
	for _, c := range d.connectors {
		if inSet[c.From.ShapeID] && inSet[c.To.ShapeID] {
			f.Connectors = append(f.Connectors, c)
		}
	}
	return json.Marshal(f)
}

// Paste inserts a fragment produced by Copy, shifted by offset. Every pasted
// shape and connector gets a fresh id; parent links that point outside the
// fragment are dropped. It returns the ids of the pasted top-level shapes.
func (d *Document) Paste(data []byte, offset geometry.Point) ([]ID, error) {
	var f fragmentFormat
	if err := json.Unmarshal(data, &f); err != nil || f.Flowpad == 0 {
		return nil, ErrNotFragment
	}

	remap := map[ID]ID{}
	var pasted []*Shape
	for _, rec := range f.Shapes {
		s := rec.shape()
		old := s.ID
		s.ID = NewShapeID()
		remap[old] = s.ID
		s.Translate(offset)
		pasted = append(pasted, s)
	}

	var top []ID
	for _, s := range pasted {
		if s.ParentID != "" {
			s.ParentID = remap[s.ParentID]
		}
		if g, ok := s.AsGroup(); ok {
			children := g.Children[:0]
			for _, child := range g.Children {
				if id, ok := remap[child]; ok {
					children = append(children, id)
				}
			}
			g.Children = children
		}
		if s.ParentID == "" {
			top = append(top, s.ID)
		}
		d.shapes = append(d.shapes, s)
	}

	for _, c := range f.Connectors {
		if c == nil {
			continue
		}
		from, okFrom := remap[c.From.ShapeID]
		to, okTo := remap[c.To.ShapeID]
		if !okFrom || !okTo {
			continue
		}
		nc := c.Clone()
		nc.applyDefaults()
		nc.ID = NewConnectorID()
		nc.From.ShapeID = from
		nc.To.ShapeID = to
		for i := range nc.Waypoints {
			nc.Waypoints[i] = nc.Waypoints[i].Add(offset)
		}
		d.connectors = append(d.connectors, nc)
	}
	d.repair()
	return top, nil
}
