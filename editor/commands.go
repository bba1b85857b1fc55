package editor

import (
	"errors"
	"fmt"

	"flowpad/camera"
	"flowpad/diagram"
	"flowpad/geometry"
)

var ErrNothingSelected = errors.New("nothing selected")

const DeleteGroupPrompt = "Delete this group and all its children?"

// PasteOffset shifts pasted shapes so they do not cover the originals.
var PasteOffset = geometry.Pt(20, 20)

// AddShape places a new shape at the centre of the viewport and selects it.
func (e *Editor) AddShape(kind diagram.Kind) *diagram.Shape {
	at := e.world(e.viewport.Div(2))
	s := e.Doc.AddShape(kind, at)
	e.Selection.SelectShapes(s.ID)
	e.log.Debug("shape added", "id", s.ID, "kind", kind, "parent", s.ParentID)
	e.changed()
	return s
}

// Group wraps the selected shapes in a new group and selects it.
func (e *Editor) Group() error {
	g, err := e.Doc.Group(e.Selection.Shapes())
	if err != nil {
		return err
	}
	e.Selection.SelectShapes(g.ID)
	e.log.Debug("grouped", "id", g.ID, "children", len(g.Children()))
	e.changed()
	return nil
}

// Ungroup dissolves the single selected group and clears the selection.
func (e *Editor) Ungroup() error {
	id, ok := e.Selection.SingleShape()
	if !ok {
		return fmt.Errorf("ungroup: %w", diagram.ErrNotGroup)
	}
	if err := e.Doc.Ungroup(id); err != nil {
		return err
	}
	e.Selection.Clear()
	e.changed()
	return nil
}

// DeletePrompt returns the question to ask before deleting the selection, or
// false when no confirmation is needed. Deleting a group always asks.
func (e *Editor) DeletePrompt() (string, bool) {
	for _, id := range e.Selection.Shapes() {
		if s, ok := e.Doc.Shape(id); ok && s.IsGroup() {
			return DeleteGroupPrompt, true
		}
	}
	return "", false
}

// DeleteSelected removes the selected shapes, or the selected connectors when
// no shape is selected. When a group is involved confirm must approve
// first. It returns the number of removed items.
func (e *Editor) DeleteSelected(confirm func(prompt string) bool) int {
	if prompt, ok := e.DeletePrompt(); ok {
		if confirm == nil || !confirm(prompt) {
			return 0
		}
	}
	var n int
	switch {
	case len(e.Selection.Shapes()) > 0:
		removed := e.Doc.DeleteShapes(e.Selection.Shapes())
		n = len(removed)
		e.log.Debug("shapes deleted", "count", n)
	case len(e.Selection.Connectors()) > 0:
		n = e.Doc.DeleteConnectors(e.Selection.Connectors())
		e.log.Debug("connectors deleted", "count", n)
	default:
		return 0
	}
	e.Selection.Clear()
	e.changed()
	return n
}

// Copy serialises the selected shapes.
func (e *Editor) Copy() ([]byte, error) {
	if len(e.Selection.Shapes()) == 0 {
		return nil, ErrNothingSelected
	}
	return e.Doc.Copy(e.Selection.Shapes())
}

// Paste inserts a copied fragment and selects its top-level shapes.
func (e *Editor) Paste(data []byte) error {
	ids, err := e.Doc.Paste(data, PasteOffset)
	if err != nil {
		return err
	}
	e.Selection.SelectShapes(ids...)
	e.changed()
	return nil
}

// SelectAll selects every shape.
func (e *Editor) SelectAll() {
	ids := make([]diagram.ID, 0, len(e.Doc.Shapes()))
	for _, s := range e.Doc.Shapes() {
		ids = append(ids, s.ID)
	}
	e.Selection.SelectShapes(ids...)
	e.changed()
}

// NewDocument discards the document and resets the view.
func (e *Editor) NewDocument() {
	e.replace(diagram.New(), camera.New())
}

func (e *Editor) replace(d *diagram.Document, cam camera.Camera) {
	e.Doc = d
	e.Camera = cam
	e.Selection.Clear()
	e.Session = Session{}
	e.changed()
}

// Load reads a document from path.
func (e *Editor) Load(path string) error {
	d, cam, err := diagram.LoadFile(path)
	if err != nil {
		return err
	}
	e.log.Info("document loaded", "path", path, "shapes", len(d.Shapes()), "connectors", len(d.Connectors()))
	e.replace(d, cam)
	return nil
}

// Save writes the document and camera to path.
func (e *Editor) Save(path string) error {
	if err := e.Doc.SaveFile(path, e.Camera); err != nil {
		return err
	}
	e.log.Info("document saved", "path", path, "shapes", len(e.Doc.Shapes()))
	return nil
}
