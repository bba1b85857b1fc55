package render

import (
	"context"
	"errors"
	"image"

	"flowpad/assets"
	"flowpad/camera"
	"flowpad/diagram"
	"flowpad/editor"
	"flowpad/geometry"
)

// ExportPadding surrounds the document bounds in exported pictures.
const ExportPadding = 40.0

type ShapeItem struct {
	Shape    *diagram.Shape
	Figure   Figure
	Selected bool
	// Image is the decoded picture of an image shape once it has loaded.
	Image image.Image
}

type ConnectorItem struct {
	Connector *diagram.Connector
	Geometry  Geometry
	Selected  bool
}

// Handles are the editing knobs of the single selected shape.
type Handles struct {
	Shape     *diagram.Shape
	Resize    []geometry.Point
	TopCenter geometry.Point
	Rotation  geometry.Point
	Ports     []geometry.Point
}

// Scene is everything one frame draws, in world coordinates, back to front.
type Scene struct {
	Camera camera.Camera
	// Width and Height are the viewport size in screen pixels.
	Width, Height float64
	// Grid is the grid spacing; zero hides the grid.
	Grid  float64
	Theme Theme

	Connectors []ConnectorItem
	Shapes     []ShapeItem
	Marquee    *geometry.Rect
	// RubberBand runs from the connection point being dragged to the pointer.
	RubberBand []geometry.Point
	Handles    *Handles
	// Waypoints are the handles of the selected connectors.
	Waypoints []geometry.Point
}

type Options struct {
	Grid  bool
	Theme Theme
}

func shapeItem(s *diagram.Shape, loader *assets.Loader) ShapeItem {
	item := ShapeItem{Shape: s, Figure: Outline(s)}
	if v, ok := s.Variant.(*diagram.Image); ok && loader != nil {
		if h := v.Asset(loader); h != nil {
			if img, ok := h.Ready(); ok {
				item.Image = img
			}
		}
	}
	return item
}

func handlesFor(s *diagram.Shape, zoom float64) *Handles {
	h := &Handles{
		Shape:     s,
		TopCenter: s.HandlePoint(diagram.HandleTop),
		Rotation:  s.RotationHandle(zoom),
	}
	for _, r := range diagram.ResizeHandles {
		h.Resize = append(h.Resize, s.HandlePoint(r))
	}
	if s.AllowConnections {
		for _, p := range diagram.Ports {
			h.Ports = append(h.Ports, s.AttachPoint(p, zoom))
		}
	}
	return h
}

// Build describes the current frame of e. Image shapes whose pictures are
// still loading come out without an Image and draw as placeholders.
func Build(e *editor.Editor, loader *assets.Loader, opts Options) *Scene {
	view := e.Viewport()
	zoom := e.Camera.Zoom
	sess := e.Session
	sc := &Scene{
		Camera: e.Camera,
		Width:  view.X,
		Height: view.Y,
		Theme:  opts.Theme,
	}
	if opts.Grid {
		sc.Grid = e.Grid()
	}

	for _, c := range e.Doc.Connectors() {
		var (
			g  Geometry
			ok bool
		)
		if sess.State == editor.Reconnecting && sess.Connector == c.ID {
			g, ok = previewGeometry(e.Doc, c, sess.End, sess.Pointer, zoom)
		} else {
			g, ok = ConnectorGeometry(e.Doc, c, zoom)
		}
		if !ok {
			continue
		}
		selected := e.Selection.HasConnector(c.ID)
		sc.Connectors = append(sc.Connectors, ConnectorItem{Connector: c, Geometry: g, Selected: selected})
		if selected {
			sc.Waypoints = append(sc.Waypoints, c.Waypoints...)
		}
	}

	for _, s := range e.Doc.Shapes() {
		item := shapeItem(s, loader)
		item.Selected = e.Selection.HasShape(s.ID)
		sc.Shapes = append(sc.Shapes, item)
	}

	switch sess.State {
	case editor.MarqueeSelecting:
		box := sess.Marquee.Normalize()
		sc.Marquee = &box
	case editor.Connecting:
		if from, ok := e.Doc.Shape(sess.From.ShapeID); ok {
			sc.RubberBand = []geometry.Point{from.AttachPoint(sess.From.Point, zoom), sess.Pointer}
		}
	}

	if id, ok := e.Selection.SingleShape(); ok {
		if s, ok := e.Doc.Shape(id); ok {
			sc.Handles = handlesFor(s, zoom)
		}
	}
	return sc
}

// DocumentScene frames the whole document at zoom 1 with ExportPadding around
// it, without selection or handles. It reports false for an empty document.
func DocumentScene(doc *diagram.Document, loader *assets.Loader, theme Theme) (*Scene, bool) {
	var corners []geometry.Point
	for _, s := range doc.Shapes() {
		corners = append(corners, rotatedCorners(s.Bounds(), s.Rotation)...)
	}
	bounds, ok := geometry.BoundsOf(corners)
	if !ok {
		return nil, false
	}
	// Connectors stick out of the shapes by their port offset.
	for _, c := range doc.Connectors() {
		if r, ok := geometry.BoundsOf(doc.Path(c, 1)); ok {
			bounds = bounds.Union(r)
		}
	}
	bounds = bounds.Expand(ExportPadding)

	cam := camera.New()
	cam.Offset = bounds.Min().Mul(-1)
	sc := &Scene{
		Camera: cam,
		Width:  bounds.Width,
		Height: bounds.Height,
		Theme:  theme,
	}
	for _, c := range doc.Connectors() {
		if g, ok := ConnectorGeometry(doc, c, 1); ok {
			sc.Connectors = append(sc.Connectors, ConnectorItem{Connector: c, Geometry: g})
		}
	}
	for _, s := range doc.Shapes() {
		sc.Shapes = append(sc.Shapes, shapeItem(s, loader))
	}
	return sc, true
}

// rotatedCorners returns the corners of r turned about its centre.
func rotatedCorners(r geometry.Rect, rotation float64) []geometry.Point {
	c := r.Center()
	pts := []geometry.Point{r.Min(), geometry.Pt(r.X+r.Width, r.Y), r.Max(), geometry.Pt(r.X, r.Y+r.Height)}
	for i := range pts {
		pts[i] = geometry.RotatePoint(pts[i], c, rotation)
	}
	return pts
}

// Preload starts every image of doc and waits for all of them. Failed images
// are reported together and still draw as placeholders.
func Preload(ctx context.Context, doc *diagram.Document, loader *assets.Loader) error {
	var errs []error
	for _, s := range doc.Shapes() {
		v, ok := s.Variant.(*diagram.Image)
		if !ok {
			continue
		}
		h := v.Asset(loader)
		if h == nil {
			continue
		}
		if _, err := h.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
