// Package diagram is the document model of the editor: shapes, connectors,
// grouping, z-order and persistence.
package diagram

import (
	"slices"

	"flowpad/assets"
	"flowpad/geometry"
)

// Kind is the type tag written to documents.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindDiamond   Kind = "diamond"
	KindEllipse   Kind = "ellipse"
	KindPie       Kind = "pie"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindCheckmark Kind = "checkmark"
	KindGroup     Kind = "group"
)

// Kinds lists the kinds a user can place from the palette, in palette order.
var Kinds = []Kind{
	KindRectangle, KindDiamond, KindEllipse, KindPie,
	KindText, KindImage, KindCheckmark,
}

// Variant is the kind specific payload of a shape. The set of variants is
// closed; code that needs to treat kinds differently switches on the
// concrete type.
type Variant interface {
	Kind() Kind
	clone() Variant
}

type Rectangle struct {
	BorderRadius float64
}

type Diamond struct{}

type Ellipse struct{}

// Pie is a wedge starting at twelve o'clock and sweeping Angle degrees
// clockwise.
type Pie struct {
	Angle float64
}

type Text struct{}

type ImageFit string

const (
	FitFill       ImageFit = "fill"
	FitAspectFit  ImageFit = "aspectFit"
	FitAspectFill ImageFit = "aspectFill"
	FitCenter     ImageFit = "center"
)

var ImageFits = []ImageFit{FitFill, FitAspectFit, FitAspectFill, FitCenter}

type Image struct {
	Source string
	Fit    ImageFit

	asset *assets.Handle
}

// Asset returns the load handle for the current source, starting a load
// through l when the source changed. It returns nil without a source.
func (v *Image) Asset(l *assets.Loader) *assets.Handle {
	if v.Source == "" || l == nil {
		return nil
	}
	if v.asset == nil || v.asset.Source != v.Source {
		v.asset = l.Load(v.Source)
	}
	return v.asset
}

type Checkmark struct{}

// Group owns an ordered list of child shape ids. Only groups own children.
type Group struct {
	Children []ID
}

func (*Rectangle) Kind() Kind { return KindRectangle }
func (*Diamond) Kind() Kind   { return KindDiamond }
func (*Ellipse) Kind() Kind   { return KindEllipse }
func (*Pie) Kind() Kind       { return KindPie }
func (*Text) Kind() Kind      { return KindText }
func (*Image) Kind() Kind     { return KindImage }
func (*Checkmark) Kind() Kind { return KindCheckmark }
func (*Group) Kind() Kind     { return KindGroup }

func (v *Rectangle) clone() Variant { c := *v; return &c }
func (v *Diamond) clone() Variant   { return &Diamond{} }
func (v *Ellipse) clone() Variant   { return &Ellipse{} }
func (v *Pie) clone() Variant       { c := *v; return &c }
func (v *Text) clone() Variant      { return &Text{} }
func (v *Image) clone() Variant     { c := *v; return &c }
func (v *Checkmark) clone() Variant { return &Checkmark{} }
func (v *Group) clone() Variant     { return &Group{Children: slices.Clone(v.Children)} }

// Style holds the paint attributes shared by all kinds.
type Style struct {
	Fill        bool
	FillColor   string
	Border      bool
	BorderColor string
	BorderWidth float64
	Opacity     float64
}

// Label is the text drawn inside a shape. Images ignore it.
type Label struct {
	Text     string
	FontSize float64
	Color    string
}

// Shape is a rectangle positioned by its top-left corner before rotation.
// Rotation is in radians about the centre.
type Shape struct {
	ID               ID
	X, Y             float64
	Width, Height    float64
	Rotation         float64
	Style            Style
	Label            Label
	AllowConnections bool
	ParentID         ID
	Variant          Variant
}

func (s *Shape) Kind() Kind {
	if s.Variant == nil {
		return KindRectangle
	}
	return s.Variant.Kind()
}

func (s *Shape) Bounds() geometry.Rect {
	return geometry.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

func (s *Shape) Center() geometry.Point {
	return geometry.Pt(s.X+s.Width/2, s.Y+s.Height/2)
}

// Contains reports whether the world point p falls inside the rotated shape.
func (s *Shape) Contains(p geometry.Point) bool {
	return geometry.PointInRotatedRect(p, s.Bounds(), s.Rotation)
}

// AsGroup returns the group payload when s is a group.
func (s *Shape) AsGroup() (*Group, bool) {
	g, ok := s.Variant.(*Group)
	return g, ok
}

func (s *Shape) IsGroup() bool {
	_, ok := s.AsGroup()
	return ok
}

// Children returns the child ids of a group, nil otherwise.
func (s *Shape) Children() []ID {
	if g, ok := s.AsGroup(); ok {
		return g.Children
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Shape) Clone() *Shape {
	c := *s
	if s.Variant != nil {
		c.Variant = s.Variant.clone()
	}
	return &c
}

// Translate moves the shape alone; see Document.Translate for groups.
func (s *Shape) Translate(delta geometry.Point) {
	s.X += delta.X
	s.Y += delta.Y
}

// SnapToGrid rounds position and size to the nearest grid multiple.
func (s *Shape) SnapToGrid(grid float64) {
	s.X = geometry.Snap(s.X, grid)
	s.Y = geometry.Snap(s.Y, grid)
	s.Width = geometry.Snap(s.Width, grid)
	s.Height = geometry.Snap(s.Height, grid)
}

// NewShape builds a shape of the given kind with the palette defaults,
// centred on at.
func NewShape(kind Kind, at geometry.Point) *Shape {
	s := &Shape{
		ID:     NewShapeID(),
		Width:  150,
		Height: 80,
		Style: Style{
			Fill:        true,
			FillColor:   "#4a5568",
			Border:      true,
			BorderColor: "#a0aec0",
			BorderWidth: 2,
			Opacity:     1,
		},
		Label: Label{
			Text:     "New Shape",
			FontSize: 14,
			Color:    "#ffffff",
		},
		AllowConnections: true,
	}
	switch kind {
	case KindDiamond:
		s.Variant = &Diamond{}
	case KindEllipse:
		s.Variant = &Ellipse{}
	case KindPie:
		s.Variant = &Pie{Angle: 90}
	case KindText:
		s.Variant = &Text{}
		s.Style.Fill = false
		s.Style.Border = false
		s.Label.Text = "Enter text..."
	case KindImage:
		s.Variant = &Image{Fit: FitFill}
		s.Label.Text = ""
	case KindCheckmark:
		s.Variant = &Checkmark{}
		s.Style.Fill = false
		s.Width, s.Height = 50, 50
		s.Label.Text = ""
	case KindGroup:
		s.Variant = &Group{}
		s.Style = groupStyle()
		s.Label.Text = ""
	default:
		s.Variant = &Rectangle{BorderRadius: 4}
	}
	// Placement uses the 150x80 default box for every kind.
	s.X = at.X - 75
	s.Y = at.Y - 40
	return s
}

func groupStyle() Style {
	return Style{
		Fill:        false,
		Border:      true,
		BorderColor: "#3498db",
		BorderWidth: 2,
		Opacity:     1,
	}
}
