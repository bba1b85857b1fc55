package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"flowpad/camera"
	"flowpad/geometry"
)

// shapeRecord is the flat on-disk layout of a shape. Kind specific fields
// are pointers so they are only written for the kinds that own them.
type shapeRecord struct {
	ID               ID       `json:"id"`
	Type             Kind     `json:"type"`
	X                float64  `json:"x"`
	Y                float64  `json:"y"`
	Width            float64  `json:"width"`
	Height           float64  `json:"height"`
	Rotation         float64  `json:"rotation"`
	Fill             bool     `json:"fill"`
	FillColor        string   `json:"fillColor,omitempty"`
	Border           bool     `json:"border"`
	BorderColor      string   `json:"borderColor,omitempty"`
	BorderWidth      float64  `json:"borderWidth"`
	BorderRadius     *float64 `json:"borderRadius,omitempty"`
	Opacity          *float64 `json:"opacity,omitempty"`
	Text             string   `json:"text"`
	TextColor        string   `json:"textColor,omitempty"`
	FontSize         float64  `json:"fontSize,omitempty"`
	Angle            *float64 `json:"angle,omitempty"`
	ImageSrc         *string  `json:"imageSrc,omitempty"`
	ImageFit         ImageFit `json:"imageFit,omitempty"`
	Children         []ID     `json:"children"`
	ParentID         *ID      `json:"parentId"`
	AllowConnections *bool    `json:"allowConnections,omitempty"`
}

func recordOf(s *Shape) shapeRecord {
	opacity := s.Style.Opacity
	allow := s.AllowConnections
	r := shapeRecord{
		ID:               s.ID,
		Type:             s.Kind(),
		X:                s.X,
		Y:                s.Y,
		Width:            s.Width,
		Height:           s.Height,
		Rotation:         s.Rotation,
		Fill:             s.Style.Fill,
		FillColor:        s.Style.FillColor,
		Border:           s.Style.Border,
		BorderColor:      s.Style.BorderColor,
		BorderWidth:      s.Style.BorderWidth,
		Opacity:          &opacity,
		Text:             s.Label.Text,
		TextColor:        s.Label.Color,
		FontSize:         s.Label.FontSize,
		Children:         []ID{},
		AllowConnections: &allow,
	}
	if s.ParentID != "" {
		parent := s.ParentID
		r.ParentID = &parent
	}
	switch v := s.Variant.(type) {
	case *Rectangle:
		radius := v.BorderRadius
		r.BorderRadius = &radius
	case *Pie:
		angle := v.Angle
		r.Angle = &angle
	case *Image:
		if v.Source != "" {
			src := v.Source
			r.ImageSrc = &src
		}
		r.ImageFit = v.Fit
	case *Group:
		r.Children = append(r.Children, v.Children...)
	case *Diamond, *Ellipse, *Text, *Checkmark:
	}
	return r
}

// shape rebuilds a shape from its record, filling the defaults older
// documents leave out. Unknown types load as rectangles.
func (r shapeRecord) shape() *Shape {
	s := &Shape{
		ID:       r.ID,
		X:        r.X,
		Y:        r.Y,
		Width:    r.Width,
		Height:   r.Height,
		Rotation: r.Rotation,
		Style: Style{
			Fill:        r.Fill,
			FillColor:   r.FillColor,
			Border:      r.Border,
			BorderColor: r.BorderColor,
			BorderWidth: r.BorderWidth,
			Opacity:     1,
		},
		Label: Label{
			Text:     r.Text,
			FontSize: r.FontSize,
			Color:    r.TextColor,
		},
		AllowConnections: true,
	}
	if s.ID == "" {
		s.ID = NewShapeID()
	}
	if r.Opacity != nil {
		s.Style.Opacity = *r.Opacity
	}
	if r.AllowConnections != nil {
		s.AllowConnections = *r.AllowConnections
	}
	if r.ParentID != nil {
		s.ParentID = *r.ParentID
	}
	switch r.Type {
	case KindDiamond:
		s.Variant = &Diamond{}
	case KindEllipse:
		s.Variant = &Ellipse{}
	case KindPie:
		angle := 90.0
		if r.Angle != nil {
			angle = *r.Angle
		}
		s.Variant = &Pie{Angle: angle}
	case KindText:
		s.Variant = &Text{}
	case KindImage:
		img := &Image{Fit: r.ImageFit}
		if r.ImageSrc != nil {
			img.Source = *r.ImageSrc
		}
		if img.Fit == "" {
			img.Fit = FitFill
		}
		s.Variant = img
	case KindCheckmark:
		s.Variant = &Checkmark{}
	case KindGroup:
		s.Variant = &Group{Children: r.Children}
	default:
		rect := &Rectangle{}
		if r.BorderRadius != nil {
			rect.BorderRadius = *r.BorderRadius
		}
		s.Variant = rect
	}
	return s
}

func (c *Connector) applyDefaults() {
	if c.ID == "" {
		c.ID = NewConnectorID()
	}
	if c.Waypoints == nil {
		c.Waypoints = []geometry.Point{}
	}
	if c.Color == "" {
		c.Color = DefaultConnectorColor
	}
	if c.Thickness <= 0 {
		c.Thickness = DefaultConnectorThickness
	}
	if c.LineStyle == "" {
		c.LineStyle = LineSolid
	}
	if c.LineType == "" {
		c.LineType = LineStraight
	}
}

type fileFormat struct {
	Shapes       []shapeRecord   `json:"shapes"`
	Connectors   []*Connector    `json:"connectors"`
	CameraOffset *geometry.Point `json:"cameraOffset,omitempty"`
	CameraZoom   float64         `json:"cameraZoom,omitempty"`
}

func (d *Document) records() []shapeRecord {
	records := make([]shapeRecord, 0, len(d.shapes))
	for _, s := range d.shapes {
		records = append(records, recordOf(s))
	}
	return records
}

// Encode writes the document and the camera as indented JSON.
func (d *Document) Encode(w io.Writer, cam camera.Camera) error {
	conns := d.connectors
	if conns == nil {
		conns = []*Connector{}
	}
	offset := cam.Offset
	f := fileFormat{
		Shapes:       d.records(),
		Connectors:   conns,
		CameraOffset: &offset,
		CameraZoom:   cam.Zoom,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// Decode reads a document written by Encode or by older editors. Missing
// collections load empty, a missing zoom loads as 1, and broken references
// are repaired.
func Decode(r io.Reader) (*Document, camera.Camera, error) {
	var f fileFormat
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, camera.Camera{}, fmt.Errorf("decode document: %w", err)
	}
	d := New()
	for _, rec := range f.Shapes {
		d.shapes = append(d.shapes, rec.shape())
	}
	for _, c := range f.Connectors {
		if c == nil {
			continue
		}
		c.applyDefaults()
		d.connectors = append(d.connectors, c)
	}
	d.repair()

	cam := camera.New()
	if f.CameraOffset != nil {
		cam.Offset = *f.CameraOffset
	}
	if f.CameraZoom != 0 {
		cam.Zoom = camera.Clamp(f.CameraZoom)
	}
	return d, cam, nil
}

// SaveFile writes the document to path, creating parent directories.
func (d *Document) SaveFile(path string, cam camera.Camera) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := d.Encode(f, cam); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func LoadFile(path string) (*Document, camera.Camera, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, camera.Camera{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	d, cam, err := Decode(f)
	if err != nil {
		return nil, camera.Camera{}, fmt.Errorf("load %s: %w", path, err)
	}
	return d, cam, nil
}
