package editor

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"flowpad/diagram"
	"flowpad/geometry"

	"github.com/muesli/reflow/truncate"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrNotApplicable   = errors.New("property does not apply to the selection")
)

// Panel reads and writes the properties of the single selected shape or
// connector. Every setter fires the redraw hook when it changes something.
type Panel struct {
	e *Editor
}

func (e *Editor) Panel() Panel { return Panel{e: e} }

func (p Panel) Shape() (*diagram.Shape, bool) {
	return p.e.selectedShape()
}

func (p Panel) Connector() (*diagram.Connector, bool) {
	id, ok := p.e.Selection.SingleConnector()
	if !ok {
		return nil, false
	}
	return p.e.Doc.Connector(id)
}

// editShape applies fn to the selected shape.
func (p Panel) editShape(fn func(s *diagram.Shape) error) error {
	s, ok := p.Shape()
	if !ok {
		return ErrNothingSelected
	}
	if err := fn(s); err != nil {
		return err
	}
	p.e.changed()
	return nil
}

func (p Panel) editConnector(fn func(c *diagram.Connector) error) error {
	c, ok := p.Connector()
	if !ok {
		return ErrNothingSelected
	}
	if err := fn(c); err != nil {
		return err
	}
	p.e.changed()
	return nil
}

func (p Panel) SetText(text string) error {
	return p.editShape(func(s *diagram.Shape) error { s.Label.Text = text; return nil })
}

func (p Panel) SetFontSize(size float64) error {
	return p.editShape(func(s *diagram.Shape) error { s.Label.FontSize = math.Max(1, size); return nil })
}

func (p Panel) SetTextColor(color string) error {
	return p.editShape(func(s *diagram.Shape) error { s.Label.Color = color; return nil })
}

func (p Panel) SetFill(on bool) error {
	return p.editShape(func(s *diagram.Shape) error { s.Style.Fill = on; return nil })
}

func (p Panel) SetFillColor(color string) error {
	return p.editShape(func(s *diagram.Shape) error { s.Style.FillColor = color; return nil })
}

func (p Panel) SetBorder(on bool) error {
	return p.editShape(func(s *diagram.Shape) error { s.Style.Border = on; return nil })
}

func (p Panel) SetBorderColor(color string) error {
	return p.editShape(func(s *diagram.Shape) error { s.Style.BorderColor = color; return nil })
}

func (p Panel) SetBorderWidth(width float64) error {
	return p.editShape(func(s *diagram.Shape) error { s.Style.BorderWidth = math.Max(0, width); return nil })
}

// SetOpacity clamps to [0,1].
func (p Panel) SetOpacity(opacity float64) error {
	return p.editShape(func(s *diagram.Shape) error {
		s.Style.Opacity = math.Max(0, math.Min(1, opacity))
		return nil
	})
}

func (p Panel) SetBorderRadius(radius float64) error {
	return p.editShape(func(s *diagram.Shape) error {
		r, ok := s.Variant.(*diagram.Rectangle)
		if !ok {
			return ErrNotApplicable
		}
		r.BorderRadius = math.Max(0, radius)
		return nil
	})
}

// SetAngle sets the sweep of a pie, clamped to [0,360] degrees.
func (p Panel) SetAngle(degrees float64) error {
	return p.editShape(func(s *diagram.Shape) error {
		pie, ok := s.Variant.(*diagram.Pie)
		if !ok {
			return ErrNotApplicable
		}
		pie.Angle = math.Max(0, math.Min(360, degrees))
		return nil
	})
}

func (p Panel) SetImageSource(src string) error {
	return p.editShape(func(s *diagram.Shape) error {
		img, ok := s.Variant.(*diagram.Image)
		if !ok {
			return ErrNotApplicable
		}
		img.Source = strings.TrimSpace(src)
		return nil
	})
}

func (p Panel) SetImageFit(fit diagram.ImageFit) error {
	return p.editShape(func(s *diagram.Shape) error {
		img, ok := s.Variant.(*diagram.Image)
		if !ok {
			return ErrNotApplicable
		}
		if !slices.Contains(diagram.ImageFits, fit) {
			return fmt.Errorf("image fit %q: %w", fit, ErrNotApplicable)
		}
		img.Fit = fit
		return nil
	})
}

// SetRotation takes degrees.
func (p Panel) SetRotation(degrees float64) error {
	return p.editShape(func(s *diagram.Shape) error { s.Rotation = degrees * math.Pi / 180; return nil })
}

// SetX moves the shape, carrying a group's descendants along.
func (p Panel) SetX(x float64) error {
	return p.editShape(func(s *diagram.Shape) error {
		p.e.Doc.Translate([]diagram.ID{s.ID}, geometry.Pt(x-s.X, 0))
		return nil
	})
}

func (p Panel) SetY(y float64) error {
	return p.editShape(func(s *diagram.Shape) error {
		p.e.Doc.Translate([]diagram.ID{s.ID}, geometry.Pt(0, y-s.Y))
		return nil
	})
}

func (p Panel) SetWidth(w float64) error {
	return p.editShape(func(s *diagram.Shape) error { s.Width = math.Max(diagram.MinSize, w); return nil })
}

func (p Panel) SetHeight(h float64) error {
	return p.editShape(func(s *diagram.Shape) error { s.Height = math.Max(diagram.MinSize, h); return nil })
}

func (p Panel) SetAllowConnections(on bool) error {
	return p.editShape(func(s *diagram.Shape) error { s.AllowConnections = on; return nil })
}

func (p Panel) SetConnectorColor(color string) error {
	return p.editConnector(func(c *diagram.Connector) error { c.Color = color; return nil })
}

// SetThickness keeps connectors at least one unit wide.
func (p Panel) SetThickness(t float64) error {
	return p.editConnector(func(c *diagram.Connector) error { c.Thickness = math.Max(1, t); return nil })
}

func (p Panel) SetLineStyle(style diagram.LineStyle) error {
	return p.editConnector(func(c *diagram.Connector) error {
		if !slices.Contains(diagram.LineStyles, style) {
			return fmt.Errorf("line style %q: %w", style, ErrNotApplicable)
		}
		c.LineStyle = style
		return nil
	})
}

func (p Panel) SetLineType(t diagram.LineType) error {
	return p.editConnector(func(c *diagram.Connector) error {
		if t != diagram.LineStraight && t != diagram.LineCurve {
			return fmt.Errorf("line type %q: %w", t, ErrNotApplicable)
		}
		c.LineType = t
		return nil
	})
}

// ToggleLineType flips the selected connector between line and curve.
func (p Panel) ToggleLineType() error {
	c, ok := p.Connector()
	if !ok {
		return ErrNothingSelected
	}
	if c.LineType == diagram.LineCurve {
		return p.SetLineType(diagram.LineStraight)
	}
	return p.SetLineType(diagram.LineCurve)
}

func (p Panel) reorder(fn func(diagram.ID) bool) bool {
	s, ok := p.Shape()
	if !ok || !fn(s.ID) {
		return false
	}
	p.e.changed()
	return true
}

func (p Panel) RaiseOne() bool      { return p.reorder(p.e.Doc.RaiseOne) }
func (p Panel) LowerOne() bool      { return p.reorder(p.e.Doc.LowerOne) }
func (p Panel) RaiseToTop() bool    { return p.reorder(p.e.Doc.RaiseToTop) }
func (p Panel) LowerToBottom() bool { return p.reorder(p.e.Doc.LowerToBottom) }

// Field is one row of the property listing.
type Field struct {
	Name  string
	Value string
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Fields lists the editable properties of the selection, in display order.
func (p Panel) Fields() []Field {
	if c, ok := p.Connector(); ok {
		return []Field{
			{"color", c.Color},
			{"thickness", num(c.Thickness)},
			{"style", string(c.LineStyle)},
			{"type", string(c.LineType)},
			{"waypoints", strconv.Itoa(len(c.Waypoints))},
		}
	}
	s, ok := p.Shape()
	if !ok {
		return nil
	}
	fields := []Field{
		{"kind", string(s.Kind())},
		{"x", num(math.Round(s.X))},
		{"y", num(math.Round(s.Y))},
		{"width", num(math.Round(s.Width))},
		{"height", num(math.Round(s.Height))},
		{"rotation", num(math.Round(s.Rotation * 180 / math.Pi))},
	}
	switch v := s.Variant.(type) {
	case *diagram.Image:
		src := truncate.StringWithTail(v.Source, 32, "...")
		fields = append(fields, Field{"src", src}, Field{"fit", string(v.Fit)})
	case *diagram.Rectangle:
		fields = append(fields, Field{"radius", num(v.BorderRadius)})
	case *diagram.Pie:
		fields = append(fields, Field{"angle", num(v.Angle)})
	case *diagram.Group:
		fields = append(fields, Field{"children", strconv.Itoa(len(v.Children))})
	case *diagram.Diamond, *diagram.Ellipse, *diagram.Text, *diagram.Checkmark:
	}
	if s.Kind() != diagram.KindImage {
		fields = append(fields,
			Field{"text", s.Label.Text},
			Field{"font", num(s.Label.FontSize)},
			Field{"textcolor", s.Label.Color},
		)
	}
	return append(fields,
		Field{"fill", strconv.FormatBool(s.Style.Fill)},
		Field{"fillcolor", s.Style.FillColor},
		Field{"border", strconv.FormatBool(s.Style.Border)},
		Field{"bordercolor", s.Style.BorderColor},
		Field{"borderwidth", num(s.Style.BorderWidth)},
		Field{"opacity", num(s.Style.Opacity)},
		Field{"connect", strconv.FormatBool(s.AllowConnections)},
	)
}

// Set parses value and applies it to the named property. Names match the
// Fields listing.
func (p Panel) Set(name, value string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	float := func(apply func(float64) error) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return apply(v)
	}
	boolean := func(apply func(bool) error) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return apply(v)
	}

	if _, ok := p.Connector(); ok {
		switch name {
		case "color":
			return p.SetConnectorColor(value)
		case "thickness":
			return float(p.SetThickness)
		case "style":
			return p.SetLineStyle(diagram.LineStyle(value))
		case "type":
			return p.SetLineType(diagram.LineType(value))
		}
		return fmt.Errorf("%q: %w", name, ErrUnknownProperty)
	}

	switch name {
	case "x":
		return float(p.SetX)
	case "y":
		return float(p.SetY)
	case "width":
		return float(p.SetWidth)
	case "height":
		return float(p.SetHeight)
	case "rotation":
		return float(p.SetRotation)
	case "src":
		return p.SetImageSource(value)
	case "fit":
		return p.SetImageFit(diagram.ImageFit(value))
	case "radius":
		return float(p.SetBorderRadius)
	case "angle":
		return float(p.SetAngle)
	case "text":
		return p.SetText(value)
	case "font":
		return float(p.SetFontSize)
	case "textcolor":
		return p.SetTextColor(value)
	case "fill":
		return boolean(p.SetFill)
	case "fillcolor":
		return p.SetFillColor(value)
	case "border":
		return boolean(p.SetBorder)
	case "bordercolor":
		return p.SetBorderColor(value)
	case "borderwidth":
		return float(p.SetBorderWidth)
	case "opacity":
		return float(p.SetOpacity)
	case "connect":
		return boolean(p.SetAllowConnections)
	}
	return fmt.Errorf("%q: %w", name, ErrUnknownProperty)
}
