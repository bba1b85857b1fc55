package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"flowpad/diagram"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Screen space sizes of the decorations, in pixels.
const (
	handleSize       = 8.0
	rotationKnob     = 4.0
	portRadius       = 5.0
	waypointSize     = 6.0
	glowWidth        = 6.0
	placeholderLabel = 14.0
	minGridSpacing   = 4.0
	labelLineHeight  = 1.2
	labelMargin      = 10.0
)

// Painter rasterises scenes with gg.
type Painter struct {
	// Scale converts screen pixels to raster pixels.
	Scale float64
	// MinLineWidth keeps thin strokes visible on coarse rasters.
	MinLineWidth float64
	// Labels turns shape text on. The terminal draws text as cells instead.
	Labels bool

	font  *truetype.Font
	faces map[float64]font.Face
}

func NewPainter(scale float64, labels bool) (*Painter, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	if scale <= 0 {
		scale = 1
	}
	return &Painter{
		Scale:  scale,
		Labels: labels,
		font:   f,
		faces:  make(map[float64]font.Face),
	}, nil
}

// face returns the monospace face at size raster pixels, rounded to half a
// pixel so zooming does not grow the cache without bound.
func (p *Painter) face(size float64) font.Face {
	size = math.Max(1, math.Round(size*2)/2)
	if f, ok := p.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(p.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	p.faces[size] = f
	return f
}

func (p *Painter) px(v float64) float64 { return v * p.Scale }

func (p *Painter) lineWidth(raster float64) float64 {
	return math.Max(raster, p.MinLineWidth)
}

// Render draws sc into a new context the size of the viewport.
func (p *Painter) Render(sc *Scene) *gg.Context {
	w := max(1, int(math.Ceil(p.px(sc.Width))))
	h := max(1, int(math.Ceil(p.px(sc.Height))))
	dc := gg.NewContext(w, h)
	dc.SetColor(paint(sc.Theme.Background, 1, Dark.Background))
	dc.Clear()

	zoom := sc.Camera.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	dc.Scale(p.Scale, p.Scale)
	dc.Translate(sc.Camera.Offset.X, sc.Camera.Offset.Y)
	dc.Scale(zoom, zoom)

	p.grid(dc, sc, zoom)
	for _, c := range sc.Connectors {
		p.connector(dc, c, sc.Theme, zoom)
	}
	for _, s := range sc.Shapes {
		p.shape(dc, s, sc.Theme, zoom)
	}
	if sc.Marquee != nil {
		m := *sc.Marquee
		dc.DrawRectangle(m.X, m.Y, m.Width, m.Height)
		dc.SetColor(paint(sc.Theme.Marquee, 0.1, Dark.Marquee))
		dc.FillPreserve()
		dc.SetColor(paint(sc.Theme.Marquee, 0.8, Dark.Marquee))
		dc.SetLineWidth(p.lineWidth(p.px(1)))
		dc.Stroke()
	}
	if len(sc.RubberBand) == 2 {
		a, b := sc.RubberBand[0], sc.RubberBand[1]
		dc.SetColor(paint(sc.Theme.Handle, 1, Dark.Handle))
		dc.SetLineWidth(p.lineWidth(p.px(2)))
		dc.SetDash(p.px(6), p.px(4))
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.Stroke()
		dc.SetDash()
	}
	if sc.Handles != nil {
		p.handles(dc, sc.Handles, sc.Theme, zoom)
	}
	for _, wp := range sc.Waypoints {
		half := waypointSize / zoom / 2
		dc.DrawRectangle(wp.X-half, wp.Y-half, 2*half, 2*half)
		dc.SetColor(paint(sc.Theme.Waypoint, 1, Dark.Waypoint))
		dc.Fill()
	}
	return dc
}

// grid draws the lines crossing the visible area. Grids denser than
// minGridSpacing raster pixels are skipped.
func (p *Painter) grid(dc *gg.Context, sc *Scene, zoom float64) {
	if sc.Grid <= 0 || p.px(sc.Grid*zoom) < minGridSpacing {
		return
	}
	view := sc.Camera.Visible(sc.Width, sc.Height)
	dc.SetColor(paint(sc.Theme.Grid, 1, Dark.Grid))
	dc.SetLineWidth(p.lineWidth(p.px(1)))
	for x := math.Floor(view.X/sc.Grid) * sc.Grid; x < view.X+view.Width; x += sc.Grid {
		dc.DrawLine(x, view.Y, x, view.Y+view.Height)
	}
	for y := math.Floor(view.Y/sc.Grid) * sc.Grid; y < view.Y+view.Height; y += sc.Grid {
		dc.DrawLine(view.X, y, view.X+view.Width, y)
	}
	dc.Stroke()
}

func trace(dc *gg.Context, ops []PathOp) {
	for _, op := range ops {
		switch op.Op {
		case OpMove:
			dc.MoveTo(op.To.X, op.To.Y)
		case OpLine:
			dc.LineTo(op.To.X, op.To.Y)
		case OpQuad:
			dc.QuadraticTo(op.Ctrl.X, op.Ctrl.Y, op.To.X, op.To.Y)
		case OpArc:
			dc.DrawEllipticalArc(op.To.X, op.To.Y, op.Radius.X, op.Radius.Y, op.Start, op.End)
		case OpClose:
			dc.ClosePath()
		}
	}
}

func (p *Painter) shape(dc *gg.Context, item ShapeItem, theme Theme, zoom float64) {
	s := item.Shape
	c := s.Center()
	alpha := s.Style.Opacity
	f := item.Figure

	dc.Push()
	defer dc.Pop()
	if s.Rotation != 0 {
		dc.RotateAbout(s.Rotation, c.X, c.Y)
	}

	if item.Selected {
		trace(dc, f.Ops)
		dc.SetColor(paint(theme.Glow, 0.7*alpha, Dark.Glow))
		dc.SetLineWidth(p.lineWidth(p.px(s.Style.BorderWidth + glowWidth)))
		dc.SetLineCapRound()
		dc.Stroke()
	}

	if _, ok := s.Variant.(*diagram.Image); ok {
		p.image(dc, item, theme, zoom)
		return
	}

	trace(dc, f.Ops)
	if !f.Open && s.Style.Fill {
		dc.SetColor(paint(s.Style.FillColor, alpha, "#4a5568"))
		dc.FillPreserve()
	}
	_, isText := s.Variant.(*diagram.Text)
	if s.Style.Border || f.AlwaysStroke || (isText && item.Selected) {
		width := p.px(s.Style.BorderWidth)
		if f.StrokeWidth > 0 {
			width = p.px(f.StrokeWidth * zoom)
		}
		dc.SetLineWidth(p.lineWidth(width))
		if f.RoundCaps {
			dc.SetLineCapRound()
		} else {
			dc.SetLineCapButt()
		}
		if f.Dashed {
			dc.SetDash(p.px(5), p.px(5))
		}
		dc.SetColor(paint(s.Style.BorderColor, alpha, "#a0aec0"))
		dc.Stroke()
		dc.SetDash()
	}
	dc.ClearPath()

	if _, ok := s.Variant.(*diagram.Checkmark); !ok && p.Labels {
		p.label(dc, s, zoom)
	}
}

// label wraps the text to the shape width and centres the block. Text is
// drawn with a face sized for the raster so it stays sharp at any zoom.
func (p *Painter) label(dc *gg.Context, s *diagram.Shape, zoom float64) {
	text := strings.TrimSpace(s.Label.Text)
	k := zoom * p.Scale
	size := s.Label.FontSize * k
	if text == "" || size < 4 {
		return
	}
	c := s.Center()
	dc.Push()
	defer dc.Pop()
	dc.Translate(c.X, c.Y)
	dc.Scale(1/k, 1/k)
	dc.SetFontFace(p.face(size))
	dc.SetColor(paint(s.Label.Color, s.Style.Opacity, "#ffffff"))

	lines := dc.WordWrap(text, math.Max(1, (s.Width-labelMargin)*k))
	lineHeight := size * labelLineHeight
	top := -float64(len(lines))*lineHeight/2 + lineHeight/2
	for i, line := range lines {
		dc.DrawStringAnchored(strings.TrimSpace(line), 0, top+float64(i)*lineHeight, 0.5, 0.35)
	}
}

// fitImage returns the drawn size of an iw x ih picture in a w x h box.
func fitImage(fit diagram.ImageFit, iw, ih, w, h float64) (float64, float64) {
	switch fit {
	case diagram.FitAspectFit:
		k := math.Min(w/iw, h/ih)
		return iw * k, ih * k
	case diagram.FitAspectFill:
		k := math.Max(w/iw, h/ih)
		return iw * k, ih * k
	case diagram.FitCenter:
		return iw, ih
	}
	return w, h
}

func (p *Painter) image(dc *gg.Context, item ShapeItem, theme Theme, zoom float64) {
	s := item.Shape
	b := s.Bounds()
	c := b.Center()
	alpha := s.Style.Opacity

	if item.Image == nil {
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.SetColor(paint(theme.Placeholder, alpha, Dark.Placeholder))
		dc.FillPreserve()
		dc.SetColor(paint(theme.PlaceholderBorder, alpha, Dark.PlaceholderBorder))
		dc.SetLineWidth(p.lineWidth(p.px(2)))
		dc.SetDash(p.px(5), p.px(5))
		dc.Stroke()
		dc.SetDash()
		if p.Labels {
			k := zoom * p.Scale
			dc.Push()
			dc.Translate(c.X, c.Y)
			dc.Scale(1/k, 1/k)
			dc.SetFontFace(p.face(p.px(placeholderLabel)))
			dc.SetColor(paint(theme.PlaceholderText, alpha, Dark.PlaceholderText))
			dc.DrawStringAnchored("No Image", 0, 0, 0.5, 0.35)
			dc.Pop()
		}
		return
	}

	v := s.Variant.(*diagram.Image)
	bounds := item.Image.Bounds()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	if iw > 0 && ih > 0 {
		dw, dh := fitImage(v.Fit, iw, ih, b.Width, b.Height)
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.Clip()
		dc.Push()
		dc.Translate(c.X-dw/2, c.Y-dh/2)
		dc.Scale(dw/iw, dh/ih)
		dc.DrawImage(faded(item.Image, alpha), -bounds.Min.X, -bounds.Min.Y)
		dc.Pop()
		dc.ResetClip()
	}
	if item.Selected {
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.SetColor(paint(theme.ImageOutline, 1, Dark.ImageOutline))
		dc.SetLineWidth(p.lineWidth(p.px(1)))
		dc.Stroke()
	}
}

func (p *Painter) connector(dc *gg.Context, item ConnectorItem, theme Theme, zoom float64) {
	c := item.Connector
	g := item.Geometry
	if len(g.Points) < 2 {
		return
	}
	col := paint(c.Color, 1, diagram.DefaultConnectorColor)
	width := c.Thickness
	if item.Selected {
		col = paint(theme.SelectedConnector, 1, Dark.SelectedConnector)
		width += 2
	}

	dc.SetColor(col)
	dc.SetLineWidth(p.lineWidth(p.px(width)))
	dc.SetLineCapRound()
	switch c.LineStyle {
	case diagram.LineDashed:
		dc.SetDash(p.px(8), p.px(4))
	case diagram.LineDotted:
		dc.SetDash(p.px(c.Thickness), p.px(c.Thickness*1.5))
	}
	start := g.Points[0]
	dc.MoveTo(start.X, start.Y)
	if g.Curved() {
		for _, q := range g.Quads {
			dc.QuadraticTo(q.Ctrl.X, q.Ctrl.Y, q.To.X, q.To.Y)
		}
	} else {
		for _, pt := range g.Points[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
	}
	dc.Stroke()
	dc.SetDash()

	// Arrowhead
	left, right := g.Arrow.Wings()
	tip := g.Arrow.Tip
	dc.SetLineWidth(p.lineWidth(p.px(ArrowWidth * zoom)))
	dc.DrawLine(tip.X, tip.Y, left.X, left.Y)
	dc.DrawLine(tip.X, tip.Y, right.X, right.Y)
	dc.Stroke()
}

func (p *Painter) handles(dc *gg.Context, h *Handles, theme Theme, zoom float64) {
	blue := paint(theme.Handle, 1, Dark.Handle)
	dc.SetColor(blue)
	dc.SetLineWidth(p.lineWidth(p.px(1)))
	dc.DrawLine(h.TopCenter.X, h.TopCenter.Y, h.Rotation.X, h.Rotation.Y)
	dc.Stroke()
	dc.DrawCircle(h.Rotation.X, h.Rotation.Y, rotationKnob/zoom)
	dc.Fill()

	half := handleSize / zoom / 2
	for _, pt := range h.Resize {
		dc.DrawRectangle(pt.X-half, pt.Y-half, 2*half, 2*half)
	}
	dc.Fill()

	dc.SetColor(paint(theme.Port, 1, Dark.Port))
	for _, pt := range h.Ports {
		dc.DrawCircle(pt.X, pt.Y, portRadius/zoom)
		dc.Fill()
	}
}

// EncodePNG renders sc and writes it as PNG.
func (p *Painter) EncodePNG(w io.Writer, sc *Scene) error {
	return p.Render(sc).EncodePNG(w)
}

// SavePNG renders sc into a PNG file.
func (p *Painter) SavePNG(path string, sc *Scene) error {
	return p.Render(sc).SavePNG(path)
}

// fadedImage scales the alpha of every pixel.
type fadedImage struct {
	image.Image
	alpha float64
}

func faded(img image.Image, alpha float64) image.Image {
	if alpha >= 1 {
		return img
	}
	return fadedImage{Image: img, alpha: math.Max(0, alpha)}
}

func (f fadedImage) ColorModel() color.Model { return color.RGBA64Model }

func (f fadedImage) At(x, y int) color.Color {
	r, g, b, a := f.Image.At(x, y).RGBA()
	k := f.alpha
	return color.RGBA64{
		R: uint16(float64(r) * k),
		G: uint16(float64(g) * k),
		B: uint16(float64(b) * k),
		A: uint16(float64(a) * k),
	}
}
