package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"flowpad/camera"
	"flowpad/diagram"
)

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func sceneOf(w, h float64, shapes ...*diagram.Shape) *Scene {
	sc := &Scene{Camera: camera.New(), Width: w, Height: h, Theme: Dark}
	for _, s := range shapes {
		sc.Shapes = append(sc.Shapes, ShapeItem{Shape: s, Figure: Outline(s)})
	}
	return sc
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#ddd", "#dddddd", true},
		{"#4A5568", "#4a5568", true},
		{"ff0000", "#ff0000", true},
		{"red", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		c, ok := ParseColor(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseColor(%q) ok = %v, expected %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && c.Hex() != tt.want {
			t.Errorf("ParseColor(%q) = %s, expected %s", tt.in, c.Hex(), tt.want)
		}
	}
	if got := paint("nope", 0.5, "#00ff00"); got != (color.NRGBA{G: 255, A: 128}) {
		t.Errorf("Expected the fallback at half alpha, got %v", got)
	}
}

func TestFitImage(t *testing.T) {
	tests := []struct {
		fit  diagram.ImageFit
		w, h float64
	}{
		{diagram.FitFill, 100, 50},
		{diagram.FitAspectFit, 50, 50},
		{diagram.FitAspectFill, 100, 100},
		{diagram.FitCenter, 20, 20},
	}
	for _, tt := range tests {
		w, h := fitImage(tt.fit, 20, 20, 100, 50)
		if w != tt.w || h != tt.h {
			t.Errorf("%s: expected %vx%v, got %vx%v", tt.fit, tt.w, tt.h, w, h)
		}
	}
}

func TestPainterFillsShapes(t *testing.T) {
	p, err := NewPainter(1, false)
	if err != nil {
		t.Fatal(err)
	}
	s := box(diagram.KindRectangle, 20, 20, 100, 60)
	s.Style.FillColor = "#ff0000"
	s.Style.Border = false
	img := p.Render(sceneOf(200, 120, s)).Image()

	if got := img.Bounds().Size(); got != image.Pt(200, 120) {
		t.Fatalf("Expected a 200x120 raster, got %v", got)
	}
	if got := rgbaAt(img, 70, 50); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("Expected red inside the shape, got %v", got)
	}
	if got := rgbaAt(img, 160, 100); got != (color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 255}) {
		t.Errorf("Expected the background outside, got %v", got)
	}
}

func TestPainterImageAndPlaceholder(t *testing.T) {
	p, _ := NewPainter(1, true)
	pic := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range pic.Pix {
		if i%4 == 1 || i%4 == 3 {
			pic.Pix[i] = 255
		}
	}
	loaded := box(diagram.KindImage, 0, 0, 80, 80)
	pending := box(diagram.KindImage, 100, 0, 80, 80)
	sc := sceneOf(200, 100, loaded, pending)
	sc.Shapes[0].Image = pic

	img := p.Render(sc).Image()
	if got := rgbaAt(img, 40, 40); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("Expected the stretched picture, got %v", got)
	}
	if got := rgbaAt(img, 110, 70); got != (color.RGBA{R: 0x4a, G: 0x55, B: 0x68, A: 255}) {
		t.Errorf("Expected the dark placeholder, got %v", got)
	}
}

func TestEncodePNG(t *testing.T) {
	p, _ := NewPainter(1, true)
	s := box(diagram.KindEllipse, 10, 10, 60, 40)
	var buf bytes.Buffer
	if err := p.EncodePNG(&buf, sceneOf(80, 60, s)); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 60 {
		t.Errorf("unexpected PNG size %v", img.Bounds())
	}
}

func TestTerminalCells(t *testing.T) {
	term, err := NewTerminal()
	if err != nil {
		t.Fatal(err)
	}
	s := box(diagram.KindRectangle, 5, 40, 150, 80)
	s.Label.Text = "Hi"
	sc := sceneOf(40*CellWidth, 10*CellHeight, s)

	grid := term.cells(sc, 40, 10)
	if len(grid) != 10 || len(grid[0]) != 40 {
		t.Fatalf("Expected a 40x10 grid, got %dx%d", len(grid[0]), len(grid))
	}
	if grid[5][9].ch != "H" || grid[5][10].ch != "i" {
		t.Errorf("Expected the label at the shape centre, got %q%q", grid[5][9].ch, grid[5][10].ch)
	}
	if grid[0][0].ch != halfBlock {
		t.Errorf("Expected half blocks elsewhere, got %q", grid[0][0].ch)
	}
	if grid[5][9].fg != "#ffffff" {
		t.Errorf("label should use its text colour, got %s", grid[5][9].fg)
	}

	out := term.Render(sc, 40, 10)
	if n := strings.Count(out, "\n"); n != 9 {
		t.Errorf("Expected 10 lines, got %d", n+1)
	}
	if !strings.Contains(out, "H") {
		t.Error("rendered output should contain the label")
	}
}

func TestSketch(t *testing.T) {
	s := box(diagram.KindRectangle, 0, 0, 160, 64)
	s.Variant.(*diagram.Rectangle).BorderRadius = 0
	s.Label.Text = "Go"
	lines := Sketch(sceneOf(30*CellWidth, 8*CellHeight, s), 30, 8)
	if len(lines) != 8 {
		t.Fatalf("Expected 8 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "-----") {
		t.Errorf("Expected the top edge on the first line, got %q", lines[0])
	}
	if lines[2][0] != '|' || lines[2][20] != '|' {
		t.Errorf("Expected both side edges on line 2, got %q", lines[2])
	}
	if !strings.Contains(lines[2], "Go") {
		t.Errorf("Expected the label on the middle line, got %q", lines[2])
	}
	if got := arrowRune(math.Pi / 2); got != 'v' {
		t.Errorf("Expected a down arrow, got %q", got)
	}
}
