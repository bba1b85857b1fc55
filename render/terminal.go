package render

import (
	"image"
	"math"
	"strings"

	"flowpad/diagram"
	"flowpad/geometry"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// A terminal cell stands for CellWidth x CellHeight screen pixels. Each cell
// shows two raster pixels stacked as an upper half block.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
	halfBlock  = "▀"
)

type cell struct {
	ch     string
	fg, bg string
}

// Terminal paints scenes as lipgloss styled half-block text.
type Terminal struct {
	painter *Painter
}

func NewTerminal() (*Terminal, error) {
	p, err := NewPainter(1/CellWidth, false)
	if err != nil {
		return nil, err
	}
	p.MinLineWidth = 1
	return &Terminal{painter: p}, nil
}

func hexAt(img image.Image, x, y int) string {
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		return "#000000"
	}
	return c.Hex()
}

// cells rasterises sc into a cols x rows grid.
func (t *Terminal) cells(sc *Scene, cols, rows int) [][]cell {
	img := t.painter.Render(sc).Image()
	b := img.Bounds()
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			x, y := c, 2*r
			if x >= b.Dx() || y+1 >= b.Dy() {
				grid[r][c] = cell{ch: " ", fg: "#000000", bg: hexColor(sc.Theme.Background, Dark.Background)}
				continue
			}
			grid[r][c] = cell{ch: halfBlock, fg: hexAt(img, x, y), bg: hexAt(img, x, y+1)}
		}
	}
	for _, item := range sc.Shapes {
		t.overlayLabel(grid, sc, item)
	}
	return grid
}

// labelBlock is a shape label laid out in cells: lines centred on column
// center, starting at row top.
type labelBlock struct {
	lines  []string
	top    int
	center int
	color  string
}

// layoutLabel wraps the label of a shape to the cells its width covers.
// Images still loading show their placeholder text. Rotation is ignored.
func layoutLabel(sc *Scene, item ShapeItem) (labelBlock, bool) {
	s := item.Shape
	text := strings.TrimSpace(s.Label.Text)
	color := s.Label.Color
	switch s.Variant.(type) {
	case *diagram.Checkmark:
		return labelBlock{}, false
	case *diagram.Image:
		if item.Image != nil {
			return labelBlock{}, false
		}
		text, color = "No Image", sc.Theme.PlaceholderText
	}
	width := int(s.Width*sc.Camera.Zoom/CellWidth) - 1
	if text == "" || width < 1 {
		return labelBlock{}, false
	}
	center := sc.Camera.WorldToScreen(s.Center())
	lines := strings.Split(wordwrap.String(text, width), "\n")
	for i, line := range lines {
		lines[i] = truncate.String(strings.TrimSpace(line), uint(width))
	}
	return labelBlock{
		lines:  lines,
		top:    int(math.Floor(center.Y/CellHeight)) - len(lines)/2,
		center: int(math.Floor(center.X / CellWidth)),
		color:  color,
	}, true
}

// each calls fn for every visible rune of the block with its cell position
// and display width.
func (b labelBlock) each(cols, rows int, fn func(col, row int, r rune, w int)) {
	for i, line := range b.lines {
		row := b.top + i
		if row < 0 || row >= rows {
			continue
		}
		col := b.center - runewidth.StringWidth(line)/2
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			if col >= 0 && col+w <= cols {
				fn(col, row, r, w)
			}
			col += w
		}
	}
}

func (t *Terminal) overlayLabel(grid [][]cell, sc *Scene, item ShapeItem) {
	block, ok := layoutLabel(sc, item)
	if !ok || len(grid) == 0 {
		return
	}
	fg := hexColor(block.color, "#ffffff")
	block.each(len(grid[0]), len(grid), func(col, row int, r rune, w int) {
		bg := grid[row][col].fg
		grid[row][col] = cell{ch: string(r), fg: fg, bg: bg}
		if w == 2 {
			grid[row][col+1] = cell{fg: fg, bg: bg}
		}
	})
}

// Render returns cols x rows cells as styled lines joined by newlines.
func (t *Terminal) Render(sc *Scene, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := t.cells(sc, cols, rows)
	var out strings.Builder
	for r, row := range grid {
		if r > 0 {
			out.WriteByte('\n')
		}
		var run strings.Builder
		start := 0
		flush := func(end int) {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(row[start].fg)).
				Background(lipgloss.Color(row[start].bg))
			out.WriteString(style.Render(run.String()))
			run.Reset()
			start = end
		}
		for c, cl := range row {
			if c > start && (cl.fg != row[start].fg || cl.bg != row[start].bg) {
				flush(c)
			}
			run.WriteString(cl.ch)
		}
		flush(len(row))
	}
	return out.String()
}

// CellToScreen maps a terminal cell to the screen pixel at its centre.
func CellToScreen(col, row int) geometry.Point {
	return geometry.Pt((float64(col)+0.5)*CellWidth, (float64(row)+0.5)*CellHeight)
}
