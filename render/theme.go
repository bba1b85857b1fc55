package render

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme is the colour set for everything the document itself does not
// colour: background, grid, handles, placeholders.
type Theme struct {
	Name              string
	Background        string
	Grid              string
	Handle            string
	Port              string
	Waypoint          string
	SelectedConnector string
	Glow              string
	ImageOutline      string
	Marquee           string
	Placeholder       string
	PlaceholderBorder string
	PlaceholderText   string
}

var Dark = Theme{
	Name:              "dark",
	Background:        "#1f2937",
	Grid:              "#374151",
	Handle:            "#007bff",
	Port:              "#28a745",
	Waypoint:          "#ffc107",
	SelectedConnector: "#dc3545",
	Glow:              "#007bff",
	ImageOutline:      "#3b82f6",
	Marquee:           "#3498db",
	Placeholder:       "#4a5568",
	PlaceholderBorder: "#cbd5e0",
	PlaceholderText:   "#718096",
}

var Light = Theme{
	Name:              "light",
	Background:        "#f9fafb",
	Grid:              "#e5e7eb",
	Handle:            "#007bff",
	Port:              "#28a745",
	Waypoint:          "#ffc107",
	SelectedConnector: "#dc3545",
	Glow:              "#007bff",
	ImageOutline:      "#3b82f6",
	Marquee:           "#3498db",
	Placeholder:       "#e2e8f0",
	PlaceholderBorder: "#cbd5e0",
	PlaceholderText:   "#718096",
}

// ThemeNamed returns the light theme for "light" and the dark theme for
// anything else.
func ThemeNamed(name string) Theme {
	if strings.EqualFold(strings.TrimSpace(name), Light.Name) {
		return Light
	}
	return Dark
}

// ParseColor reads "#rgb" or "#rrggbb" colours.
func ParseColor(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// paint converts a document colour to an NRGBA with the given alpha. Colours
// that do not parse use fallback.
func paint(s string, alpha float64, fallback string) color.NRGBA {
	c, ok := ParseColor(s)
	if !ok {
		c, _ = ParseColor(fallback)
	}
	r, g, b := c.RGB255()
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

// hexColor normalises a document colour to "#rrggbb".
func hexColor(s, fallback string) string {
	c, ok := ParseColor(s)
	if !ok {
		c, _ = ParseColor(fallback)
	}
	return c.Hex()
}
