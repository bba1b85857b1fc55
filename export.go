package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flowpad/assets"
	"flowpad/diagram"
	"flowpad/render"
)

const preloadTimeout = 10 * time.Second

var errEmptyDocument = errors.New("nothing to export")

// exportDocument writes the whole document to path: a PNG raster, or an ASCII
// sketch when path ends in .txt. Images are awaited first; the ones that fail
// export as placeholders.
func exportDocument(ctx context.Context, doc *diagram.Document, loader *assets.Loader, theme render.Theme, path string) error {
	ctx, cancel := context.WithTimeout(ctx, preloadTimeout)
	defer cancel()
	if err := render.Preload(ctx, doc, loader); err != nil {
		slog.Warn("images missing from export", "error", err)
	}

	sc, ok := render.DocumentScene(doc, loader, theme)
	if !ok {
		return errEmptyDocument
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return exportPNG(sc, path)
	case ".txt":
		return exportTXT(sc, path)
	default:
		return fmt.Errorf("export %s: unsupported format", path)
	}
}

func exportPNG(sc *render.Scene, path string) error {
	p, err := render.NewPainter(1, true)
	if err != nil {
		return err
	}
	if err := p.SavePNG(path, sc); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func exportTXT(sc *render.Scene, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer file.Close()

	cols := int(math.Ceil(sc.Width / render.CellWidth))
	rows := int(math.Ceil(sc.Height / render.CellHeight))
	for _, line := range render.Sketch(sc, cols, rows) {
		fmt.Fprintln(file, line)
	}
	return nil
}
