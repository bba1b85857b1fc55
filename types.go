package main

import (
	"log/slog"
	"time"

	"flowpad/assets"
	"flowpad/editor"
	"flowpad/render"
)

type model struct {
	width  int
	height int

	editor *editor.Editor
	loader *assets.Loader
	term   *render.Terminal
	config *Config
	theme  render.Theme
	log    *slog.Logger

	filename string

	mode       Mode
	help       bool
	helpScroll int
	showPanel  bool

	prompt            Prompt
	input             string
	inputCursor       int
	fileList          []string
	selectedFileIndex int

	confirmAction  ConfirmAction
	pendingPath    string
	errorMessage   string
	successMessage string

	// Mouse tracking: the left button state and the previous press for
	// double-click detection.
	pressed     bool
	lastPress   time.Time
	lastCol     int
	lastRow     int
	doubleClick bool
}

// assetLoadedMsg reports that an image finished loading.
type assetLoadedMsg struct {
	source string
}
