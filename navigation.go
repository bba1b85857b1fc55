package main

import (
	"time"

	"flowpad/geometry"
	"flowpad/render"

	tea "github.com/charmbracelet/bubbletea"
)

// canvasSize is the number of cells the drawing area covers: the full
// terminal minus the status line and, when shown, the property panel.
func (m *model) canvasSize() (int, int) {
	cols := m.width
	if m.showPanel {
		cols -= panelWidth
	}
	rows := m.height - 1
	return max(cols, 1), max(rows, 1)
}

// syncViewport tells the editor how many screen pixels the canvas spans.
func (m *model) syncViewport() {
	cols, rows := m.canvasSize()
	m.editor.SetViewport(float64(cols)*render.CellWidth, float64(rows)*render.CellHeight)
}

// handleNavigation pans with the arrow keys (shift for double speed) and
// zooms about the viewport centre. It reports whether key was handled.
func (m *model) handleNavigation(key string) bool {
	step := panStep
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down":
		step *= 2
	}
	switch key {
	case "left", "shift+left":
		m.editor.Pan(geometry.Pt(step, 0))
	case "right", "shift+right":
		m.editor.Pan(geometry.Pt(-step, 0))
	case "up", "shift+up":
		m.editor.Pan(geometry.Pt(0, step))
	case "down", "shift+down":
		m.editor.Pan(geometry.Pt(0, -step))
	case "+", "=":
		m.editor.ZoomBy(zoomStep)
	case "-", "_":
		m.editor.ZoomBy(1 / zoomStep)
	case "0":
		m.editor.ResetView()
	default:
		return false
	}
	return true
}

// handleMouse maps terminal mouse events to pointer events. A cell stands
// for the screen pixel at its centre; Alt turns a press into a pan.
func (m *model) handleMouse(msg tea.MouseMsg) {
	cols, rows := m.canvasSize()
	col, row := min(msg.X, cols-1), min(msg.Y, rows-1)
	inside := msg.X < cols && msg.Y < rows
	screen := render.CellToScreen(col, row)

	switch msg.Type {
	case tea.MouseWheelUp:
		if inside {
			m.editor.Wheel(screen, -100)
		}
	case tea.MouseWheelDown:
		if inside {
			m.editor.Wheel(screen, 100)
		}
	case tea.MouseLeft:
		if m.pressed {
			// Some terminals report drags as repeated presses.
			m.editor.PointerMove(screen)
			return
		}
		if !inside {
			return
		}
		now := time.Now()
		m.doubleClick = now.Sub(m.lastPress) <= doubleClickWindow && col == m.lastCol && row == m.lastRow
		m.lastPress, m.lastCol, m.lastRow = now, col, row
		m.pressed = true
		m.editor.PointerDown(screen, msg.Alt)
	case tea.MouseMotion:
		if m.pressed {
			m.editor.PointerMove(screen)
		}
	case tea.MouseRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		m.editor.PointerUp(screen)
		if m.doubleClick {
			m.editor.DoubleClick(screen)
			m.doubleClick = false
			m.lastPress = time.Time{}
		}
	}
}
