package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"flowpad/editor"
	"flowpad/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var (
	modeStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#007bff"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc3545"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#28a745"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#718096"))
	panelStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			PaddingLeft(1)
)

var helpLines = []string{
	"flowpad Help",
	"============",
	"",
	"Mouse:",
	"------",
	"  Click            Select a shape or connector (clears the rest)",
	"  Drag shape       Move it, with its group's children",
	"  Drag empty space Marquee select",
	"  Alt+drag         Pan the view",
	"  Wheel            Zoom about the pointer",
	"  Drag a port      Connect to another shape's port",
	"  Drag a handle    Resize (corners keep the aspect), rotate, move an endpoint",
	"  Double-click     Add a waypoint on a connector, or remove one",
	"",
	"Navigation:",
	"-----------",
	"  ←/↓/↑/→          Pan the view",
	"  Shift+arrows     Pan 2x faster",
	"  +/-              Zoom in/out",
	"  0                Reset the view",
	"",
	"Shapes:",
	"-------",
	"  1-7              Add rectangle, diamond, ellipse, pie, text, image, checkmark",
	"  e                Edit the label of the selected shape (Ctrl+N for a new line)",
	"  i                Set the source of the selected image",
	"  g / G            Group the selection / ungroup the selected group",
	"  Delete/x         Delete the selection",
	"  ] [ } {          Raise, lower, bring to front, send to back",
	"  c / p            Copy / paste through the system clipboard",
	"  Ctrl+A           Select all",
	"  #                Toggle snap to grid",
	"",
	"Connectors:",
	"-----------",
	"  l                Toggle straight/curved on the selected connector",
	"",
	"Properties:",
	"-----------",
	"  P                Show the property panel",
	"  :                Set a property, e.g. fillcolor=#ff0000",
	"",
	"File Operations:",
	"----------------",
	"  s                Save",
	"  o                Open (↑/↓ to pick a file)",
	"  S                Export as PNG, or TXT when the name ends in .txt",
	"  n                New document",
	"",
	"General:",
	"  t                Toggle dark/light theme",
	"  Esc              Clear the selection",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.help {
		return m.helpView()
	}

	cols, rows := m.canvasSize()
	sc := render.Build(m.editor, m.loader, render.Options{Grid: true, Theme: m.theme})
	view := m.term.Render(sc, cols, rows)
	if m.showPanel {
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, m.panelView(rows))
	}
	return view + "\n" + m.statusLine()
}

func (m model) modeString() string {
	switch m.mode {
	case ModeInput:
		return "INPUT"
	case ModeConfirm:
		return "CONFIRM"
	}
	if st := m.editor.Session.State; st != editor.Idle {
		return strings.ToUpper(st.String())
	}
	return "NORMAL"
}

func (m model) statusLine() string {
	var parts []string
	switch m.mode {
	case ModeInput:
		parts = append(parts, fmt.Sprintf("%s: %s", m.prompt, m.inputDisplay()))
		switch m.prompt {
		case PromptOpen:
			parts = append(parts, "↑/↓=pick file, Enter=confirm, Esc=cancel")
		case PromptLabel:
			parts = append(parts, "Ctrl+N=newline, Enter=confirm, Esc=cancel")
		default:
			parts = append(parts, "Enter=confirm, Esc=cancel")
		}
	case ModeConfirm:
		parts = append(parts, m.confirmMessage())
	default:
		parts = append(parts, fmt.Sprintf("Zoom: %d%%", int(math.Round(m.editor.Camera.Zoom*100))))
		if sel := m.selectionSummary(); sel != "" {
			parts = append(parts, sel)
		}
		if m.editor.Snap() {
			parts = append(parts, "Snap")
		}
		if m.filename != "" {
			parts = append(parts, filepath.Base(m.filename))
		}
	}

	switch {
	case m.errorMessage != "":
		parts = append(parts, errorStyle.Render("ERROR: "+m.errorMessage))
	case m.successMessage != "":
		parts = append(parts, successStyle.Render(m.successMessage))
	case m.mode == ModeNormal:
		parts = append(parts, dimStyle.Render("? for help | q to quit"))
	}

	line := modeStyle.Render(m.modeString()) + " " + strings.Join(parts, " | ")
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDeleteGroup:
		return editor.DeleteGroupPrompt + " (y/n)"
	case ConfirmQuit:
		return "Quit flowpad? (y/n)"
	case ConfirmNewDocument:
		return "Create new document? Unsaved changes will be lost. (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
	}
	return "(y/n)"
}

// inputDisplay renders the input line with a block cursor. Line breaks show
// as ⏎.
func (m model) inputDisplay() string {
	runes := []rune(m.input)
	cursor := min(m.inputCursor, len(runes))
	s := string(runes[:cursor]) + "█" + string(runes[cursor:])
	return strings.ReplaceAll(s, "\n", "⏎")
}

func (m model) selectionSummary() string {
	shapes := len(m.editor.Selection.Shapes())
	conns := len(m.editor.Selection.Connectors())
	switch {
	case shapes == 1:
		if s, ok := m.editor.Panel().Shape(); ok {
			return "Selected: " + string(s.Kind())
		}
		return "Selected: 1 shape"
	case shapes > 1:
		return fmt.Sprintf("Selected: %d shapes", shapes)
	case conns == 1:
		return "Selected: connector"
	case conns > 1:
		return fmt.Sprintf("Selected: %d connectors", conns)
	}
	return ""
}

// panelView lists the properties of the selection in a column to the right
// of the canvas.
func (m model) panelView(rows int) string {
	const nameWidth = 12
	valueWidth := uint(panelWidth - nameWidth - 2)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Properties"))
	fields := m.editor.Panel().Fields()
	if len(fields) == 0 {
		b.WriteString("\n" + dimStyle.Render("nothing selected"))
	}
	for _, f := range fields {
		value := strings.ReplaceAll(f.Value, "\n", "⏎")
		value = truncate.StringWithTail(value, valueWidth, "…")
		fmt.Fprintf(&b, "\n%s%s", dimStyle.Render(fmt.Sprintf("%-*s", nameWidth, f.Name)), value)
	}
	b.WriteString("\n\n" + dimStyle.Render(": name=value"))

	return panelStyle.
		Width(panelWidth - 1).
		Height(rows).
		MaxHeight(rows).
		Render(b.String())
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)

	start := m.helpScroll
	if start > len(helpLines)-visibleHeight {
		start = max(len(helpLines)-visibleHeight, 0)
	}
	end := min(start+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[start:end], "\n")
	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		start+1, end, len(helpLines))
	return result + "\n" + status
}
