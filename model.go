package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"flowpad/assets"
	"flowpad/diagram"
	"flowpad/editor"
	"flowpad/render"

	tea "github.com/charmbracelet/bubbletea"
)

func newModel(cfg *Config, logger *slog.Logger) (model, error) {
	term, err := render.NewTerminal()
	if err != nil {
		return model{}, fmt.Errorf("load font: %w", err)
	}
	return model{
		editor: editor.New(cfg.editorOptions(logger)),
		loader: assets.NewLoader("."),
		term:   term,
		config: cfg,
		theme:  render.ThemeNamed(cfg.Theme),
		log:    logger,
	}, nil
}

// waitForAsset blocks until the loader settles an image so the program
// redraws once it can show it.
func waitForAsset(l *assets.Loader) tea.Cmd {
	return func() tea.Msg {
		return assetLoadedMsg{source: <-l.Updates()}
	}
}

func (m model) Init() tea.Cmd {
	return waitForAsset(m.loader)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncViewport()
		return m, nil

	case assetLoadedMsg:
		m.log.Debug("image settled", "source", msg.source)
		return m, waitForAsset(m.loader)

	case tea.MouseMsg:
		if m.help || m.mode != ModeNormal {
			return m, nil
		}
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if m.help {
			return m.updateHelp(msg)
		}
		switch m.mode {
		case ModeInput:
			return m.updateInput(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		if m.helpScroll < len(helpLines)-1 {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	}
	return m, nil
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	key := msg.String()
	if m.handleNavigation(key) {
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		if !m.config.Confirmations {
			return m, tea.Quit
		}
		m.confirm(ConfirmQuit)
	case "?":
		m.help = true
	case "esc":
		m.editor.Selection.Clear()
	case "1", "2", "3", "4", "5", "6", "7":
		m.editor.AddShape(diagram.Kinds[key[0]-'1'])
	case "g":
		m.fail(m.editor.Group())
	case "G":
		m.fail(m.editor.Ungroup())
	case "delete", "backspace", "x":
		m.deleteSelection()
	case "#":
		m.editor.SetSnap(!m.editor.Snap())
		if m.editor.Snap() {
			m.successMessage = "Snap on"
		} else {
			m.successMessage = "Snap off"
		}
	case "]":
		m.editor.Panel().RaiseOne()
	case "[":
		m.editor.Panel().LowerOne()
	case "}":
		m.editor.Panel().RaiseToTop()
	case "{":
		m.editor.Panel().LowerToBottom()
	case "e":
		s, ok := m.editor.Panel().Shape()
		if !ok {
			m.fail(editor.ErrNothingSelected)
			break
		}
		m.startPrompt(PromptLabel, s.Label.Text)
	case "l":
		m.fail(m.editor.Panel().ToggleLineType())
	case "c":
		m.copySelection()
	case "p":
		m.paste()
	case "ctrl+a":
		m.editor.SelectAll()
	case "s":
		name := ""
		if m.filename != "" {
			name = filepath.Base(m.filename)
		}
		m.startPrompt(PromptSave, name)
	case "o":
		m.listFiles()
		name := ""
		if m.selectedFileIndex >= 0 {
			name = m.fileList[m.selectedFileIndex]
		}
		m.startPrompt(PromptOpen, name)
	case "S":
		name := "flowpad.png"
		if m.filename != "" {
			base := filepath.Base(m.filename)
			name = strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
		}
		m.startPrompt(PromptExport, name)
	case "i":
		s, ok := m.editor.Panel().Shape()
		if !ok {
			m.fail(editor.ErrNothingSelected)
			break
		}
		v, ok := s.Variant.(*diagram.Image)
		if !ok {
			m.fail(editor.ErrNotApplicable)
			break
		}
		m.startPrompt(PromptImage, v.Source)
	case ":":
		m.startPrompt(PromptProperty, "")
	case "P":
		m.showPanel = !m.showPanel
		m.syncViewport()
	case "t":
		if m.theme.Name == render.Dark.Name {
			m.theme = render.Light
		} else {
			m.theme = render.Dark
		}
	case "n":
		if !m.config.Confirmations {
			m.newDocument()
			break
		}
		m.confirm(ConfirmNewDocument)
	}
	return m, nil
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch msg.String() {
	case "y", "Y":
	default:
		m.pendingPath = ""
		return m, nil
	}

	switch m.confirmAction {
	case ConfirmDeleteGroup:
		n := m.editor.DeleteSelected(func(string) bool { return true })
		m.successMessage = fmt.Sprintf("Deleted %d shapes", n)
	case ConfirmQuit:
		return m, tea.Quit
	case ConfirmNewDocument:
		m.newDocument()
	case ConfirmOverwriteFile:
		if err := m.saveTo(m.pendingPath); err != nil {
			m.fail(err)
		}
		m.pendingPath = ""
	}
	return m, nil
}

func (m *model) confirm(action ConfirmAction) {
	m.mode = ModeConfirm
	m.confirmAction = action
}

// fail shows err in the status line. A nil err is ignored.
func (m *model) fail(err error) {
	if err == nil {
		return
	}
	m.log.Debug("command failed", "error", err)
	m.errorMessage = err.Error()
}

func (m *model) newDocument() {
	m.editor.NewDocument()
	m.filename = ""
}

func (m *model) deleteSelection() {
	if _, ok := m.editor.DeletePrompt(); ok {
		m.confirm(ConfirmDeleteGroup)
		return
	}
	m.editor.DeleteSelected(nil)
}

func (m *model) copySelection() {
	data, err := m.editor.Copy()
	if err != nil {
		m.fail(err)
		return
	}
	if err := writeClipboardText(string(data)); err != nil {
		m.fail(fmt.Errorf("copy: %w", err))
		return
	}
	m.successMessage = fmt.Sprintf("Copied %d shapes", len(m.editor.Selection.Shapes()))
}

// paste inserts copied shapes, or drops plain clipboard text into a new text
// shape.
func (m *model) paste() {
	text, err := readClipboardText()
	if err != nil {
		m.fail(fmt.Errorf("paste: %w", err))
		return
	}
	err = m.editor.Paste([]byte(text))
	if errors.Is(err, diagram.ErrNotFragment) {
		text = cleanClipboardText(text)
		if strings.TrimSpace(text) == "" {
			m.errorMessage = "Clipboard is empty"
			return
		}
		m.editor.AddShape(diagram.KindText)
		err = m.editor.Panel().SetText(text)
	}
	m.fail(err)
}

// openFile replaces the document with the one stored under name.
func (m *model) openFile(name string) error {
	path := m.config.GetSavePath(withExtension(name))
	if err := m.editor.Load(path); err != nil {
		return err
	}
	m.filename = path
	m.successMessage = "Opened " + path
	return nil
}

func (m *model) saveTo(path string) error {
	if err := m.editor.Save(path); err != nil {
		return err
	}
	m.filename = path
	m.successMessage = "Saved " + path
	return nil
}

func (m *model) exportTo(name string) error {
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	path := m.config.GetSavePath(name)
	if err := exportDocument(context.Background(), m.editor.Doc, m.loader, m.theme, path); err != nil {
		return err
	}
	m.log.Info("exported", "path", path)
	m.successMessage = "Exported " + path
	return nil
}

func withExtension(name string) string {
	if filepath.Ext(name) == "" {
		return name + fileExtension
	}
	return name
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
