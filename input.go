package main

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var errNeedsAssignment = errors.New("expected name=value")

func (p Prompt) String() string {
	switch p {
	case PromptLabel:
		return "Label"
	case PromptSave:
		return "Save as"
	case PromptOpen:
		return "Open"
	case PromptExport:
		return "Export to"
	case PromptImage:
		return "Image source"
	case PromptProperty:
		return "Set"
	default:
		return "Input"
	}
}

func (m *model) startPrompt(p Prompt, initial string) {
	m.mode = ModeInput
	m.prompt = p
	m.input = initial
	m.inputCursor = len([]rune(initial))
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	runes := []rune(m.input)
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input = ""
		m.errorMessage = ""
		return m, nil
	case tea.KeyEnter:
		m.submitInput()
	case tea.KeyLeft:
		if m.inputCursor > 0 {
			m.inputCursor--
		}
	case tea.KeyRight:
		if m.inputCursor < len(runes) {
			m.inputCursor++
		}
	case tea.KeyHome:
		m.inputCursor = 0
	case tea.KeyEnd:
		m.inputCursor = len(runes)
	case tea.KeyBackspace:
		if m.inputCursor > 0 {
			m.input = string(runes[:m.inputCursor-1]) + string(runes[m.inputCursor:])
			m.inputCursor--
		}
	case tea.KeyDelete:
		if m.inputCursor < len(runes) {
			m.input = string(runes[:m.inputCursor]) + string(runes[m.inputCursor+1:])
		}
	case tea.KeyUp:
		m.cycleFile(-1)
	case tea.KeyDown:
		m.cycleFile(1)
	case tea.KeyCtrlN:
		if m.prompt == PromptLabel {
			m.insertInput("\n")
		}
	case tea.KeySpace:
		m.insertInput(" ")
	case tea.KeyRunes:
		m.insertInput(string(msg.Runes))
	}
	return m, nil
}

func (m *model) insertInput(s string) {
	runes := []rune(m.input)
	m.input = string(runes[:m.inputCursor]) + s + string(runes[m.inputCursor:])
	m.inputCursor += len([]rune(s))
}

// cycleFile steps through the file list of the open prompt, wrapping at
// both ends.
func (m *model) cycleFile(step int) {
	if m.prompt != PromptOpen || len(m.fileList) == 0 {
		return
	}
	n := len(m.fileList)
	m.selectedFileIndex = ((m.selectedFileIndex+step)%n + n) % n
	m.input = m.fileList[m.selectedFileIndex]
	m.inputCursor = len([]rune(m.input))
}

// submitInput applies the prompt. File prompts stay open on error so the
// name can be corrected.
func (m *model) submitInput() {
	value := strings.TrimSpace(m.input)
	m.mode = ModeNormal
	m.errorMessage = ""

	retry := func(err error) {
		m.mode = ModeInput
		m.errorMessage = err.Error()
	}

	switch m.prompt {
	case PromptLabel:
		m.fail(m.editor.Panel().SetText(m.input))
	case PromptSave:
		if value == "" {
			retry(errors.New("please enter a filename"))
			return
		}
		path := m.config.GetSavePath(withExtension(value))
		if path != m.filename && fileExists(path) && m.config.Confirmations {
			m.pendingPath = path
			m.confirm(ConfirmOverwriteFile)
			return
		}
		if err := m.saveTo(path); err != nil {
			retry(err)
		}
	case PromptOpen:
		if value == "" {
			retry(errors.New("please enter a filename"))
			return
		}
		if err := m.openFile(value); err != nil {
			retry(err)
		}
	case PromptExport:
		if value == "" {
			retry(errors.New("please enter a filename"))
			return
		}
		if err := m.exportTo(value); err != nil {
			retry(err)
		}
	case PromptImage:
		m.fail(m.editor.Panel().SetImageSource(value))
	case PromptProperty:
		name, v, ok := strings.Cut(value, "=")
		if !ok {
			m.fail(errNeedsAssignment)
			return
		}
		m.fail(m.editor.Panel().Set(name, v))
	}
	if m.mode == ModeNormal {
		m.input = ""
	}
}
