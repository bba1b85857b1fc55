package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeInput
	ModeConfirm
)

// Prompt is what the input line is collecting.
type Prompt int

const (
	PromptLabel Prompt = iota
	PromptSave
	PromptOpen
	PromptExport
	PromptImage
	PromptProperty
)

type ConfirmAction int

const (
	ConfirmDeleteGroup ConfirmAction = iota
	ConfirmQuit
	ConfirmNewDocument
	ConfirmOverwriteFile
)

const (
	// panStep is the keyboard pan distance in screen pixels; shift doubles it.
	panStep           = 64.0
	zoomStep          = 1.25
	doubleClickWindow = 400 * time.Millisecond
	panelWidth        = 30
	fileExtension     = ".json"
)
