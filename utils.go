package main

import (
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// listFiles fills the open prompt's file list from the save directory, or
// the working directory when none is configured.
func (m *model) listFiles() {
	dir := m.config.SaveDirectory
	if dir == "" {
		dir = "."
	}
	m.fileList = scanDiagramFiles(dir)
	m.selectedFileIndex = -1
	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
	}
}

// scanDiagramFiles returns the sorted names of the document files in dir.
func scanDiagramFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), fileExtension) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names
}

// cleanClipboardText turns rich clipboard content into plain text with \n
// line endings and no control characters other than tabs.
func cleanClipboardText(text string) string {
	switch {
	case isRTF(text):
		text = textFromRTF(text)
	case isHTML(text):
		text = textFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r >= 32 {
			return r
		}
		return -1
	}, text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf")
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<p"))
}

// rtfSkipped are destinations whose content is not document text.
var rtfSkipped = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "*": true,
}

// textFromRTF keeps the document text of an RTF string. Control words that
// stand for characters are translated; the rest are dropped.
func textFromRTF(rtf string) string {
	var out strings.Builder
	// skipDepth is the group depth at which a skipped destination began.
	depth, skipDepth := 0, -1
	for i := 0; i < len(rtf); i++ {
		c := rtf[i]
		switch c {
		case '{':
			depth++
			continue
		case '}':
			if depth == skipDepth {
				skipDepth = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		case '\\':
		default:
			if skipDepth < 0 {
				out.WriteByte(c)
			}
			continue
		}

		if i+1 >= len(rtf) {
			break
		}
		next := rtf[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			if skipDepth < 0 {
				out.WriteByte(next)
			}
			i++
		case next == '*':
			if skipDepth < 0 {
				skipDepth = depth
			}
			i++
		case next == '\'' && i+3 < len(rtf):
			if v, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil && skipDepth < 0 {
				out.WriteRune(rune(v))
			}
			i += 3
		case isLetter(next):
			j := i + 1
			for j < len(rtf) && isLetter(rtf[j]) {
				j++
			}
			word := rtf[i+1 : j]
			for j < len(rtf) && (rtf[j] == '-' || rtf[j] >= '0' && rtf[j] <= '9') {
				j++
			}
			if j < len(rtf) && rtf[j] == ' ' {
				j++
			}
			i = j - 1
			if rtfSkipped[word] && skipDepth < 0 {
				skipDepth = depth
			}
			if skipDepth >= 0 {
				continue
			}
			switch word {
			case "par", "line":
				out.WriteByte('\n')
			case "tab":
				out.WriteByte('\t')
			}
		default:
			i++
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// textFromHTML strips tags, turning block ends and <br> into line breaks, and
// decodes entities.
func textFromHTML(s string) string {
	var out strings.Builder
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			out.WriteString(s)
			break
		}
		out.WriteString(s[:start])
		end := strings.IndexByte(s[start:], '>')
		if end < 0 {
			break
		}
		tag := strings.ToLower(strings.Trim(s[start+1:start+end], "/ "))
		if name, _, _ := strings.Cut(tag, " "); name == "br" || name == "p" || name == "div" || name == "li" {
			if strings.HasPrefix(s[start+1:], "/") || name == "br" {
				out.WriteByte('\n')
			}
		}
		s = s[start+end+1:]
	}
	return strings.TrimSpace(html.UnescapeString(out.String()))
}
