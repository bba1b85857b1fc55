package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"flowpad/editor"

	"github.com/kelseyhightower/envconfig"
)

const rcName = ".flowpadrc"

// Config comes from FLOWPAD_* environment variables first; ~/.flowpadrc
// key=value lines override them.
type Config struct {
	SaveDirectory     string  `envconfig:"SAVE_DIRECTORY"`
	Confirmations     bool    `envconfig:"CONFIRMATIONS" default:"true"`
	Snap              bool    `envconfig:"SNAP" default:"false"`
	GridSize          float64 `envconfig:"GRID_SIZE" default:"20"`
	ScrollSensitivity float64 `envconfig:"SCROLL_SENSITIVITY" default:"0.0005"`
	Theme             string  `envconfig:"THEME" default:"dark"`
	LogFile           string  `envconfig:"LOG_FILE" default:"flowpad.log"`
	LogLevel          string  `envconfig:"LOG_LEVEL" default:"info"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("flowpad", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return &cfg, nil
	}
	file, err := os.Open(filepath.Join(homeDir, rcName))
	if err != nil {
		return &cfg, nil
	}
	defer file.Close()
	cfg.applyRC(file, homeDir)
	return &cfg, nil
}

// applyRC reads key=value lines. Blank lines, # comments, unknown keys and
// values that do not parse are skipped.
func (c *Config) applyRC(r io.Reader, homeDir string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "savedirectory", "save_directory", "savedir":
			c.SaveDirectory = expandPath(value, homeDir)
		case "confirmations", "confirm":
			if b, err := strconv.ParseBool(value); err == nil {
				c.Confirmations = b
			}
		case "snap", "snap_to_grid":
			if b, err := strconv.ParseBool(value); err == nil {
				c.Snap = b
			}
		case "grid_size", "gridsize", "grid":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
				c.GridSize = f
			}
		case "scroll_sensitivity":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
				c.ScrollSensitivity = f
			}
		case "theme":
			c.Theme = strings.ToLower(value)
		case "log_file", "logfile":
			c.LogFile = expandPath(value, homeDir)
		case "log_level":
			c.LogLevel = value
		}
	}
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

// GetSavePath places bare file names in the save directory.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) || strings.ContainsRune(filename, os.PathSeparator) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

func (c *Config) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (c *Config) editorOptions(logger *slog.Logger) editor.Options {
	return editor.Options{
		Grid:              c.GridSize,
		Snap:              c.Snap,
		ScrollSensitivity: c.ScrollSensitivity,
		Logger:            logger,
	}
}
