package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"flowpad/assets"
	"flowpad/diagram"
	"flowpad/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	themeFlag string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:          "flowpad [file]",
	Short:        "Draw flowcharts in the terminal",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runEditor,
}

var exportCmd = &cobra.Command{
	Use:   "export <file> <out>",
	Short: "Export a document as PNG, or as ASCII when out ends in .txt",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarise a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&themeFlag, "theme", "t", "", "colour theme: dark or light")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.AddCommand(exportCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupConfig loads the configuration and applies the command line flags.
func setupConfig() (*Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if themeFlag != "" {
		cfg.Theme = themeFlag
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := setupConfig()
	if err != nil {
		return err
	}

	// stdout belongs to the UI.
	f, err := tea.LogToFile(cfg.LogFile, "flowpad")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)

	m, err := newModel(cfg, logger)
	if err != nil {
		return err
	}
	defer m.loader.Close()

	if len(args) == 1 {
		if err := m.openFile(args[0]); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			m.filename = cfg.GetSavePath(withExtension(args[0]))
			m.successMessage = "New file " + m.filename
		}
	}

	logger.Info("starting", "file", m.filename, "theme", m.theme.Name)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := setupConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()})))

	doc, _, err := diagram.LoadFile(args[0])
	if err != nil {
		return err
	}
	loader := assets.NewLoader(".")
	defer loader.Close()

	if err := exportDocument(cmd.Context(), doc, loader, render.ThemeNamed(cfg.Theme), args[1]); err != nil {
		return err
	}
	slog.Info("exported", "from", args[0], "to", args[1])
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, cam, err := diagram.LoadFile(args[0])
	if err != nil {
		return err
	}

	counts := map[diagram.Kind]int{}
	for _, s := range doc.Shapes() {
		counts[s.Kind()]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, args[0])
	fmt.Fprintf(out, "  shapes:     %d\n", len(doc.Shapes()))
	for _, k := range append(slices.Clone(diagram.Kinds), diagram.KindGroup) {
		if counts[k] > 0 {
			fmt.Fprintf(out, "    %-10s %d\n", k, counts[k])
		}
	}
	fmt.Fprintf(out, "  connectors: %d\n", len(doc.Connectors()))
	if b, ok := doc.Bounds(); ok {
		fmt.Fprintf(out, "  bounds:     %.0f,%.0f %.0fx%.0f\n", b.X, b.Y, b.Width, b.Height)
	}
	fmt.Fprintf(out, "  camera:     offset %.0f,%.0f zoom %.2f\n", cam.Offset.X, cam.Offset.Y, cam.Zoom)
	return nil
}
