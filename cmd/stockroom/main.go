package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tinytelemetry/stockroom/internal/inventory"
	"github.com/tinytelemetry/stockroom/internal/session"
	"github.com/tinytelemetry/stockroom/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var serverURL string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/stockroom/config.yml)")
	flag.StringVar(&serverURL, "server", "", "override the inventory service URL")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Stockroom - Inventory Client\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openLogFile points the standard logger at path so diagnostics do not
// corrupt the terminal UI.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f, nil
}

func runTUI(cfg cliConfig) error {
	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v (logging disabled)\n", cfg.LogFile, err)
		log.SetOutput(io.Discard)
	} else {
		defer logFile.Close()
	}
	log.Printf("stockroom: starting %s against %s", version, cfg.ServerURL)

	client := inventory.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	hosts := session.NewHostCache(client)

	alerts := tui.DefaultAlertConfig()
	alerts.AnimationDuration = cfg.AnimationDuration
	alerts.AnimationFrame = cfg.AnimationFrame
	alerts.AnchorMargin = cfg.AnchorMargin

	page := tui.NewProductsPage(client, hosts, tui.PageConfig{
		AlertTimeout:   cfg.AlertTimeout,
		RowsPerPage:    cfg.RowsPerPage,
		RequestTimeout: cfg.RequestTimeout,
		Alerts:         alerts,
	})
	app := tui.NewApp(page)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

