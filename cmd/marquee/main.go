package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekaraca/marquee/internal/api"
	"github.com/ekaraca/marquee/internal/config"
	"github.com/ekaraca/marquee/internal/logging"
	"github.com/ekaraca/marquee/internal/ui"
)

func main() {
	// Initialize logging
	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	cfg := config.Load()
	logging.Info("config loaded", "server", cfg.Server.BaseURL)

	client := api.New(cfg.Server.BaseURL, api.Options{
		Timeout:       cfg.Timeout(),
		RatePerSecond: cfg.Server.RatePerSecond,
		RateBurst:     cfg.Server.RateBurst,
	})

	app := ui.NewApp(client, cfg)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
