// Command carmate is a terminal client for the CarMate admin backend. It
// keeps its session in a file and lists collections through the same
// pipeline as the dashboard.
package main

import (
	"log/slog"
	"os"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.LoadClientConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
