package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/interact-engine/internal/config"
	"github.com/jwebster45206/interact-engine/internal/logger"
	"github.com/jwebster45206/interact-engine/internal/storage"
)

func main() {
	cfg := config.Load()

	// The TUI owns stdout, so logs go to a file when LOG_FILE is set and
	// are discarded otherwise.
	var logWriter io.Writer = io.Discard
	if path := os.Getenv("LOG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer func() {
				_ = f.Close() // Ignore error in defer
			}()
			logWriter = f
		}
	}
	log := logger.SetupWriter(cfg, logWriter)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataPath, log)
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	// Session persistence is optional: the console runs fine without Redis,
	// it just starts fresh every time.
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	persist := true
	if err := store.WaitForConnection(pingCtx); err != nil {
		logger.WithError(log, err).Warn("Redis unreachable, sessions will not persist")
		persist = false
	}
	cancel()

	p := tea.NewProgram(NewConsoleUI(cfg, store, persist),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
