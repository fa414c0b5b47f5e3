package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmarinov/evlog/pkg/logger"
	"github.com/dmarinov/evlog/pkg/watcher"
)

// watchCommand re-renders the summary whenever the ledger file changes.
type watchCommand struct {
	format     string
	configPath string
}

// Execute runs the watch command.
//
// The database is opened only for the duration of each render. BoltDB
// takes an exclusive file lock, so holding the store open here would
// block every other evlog invocation against the same ledger.
func (c *watchCommand) Execute() error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	w, err := watcher.New(watcher.Config{
		Path: cfg.Storage.DBPath,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			log.Error("failed to close watcher", "error", closeErr)
		}
	}()

	// Initial render creates the database if it does not exist yet, so
	// the watch on its directory always has a file to observe.
	if err := c.render(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Watching for changes (Ctrl+C to stop)...")

	for {
		select {
		case <-sigCh:
			fmt.Println("\nStopped")
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			fmt.Printf("\nLedger changed at %s\n\n", event.Timestamp.Format(time.Kitchen))
			if err := c.render(); err != nil {
				log.Error("failed to render summary", "error", err)
			}
		case watchErr, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.Error("watch error", "error", watchErr)
		}
	}
}

// render opens the ledger, prints the summary and closes it again.
func (c *watchCommand) render() error {
	ctx := context.Background()

	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	return a.formatter(c.format, false).FormatSummary(os.Stdout, a.ledger.Summary())
}
