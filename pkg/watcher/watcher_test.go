package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmarinov/evlog/pkg/logger"
)

func TestNew(t *testing.T) {
	w, err := New(Config{Path: filepath.Join(t.TempDir(), "ledger.db")}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w == nil {
		t.Fatal("New() returned nil watcher")
	}

	if closeErr := w.Close(); closeErr != nil {
		t.Errorf("Close() error = %v", closeErr)
	}
}

func TestNew_NoPath(t *testing.T) {
	if _, err := New(Config{}, logger.Noop()); err != ErrInvalidPath {
		t.Errorf("New() error = %v, want ErrInvalidPath", err)
	}
}

func TestStart_MissingDirectory(t *testing.T) {
	w, err := New(Config{Path: "/nonexistent/dir/ledger.db"}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(context.Background()); err == nil {
		t.Error("Start() succeeded for a missing directory")
	}
}

func TestWatch_DeliversDebouncedEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	w, err := New(Config{Path: path, DebounceInterval: 50 * time.Millisecond}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// A burst of writes should collapse into one event.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("data"), 0600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case event := <-w.Events():
		if event.Path != path {
			t.Errorf("event path = %q, want %q", event.Path, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	w, err := New(Config{Path: path, DebounceInterval: 50 * time.Millisecond}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-w.Events():
		t.Errorf("unexpected event for unrelated file: %+v", event)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestClose_WithPendingDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	w, err := New(Config{Path: path, DebounceInterval: 200 * time.Millisecond}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Arm the debounce timer, then close before it fires. The timer
	// callback must observe the shutdown and not touch the closed
	// event channel.
	if err := os.WriteFile(path, []byte("data"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	time.Sleep(400 * time.Millisecond)

	if _, ok := <-w.Events(); ok {
		t.Error("event delivered after Close()")
	}
}

func TestStart_Twice(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Config{Path: filepath.Join(dir, "ledger.db")}, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if err := w.Start(ctx); err != ErrAlreadyStarted {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}
