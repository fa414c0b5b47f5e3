package watcher

import "errors"

var (
	// ErrInvalidPath is returned when no watch path is configured.
	ErrInvalidPath = errors.New("no watch path configured")

	// ErrWatcherClosed is returned when using a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("watcher already started")
)
