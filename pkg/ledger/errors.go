package ledger

import "errors"

var (
	// ErrEntryNotFound is returned when an entry id does not exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrCostNotFound is returned when a cost record id does not exist.
	ErrCostNotFound = errors.New("cost not found")

	// ErrNoEntries is returned when an operation needs at least one
	// logged entry.
	ErrNoEntries = errors.New("no entries logged")
)
