package export

import "errors"

var (
	// ErrNothingToExport is returned when an export has no records.
	ErrNothingToExport = errors.New("nothing to export")

	// ErrInvalidBackup is returned when a backup payload is not an
	// object carrying an entries array and a settings object.
	ErrInvalidBackup = errors.New("invalid backup format")
)
