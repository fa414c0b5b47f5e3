package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewEntryID generates a unique identifier for a charging entry.
func NewEntryID() string {
	return "e_" + compactUUID()
}

// NewCostID generates a unique identifier for a cost record.
func NewCostID() string {
	return "c_" + compactUUID()
}

func compactUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
