package export

import (
	"encoding/json"
	"fmt"

	"github.com/dmarinov/evlog/pkg/domain"
)

// BackupJSON serializes the whole document for backup exchange.
func BackupJSON(doc *domain.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// ImportBackup applies a backup payload to doc.
//
// The payload must be a JSON object with an entries array and a
// settings object; anything else is rejected and doc is left
// untouched. Entries and costs are replaced wholesale (a missing or
// malformed costs field clears them), while the backup's settings are
// merged over doc's current settings, so fields absent from the backup
// keep their present values. Imported records get identifiers and
// vehicle tags backfilled where missing.
func ImportBackup(doc *domain.Document, raw []byte) error {
	var probe struct {
		Entries  json.RawMessage `json:"entries"`
		Costs    json.RawMessage `json:"costs"`
		Settings json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if isAbsent(probe.Entries) || isAbsent(probe.Settings) {
		return ErrInvalidBackup
	}

	var entries []domain.ChargingEntry
	if err := json.Unmarshal(probe.Entries, &entries); err != nil {
		return fmt.Errorf("%w: entries is not an array", ErrInvalidBackup)
	}

	settings := doc.Settings
	if err := json.Unmarshal(probe.Settings, &settings); err != nil {
		return fmt.Errorf("%w: settings is not an object", ErrInvalidBackup)
	}

	// Costs are optional; a malformed costs field degrades to empty
	// rather than rejecting the whole backup.
	costs := []domain.CostRecord{}
	if probe.Costs != nil {
		if err := json.Unmarshal(probe.Costs, &costs); err != nil {
			costs = []domain.CostRecord{}
		}
	}

	if entries == nil {
		entries = []domain.ChargingEntry{}
	}
	if costs == nil {
		costs = []domain.CostRecord{}
	}

	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = domain.NewEntryID()
		}
	}
	for i := range costs {
		if costs[i].ID == "" {
			costs[i].ID = domain.NewCostID()
		}
		if costs[i].Applies == "" {
			costs[i].Applies = domain.AppliesOther
		}
	}
	settings.Normalize()

	doc.Entries = entries
	doc.Costs = costs
	doc.Settings = settings

	return nil
}

// isAbsent reports whether a field was missing or JSON null.
func isAbsent(raw json.RawMessage) bool {
	return raw == nil || string(raw) == "null"
}
