// Package store persists the ledger document.
//
// The entire ledger (charging entries, cost records, settings, UI state)
// lives in a single document that is read and written as a whole. Writes
// replace the previous document atomically, so readers never observe a
// partially updated ledger.
package store

import (
	"context"

	"github.com/dmarinov/evlog/pkg/domain"
)

// Store loads and saves the ledger document.
type Store interface {
	// Load reads the current document.
	//
	// If no document exists yet, a fresh document with default settings
	// is created, persisted, and returned. Loading repairs documents
	// written by older versions: missing identifiers are generated,
	// missing cost targets default to "other", and settings are
	// normalized. Repairs are persisted immediately, so a second Load
	// returns an identical document. A stored document that cannot be
	// decoded at all is set aside and replaced with a fresh default.
	Load(ctx context.Context) (*domain.Document, error)

	// Save replaces the stored document with doc.
	Save(ctx context.Context, doc *domain.Document) error

	// Close releases any resources held by the store.
	Close() error
}

// normalizeDocument repairs a loaded document in place.
//
// Returns true if anything changed and the document should be written back.
func normalizeDocument(doc *domain.Document) bool {
	changed := false

	if doc.Entries == nil {
		doc.Entries = []domain.ChargingEntry{}
		changed = true
	}
	if doc.Costs == nil {
		doc.Costs = []domain.CostRecord{}
		changed = true
	}

	for i := range doc.Entries {
		if doc.Entries[i].ID == "" {
			doc.Entries[i].ID = domain.NewEntryID()
			changed = true
		}
	}

	for i := range doc.Costs {
		if doc.Costs[i].ID == "" {
			doc.Costs[i].ID = domain.NewCostID()
			changed = true
		}
		if doc.Costs[i].Applies == "" {
			doc.Costs[i].Applies = domain.AppliesOther
			changed = true
		}
	}

	before := doc.Settings
	doc.Settings.Normalize()
	if !settingsEqual(before, doc.Settings) {
		changed = true
	}

	if doc.UI.Mode == "" {
		doc.UI.Mode = domain.PeriodThisMonth
		changed = true
	}

	return changed
}

func settingsEqual(a, b domain.Settings) bool {
	if a.Public != b.Public || a.PublicExpensive != b.PublicExpensive ||
		a.Home != b.Home || a.HomeExpensive != b.HomeExpensive {
		return false
	}
	if a.ChargerHardware != b.ChargerHardware || a.ChargerInstall != b.ChargerInstall {
		return false
	}
	if a.EvMilesPerKwh != b.EvMilesPerKwh || a.IceMpg != b.IceMpg || a.IcePerLitre != b.IcePerLitre {
		return false
	}
	if a.BothAllocation != b.BothAllocation {
		return false
	}
	if len(a.FuelPriceHistory) != len(b.FuelPriceHistory) {
		return false
	}
	for i := range a.FuelPriceHistory {
		if a.FuelPriceHistory[i] != b.FuelPriceHistory[i] {
			return false
		}
	}
	return true
}
