package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/logger"
)

func TestBoltStore_FirstLoadCreatesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("NewBoltStore() failed: %v", err)
	}
	defer s.Close()

	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(doc.Entries) != 0 || len(doc.Costs) != 0 {
		t.Errorf("new document not empty: %d entries, %d costs", len(doc.Entries), len(doc.Costs))
	}
	if doc.Settings.Public != domain.DefaultPublicPrice {
		t.Errorf("Public = %v, want %v", doc.Settings.Public, domain.DefaultPublicPrice)
	}
	if doc.UI.Mode != domain.PeriodThisMonth {
		t.Errorf("UI.Mode = %q, want %q", doc.UI.Mode, domain.PeriodThisMonth)
	}
}

func TestBoltStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("NewBoltStore() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	doc.Entries = append(doc.Entries, domain.ChargingEntry{
		ID:    domain.NewEntryID(),
		Date:  "2024-06-01",
		Kwh:   40,
		Type:  domain.ChargeHome,
		Price: 0.09,
		Note:  "overnight",
	})
	doc.Settings.IceMpg = 50

	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("second Load() failed: %v", err)
	}

	if !reflect.DeepEqual(got, doc) {
		t.Errorf("loaded document differs from saved:\ngot:  %+v\nwant: %+v", got, doc)
	}
}

func TestBoltStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("NewBoltStore() failed: %v", err)
	}

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	doc.Costs = append(doc.Costs, domain.CostRecord{
		ID:       domain.NewCostID(),
		Date:     "2024-03-10",
		Category: "Insurance",
		Amount:   320,
		Applies:  domain.AppliesEV,
	})
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	s2, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after reopen failed: %v", err)
	}
	if len(got.Costs) != 1 || got.Costs[0].Category != "Insurance" {
		t.Errorf("costs not persisted across reopen: %+v", got.Costs)
	}
}

func TestBoltStore_Closed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("NewBoltStore() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if _, err := s.Load(context.Background()); err != ErrStoreClosed {
		t.Errorf("Load() after close = %v, want ErrStoreClosed", err)
	}
	if err := s.Save(context.Background(), domain.NewDocument()); err != ErrStoreClosed {
		t.Errorf("Save() after close = %v, want ErrStoreClosed", err)
	}
}

func TestLoad_RepairsLegacyDocument(t *testing.T) {
	raw := []byte(`{
		"entries": [{"date": "2024-01-05", "kwh": 10, "type": "home", "price": 0.09}],
		"costs": [{"date": "2024-01-06", "category": "Tyres", "amount": 200}],
		"settings": {"home": 0.10, "iceMpg": 0}
	}`)

	s := SeedMemoryStore(raw)
	ctx := context.Background()

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if doc.Entries[0].ID == "" {
		t.Error("entry id not backfilled")
	}
	if doc.Costs[0].ID == "" {
		t.Error("cost id not backfilled")
	}
	if doc.Costs[0].Applies != domain.AppliesOther {
		t.Errorf("Applies = %q, want %q", doc.Costs[0].Applies, domain.AppliesOther)
	}

	// Fields present in the stored settings win; absent or invalid
	// assumptions fall back to defaults.
	if doc.Settings.Home != 0.10 {
		t.Errorf("Home = %v, want 0.10", doc.Settings.Home)
	}
	if doc.Settings.Public != domain.DefaultPublicPrice {
		t.Errorf("Public = %v, want default %v", doc.Settings.Public, domain.DefaultPublicPrice)
	}
	if doc.Settings.IceMpg != domain.DefaultIceMpg {
		t.Errorf("IceMpg = %v, want default %v", doc.Settings.IceMpg, domain.DefaultIceMpg)
	}

	// Repairs are persisted, so a second load returns the same document.
	again, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("second Load() failed: %v", err)
	}
	if !reflect.DeepEqual(again, doc) {
		t.Errorf("second load differs from first:\ngot:  %+v\nwant: %+v", again, doc)
	}
}

func TestLoad_MalformedDocumentReturnsDefault(t *testing.T) {
	raw := []byte(`{malformed`)
	s := SeedMemoryStore(raw)
	ctx := context.Background()

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	fresh := domain.NewDocument()
	if !reflect.DeepEqual(doc, fresh) {
		t.Errorf("malformed document not replaced with default:\ngot:  %+v\nwant: %+v", doc, fresh)
	}

	// The undecodable bytes are set aside, not silently discarded.
	ms := s.(*memoryStore)
	if string(ms.corrupt) != string(raw) {
		t.Errorf("corrupt bytes not preserved: %q", ms.corrupt)
	}

	// The replacement is persisted, so the next load is a normal one.
	again, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("second Load() failed: %v", err)
	}
	if !reflect.DeepEqual(again, fresh) {
		t.Errorf("second load not the default document: %+v", again)
	}
}

func TestBoltStore_MalformedDocumentQuarantined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()
	raw := []byte(`not json`)

	s, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("NewBoltStore() failed: %v", err)
	}
	defer s.Close()

	bs := s.(*boltStore)
	err = bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ledgerBucket)).Put([]byte(documentKey), raw)
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(doc, domain.NewDocument()) {
		t.Errorf("malformed document not replaced with default: %+v", doc)
	}

	var kept []byte
	err = bs.db.View(func(tx *bolt.Tx) error {
		kept = tx.Bucket([]byte(ledgerBucket)).Get([]byte(corruptKey))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(kept) != string(raw) {
		t.Errorf("corrupt bytes not preserved under %q: %q", corruptKey, kept)
	}
}

func TestBoltStore_ReopenDoesNotModifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("NewBoltStore() failed: %v", err)
	}
	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Opening and loading a settled database must not write: the watch
	// command re-opens the store per render and would otherwise observe
	// its own opens as changes.
	s2, err := NewBoltStore(path, logger.Noop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, err := s2.Load(ctx); err != nil {
		t.Fatalf("Load() after reopen failed: %v", err)
	}
	if err := s2.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("database file modified by open and load without mutations")
	}
}

func TestLoad_PersistsSortedFuelPriceHistory(t *testing.T) {
	// Fully settled document: the out-of-order history is the only
	// thing normalization changes, so the write-back hinges on the
	// reorder being detected.
	raw := []byte(`{
		"entries": [], "costs": [],
		"settings": {
			"public": 0.56, "public_xp": 0.76, "home": 0.09, "home_xp": 0.30,
			"evMilesPerKwh": 3, "iceMpg": 45, "icePerLitre": 1.5,
			"bothAllocationMode": "split",
			"icePerLitreHistory": [
				{"date": "2024-03-01", "price": 1.60},
				{"date": "2024-01-01", "price": 1.40}
			]
		},
		"ui": {"periodMode": "this-month"}
	}`)

	s := SeedMemoryStore(raw)

	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	history := doc.Settings.FuelPriceHistory
	if len(history) != 2 || history[0].Date != "2024-01-01" || history[1].Date != "2024-03-01" {
		t.Fatalf("history not sorted: %+v", history)
	}

	// A reorder alone counts as a repair and is written back.
	var stored domain.Document
	ms := s.(*memoryStore)
	if err := json.Unmarshal(ms.raw, &stored); err != nil {
		t.Fatal(err)
	}
	if got := stored.Settings.FuelPriceHistory; len(got) != 2 || got[0].Date != "2024-01-01" {
		t.Errorf("sorted history not persisted: %+v", got)
	}
}

func TestMemoryStore_Isolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// Mutating a loaded document must not affect the stored copy.
	doc.Entries = append(doc.Entries, domain.ChargingEntry{ID: "x", Date: "2024-01-01", Kwh: 1, Type: domain.ChargeHome})

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("second Load() failed: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Errorf("stored document mutated through caller copy: %+v", got.Entries)
	}
}
