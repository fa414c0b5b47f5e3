package export

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmarinov/evlog/pkg/domain"
)

func TestWriteEntriesCSV(t *testing.T) {
	entries := []domain.ChargingEntry{
		{ID: "e2", Date: "2024-02-10", Kwh: 20, Type: domain.ChargePublic, Price: 0.5},
		{ID: "e1", Date: "2024-01-05", Kwh: 10.5, Type: domain.ChargeHome, Price: 0.25, Note: "overnight, cheap"},
	}

	var buf bytes.Buffer
	if err := WriteEntriesCSV(&buf, entries); err != nil {
		t.Fatalf("WriteEntriesCSV() failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	if lines[0] != "Date,kWh,Type,Price_per_kWh,Cost,Note" {
		t.Errorf("header = %q", lines[0])
	}

	// Rows come out in ascending date order regardless of input order,
	// and a note containing a comma is quoted.
	if lines[1] != `2024-01-05,10.5,home,0.25,2.625,"overnight, cheap"` {
		t.Errorf("first row = %q", lines[1])
	}
	if lines[2] != "2024-02-10,20,public,0.5,10," {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestWriteEntriesCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEntriesCSV(&buf, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
}

func TestWriteCostsCSV(t *testing.T) {
	costs := []domain.CostRecord{
		{ID: "c1", Date: "2024-03-01", Category: "Tyres", Amount: 200, Applies: domain.AppliesEV, Note: "front pair"},
		{ID: "c2", Date: "2024-01-15", Category: "Insurance", Amount: 320.5, Applies: ""},
	}

	var buf bytes.Buffer
	if err := WriteCostsCSV(&buf, costs); err != nil {
		t.Fatalf("WriteCostsCSV() failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	if lines[0] != "Date,Category,Amount,Note,AppliesTo" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2024-01-15,Insurance,320.5,,other" {
		t.Errorf("first row = %q", lines[1])
	}
	if lines[2] != "2024-03-01,Tyres,200,front pair,ev" {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestFilenames(t *testing.T) {
	now := time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)

	if got := EntriesFilename(now); got != "ev_log_entries_2024-06-12.csv" {
		t.Errorf("EntriesFilename() = %q", got)
	}
	if got := CostsFilename(now); got != "ev_log_costs_2024-06-12.csv" {
		t.Errorf("CostsFilename() = %q", got)
	}
}

func TestSaveEntriesCSV(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)

	entries := []domain.ChargingEntry{
		{ID: "e1", Date: "2024-01-05", Kwh: 10, Type: domain.ChargeHome, Price: 0.09},
	}

	path, err := SaveEntriesCSV(dir, entries, now)
	if err != nil {
		t.Fatalf("SaveEntriesCSV() failed: %v", err)
	}
	if !strings.HasSuffix(path, "ev_log_entries_2024-06-12.csv") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Date,kWh,Type,Price_per_kWh,Cost,Note\n") {
		t.Errorf("file content = %q", string(data))
	}
}

func TestBackupRoundTrip(t *testing.T) {
	doc := domain.NewDocument()
	doc.Entries = []domain.ChargingEntry{
		{ID: "e1", Date: "2024-01-05", Kwh: 10, Type: domain.ChargeHome, Price: 0.09, Note: "overnight"},
	}
	doc.Costs = []domain.CostRecord{
		{ID: "c1", Date: "2024-02-01", Category: "Insurance", Amount: 320, Applies: domain.AppliesEV},
	}
	doc.Settings.Home = 0.12

	raw, err := BackupJSON(doc)
	if err != nil {
		t.Fatalf("BackupJSON() failed: %v", err)
	}

	fresh := domain.NewDocument()
	if err := ImportBackup(fresh, raw); err != nil {
		t.Fatalf("ImportBackup() failed: %v", err)
	}

	if len(fresh.Entries) != 1 || fresh.Entries[0].ID != "e1" || fresh.Entries[0].Note != "overnight" {
		t.Errorf("entries not restored: %+v", fresh.Entries)
	}
	if len(fresh.Costs) != 1 || fresh.Costs[0].Applies != domain.AppliesEV {
		t.Errorf("costs not restored: %+v", fresh.Costs)
	}
	if fresh.Settings.Home != 0.12 {
		t.Errorf("Settings.Home = %v, want 0.12", fresh.Settings.Home)
	}
	// Fields absent from the backup keep the pre-import values.
	if fresh.Settings.Public != domain.DefaultPublicPrice {
		t.Errorf("Settings.Public = %v, want default", fresh.Settings.Public)
	}
}

func TestImportBackup_PartialSettingsMerge(t *testing.T) {
	doc := domain.NewDocument()
	doc.Settings.PublicExpensive = 0.99

	raw := []byte(`{"entries": [], "settings": {"home": 0.11}}`)
	if err := ImportBackup(doc, raw); err != nil {
		t.Fatalf("ImportBackup() failed: %v", err)
	}

	if doc.Settings.Home != 0.11 {
		t.Errorf("Home = %v, want 0.11", doc.Settings.Home)
	}
	if doc.Settings.PublicExpensive != 0.99 {
		t.Errorf("PublicExpensive = %v, want the pre-import 0.99", doc.Settings.PublicExpensive)
	}
}

func TestImportBackup_BackfillsIDsAndTags(t *testing.T) {
	doc := domain.NewDocument()

	raw := []byte(`{
		"entries": [{"date": "2024-01-05", "kwh": 10, "type": "home", "price": 0.09}],
		"costs": [{"date": "2024-01-06", "category": "Tyres", "amount": 200}],
		"settings": {}
	}`)
	if err := ImportBackup(doc, raw); err != nil {
		t.Fatalf("ImportBackup() failed: %v", err)
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
}

func TestImportBackup_Rejected(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json"},
		{"not an object", `[1, 2, 3]`},
		{"missing entries", `{"settings": {}}`},
		{"missing settings", `{"entries": []}`},
		{"entries not an array", `{"entries": {"a": 1}, "settings": {}}`},
		{"settings not an object", `{"entries": [], "settings": 7}`},
		{"null entries", `{"entries": null, "settings": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := domain.NewDocument()
			doc.Entries = []domain.ChargingEntry{
				{ID: "keep", Date: "2024-01-01", Kwh: 1, Type: domain.ChargeHome, Price: 0.09},
			}

			err := ImportBackup(doc, []byte(tt.raw))
			if !errors.Is(err, ErrInvalidBackup) {
				t.Fatalf("err = %v, want ErrInvalidBackup", err)
			}

			// A rejected import must not touch the document.
			if len(doc.Entries) != 1 || doc.Entries[0].ID != "keep" {
				t.Errorf("document mutated by rejected import: %+v", doc.Entries)
			}
		})
	}
}

func TestImportBackup_MalformedCostsDegradeToEmpty(t *testing.T) {
	doc := domain.NewDocument()
	doc.Costs = []domain.CostRecord{
		{ID: "old", Date: "2024-01-01", Category: "Tyres", Amount: 1, Applies: domain.AppliesEV},
	}

	raw := []byte(`{"entries": [], "costs": "oops", "settings": {}}`)
	if err := ImportBackup(doc, raw); err != nil {
		t.Fatalf("ImportBackup() failed: %v", err)
	}

	if len(doc.Costs) != 0 {
		t.Errorf("Costs = %+v, want empty", doc.Costs)
	}
}
