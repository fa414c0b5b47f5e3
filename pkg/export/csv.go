// Package export serializes the ledger for exchange: CSV listings of
// entries and costs, and whole-document JSON backups.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dmarinov/evlog/pkg/domain"
)

var entriesHeader = []string{"Date", "kWh", "Type", "Price_per_kWh", "Cost", "Note"}

var costsHeader = []string{"Date", "Category", "Amount", "Note", "AppliesTo"}

// WriteEntriesCSV writes the charging log as CSV, one row per entry in
// ascending date order.
func WriteEntriesCSV(w io.Writer, entries []domain.ChargingEntry) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}

	sorted := make([]domain.ChargingEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(entriesHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range sorted {
		row := []string{
			e.Date,
			formatNumber(e.Kwh),
			string(e.Type),
			formatNumber(e.Price),
			formatNumber(e.Cost()),
			e.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCostsCSV writes the cost records as CSV, one row per record in
// ascending date order.
func WriteCostsCSV(w io.Writer, costs []domain.CostRecord) error {
	if len(costs) == 0 {
		return ErrNothingToExport
	}

	sorted := make([]domain.CostRecord, len(costs))
	copy(sorted, costs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(costsHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, c := range sorted {
		row := []string{
			c.Date,
			c.Category,
			formatNumber(c.Amount),
			c.Note,
			string(domain.ParseAppliesTo(string(c.Applies))),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// EntriesFilename returns the date-stamped charging log filename.
func EntriesFilename(now time.Time) string {
	return "ev_log_entries_" + domain.FormatDate(now.UTC()) + ".csv"
}

// CostsFilename returns the date-stamped cost export filename.
func CostsFilename(now time.Time) string {
	return "ev_log_costs_" + domain.FormatDate(now.UTC()) + ".csv"
}

// SaveEntriesCSV writes the charging log into dir under the standard
// date-stamped filename and returns the full path.
func SaveEntriesCSV(dir string, entries []domain.ChargingEntry, now time.Time) (string, error) {
	path := filepath.Join(dir, EntriesFilename(now))
	return path, writeFile(path, func(w io.Writer) error {
		return WriteEntriesCSV(w, entries)
	})
}

// SaveCostsCSV writes the cost records into dir under the standard
// date-stamped filename and returns the full path.
func SaveCostsCSV(dir string, costs []domain.CostRecord, now time.Time) (string, error) {
	path := filepath.Join(dir, CostsFilename(now))
	return path, writeFile(path, func(w io.Writer) error {
		return WriteCostsCSV(w, costs)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path) // nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	return f.Close()
}

// formatNumber renders a float the way the UI does: no exponent, no
// trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
