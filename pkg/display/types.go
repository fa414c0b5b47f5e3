// Package display provides output formatting for the ledger.
//
// It supports multiple output formats (table, JSON, simple text) for
// entries, costs, summaries and the EV versus ICE comparison.
package display

import (
	"io"

	"github.com/dmarinov/evlog/pkg/aggregate"
	"github.com/dmarinov/evlog/pkg/compare"
	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/period"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays data in aligned columns.
	FormatTable Format = "table"

	// FormatJSON displays data as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays data as single-line text.
	FormatSimple Format = "simple"
)

// Formatter renders ledger data for the terminal.
type Formatter interface {
	// FormatEntries renders a charging entry listing.
	FormatEntries(w io.Writer, entries []domain.ChargingEntry) error

	// FormatCosts renders a cost record listing.
	FormatCosts(w io.Writer, costs []domain.CostRecord) error

	// FormatSummary renders the monthly summary.
	FormatSummary(w io.Writer, s aggregate.Summary) error

	// FormatMonthly renders the per-month totals.
	FormatMonthly(w io.Writer, months []aggregate.MonthTotals) error

	// FormatCompare renders the EV versus ICE comparison.
	// A nil comparison means there are no entries to compare.
	FormatCompare(w io.Writer, cmp *compare.Comparison) error

	// FormatVehicleCosts renders the vehicle-target cost split.
	FormatVehicleCosts(w io.Writer, t aggregate.VehicleTotals) error

	// FormatCategories renders the per-category cost split.
	FormatCategories(w io.Writer, categories []aggregate.CategoryTotal) error

	// FormatSettings renders the current settings.
	FormatSettings(w io.Writer, s domain.Settings) error

	// FormatPeriod renders the resolved active period.
	FormatPeriod(w io.Writer, p period.Period) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// Currency is the symbol prefixed to money values.
	// Default: "£".
	Currency string

	// Color enables ANSI color in table output.
	// Default: false.
	Color bool

	// Compact reduces whitespace in table output.
	// Default: false.
	Compact bool
}
