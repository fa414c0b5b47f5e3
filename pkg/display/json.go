package display

import (
	"encoding/json"
	"io"

	"github.com/dmarinov/evlog/pkg/aggregate"
	"github.com/dmarinov/evlog/pkg/compare"
	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/period"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

func (f *jsonFormatter) encode(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatEntries implements Formatter.FormatEntries.
func (f *jsonFormatter) FormatEntries(w io.Writer, entries []domain.ChargingEntry) error {
	return f.encode(w, entries)
}

// FormatCosts implements Formatter.FormatCosts.
func (f *jsonFormatter) FormatCosts(w io.Writer, costs []domain.CostRecord) error {
	return f.encode(w, costs)
}

// FormatSummary implements Formatter.FormatSummary.
func (f *jsonFormatter) FormatSummary(w io.Writer, s aggregate.Summary) error {
	return f.encode(w, s)
}

// FormatMonthly implements Formatter.FormatMonthly.
func (f *jsonFormatter) FormatMonthly(w io.Writer, months []aggregate.MonthTotals) error {
	return f.encode(w, months)
}

// FormatCompare implements Formatter.FormatCompare.
func (f *jsonFormatter) FormatCompare(w io.Writer, cmp *compare.Comparison) error {
	return f.encode(w, cmp)
}

// FormatVehicleCosts implements Formatter.FormatVehicleCosts.
func (f *jsonFormatter) FormatVehicleCosts(w io.Writer, t aggregate.VehicleTotals) error {
	return f.encode(w, t)
}

// FormatCategories implements Formatter.FormatCategories.
func (f *jsonFormatter) FormatCategories(w io.Writer, categories []aggregate.CategoryTotal) error {
	return f.encode(w, categories)
}

// FormatSettings implements Formatter.FormatSettings.
func (f *jsonFormatter) FormatSettings(w io.Writer, s domain.Settings) error {
	return f.encode(w, s)
}

// FormatPeriod implements Formatter.FormatPeriod.
func (f *jsonFormatter) FormatPeriod(w io.Writer, p period.Period) error {
	return f.encode(w, p)
}
