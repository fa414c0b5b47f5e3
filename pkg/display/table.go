package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmarinov/evlog/pkg/aggregate"
	"github.com/dmarinov/evlog/pkg/compare"
	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/period"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// tableFormatter formats output as aligned tables.
type tableFormatter struct {
	config Config
}

// FormatEntries implements Formatter.FormatEntries.
func (f *tableFormatter) FormatEntries(w io.Writer, entries []domain.ChargingEntry) error {
	if err := writeHeader(w, "Charging Log", f.config.Compact); err != nil {
		return err
	}

	header := []string{"ID", "Date", "kWh", "Type", "Price/kWh", "Cost", "Note"}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.ID,
			e.Date,
			formatFloat(e.Kwh, 1),
			string(e.Type),
			f.config.money(e.Price),
			f.config.money(e.Cost()),
			e.Note,
		}
	}

	return f.writeTable(w, header, rows)
}

// FormatCosts implements Formatter.FormatCosts.
func (f *tableFormatter) FormatCosts(w io.Writer, costs []domain.CostRecord) error {
	if err := writeHeader(w, "Costs", f.config.Compact); err != nil {
		return err
	}

	header := []string{"ID", "Date", "Category", "Amount", "Applies", "Note"}

	rows := make([][]string, len(costs))
	for i, c := range costs {
		rows[i] = []string{
			c.ID,
			c.Date,
			c.Category,
			f.config.money(c.Amount),
			string(c.Applies),
			c.Note,
		}
	}

	return f.writeTable(w, header, rows)
}

// FormatSummary implements Formatter.FormatSummary.
func (f *tableFormatter) FormatSummary(w io.Writer, s aggregate.Summary) error {
	if err := writeHeader(w, "Monthly Summary", f.config.Compact); err != nil {
		return err
	}

	header := []string{"Period", "kWh", "Cost", "Avg Price", "Per Day", "Sessions"}

	rows := [][]string{
		f.summaryRow("This month", s.Current),
		f.summaryRow("Last month", s.Previous),
	}

	if s.Months > 0 {
		rows = append(rows, []string{
			fmt.Sprintf("Average (%d months)", s.Months),
			formatFloat(s.AvgKwh, 1),
			f.config.money(s.AvgCost),
			f.config.money(s.AvgPrice),
			"",
			"",
		})
	}

	return f.writeTable(w, header, rows)
}

func (f *tableFormatter) summaryRow(label string, m *aggregate.MonthTotals) []string {
	if m == nil {
		return []string{label, "-", "-", "-", "-", "-"}
	}
	return []string{
		label,
		formatFloat(m.Kwh, 1),
		f.config.money(m.Cost),
		f.config.money(m.AvgPrice),
		f.config.money(m.PerDay),
		fmt.Sprintf("%d", m.Sessions),
	}
}

// FormatMonthly implements Formatter.FormatMonthly.
func (f *tableFormatter) FormatMonthly(w io.Writer, months []aggregate.MonthTotals) error {
	if err := writeHeader(w, "Monthly Totals", f.config.Compact); err != nil {
		return err
	}

	header := []string{"Month", "kWh", "Cost", "Sessions", "Avg Price", "Per Day"}

	rows := make([][]string, len(months))
	for i, m := range months {
		rows[i] = []string{
			m.Month,
			formatFloat(m.Kwh, 1),
			f.config.money(m.Cost),
			fmt.Sprintf("%d", m.Sessions),
			f.config.money(m.AvgPrice),
			f.config.money(m.PerDay),
		}
	}

	return f.writeTable(w, header, rows)
}

// FormatCompare implements Formatter.FormatCompare.
func (f *tableFormatter) FormatCompare(w io.Writer, cmp *compare.Comparison) error {
	if cmp == nil {
		_, err := fmt.Fprintln(w, "No entries to compare")
		return err
	}

	if err := writeHeader(w, "EV vs ICE", f.config.Compact); err != nil {
		return err
	}

	fuelNote := fmt.Sprintf("flat %s/litre", f.config.money(cmp.IcePerLitre))
	if cmp.UsedPriceHistory {
		fuelNote = "per-entry price history"
	}

	rows := [][]string{
		{"Total energy", formatKwh(cmp.TotalKwh)},
		{"EV charging cost", f.config.money(cmp.EvCost)},
		{"Estimated distance", formatFloat(cmp.Miles, 0) + " mi"},
		{"ICE fuel cost", fmt.Sprintf("%s (%s)", f.config.money(cmp.IceCost), fuelNote)},
		{"EV cost per mile", f.config.money(cmp.EvPerMile)},
		{"ICE cost per mile", f.config.money(cmp.IcePerMile)},
	}

	if cmp.AllPublicCost != nil {
		rows = append(rows,
			[]string{"All at public rate", f.config.money(*cmp.AllPublicCost)},
			[]string{"Saved vs public", f.config.money(*cmp.SavedVsPublic)},
		)
	}
	if cmp.RemainingToRecover != nil {
		rows = append(rows, []string{"Charger left to recover", f.config.money(*cmp.RemainingToRecover)})
	}

	if cmp.Maintenance.Total > 0 {
		rows = append(rows,
			[]string{"Maintenance EV", f.config.money(cmp.Maintenance.EV)},
			[]string{"Maintenance ICE", f.config.money(cmp.Maintenance.ICE)},
		)
	}
	if cmp.Insurance.Total > 0 {
		rows = append(rows, []string{"Insurance total", f.config.money(cmp.Insurance.Total)})
	}

	rows = append(rows,
		[]string{"EV all-in", f.config.money(cmp.EvAllIn)},
		[]string{"ICE all-in", f.config.money(cmp.IceAllIn)},
		[]string{"Difference (ICE - EV)", f.colorDiff(cmp.Difference)},
	)

	return f.writeTable(w, []string{"Metric", "Value"}, rows)
}

// colorDiff renders the all-in difference, green when the EV is
// cheaper, red when it is not.
func (f *tableFormatter) colorDiff(diff float64) string {
	s := f.config.money(diff)
	if !f.config.Color {
		return s
	}
	if diff >= 0 {
		return ansiGreen + s + ansiReset
	}
	return ansiRed + s + ansiReset
}

// FormatVehicleCosts implements Formatter.FormatVehicleCosts.
func (f *tableFormatter) FormatVehicleCosts(w io.Writer, t aggregate.VehicleTotals) error {
	if err := writeHeader(w, "Costs by Vehicle", f.config.Compact); err != nil {
		return err
	}

	rows := [][]string{
		{"EV only", f.config.money(t.EvOnly)},
		{"ICE only", f.config.money(t.IceOnly)},
		{"Both", f.config.money(t.Both)},
		{"Other", f.config.money(t.Other)},
		{"EV (incl. shared)", f.config.money(t.EV)},
		{"ICE (incl. shared)", f.config.money(t.ICE)},
		{"Total", f.config.money(t.Total)},
	}

	return f.writeTable(w, []string{"Bucket", "Amount"}, rows)
}

// FormatCategories implements Formatter.FormatCategories.
func (f *tableFormatter) FormatCategories(w io.Writer, categories []aggregate.CategoryTotal) error {
	if err := writeHeader(w, "Costs by Category", f.config.Compact); err != nil {
		return err
	}

	rows := make([][]string, len(categories))
	for i, c := range categories {
		rows[i] = []string{c.Category, f.config.money(c.Amount), fmt.Sprintf("%d", c.Count)}
	}

	return f.writeTable(w, []string{"Category", "Amount", "Records"}, rows)
}

// FormatSettings implements Formatter.FormatSettings.
func (f *tableFormatter) FormatSettings(w io.Writer, s domain.Settings) error {
	if err := writeHeader(w, "Settings", f.config.Compact); err != nil {
		return err
	}

	rows := [][]string{
		{"Public price", f.config.money(s.Public) + "/kWh"},
		{"Public expensive price", f.config.money(s.PublicExpensive) + "/kWh"},
		{"Home price", f.config.money(s.Home) + "/kWh"},
		{"Home expensive price", f.config.money(s.HomeExpensive) + "/kWh"},
		{"Charger hardware", f.config.money(s.ChargerHardware)},
		{"Charger install", f.config.money(s.ChargerInstall)},
		{"EV miles per kWh", formatFloat(s.EvMilesPerKwh, 1)},
		{"ICE mpg", formatFloat(s.IceMpg, 0)},
		{"Fuel price", f.config.money(s.IcePerLitre) + "/litre"},
		{"Shared cost allocation", string(s.BothAllocation)},
	}

	for _, p := range s.FuelPriceHistory {
		rows = append(rows, []string{"Fuel price from " + p.Date, f.config.money(p.Price) + "/litre"})
	}

	return f.writeTable(w, []string{"Setting", "Value"}, rows)
}

// FormatPeriod implements Formatter.FormatPeriod.
func (f *tableFormatter) FormatPeriod(w io.Writer, p period.Period) error {
	_, err := fmt.Fprintf(w, "%s [%s]\n", p.Label, p.Mode)
	return err
}

// writeTable writes a formatted table.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	// Calculate column widths, ignoring ANSI sequences.
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	if err := f.writeRow(w, header, widths); err != nil {
		return err
	}

	if !f.config.Compact {
		separator := make([]string, len(header))
		for i, width := range widths {
			separator[i] = strings.Repeat("-", width)
		}
		if err := f.writeRow(w, separator, widths); err != nil {
			return err
		}
	}

	for _, row := range rows {
		if err := f.writeRow(w, row, widths); err != nil {
			return err
		}
	}

	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}

	return nil
}

// writeRow writes a single table row.
func (f *tableFormatter) writeRow(w io.Writer, cells []string, widths []int) error {
	for i, cell := range cells {
		if i > 0 {
			gap := "  "
			if f.config.Compact {
				gap = " "
			}
			if _, err := fmt.Fprint(w, gap); err != nil {
				return err
			}
		}

		pad := widths[i] - visibleLen(cell)
		if pad < 0 {
			pad = 0
		}
		if _, err := fmt.Fprint(w, cell, strings.Repeat(" ", pad)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

// visibleLen is the rune count of a cell minus ANSI escape sequences.
func visibleLen(s string) int {
	if !strings.Contains(s, "\x1b[") {
		return len([]rune(s))
	}

	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}
