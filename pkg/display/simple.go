package display

import (
	"fmt"
	"io"

	"github.com/dmarinov/evlog/pkg/aggregate"
	"github.com/dmarinov/evlog/pkg/compare"
	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/period"
)

// simpleFormatter formats output as single lines of text.
type simpleFormatter struct {
	config Config
}

// FormatEntries implements Formatter.FormatEntries.
func (f *simpleFormatter) FormatEntries(w io.Writer, entries []domain.ChargingEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s  %s  %s kWh  %s  %s  %s\n",
			e.ID, e.Date, formatFloat(e.Kwh, 1), e.Type, f.config.money(e.Cost()), e.Note); err != nil {
			return err
		}
	}
	return nil
}

// FormatCosts implements Formatter.FormatCosts.
func (f *simpleFormatter) FormatCosts(w io.Writer, costs []domain.CostRecord) error {
	for _, c := range costs {
		if _, err := fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
			c.ID, c.Date, c.Category, f.config.money(c.Amount), c.Applies, c.Note); err != nil {
			return err
		}
	}
	return nil
}

// FormatSummary implements Formatter.FormatSummary.
func (f *simpleFormatter) FormatSummary(w io.Writer, s aggregate.Summary) error {
	if err := f.summaryLine(w, "this month", s.Current); err != nil {
		return err
	}
	if err := f.summaryLine(w, "last month", s.Previous); err != nil {
		return err
	}
	if s.Months > 0 {
		_, err := fmt.Fprintf(w, "average: %s kWh, %s over %d months (avg %s/kWh)\n",
			formatFloat(s.AvgKwh, 1), f.config.money(s.AvgCost), s.Months, f.config.money(s.AvgPrice))
		return err
	}
	return nil
}

func (f *simpleFormatter) summaryLine(w io.Writer, label string, m *aggregate.MonthTotals) error {
	if m == nil {
		_, err := fmt.Fprintf(w, "%s: no data\n", label)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s kWh, %s in %d sessions (%s/kWh, %s/day)\n",
		label, formatFloat(m.Kwh, 1), f.config.money(m.Cost), m.Sessions,
		f.config.money(m.AvgPrice), f.config.money(m.PerDay))
	return err
}

// FormatMonthly implements Formatter.FormatMonthly.
func (f *simpleFormatter) FormatMonthly(w io.Writer, months []aggregate.MonthTotals) error {
	for _, m := range months {
		if _, err := fmt.Fprintf(w, "%s: %s kWh, %s in %d sessions\n",
			m.Month, formatFloat(m.Kwh, 1), f.config.money(m.Cost), m.Sessions); err != nil {
			return err
		}
	}
	return nil
}

// FormatCompare implements Formatter.FormatCompare.
func (f *simpleFormatter) FormatCompare(w io.Writer, cmp *compare.Comparison) error {
	if cmp == nil {
		_, err := fmt.Fprintln(w, "no entries to compare")
		return err
	}

	_, err := fmt.Fprintf(w, "%s | EV %s | ICE %s | all-in EV %s vs ICE %s (diff %s)\n",
		formatKwh(cmp.TotalKwh),
		f.config.money(cmp.EvCost),
		f.config.money(cmp.IceCost),
		f.config.money(cmp.EvAllIn),
		f.config.money(cmp.IceAllIn),
		f.config.money(cmp.Difference))
	return err
}

// FormatVehicleCosts implements Formatter.FormatVehicleCosts.
func (f *simpleFormatter) FormatVehicleCosts(w io.Writer, t aggregate.VehicleTotals) error {
	_, err := fmt.Fprintf(w, "ev %s | ice %s | both %s | other %s | total %s\n",
		f.config.money(t.EV), f.config.money(t.ICE), f.config.money(t.Both),
		f.config.money(t.Other), f.config.money(t.Total))
	return err
}

// FormatCategories implements Formatter.FormatCategories.
func (f *simpleFormatter) FormatCategories(w io.Writer, categories []aggregate.CategoryTotal) error {
	for _, c := range categories {
		if _, err := fmt.Fprintf(w, "%s: %s (%d)\n", c.Category, f.config.money(c.Amount), c.Count); err != nil {
			return err
		}
	}
	return nil
}

// FormatSettings implements Formatter.FormatSettings.
func (f *simpleFormatter) FormatSettings(w io.Writer, s domain.Settings) error {
	_, err := fmt.Fprintf(w, "public %s | public-xp %s | home %s | home-xp %s | %s mi/kWh | %s mpg | %s/litre | %s\n",
		f.config.money(s.Public), f.config.money(s.PublicExpensive),
		f.config.money(s.Home), f.config.money(s.HomeExpensive),
		formatFloat(s.EvMilesPerKwh, 1), formatFloat(s.IceMpg, 0),
		f.config.money(s.IcePerLitre), s.BothAllocation)
	return err
}

// FormatPeriod implements Formatter.FormatPeriod.
func (f *simpleFormatter) FormatPeriod(w io.Writer, p period.Period) error {
	_, err := fmt.Fprintln(w, p.Label)
	return err
}
