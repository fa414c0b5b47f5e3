// Package aggregate computes period and monthly rollups over the ledger.
package aggregate

import (
	"sort"
	"time"

	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/period"
)

// FilterEntries keeps the charging entries whose date falls inside p.
//
// The all-time period returns the input slice unchanged. Entries with
// unparseable dates are dropped from bounded periods.
func FilterEntries(entries []domain.ChargingEntry, p period.Period) []domain.ChargingEntry {
	if p.Mode == domain.PeriodAllTime {
		return entries
	}

	kept := make([]domain.ChargingEntry, 0, len(entries))
	for _, e := range entries {
		if p.Contains(e.Date) {
			kept = append(kept, e)
		}
	}
	return kept
}

// FilterCosts keeps the cost records whose date falls inside p.
func FilterCosts(costs []domain.CostRecord, p period.Period) []domain.CostRecord {
	if p.Mode == domain.PeriodAllTime {
		return costs
	}

	kept := make([]domain.CostRecord, 0, len(costs))
	for _, c := range costs {
		if p.Contains(c.Date) {
			kept = append(kept, c)
		}
	}
	return kept
}

// SumByVehicleTarget partitions cost amounts into vehicle buckets.
//
// Unknown or missing applies-to tags land in the Other bucket.
func SumByVehicleTarget(costs []domain.CostRecord) VehicleTotals {
	var t VehicleTotals

	for _, c := range costs {
		switch domain.ParseAppliesTo(string(c.Applies)) {
		case domain.AppliesEV:
			t.EvOnly += c.Amount
		case domain.AppliesICE:
			t.IceOnly += c.Amount
		case domain.AppliesBoth:
			t.Both += c.Amount
		default:
			t.Other += c.Amount
		}
	}

	t.EV = t.EvOnly + t.Both
	t.ICE = t.IceOnly + t.Both
	t.Total = t.EvOnly + t.IceOnly + t.Both + t.Other

	return t
}

// SumByCategory sums cost amounts per category.
//
// Category keys are case-sensitive. Results are sorted alphabetically
// by category.
func SumByCategory(costs []domain.CostRecord) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)

	for _, c := range costs {
		ct, ok := byCategory[c.Category]
		if !ok {
			ct = &CategoryTotal{Category: c.Category}
			byCategory[c.Category] = ct
		}
		ct.Amount += c.Amount
		ct.Count++
	}

	result := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		result = append(result, *ct)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})

	return result
}

// MonthlyTotals groups charging entries by calendar month.
//
// Entries with unparseable dates are skipped. Results are sorted by
// month ascending.
func MonthlyTotals(entries []domain.ChargingEntry) []MonthTotals {
	byMonth := make(map[string]*MonthTotals)

	for _, e := range entries {
		key := domain.MonthKey(e.Date)
		if key == "" {
			continue
		}

		m, ok := byMonth[key]
		if !ok {
			m = &MonthTotals{Month: key}
			byMonth[key] = m
		}
		m.Kwh += e.Kwh
		m.Cost += e.Cost()
		m.Sessions++
	}

	result := make([]MonthTotals, 0, len(byMonth))
	for _, m := range byMonth {
		if m.Kwh > 0 {
			m.AvgPrice = m.Cost / m.Kwh
		}
		if days := domain.DaysInMonthKey(m.Month); days > 0 {
			m.PerDay = m.Cost / float64(days)
		}
		result = append(result, *m)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Month < result[j].Month
	})

	return result
}

// BuildSummary rolls monthly totals up into a current/previous/average
// comparison. The current month is taken from now (UTC).
//
// Months without entries yield nil Current or Previous; an empty ledger
// yields a zero Summary.
func BuildSummary(entries []domain.ChargingEntry, now time.Time) Summary {
	months := MonthlyTotals(entries)
	if len(months) == 0 {
		return Summary{}
	}

	today := now.UTC()
	currentKey := today.Format("2006-01")
	previousKey := time.Date(today.Year(), today.Month()-1, 15, 0, 0, 0, 0, time.UTC).Format("2006-01")

	var s Summary
	s.Months = len(months)

	var totalKwh, totalCost float64
	for i := range months {
		m := months[i]
		totalKwh += m.Kwh
		totalCost += m.Cost
		s.AvgKwh += m.Kwh
		s.AvgCost += m.Cost

		switch m.Month {
		case currentKey:
			s.Current = &months[i]
		case previousKey:
			s.Previous = &months[i]
		}
	}

	s.AvgKwh /= float64(len(months))
	s.AvgCost /= float64(len(months))
	if totalKwh > 0 {
		s.AvgPrice = totalCost / totalKwh
	}

	return s
}
