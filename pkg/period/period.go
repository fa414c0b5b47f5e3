// Package period resolves a period selection into concrete date bounds.
//
// All calendar math is done in UTC so the resolved bounds do not depend
// on the machine's local timezone.
package period

import (
	"fmt"
	"time"

	"github.com/dmarinov/evlog/pkg/domain"
)

// Period is a resolved inclusive date range.
//
// From and To are ISO calendar days; both are empty for the all-time
// period, which matches every date.
type Period struct {
	Mode  domain.PeriodMode `json:"mode"`
	From  string            `json:"from"`
	To    string            `json:"to"`
	Label string            `json:"label"`
}

// Contains reports whether date falls inside the period.
//
// Unparseable dates never match a bounded period; the all-time period
// matches everything, including unparseable dates.
func (p Period) Contains(date string) bool {
	if p.Mode == domain.PeriodAllTime {
		return true
	}
	if !domain.IsValidDate(date) {
		return false
	}
	return date >= p.From && date <= p.To
}

// Resolver turns a period selection plus the current time into a Period.
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a resolver that reads the system clock.
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// NewResolverAt creates a resolver with an injected clock, for tests.
func NewResolverAt(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

// Resolve converts a selection into concrete bounds.
//
// Custom selections with a missing or invalid bound fall back to the
// current month, and the returned mode reflects the fallback. A custom
// range given backwards is swapped silently.
func (r *Resolver) Resolve(sel domain.PeriodSelection) Period {
	mode := domain.ParsePeriodMode(string(sel.Mode))

	if mode == domain.PeriodAllTime {
		return Period{Mode: mode, Label: "All time"}
	}

	now := r.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch mode {
	case domain.PeriodThisMonth:
		return monthPeriod(domain.PeriodThisMonth, "This month", today)

	case domain.PeriodLastMonth:
		// Day 15 anchors safely inside the previous month regardless
		// of month length.
		anchor := time.Date(today.Year(), today.Month()-1, 15, 0, 0, 0, 0, time.UTC)
		return monthPeriod(domain.PeriodLastMonth, "Last month", anchor)

	case domain.PeriodLast30:
		from := domain.FormatDate(today.AddDate(0, 0, -29))
		to := domain.FormatDate(today)
		return Period{
			Mode:  mode,
			From:  from,
			To:    to,
			Label: rangeLabel("Last 30 days", from, to),
		}

	default: // custom
		if !domain.IsValidDate(sel.From) || !domain.IsValidDate(sel.To) {
			return monthPeriod(domain.PeriodThisMonth, "This month", today)
		}
		from, to := sel.From, sel.To
		if from > to {
			from, to = to, from
		}
		return Period{
			Mode:  domain.PeriodCustom,
			From:  from,
			To:    to,
			Label: rangeLabel("Custom", from, to),
		}
	}
}

// monthPeriod builds the first-through-last-day period of anchor's month.
func monthPeriod(mode domain.PeriodMode, name string, anchor time.Time) Period {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(anchor.Year(), anchor.Month()+1, 0, 0, 0, 0, 0, time.UTC)

	from := domain.FormatDate(first)
	to := domain.FormatDate(last)

	return Period{Mode: mode, From: from, To: to, Label: rangeLabel(name, from, to)}
}

func rangeLabel(name, from, to string) string {
	return fmt.Sprintf("%s (%s → %s)", name, from, to)
}
