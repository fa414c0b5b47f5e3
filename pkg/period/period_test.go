package period

import (
	"testing"
	"time"

	"github.com/dmarinov/evlog/pkg/domain"
)

// fixedClock returns a resolver pinned to the given UTC day.
func fixedClock(t *testing.T, date string) *Resolver {
	t.Helper()
	day, err := domain.ParseDate(date)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}
	return NewResolverAt(func() time.Time { return day })
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		today    string
		sel      domain.PeriodSelection
		wantMode domain.PeriodMode
		wantFrom string
		wantTo   string
	}{
		{
			name:     "this month",
			today:    "2024-06-12",
			sel:      domain.PeriodSelection{Mode: domain.PeriodThisMonth},
			wantMode: domain.PeriodThisMonth,
			wantFrom: "2024-06-01",
			wantTo:   "2024-06-30",
		},
		{
			name:     "this month in a leap February",
			today:    "2024-02-15",
			sel:      domain.PeriodSelection{Mode: domain.PeriodThisMonth},
			wantMode: domain.PeriodThisMonth,
			wantFrom: "2024-02-01",
			wantTo:   "2024-02-29",
		},
		{
			name:     "last month",
			today:    "2024-06-12",
			sel:      domain.PeriodSelection{Mode: domain.PeriodLastMonth},
			wantMode: domain.PeriodLastMonth,
			wantFrom: "2024-05-01",
			wantTo:   "2024-05-31",
		},
		{
			name:     "last month from 31st when previous month is shorter",
			today:    "2024-07-31",
			sel:      domain.PeriodSelection{Mode: domain.PeriodLastMonth},
			wantMode: domain.PeriodLastMonth,
			wantFrom: "2024-06-01",
			wantTo:   "2024-06-30",
		},
		{
			name:     "last month across the year boundary",
			today:    "2024-01-10",
			sel:      domain.PeriodSelection{Mode: domain.PeriodLastMonth},
			wantMode: domain.PeriodLastMonth,
			wantFrom: "2023-12-01",
			wantTo:   "2023-12-31",
		},
		{
			name:     "last 30 days",
			today:    "2024-03-15",
			sel:      domain.PeriodSelection{Mode: domain.PeriodLast30},
			wantMode: domain.PeriodLast30,
			wantFrom: "2024-02-15",
			wantTo:   "2024-03-15",
		},
		{
			name:     "custom range",
			today:    "2024-06-12",
			sel:      domain.PeriodSelection{Mode: domain.PeriodCustom, From: "2024-01-05", To: "2024-02-10"},
			wantMode: domain.PeriodCustom,
			wantFrom: "2024-01-05",
			wantTo:   "2024-02-10",
		},
		{
			name:     "custom range given backwards is swapped",
			today:    "2024-06-12",
			sel:      domain.PeriodSelection{Mode: domain.PeriodCustom, From: "2024-02-10", To: "2024-01-05"},
			wantMode: domain.PeriodCustom,
			wantFrom: "2024-01-05",
			wantTo:   "2024-02-10",
		},
		{
			name:     "custom with invalid bound falls back to this month",
			today:    "2024-06-12",
			sel:      domain.PeriodSelection{Mode: domain.PeriodCustom, From: "not-a-date", To: "2024-02-10"},
			wantMode: domain.PeriodThisMonth,
			wantFrom: "2024-06-01",
			wantTo:   "2024-06-30",
		},
		{
			name:     "custom with missing bound falls back to this month",
			today:    "2024-06-12",
			sel:      domain.PeriodSelection{Mode: domain.PeriodCustom, From: "2024-01-05"},
			wantMode: domain.PeriodThisMonth,
			wantFrom: "2024-06-01",
			wantTo:   "2024-06-30",
		},
		{
			name:     "unknown mode defaults to this month",
			today:    "2024-06-12",
			sel:      domain.PeriodSelection{Mode: "fortnight"},
			wantMode: domain.PeriodThisMonth,
			wantFrom: "2024-06-01",
			wantTo:   "2024-06-30",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fixedClock(t, tt.today).Resolve(tt.sel)

			if got.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", got.Mode, tt.wantMode)
			}
			if got.From != tt.wantFrom {
				t.Errorf("From = %q, want %q", got.From, tt.wantFrom)
			}
			if got.To != tt.wantTo {
				t.Errorf("To = %q, want %q", got.To, tt.wantTo)
			}
			if got.Label == "" {
				t.Error("Label is empty")
			}
		})
	}
}

func TestResolve_AllTime(t *testing.T) {
	got := fixedClock(t, "2024-06-12").Resolve(domain.PeriodSelection{Mode: domain.PeriodAllTime})

	if got.Mode != domain.PeriodAllTime {
		t.Errorf("Mode = %q, want %q", got.Mode, domain.PeriodAllTime)
	}
	if got.From != "" || got.To != "" {
		t.Errorf("bounds = (%q, %q), want empty", got.From, got.To)
	}
	if got.Label != "All time" {
		t.Errorf("Label = %q, want %q", got.Label, "All time")
	}
}

func TestResolve_Labels(t *testing.T) {
	r := fixedClock(t, "2024-02-15")

	got := r.Resolve(domain.PeriodSelection{Mode: domain.PeriodThisMonth})
	want := "This month (2024-02-01 → 2024-02-29)"
	if got.Label != want {
		t.Errorf("Label = %q, want %q", got.Label, want)
	}
}

func TestContains(t *testing.T) {
	bounded := Period{Mode: domain.PeriodCustom, From: "2024-01-01", To: "2024-01-31"}
	allTime := Period{Mode: domain.PeriodAllTime}

	tests := []struct {
		name   string
		period Period
		date   string
		want   bool
	}{
		{"inside range", bounded, "2024-01-15", true},
		{"on lower bound", bounded, "2024-01-01", true},
		{"on upper bound", bounded, "2024-01-31", true},
		{"before range", bounded, "2023-12-31", false},
		{"after range", bounded, "2024-02-01", false},
		{"unparseable date", bounded, "garbage", false},
		{"all-time matches anything", allTime, "1999-01-01", true},
		{"all-time matches unparseable", allTime, "garbage", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.period.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
