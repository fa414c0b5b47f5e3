package domain

import "testing"

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in string
		ok bool
	}{
		{"2024-02-29", true}, // leap day
		{"2023-02-29", false},
		{"2024-01-05", true},
		{"2024-13-01", false},
		{"2024-1-5", false},
		{"05/01/2024", false},
		{"", false},
	}

	for _, tc := range cases {
		_, err := ParseDate(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseDate(%q): err = %v, want ok=%v", tc.in, err, tc.ok)
		}
	}
}

func TestMonthKey(t *testing.T) {
	t.Parallel()

	if got := MonthKey("2024-02-15"); got != "2024-02" {
		t.Errorf("MonthKey = %q, want 2024-02", got)
	}
	if got := MonthKey("garbage"); got != "" {
		t.Errorf("MonthKey(garbage) = %q, want empty", got)
	}
}

func TestDaysInMonthKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key  string
		want int
	}{
		{"2024-02", 29}, // leap year
		{"2023-02", 28},
		{"2024-01", 31},
		{"2024-04", 30},
		{"bogus", 30},
	}

	for _, tc := range cases {
		if got := DaysInMonthKey(tc.key); got != tc.want {
			t.Errorf("DaysInMonthKey(%q) = %d, want %d", tc.key, got, tc.want)
		}
	}
}
