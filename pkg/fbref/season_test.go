package fbref

import (
	"testing"
	"time"
)

func TestSeasonForMonth(t *testing.T) {
	cases := []struct {
		year, month int
		want        string
	}{
		{2025, 8, "2025-2026"},
		{2025, 9, "2025-2026"},
		{2025, 12, "2025-2026"},
		{2025, 1, "2024-2025"},
		{2025, 3, "2024-2025"},
		{2025, 7, "2024-2025"},
		{2024, 8, "2024-2025"},
	}
	for _, c := range cases {
		if got := SeasonForMonth(c.year, c.month); got != c.want {
			t.Errorf("SeasonForMonth(%d, %d) = %q, want %q", c.year, c.month, got, c.want)
		}
	}
}

func TestFixturesURL(t *testing.T) {
	got := FixturesURL(9, 2025, 9)
	want := "https://fbref.com/en/comps/9/2025-2026/schedule/2025-2026-Scores-and-Fixtures"
	if got != want {
		t.Errorf("FixturesURL = %q, want %q", got, want)
	}
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	months := MonthsBetween(start, end)
	want := [][2]int{{2024, 11}, {2024, 12}, {2025, 1}, {2025, 2}}
	if len(months) != len(want) {
		t.Fatalf("expected %d months, got %d: %v", len(want), len(months), months)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("month %d = %v, want %v", i, months[i], want[i])
		}
	}
}

func TestMonthsBetweenSingleMonth(t *testing.T) {
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	months := MonthsBetween(day, day)
	if len(months) != 1 || months[0] != [2]int{2025, 4} {
		t.Errorf("expected a single month, got %v", months)
	}
}

func TestLookupLeague(t *testing.T) {
	league, err := LookupLeague("premier")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if league.ID != 9 {
		t.Errorf("premier league id = %d, want 9", league.ID)
	}

	if _, err := LookupLeague("curling"); err == nil {
		t.Error("expected an error for an unknown competition key")
	}
}
