package main

import (
	"strings"
	"testing"
	"time"

	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/fbref"
)

func TestParseWindow(t *testing.T) {
	start, end, err := parseWindow("2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %s", end)
	}
}

func TestParseWindowRejectsBadInput(t *testing.T) {
	cases := []struct{ start, end string }{
		{"", "2025-03-31"},
		{"2025-03-01", ""},
		{"01/03/2025", "2025-03-31"},
		{"2025-03-31", "2025-03-01"},
	}
	for _, c := range cases {
		if _, _, err := parseWindow(c.start, c.end); err == nil {
			t.Errorf("expected an error for start=%q end=%q", c.start, c.end)
		}
	}
}

// Test mode prints the scraped rows, so the line must carry every stat
// a user would otherwise look for in the spreadsheet.
func TestRecordLine(t *testing.T) {
	r := &fbref.PlayerMatchRecord{
		Player: "Bukayo Saka", Team: "Arsenal", Opponent: "Chelsea",
		Date:    time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		Minutes: 90, Goals: 1, Assists: 2, XG: 0.42, XA: 0.31,
		Location: fbref.LocationHome,
	}
	line := recordLine(r)
	for _, want := range []string{
		"2025-03-16", "Bukayo Saka", "Arsenal vs Chelsea", "home",
		"min=90", "gls=1", "ast=2", "xG=0.4200", "xA=0.3100",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("record line missing %q: %s", want, line)
		}
	}
}
