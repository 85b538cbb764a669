package fbref

import (
	"testing"
	"time"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestDedupeKeepsLastObservation(t *testing.T) {
	first := &PlayerMatchRecord{Player: "Saka", Team: "Arsenal", Opponent: "Chelsea", Date: day(2025, 3, 16), Goals: 0}
	second := &PlayerMatchRecord{Player: "Saka", Team: "Arsenal", Opponent: "Chelsea", Date: day(2025, 3, 16), Goals: 1}
	other := &PlayerMatchRecord{Player: "Rice", Team: "Arsenal", Opponent: "Chelsea", Date: day(2025, 3, 16)}

	out := Dedupe([]*PlayerMatchRecord{first, other, second})
	if len(out) != 2 {
		t.Fatalf("expected 2 records after dedupe, got %d", len(out))
	}
	if out[0].Player != "Saka" || out[0].Goals != 1 {
		t.Errorf("duplicate should resolve to the later observation, got %+v", out[0])
	}
	if out[1].Player != "Rice" {
		t.Errorf("survivor order should follow first observation, got %s", out[1].Player)
	}
}

func TestDedupeDistinguishesOpponent(t *testing.T) {
	a := &PlayerMatchRecord{Player: "Saka", Team: "Arsenal", Opponent: "Chelsea", Date: day(2025, 3, 16)}
	b := &PlayerMatchRecord{Player: "Saka", Team: "Arsenal", Opponent: "Spurs", Date: day(2025, 3, 16)}
	if out := Dedupe([]*PlayerMatchRecord{a, b}); len(out) != 2 {
		t.Errorf("different opponents must not collapse, got %d records", len(out))
	}
}

func TestSortByDateIsStable(t *testing.T) {
	records := []*PlayerMatchRecord{
		{Player: "C", Date: day(2025, 3, 20)},
		{Player: "A", Date: day(2025, 3, 16)},
		{Player: "B", Date: day(2025, 3, 16)},
	}
	SortByDate(records)
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if records[i].Player != w {
			t.Errorf("position %d: got %s, want %s", i, records[i].Player, w)
		}
	}
}

func TestFormattedExpectedGoals(t *testing.T) {
	r := &PlayerMatchRecord{XG: 0.42, XA: 0}
	if got := r.FormattedXG(); got != "0.4200" {
		t.Errorf("FormattedXG = %q, want 0.4200", got)
	}
	if got := r.FormattedXA(); got != "0.0000" {
		t.Errorf("FormattedXA = %q, want 0.0000", got)
	}
}

func TestMatchKey(t *testing.T) {
	r := &PlayerMatchRecord{Team: "Arsenal", Opponent: "Chelsea", Date: day(2025, 3, 16)}
	if got := r.MatchKey(); got != "Arsenal|Chelsea|2025-03-16" {
		t.Errorf("MatchKey = %q", got)
	}
}
