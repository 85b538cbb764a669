package fbref

import (
	"fmt"
	"sort"
	"time"
)

// Compile-time check to ensure PlayerMatchRecord implements Persistable
var _ Persistable = (*PlayerMatchRecord)(nil)

// PlayerMatchRecord is one row of output: a single player's statistics in
// a single match, seen from one team's side.
type PlayerMatchRecord struct {
	// Identity (primary key for the run archive)
	Player   string    `column:"player" dbtype:"TEXT NOT NULL" primary:"true"`
	Team     string    `column:"team" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Date     time.Time `column:"date" dbtype:"DATETIME" primary:"true" index:"true"`
	Opponent string    `column:"opponent" dbtype:"TEXT NOT NULL" primary:"true"`

	// Statistics
	Minutes int     `column:"minutes" dbtype:"INTEGER DEFAULT 0"`
	Goals   int     `column:"goals" dbtype:"INTEGER DEFAULT 0"`
	Assists int     `column:"assists" dbtype:"INTEGER DEFAULT 0"`
	XG      float64 `column:"xg" dbtype:"REAL DEFAULT 0.0"`
	// XA may legitimately be 0.0 either because the player generated no
	// expected assists or because the page carried no xg_assist field.
	// The two cases are not distinguished.
	XA float64 `column:"xa" dbtype:"REAL DEFAULT 0.0"`

	// Context
	Location string `column:"location" dbtype:"TEXT"` // "home" or "away"

	// Metadata
	CreatedAt time.Time `column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

const (
	LocationHome = "home"
	LocationAway = "away"
)

// MatchKey derives the composite confrontation key used for downstream
// joins. Not unique across seasons; the full date disambiguates repeats.
func (r *PlayerMatchRecord) MatchKey() string {
	return fmt.Sprintf("%s|%s|%s", r.Team, r.Opponent, r.Date.Format("2006-01-02"))
}

// dedupKey identifies a record for deduplication purposes
func (r *PlayerMatchRecord) dedupKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.Player, r.Team, r.Date.Format("2006-01-02"), r.Opponent)
}

// FormattedXG renders xG to exactly 4 decimal places
func (r *PlayerMatchRecord) FormattedXG() string {
	return fmt.Sprintf("%.4f", r.XG)
}

// FormattedXA renders xA to exactly 4 decimal places
func (r *PlayerMatchRecord) FormattedXA() string {
	return fmt.Sprintf("%.4f", r.XA)
}

// Dedupe collapses records sharing (player, team, date, opponent),
// keeping the later-observed one. Relative order of survivors follows
// first observation.
func Dedupe(records []*PlayerMatchRecord) []*PlayerMatchRecord {
	seen := make(map[string]int, len(records))
	var out []*PlayerMatchRecord
	for _, r := range records {
		key := r.dedupKey()
		if idx, ok := seen[key]; ok {
			out[idx] = r
			continue
		}
		seen[key] = len(out)
		out = append(out, r)
	}
	return out
}

// SortByDate orders records chronologically (stable, so same-day records
// keep their scrape order)
func SortByDate(records []*PlayerMatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the archive table name
func (r *PlayerMatchRecord) GetTableName() string {
	return "player_match_stats"
}

// GetPrimaryKey returns the primary key as a map
func (r *PlayerMatchRecord) GetPrimaryKey() map[string]any {
	return map[string]any{
		"player":   r.Player,
		"team":     r.Team,
		"date":     r.Date.Format("2006-01-02"),
		"opponent": r.Opponent,
	}
}

// BeforeSave stamps record metadata
func (r *PlayerMatchRecord) BeforeSave() error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
