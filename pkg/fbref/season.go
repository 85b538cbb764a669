package fbref

import (
	"fmt"
	"time"
)

// SeasonForMonth returns the season label ("2025-2026") containing the
// given calendar month. European league seasons run August to May:
// months 8-12 fall in the season starting that year, months 1-7 in the
// season that started the year before.
func SeasonForMonth(year, month int) string {
	if month >= 8 {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// FixturesURL builds the scores-and-fixtures page URL for the season
// containing (year, month) in the given competition
func FixturesURL(leagueID, year, month int) string {
	season := SeasonForMonth(year, month)
	return fmt.Sprintf("%s/en/comps/%d/%s/schedule/%s-Scores-and-Fixtures",
		Config.BaseURL, leagueID, season, season)
}

// MonthsBetween lists the distinct (year, month) pairs touched by the
// inclusive date range, in chronological order
func MonthsBetween(start, end time.Time) [][2]int {
	var months [][2]int
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !current.After(last) {
		months = append(months, [2]int{current.Year(), int(current.Month())})
		current = current.AddDate(0, 1, 0)
	}
	return months
}
