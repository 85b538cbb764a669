package fbref

import (
	"fmt"
	"time"

	"github.com/chili-guy/BOT-ESTAT-BETS/internal/logger"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/transport"
)

// RunOptions describes one scraping run
type RunOptions struct {
	League League
	Start  time.Time
	End    time.Time
	Limit  int  // cap on matches processed across the whole run, 0 for no cap
	DryRun bool // scan schedules only, skip the match detail pages
}

// RunResult aggregates everything a run produced
type RunResult struct {
	Records  []*PlayerMatchRecord
	Matches  []MatchRef
	Counters ScheduleCounters
	Months   int
}

// Runner drives a full scraping run: it walks the requested months,
// locates played matches through the schedule locator and extracts
// both sides' player rows from every match detail page. All fetching
// is sequential with deliberate pauses between pages.
type Runner struct {
	locator   *ScheduleLocator
	extractor *StatsExtractor
}

func NewRunner(fetcher transport.Fetcher) *Runner {
	return &Runner{
		locator:   NewScheduleLocator(fetcher),
		extractor: NewStatsExtractor(fetcher),
	}
}

// Run executes the scraping run described by opts
func (r *Runner) Run(opts RunOptions) (*RunResult, error) {
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("end date %s precedes start date %s",
			opts.End.Format("2006-01-02"), opts.Start.Format("2006-01-02"))
	}

	result := &RunResult{}
	months := MonthsBetween(opts.Start, opts.End)
	logger.Highlight("Scraping", opts.League.Name, "from",
		opts.Start.Format("2006-01-02"), "to", opts.End.Format("2006-01-02"),
		fmt.Sprintf("(%d month(s))", len(months)))

	for i, ym := range months {
		year, month := ym[0], ym[1]
		if i > 0 {
			time.Sleep(Config.BetweenMonths)
		}
		result.Months++

		remaining := 0
		if opts.Limit > 0 {
			remaining = opts.Limit - len(result.Matches)
			if remaining <= 0 {
				logger.Inform("Match limit reached, stopping month scan")
				break
			}
		}

		matches, counters, err := r.matchesForMonth(opts.League.ID, year, month, opts.Start, opts.End, remaining)
		if err != nil {
			logger.Error("Skipping month", fmt.Sprintf("%d-%02d", year, month), err)
			continue
		}
		result.Counters.Merge(counters)
		result.Matches = append(result.Matches, matches...)

		if opts.DryRun {
			continue
		}

		for j, m := range matches {
			if j > 0 {
				time.Sleep(Config.BetweenMatches)
			}
			logger.Inform("Match:", m.Date.Format("2006-01-02"), m.HomeTeam, m.Score, m.AwayTeam)

			home := r.extractor.ExtractPlayerStats(m.URL, m.HomeTeam, m.AwayTeam, m.Date, LocationHome)
			away := r.extractor.ExtractPlayerStats(m.URL, m.AwayTeam, m.HomeTeam, m.Date, LocationAway)
			result.Records = append(result.Records, home...)
			result.Records = append(result.Records, away...)
		}
	}

	result.Records = Dedupe(result.Records)
	SortByDate(result.Records)

	logger.Highlight("Run complete:", len(result.Matches), "matches,",
		len(result.Records), "player rows,", result.Counters.String())
	return result, nil
}

// matchesForMonth asks the locator for played matches dated inside
// (year, month), clamped to the run window
func (r *Runner) matchesForMonth(leagueID, year, month int, start, end time.Time, limit int) ([]MatchRef, *ScheduleCounters, error) {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	if monthStart.Before(start) {
		monthStart = start
	}
	if monthEnd.After(end) {
		monthEnd = end
	}

	return r.locator.FindPlayedMatches(leagueID, year, month, monthStart, monthEnd, limit)
}
