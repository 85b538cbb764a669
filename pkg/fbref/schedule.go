package fbref

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chili-guy/BOT-ESTAT-BETS/internal/logger"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/transport"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/util"
)

// MatchRef is one played fixture located on a scores-and-fixtures page
type MatchRef struct {
	HomeTeam string
	AwayTeam string
	Date     time.Time
	URL      string // match detail page, absolute
	Score    string // as rendered, e.g. "2-1"
}

// ScheduleCounters records why fixture rows were skipped. A single bad
// row never aborts the scan; it lands in one of these buckets instead.
type ScheduleCounters struct {
	Matches    int // rows yielding a usable MatchRef
	NoDate     int
	OutOfRange int
	NoTeams    int
	NotPlayed  int
	NoLink     int
}

// Merge folds another month's counters into this one
func (c *ScheduleCounters) Merge(other *ScheduleCounters) {
	c.Matches += other.Matches
	c.NoDate += other.NoDate
	c.OutOfRange += other.OutOfRange
	c.NoTeams += other.NoTeams
	c.NotPlayed += other.NotPlayed
	c.NoLink += other.NoLink
}

func (c *ScheduleCounters) String() string {
	return fmt.Sprintf("matches=%d no-date=%d out-of-range=%d no-teams=%d not-played=%d no-link=%d",
		c.Matches, c.NoDate, c.OutOfRange, c.NoTeams, c.NotPlayed, c.NoLink)
}

var (
	scoreRe    = regexp.MustCompile(`^\d+[\s\-:]\d+$`)
	dateOnlyRe = regexp.MustCompile(`^/?en/matches/\d{4}-\d{2}-\d{2}$`)
)

// how long a cached fixtures page for the season in progress stays
// usable before it is refetched. Finished seasons never go stale.
const currentSeasonCacheTTL = time.Hour

// ScheduleLocator finds played matches on a competition's fixtures
// page. Pages are cached, in memory for the lifetime of the locator
// and on disk across runs, so the months of one season share a single
// fetch.
type ScheduleLocator struct {
	fetcher transport.Fetcher

	// fixtures pages already fetched by this locator, keyed by
	// league and season
	pages map[string][]byte
}

func NewScheduleLocator(fetcher transport.Fetcher) *ScheduleLocator {
	return &ScheduleLocator{
		fetcher: fetcher,
		pages:   make(map[string][]byte),
	}
}

// FindPlayedMatches loads the fixtures page for the season containing
// (year, month) and returns the played matches dated inside [start, end].
// limit caps the number of matches returned; 0 means no cap.
func (s *ScheduleLocator) FindPlayedMatches(leagueID, year, month int, start, end time.Time, limit int) ([]MatchRef, *ScheduleCounters, error) {
	body, err := s.fixturesPage(leagueID, year, month)
	if err != nil {
		return nil, &ScheduleCounters{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, &ScheduleCounters{}, fmt.Errorf("error parsing fixtures HTML: %w", err)
	}

	matches, counters := PlayedMatchesFromDocument(doc, leagueID, start, end, limit)
	return matches, counters, nil
}

// fixturesPage returns the fixtures page for the season containing
// (year, month), from the in-memory cache, the disk cache or the
// network, in that order
func (s *ScheduleLocator) fixturesPage(leagueID, year, month int) ([]byte, error) {
	season := SeasonForMonth(year, month)
	key := fmt.Sprintf("%d_%s", leagueID, season)

	if body, ok := s.pages[key]; ok {
		return body, nil
	}

	path := filepath.Join(Config.CachePath, "fixtures_"+key+".html")
	if body := readCachedPage(path, season); body != nil {
		logger.Info("Using cached fixtures page", path)
		s.pages[key] = body
		return body, nil
	}

	url := FixturesURL(leagueID, year, month)
	logger.Inform("Fetching fixtures page", url)
	body, err := s.fetcher.Fetch(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures page: %w", err)
	}

	writeCachedPage(path, body)
	s.pages[key] = body
	return body, nil
}

// readCachedPage returns the cached page bytes, or nil when the cache
// entry is absent or stale. Pages for seasons already over are never
// stale; the season in progress keeps gaining results, so its page
// expires after a short TTL.
func readCachedPage(path, season string) []byte {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	now := time.Now()
	current := SeasonForMonth(now.Year(), int(now.Month()))
	if season == current && now.Sub(info.ModTime()) > currentSeasonCacheTTL {
		return nil
	}

	body, err := os.ReadFile(path)
	if err != nil || len(body) == 0 {
		return nil
	}
	return body
}

func writeCachedPage(path string, body []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("Cannot create cache directory", err)
		return
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		logger.Warn("Cannot write cache file", path, err)
	}
}

// PlayedMatchesFromDocument scans an already parsed fixtures document.
// Split out from the fetch so the row logic is testable against static HTML.
func PlayedMatchesFromDocument(doc *goquery.Document, leagueID int, start, end time.Time, limit int) ([]MatchRef, *ScheduleCounters) {
	counters := &ScheduleCounters{}

	table := findFixturesTable(doc, leagueID)
	if table == nil {
		logger.Warn("Fixtures table not found on schedule page")
		return nil, counters
	}

	var matches []MatchRef

	rows := table.Find("tr")
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		if limit > 0 && counters.Matches >= limit {
			return
		}

		cells := collectCells(row)
		if len(cells) < Config.MinRowCells {
			return
		}

		date, dateCell, ok := rowDate(cells)
		if !ok {
			counters.NoDate++
			return
		}
		if date.Before(start) || date.After(end) {
			counters.OutOfRange++
			return
		}

		home, away := rowTeams(cells)
		if home == "" || away == "" {
			counters.NoTeams++
			return
		}

		played, score := rowScore(cells)
		if !played {
			// Future fixtures carry no score and no statistics; do not
			// fetch their detail pages.
			logger.Info("Not yet played:", date.Format("2006-01-02"), home, "vs", away)
			counters.NotPlayed++
			return
		}

		link := rowMatchLink(cells, dateCell)
		if link == "" {
			logger.Warn("No usable match link for", home, "vs", away, "on", date.Format("2006-01-02"))
			counters.NoLink++
			return
		}

		matches = append(matches, MatchRef{
			HomeTeam: home,
			AwayTeam: away,
			Date:     date,
			URL:      link,
			Score:    score,
		})
		counters.Matches++
	})

	logger.Info("Schedule scan:", counters.String())
	return matches, counters
}

// findFixturesTable tries, in order: the canonical schedule table id for
// the competition, any table whose id carries the schedule marker, then
// any table whose id hints at a schedule or fixture list.
func findFixturesTable(doc *goquery.Document, leagueID int) *goquery.Selection {
	canonical := doc.Find(fmt.Sprintf("table#sched_%d_1", leagueID))
	if canonical.Length() > 0 {
		return canonical.First()
	}

	var found *goquery.Selection
	doc.Find("table[id]").EachWithBreak(func(i int, t *goquery.Selection) bool {
		id, _ := t.Attr("id")
		if strings.Contains(strings.ToLower(id), "sched") {
			found = t
			return false
		}
		return true
	})
	if found != nil {
		return found
	}

	doc.Find("table").EachWithBreak(func(i int, t *goquery.Selection) bool {
		id, _ := t.Attr("id")
		lower := strings.ToLower(id)
		if strings.Contains(lower, "schedule") || strings.Contains(lower, "fixture") {
			found = t
			return false
		}
		return true
	})
	return found
}

func collectCells(row *goquery.Selection) []*goquery.Selection {
	var cells []*goquery.Selection
	row.Find("th, td").Each(func(i int, c *goquery.Selection) {
		cells = append(cells, c)
	})
	return cells
}

// rowDate extracts the match date, preferring the machine readable
// data-date attribute over free text
func rowDate(cells []*goquery.Selection) (time.Time, *goquery.Selection, bool) {
	for _, cell := range cells {
		if attr, ok := cell.Attr("data-date"); ok && util.IsISODate(attr) {
			if t, err := time.Parse("2006-01-02", attr); err == nil {
				return t, cell, true
			}
		}
	}
	// Free text fallback over the leading cells
	scan := cells
	if len(scan) > 10 {
		scan = scan[:10]
	}
	for _, cell := range scan {
		text := strings.TrimSpace(cell.Text())
		if util.IsISODate(text) {
			if t, err := time.Parse("2006-01-02", text); err == nil {
				return t, cell, true
			}
		}
	}
	return time.Time{}, nil, false
}

// rowTeams extracts home and away names: named fields first, fixed
// column positions second, team-roster anchors last
func rowTeams(cells []*goquery.Selection) (string, string) {
	var home, away string

	for _, cell := range cells {
		stat, _ := cell.Attr("data-stat")
		switch stat {
		case "home_team":
			home = strings.TrimSpace(cell.Text())
		case "away_team":
			away = strings.TrimSpace(cell.Text())
		}
	}

	// Fixed column convention of the fixtures layout
	if home == "" && len(cells) > 4 {
		home = strings.TrimSpace(cells[4].Text())
	}
	if away == "" && len(cells) > 5 {
		away = strings.TrimSpace(cells[5].Text())
	}

	if home != "" && away != "" {
		return home, away
	}

	// Anchor scan: team names link to squad pages. Tokens that look like
	// numbers, dates, kick off times or weekday abbreviations are noise.
	var teamLinks []string
	for _, cell := range cells {
		cell.Find("a").Each(func(i int, a *goquery.Selection) {
			text := strings.TrimSpace(a.Text())
			href, _ := a.Attr("href")
			if text == "" || len(text) <= 2 || !strings.Contains(href, "/squads/") {
				return
			}
			if util.IsBareNumber(text) || util.IsISODate(text) || util.IsTimeOfDay(text) || util.IsWeekdayAbbrev(text) {
				return
			}
			teamLinks = append(teamLinks, text)
		})
	}
	if home == "" && len(teamLinks) > 0 {
		home = teamLinks[0]
	}
	if away == "" && len(teamLinks) > 1 {
		away = teamLinks[1]
	}
	return home, away
}

// rowScore decides whether the match has been played by looking for a
// score. A cell like "14:30" is a kick off time, not a score, so a
// colon separated pair only counts when its first part cannot be an
// hour of day.
func rowScore(cells []*goquery.Selection) (bool, string) {
	for _, cell := range cells {
		text := strings.TrimSpace(cell.Text())
		if len(text) > 10 || !scoreRe.MatchString(text) {
			continue
		}
		if strings.Contains(text, ":") {
			if util.DigitsToInt(strings.SplitN(text, ":", 2)[0]) <= 23 {
				continue
			}
		}
		return true, text
	}

	// Named score field fallback
	for _, cell := range cells {
		stat, _ := cell.Attr("data-stat")
		text := strings.TrimSpace(cell.Text())
		if strings.Contains(strings.ToLower(stat), "score") && text != "" {
			return true, text
		}
	}
	return false, ""
}

// rowMatchLink finds the match detail URL. The date cell's anchor is
// preferred. An anchor whose path is exactly /matches/YYYY-MM-DD points
// at a day listing, not a match, and cannot disambiguate same-day games
// in different competitions, so it is rejected in favour of a longer,
// id-bearing path.
func rowMatchLink(cells []*goquery.Selection, dateCell *goquery.Selection) string {
	if dateCell != nil {
		if href, ok := dateCell.Find("a").First().Attr("href"); ok {
			if strings.Contains(href, "/matches/") && !strings.Contains(href, "/schedule/") && !dateOnlyRe.MatchString(href) {
				return absoluteURL(href)
			}
		}
	}

	var link string
	for _, cell := range cells {
		cell.Find("a").EachWithBreak(func(i int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if href == "" || !strings.Contains(href, "/matches/") || strings.Contains(href, "/schedule/") {
				return true
			}
			if dateOnlyRe.MatchString(href) {
				return true
			}
			link = absoluteURL(href)
			return false
		})
		if link != "" {
			return link
		}
	}

	// Last resort: anything that smells like a match page
	for _, cell := range cells {
		cell.Find("a").EachWithBreak(func(i int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			lower := strings.ToLower(href)
			if href == "" || !strings.Contains(lower, "match") || strings.Contains(lower, "/schedule") {
				return true
			}
			if dateOnlyRe.MatchString(href) {
				return true
			}
			link = absoluteURL(href)
			return false
		})
		if link != "" {
			return link
		}
	}
	return ""
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return Config.BaseURL + href
}
