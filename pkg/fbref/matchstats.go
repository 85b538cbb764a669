package fbref

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chili-guy/BOT-ESTAT-BETS/internal/logger"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/transport"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/util"
)

// StatsExtractor pulls per-player lines for one side of a match from the
// match detail page. Extraction is deliberately forgiving: any failure
// (fetch error, missing table, unparseable rows) logs and yields an
// empty slice so one broken page never aborts a multi-month run.
type StatsExtractor struct {
	fetcher transport.Fetcher
}

func NewStatsExtractor(fetcher transport.Fetcher) *StatsExtractor {
	return &StatsExtractor{fetcher: fetcher}
}

// ExtractPlayerStats fetches the match page and returns the player rows
// for the requested side. location is LocationHome or LocationAway.
// Sleeps before the fetch to keep request pacing polite, and on a rate
// limit response waits and retries once before backing off.
func (e *StatsExtractor) ExtractPlayerStats(matchURL, team, opponent string, date time.Time, location string) []*PlayerMatchRecord {
	if !strings.Contains(matchURL, "/matches/") {
		logger.Warn("not a match detail page, skipping", matchURL)
		return nil
	}

	time.Sleep(Config.MatchPageDelay)

	body, err := e.fetcher.Fetch(matchURL)
	if err != nil && errors.Is(err, transport.ErrRateLimited) {
		logger.Warn("rate limited, waiting before retry", matchURL)
		time.Sleep(Config.RateLimitRetry)
		body, err = e.fetcher.Fetch(matchURL)
		if err != nil && errors.Is(err, transport.ErrRateLimited) {
			logger.Error("rate limited twice, backing off", matchURL)
			time.Sleep(Config.RateLimitBackoff)
			return nil
		}
	}
	if err != nil {
		logger.Error("failed to fetch match page", matchURL, err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Error("failed to parse match page", matchURL, err)
		return nil
	}

	title := strings.ToLower(doc.Find("title").Text())
	if strings.Contains(title, "schedule") || strings.Contains(title, "fixtures") {
		logger.Warn("landed on a schedule page instead of a match page", matchURL)
		return nil
	}

	return PlayerStatsFromDocument(doc, team, opponent, date, location)
}

// PlayerStatsFromDocument extracts one side's player rows from an
// already parsed match page
func PlayerStatsFromDocument(doc *goquery.Document, team, opponent string, date time.Time, location string) []*PlayerMatchRecord {
	table, strategy := locateSummaryTable(doc, location)
	if table == nil {
		if !pageHasScore(doc) {
			logger.Inform("no stats table and no score on page, match likely not played yet", team, "vs", opponent)
		} else {
			logger.Warn("could not locate a player stats table", team, "vs", opponent)
		}
		return nil
	}
	logger.Debug("located stats table via", strategy, "for", team, location)

	headers := tableHeaders(table)
	var records []*PlayerMatchRecord

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		if class, _ := row.Attr("class"); strings.Contains(class, "thead") || strings.Contains(class, "spacer") {
			return
		}
		cells := collectCells(row)
		if len(cells) < Config.MinRowCells {
			return
		}
		texts := make([]string, len(cells))
		for j, c := range cells {
			texts[j] = strings.TrimSpace(c.Text())
		}
		if rec := recordFromRow(row, texts, headers, team, opponent, date, location); rec != nil {
			records = append(records, rec)
		}
	})

	logger.Debug("extracted", len(records), "player rows for", team)
	return records
}

// recordFromRow builds a single player record, or nil when the row is a
// header repeat, a subtotal line or otherwise not an individual player
func recordFromRow(row *goquery.Selection, cells []string, headers []string, team, opponent string, date time.Time, location string) *PlayerMatchRecord {
	name := cellByStat(row, "player")
	if name == "" {
		name = cells[0]
	}
	name = strings.TrimSpace(name)

	switch {
	case name == "", name == "Player", name == "Reserves", name == "Team Total":
		return nil
	case util.IsSubtotalLabel(name):
		return nil
	case strings.Contains(strings.ToLower(name), "player") && strings.ContainsAny(name, "0123456789"):
		return nil
	}

	rec := &PlayerMatchRecord{
		Player:   name,
		Team:     team,
		Date:     date,
		Opponent: opponent,
		Location: location,
		Minutes:  util.DigitsToInt(cellByStat(row, "minutes")),
		Goals:    util.DigitsToInt(cellByStat(row, "goals")),
		Assists:  util.DigitsToInt(cellByStat(row, "assists")),
		XG:       util.LocaleFloat(cellByStat(row, "xg")),
		XA:       util.LocaleFloat(cellByStat(row, "xg_assist")),
	}

	if rec.Minutes == 0 && rec.Goals == 0 && rec.Assists == 0 && rec.XG == 0 {
		fillFromHeaderPositions(rec, cells, headers)
	}

	// aggregate rows list the whole side's minutes and slip past the
	// name filters on some page revisions
	if rec.Minutes > Config.MaxPlayerMinutes {
		return nil
	}
	return rec
}

// cellByStat returns the text of the row cell tagged with the given
// data-stat attribute, empty when absent
func cellByStat(row *goquery.Selection, stat string) string {
	var text string
	row.Find("th, td").EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if v, ok := cell.Attr("data-stat"); ok && v == stat {
			text = strings.TrimSpace(cell.Text())
			return false
		}
		return true
	})
	return text
}

// tableHeaders returns the table's lowercased header cell texts in order
func tableHeaders(table *goquery.Selection) []string {
	var headers []string
	table.Find("thead tr").Last().Find("th").Each(func(i int, th *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(th.Text())))
	})
	return headers
}

// fillFromHeaderPositions recovers minutes, goals, assists and xG by
// matching header labels to cell positions when the attribute-tagged
// cells all came back zero. Expected assists are never recovered this
// way: the labels are too ambiguous to tell the real column from its
// lookalikes, and a fabricated value is worse than a missing one.
func fillFromHeaderPositions(rec *PlayerMatchRecord, cells []string, headers []string) {
	for i, h := range headers {
		if i >= len(cells) {
			break
		}
		switch {
		case rec.Minutes == 0 && strings.Contains(h, "min"):
			rec.Minutes = util.DigitsToInt(cells[i])
		case rec.Goals == 0 && (h == "gls" || h == "g"):
			rec.Goals = util.DigitsToInt(cells[i])
		case rec.Assists == 0 && (h == "ast" || h == "a"):
			rec.Assists = util.DigitsToInt(cells[i])
		case rec.XG == 0 && strings.Contains(h, "xg") && !strings.Contains(h, "xag"):
			rec.XG = util.LocaleFloat(cells[i])
		}
	}
}
