package fbref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The source site renders one player summary table per team, with opaque
// generated ids (stats_4ba7cbea_summary rather than stats_home_summary).
// Locating the right table is therefore a chain of heuristics tried in
// order until one yields a candidate. Each strategy is independent so it
// can be unit tested in isolation.
//
// Home/away assignment relies on the site's rendering order: the first
// summary table is the home side, the second the away side. This is a
// positional convention, not verified against team names; if the site
// ever swaps the order the location labels silently flip. Known
// fragility, documented rather than guessed around.

type tableStrategy struct {
	name   string
	locate func(doc *goquery.Document, location string) *goquery.Selection
}

var summaryTableChain = []tableStrategy{
	{name: "summary-id-position", locate: findSummaryByIDPosition},
	{name: "legacy-location-id", locate: findSummaryByLegacyID},
	{name: "summary-header-scan", locate: findSummaryByHeaderScan},
	{name: "any-player-table", locate: findAnyPlayerTable},
}

// A score is two short numbers around a hyphen, not flanked by further
// digits or hyphens. The flank guards keep a rendered ISO date like
// 2025-03-16 from reading as a score.
var scoreAnywhereRe = regexp.MustCompile(`(?:^|[^\d-])\d{1,2}\s*-\s*\d{1,2}(?:[^\d-]|$)`)

// locateSummaryTable runs the strategy chain and returns the chosen
// table and the name of the strategy that found it
func locateSummaryTable(doc *goquery.Document, location string) (*goquery.Selection, string) {
	for _, strategy := range summaryTableChain {
		if table := strategy.locate(doc, location); table != nil {
			return table, strategy.name
		}
	}
	return nil, ""
}

// summaryStatsTables collects tables whose id carries both the summary
// and the stats marker, in document order
func summaryStatsTables(doc *goquery.Document) []*goquery.Selection {
	var tables []*goquery.Selection
	doc.Find("table[id]").Each(func(i int, t *goquery.Selection) {
		id, _ := t.Attr("id")
		lower := strings.ToLower(id)
		if strings.Contains(lower, "summary") && strings.Contains(lower, "stats") {
			tables = append(tables, t)
		}
	})
	return tables
}

// pickByLocation applies the positional convention: first table is the
// home side, second the away side. A lone table serves either request.
func pickByLocation(tables []*goquery.Selection, location string) *goquery.Selection {
	switch {
	case len(tables) == 0:
		return nil
	case location == LocationHome:
		return tables[0]
	case location == LocationAway && len(tables) > 1:
		return tables[1]
	case len(tables) == 1:
		return tables[0]
	}
	return nil
}

func findSummaryByIDPosition(doc *goquery.Document, location string) *goquery.Selection {
	return pickByLocation(summaryStatsTables(doc), location)
}

// findSummaryByLegacyID tries the exact table ids older page revisions used
func findSummaryByLegacyID(doc *goquery.Document, location string) *goquery.Selection {
	patterns := []string{
		fmt.Sprintf("table#stats_%s_summary", location),
		fmt.Sprintf("table#stats_%s_players", location),
		fmt.Sprintf("table#stats_%s", location),
	}
	for _, pattern := range patterns {
		if sel := doc.Find(pattern); sel.Length() > 0 {
			return sel.First()
		}
	}
	return nil
}

// findSummaryByHeaderScan inspects tables whose id carries either the
// summary or the stats marker, looking for header columns that jointly
// indicate a player name and a core stat
func findSummaryByHeaderScan(doc *goquery.Document, location string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table[id]").EachWithBreak(func(i int, t *goquery.Selection) bool {
		id, _ := t.Attr("id")
		lower := strings.ToLower(id)
		if !strings.Contains(lower, "summary") && !strings.Contains(lower, "stats") {
			return true
		}
		header := headerText(t)
		if header == "" {
			return true
		}
		if strings.Contains(header, "player") && (strings.Contains(header, "min") || strings.Contains(header, "goals")) {
			found = t
			return false
		}
		return true
	})
	return found
}

// findAnyPlayerTable broadens the scan to every table with a player-name
// column and at least one of minutes/goals/assists, preferring tables
// whose id mentions summary, then applying the positional convention
func findAnyPlayerTable(doc *goquery.Document, location string) *goquery.Selection {
	var candidates []*goquery.Selection
	doc.Find("table").Each(func(i int, t *goquery.Selection) {
		header := headerText(t)
		if header == "" || !strings.Contains(header, "player") {
			return
		}
		if strings.Contains(header, "min") || strings.Contains(header, "goals") || strings.Contains(header, "assists") {
			candidates = append(candidates, t)
		}
	})

	var summaryCandidates []*goquery.Selection
	for _, t := range candidates {
		id, _ := t.Attr("id")
		if strings.Contains(strings.ToLower(id), "summary") {
			summaryCandidates = append(summaryCandidates, t)
		}
	}
	if len(summaryCandidates) > 0 {
		candidates = summaryCandidates
	}
	return pickByLocation(candidates, location)
}

// headerText joins a table's header cell texts, lowercased
func headerText(table *goquery.Selection) string {
	thead := table.Find("thead")
	if thead.Length() == 0 {
		return ""
	}
	var parts []string
	thead.Find("th").Each(func(i int, th *goquery.Selection) {
		parts = append(parts, strings.ToLower(strings.TrimSpace(th.Text())))
	})
	return strings.Join(parts, " ")
}

// pageHasScore reports whether any score-like text appears on the page.
// Its absence on a page with no stats table means the match has most
// likely not been played yet.
func pageHasScore(doc *goquery.Document) bool {
	found := false
	doc.Find("div, span").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if scoreAnywhereRe.MatchString(s.Text()) {
			found = true
			return false
		}
		return true
	})
	return found
}
