package fbref

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/transport"
)

const matchPageHTML = `<html>
<head><title>Arsenal vs Chelsea Match Report</title></head>
<body>
<div class="scorebox"><div class="score">2-1</div></div>
<table id="stats_18bb7c10_summary">
<thead>
<tr><th>Performance</th><th>Expected</th></tr>
<tr><th>Player</th><th>Min</th><th>Gls</th><th>Ast</th><th>xG</th><th>xAG</th></tr>
</thead>
<tbody>
<tr>
  <th data-stat="player">Bukayo Saka</th>
  <td data-stat="minutes">90</td>
  <td data-stat="goals">1</td>
  <td data-stat="assists">0</td>
  <td data-stat="xg">0.42</td>
  <td data-stat="xg_assist">0,31</td>
</tr>
<tr>
  <th data-stat="player">Declan Rice</th>
  <td data-stat="minutes">85</td>
  <td data-stat="goals">0</td>
  <td data-stat="assists">1</td>
  <td data-stat="xg">0.10</td>
  <td data-stat="xag_alt">9.90</td>
</tr>
<tr class="thead">
  <th data-stat="player">Player</th>
  <td data-stat="minutes">Min</td>
  <td data-stat="goals">Gls</td>
</tr>
<tr>
  <th data-stat="player">11 Players</th>
  <td data-stat="minutes">990</td>
  <td data-stat="goals">2</td>
  <td data-stat="assists">1</td>
  <td data-stat="xg">1.80</td>
  <td data-stat="xg_assist">1.20</td>
</tr>
<tr>
  <th data-stat="player">Reserves</th>
  <td data-stat="minutes"></td>
  <td data-stat="goals"></td>
</tr>
</tbody>
</table>
<table id="stats_cff3d9bb_summary">
<thead>
<tr><th>Player</th><th>Min</th><th>Gls</th><th>Ast</th><th>xG</th></tr>
</thead>
<tbody>
<tr>
  <th data-stat="player">Cole Palmer</th>
  <td data-stat="minutes">90</td>
  <td data-stat="goals">1</td>
  <td data-stat="assists">0</td>
  <td data-stat="xg">0.55</td>
</tr>
</tbody>
</table>
</body></html>`

func TestPlayerStatsFromDocumentHomeSide(t *testing.T) {
	doc := parseHTML(t, matchPageHTML)
	records := PlayerStatsFromDocument(doc, "Arsenal", "Chelsea", day(2025, 3, 16), LocationHome)

	require.Len(t, records, 2, "only the two real player rows survive filtering")

	saka := records[0]
	assert.Equal(t, "Bukayo Saka", saka.Player)
	assert.Equal(t, "Arsenal", saka.Team)
	assert.Equal(t, "Chelsea", saka.Opponent)
	assert.Equal(t, LocationHome, saka.Location)
	assert.Equal(t, 90, saka.Minutes)
	assert.Equal(t, 1, saka.Goals)
	assert.Equal(t, 0, saka.Assists)
	assert.InDelta(t, 0.42, saka.XG, 0.0001)
	assert.Equal(t, "0.3100", saka.FormattedXA(), "comma decimal must parse")

	rice := records[1]
	assert.Equal(t, "Declan Rice", rice.Player)
	assert.Equal(t, 1, rice.Assists)
	assert.Equal(t, "0.0000", rice.FormattedXA(),
		"a lookalike field name must not feed expected assists")
}

func TestPlayerStatsFromDocumentAwaySide(t *testing.T) {
	doc := parseHTML(t, matchPageHTML)
	records := PlayerStatsFromDocument(doc, "Chelsea", "Arsenal", day(2025, 3, 16), LocationAway)

	require.Len(t, records, 1)
	assert.Equal(t, "Cole Palmer", records[0].Player)
	assert.Equal(t, LocationAway, records[0].Location)
	assert.InDelta(t, 0.55, records[0].XG, 0.0001)
	assert.Zero(t, records[0].XA)
}

func TestSubtotalRowIsDropped(t *testing.T) {
	doc := parseHTML(t, matchPageHTML)
	records := PlayerStatsFromDocument(doc, "Arsenal", "Chelsea", day(2025, 3, 16), LocationHome)
	for _, r := range records {
		assert.LessOrEqual(t, r.Minutes, Config.MaxPlayerMinutes,
			"no aggregate row may survive: %s played %d minutes", r.Player, r.Minutes)
		assert.NotContains(t, r.Player, "Players")
	}
}

// Pages for matches that have not kicked off show neither a stats table
// nor a score. The extractor must come back empty without complaint.
func TestUnplayedMatchPageYieldsNothing(t *testing.T) {
	html := `<html><head><title>Arsenal vs Chelsea</title></head>
	<body><div>Kick off at 16:30</div></body></html>`
	doc := parseHTML(t, html)
	records := PlayerStatsFromDocument(doc, "Arsenal", "Chelsea", day(2025, 9, 16), LocationHome)
	assert.Empty(t, records)
	assert.False(t, pageHasScore(doc))
}

// A rendered date contains digit-hyphen-digit runs. It must not make
// an unplayed match page look like it already has a score.
func TestDateTextIsNotAScore(t *testing.T) {
	html := `<html><body>
	<div>Premier League</div>
	<span>Saturday 2025-03-16, kick off 16:30</span>
	</body></html>`
	doc := parseHTML(t, html)
	assert.False(t, pageHasScore(doc))

	played := parseHTML(t, `<html><body><div class="score">2-1</div></body></html>`)
	assert.True(t, pageHasScore(played))
}

func TestLegacyTableIDs(t *testing.T) {
	html := `<html><body>
	<table id="stats_away_players">
	<thead><tr><th>Squad</th><th>Time</th></tr></thead>
	<tbody>
	<tr><th data-stat="player">Cole Palmer</th><td data-stat="minutes">90</td><td data-stat="goals">1</td></tr>
	</tbody>
	</table>
	</body></html>`
	doc := parseHTML(t, html)

	table, strategy := locateSummaryTable(doc, LocationAway)
	require.NotNil(t, table)
	assert.Equal(t, "legacy-location-id", strategy)

	records := PlayerStatsFromDocument(doc, "Chelsea", "Arsenal", day(2025, 3, 16), LocationAway)
	require.Len(t, records, 1)
	assert.Equal(t, "Cole Palmer", records[0].Player)
	assert.Equal(t, 90, records[0].Minutes)
}

func TestAnyPlayerTableFallback(t *testing.T) {
	html := `<html><body>
	<table id="lineup_a">
	<thead><tr><th>Player</th><th>Min</th><th>Gls</th></tr></thead>
	<tbody>
	<tr><th data-stat="player">Somebody</th><td data-stat="minutes">72</td><td data-stat="goals">0</td></tr>
	</tbody>
	</table>
	</body></html>`
	doc := parseHTML(t, html)

	table, strategy := locateSummaryTable(doc, LocationHome)
	require.NotNil(t, table)
	assert.Equal(t, "any-player-table", strategy)
}

func TestPositionalHomeAwayAssignment(t *testing.T) {
	doc := parseHTML(t, matchPageHTML)

	home, _ := locateSummaryTable(doc, LocationHome)
	away, _ := locateSummaryTable(doc, LocationAway)
	require.NotNil(t, home)
	require.NotNil(t, away)

	homeID, _ := home.Attr("id")
	awayID, _ := away.Attr("id")
	assert.Equal(t, "stats_18bb7c10_summary", homeID)
	assert.Equal(t, "stats_cff3d9bb_summary", awayID)
}

// throttlingFetcher answers the first n calls with a rate limit error,
// then serves the page
type throttlingFetcher struct {
	failures int
	calls    int
	page     string
}

func (f *throttlingFetcher) Fetch(url string) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("%s: %w", url, transport.ErrRateLimited)
	}
	return []byte(f.page), nil
}

func TestRateLimitRetriesOnce(t *testing.T) {
	fastConfig(t)
	fetcher := &throttlingFetcher{failures: 1, page: matchPageHTML}
	extractor := NewStatsExtractor(fetcher)

	records := extractor.ExtractPlayerStats(
		"https://fbref.com/en/matches/abc123de/Arsenal-Chelsea",
		"Arsenal", "Chelsea", day(2025, 3, 16), LocationHome)

	assert.Equal(t, 2, fetcher.calls, "one retry after the first rate limit response")
	require.Len(t, records, 2)
}

func TestRateLimitGivesUpAfterRetry(t *testing.T) {
	fastConfig(t)
	fetcher := &throttlingFetcher{failures: 2, page: matchPageHTML}
	extractor := NewStatsExtractor(fetcher)

	records := extractor.ExtractPlayerStats(
		"https://fbref.com/en/matches/abc123de/Arsenal-Chelsea",
		"Arsenal", "Chelsea", day(2025, 3, 16), LocationHome)

	assert.Equal(t, 2, fetcher.calls, "a failed retry must not trigger further attempts")
	assert.Empty(t, records)
}

func TestNonMatchURLIsRefused(t *testing.T) {
	fastConfig(t)
	fetcher := &throttlingFetcher{page: matchPageHTML}
	extractor := NewStatsExtractor(fetcher)

	records := extractor.ExtractPlayerStats(
		"https://fbref.com/en/comps/9/schedule/", "Arsenal", "Chelsea", day(2025, 3, 16), LocationHome)

	assert.Zero(t, fetcher.calls, "non match URLs are not fetched at all")
	assert.Empty(t, records)
}

// When the tagged cells all come back zero the header row still tells
// us which column is which. Expected assists are deliberately never
// recovered this way.
func TestHeaderPositionFallback(t *testing.T) {
	html := `<html><body>
	<table id="stats_old_layout_summary">
	<thead><tr><th>Player</th><th>Min</th><th>Gls</th><th>Ast</th><th>xG</th><th>xAG</th></tr></thead>
	<tbody>
	<tr><th>Old Format Player</th><td>78</td><td>1</td><td>1</td><td>0.66</td><td>0.90</td></tr>
	</tbody>
	</table>
	</body></html>`
	doc := parseHTML(t, html)
	records := PlayerStatsFromDocument(doc, "Arsenal", "Chelsea", day(2020, 1, 12), LocationHome)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Old Format Player", r.Player)
	assert.Equal(t, 78, r.Minutes)
	assert.Equal(t, 1, r.Goals)
	assert.Equal(t, 1, r.Assists)
	assert.InDelta(t, 0.66, r.XG, 0.0001)
	assert.Zero(t, r.XA, "expected assists must never come from positional recovery")
}
