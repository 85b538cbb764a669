package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chili-guy/BOT-ESTAT-BETS/internal/logger"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/export"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/fbref"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/transport"
)

func main() {
	leagueKey := flag.String("league", "premier", "competition to scrape: "+strings.Join(fbref.LeagueKeys(), ", "))
	startStr := flag.String("start", "", "first date of the window, YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "last date of the window, YYYY-MM-DD (required)")
	output := flag.String("output", "", "xlsx file to write; appended to when it already exists")
	limit := flag.Int("limit", 0, "stop after this many matches (0 = no limit)")
	testMode := flag.Bool("test", false, "scrape and print the results without writing the spreadsheet or the archive")
	scanOnly := flag.Bool("scan", false, "scan the schedule only, do not fetch match pages")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	debug := flag.Bool("debug", false, "enable debug logging")
	logBoth := flag.Bool("logfile", false, "mirror log output to /tmp/estatbets.log")
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.DEBUG)
	}
	if *logBoth {
		logger.SetShowDateTime(true)
		logger.SetLogOutput('b')
	}

	league, err := fbref.LookupLeague(*leagueKey)
	if err != nil {
		logger.Fatal(err.Error())
	}

	start, end, err := parseWindow(*startStr, *endStr)
	if err != nil {
		logger.Fatal(err.Error())
	}

	if err := fbref.ValidateConfig(fbref.Config); err != nil {
		logger.Fatal("invalid configuration:", err)
	}

	path := *output
	if path == "" {
		path = export.DefaultOutputPath(league.Key, time.Now())
	}

	logger.Highlight("Competition:", league.Name, fmt.Sprintf("(%s)", league.Country))
	logger.Inform("Window:", start.Format("2006-01-02"), "to", end.Format("2006-01-02"))
	logger.Inform("Output:", path)
	if *testMode {
		logger.Inform("Test mode: results will be printed, nothing will be written")
	}
	if *scanOnly {
		logger.Inform("Scan mode: schedule only, no match pages will be fetched")
	}

	if !*yes && !*testMode && !*scanOnly && !confirm() {
		logger.Inform("Aborted")
		return
	}

	runner := fbref.NewRunner(transport.NewHardenedFetcher(fbref.Config.UserAgent))
	result, err := runner.Run(fbref.RunOptions{
		League: league,
		Start:  start,
		End:    end,
		Limit:  *limit,
		DryRun: *scanOnly,
	})
	if err != nil {
		logger.Fatal(err.Error())
	}

	if *scanOnly {
		printSummary(result)
		return
	}

	if *testMode {
		printSummary(result)
		printRecords(result.Records)
		return
	}

	if len(result.Records) == 0 {
		logger.Warn("No player rows were extracted.")
		logger.Warn("Possible causes: the window holds no played matches,")
		logger.Warn("the site is rate limiting this address, or the page")
		logger.Warn("layout changed. Rerun with -scan to inspect the schedule scan.")
		return
	}

	archive(result.Records)

	if _, err := export.WriteRecords(path, result.Records); err != nil {
		logger.Fatal("export failed:", err)
	}
	logger.Highlight("Done:", len(result.Records), "player rows in", path)
}

func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both -start and -end are required (YYYY-MM-DD)")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -start date %q: %w", startStr, err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -end date %q: %w", endStr, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("-end %s precedes -start %s", endStr, startStr)
	}
	return start, end, nil
}

// confirm prompts before a run starts. A full run can take a long time
// with all the pacing delays, so an accidental start is worth avoiding.
// Accepts English and Portuguese affirmatives.
func confirm() bool {
	fmt.Print("Start scraping? / Iniciar a coleta? [y/s/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}

// archive stores the run's rows in the local database so past runs can
// be inspected without rescraping. Failure here only logs; the export
// still goes ahead.
func archive(records []*fbref.PlayerMatchRecord) {
	if err := fbref.CreateTable(&fbref.PlayerMatchRecord{}); err != nil {
		logger.Warn("cannot prepare archive table:", err)
		return
	}
	objs := make([]fbref.Persistable, len(records))
	for i, r := range records {
		objs[i] = r
	}
	if err := fbref.BulkSave(objs); err != nil {
		logger.Warn("cannot archive run:", err)
		return
	}
	logger.Info("Archived", len(records), "rows to", fbref.Config.DBPath)
	if err := fbref.CloseDatabase(); err != nil {
		logger.Warn("error closing archive database:", err)
	}
}

func printSummary(result *fbref.RunResult) {
	logger.Highlight("Schedule scan summary")
	logger.Inform("Months scanned:", result.Months)
	logger.Inform("Played matches found:", len(result.Matches))
	logger.Inform("Row accounting:", result.Counters.String())
	for _, m := range result.Matches {
		logger.Info(" ", m.Date.Format("2006-01-02"), m.HomeTeam, m.Score, m.AwayTeam)
	}
}

func printRecords(records []*fbref.PlayerMatchRecord) {
	logger.Highlight("Extracted", len(records), "player rows")
	for _, r := range records {
		logger.Info(recordLine(r))
	}
}

// recordLine renders one player row for console inspection, with the
// expected goals figures in their 4 decimal output form
func recordLine(r *fbref.PlayerMatchRecord) string {
	return fmt.Sprintf("%s  %-24s %s vs %s (%s)  min=%d gls=%d ast=%d xG=%s xA=%s",
		r.Date.Format("2006-01-02"), r.Player, r.Team, r.Opponent, r.Location,
		r.Minutes, r.Goals, r.Assists, r.FormattedXG(), r.FormattedXA())
}
