// Package export writes scraped player rows to an xlsx workbook. When
// the target file already exists its header row dictates the column
// order, so rows can be appended to a hand-built spreadsheet without
// disturbing its layout; otherwise a fresh workbook with the standard
// columns is created.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/chili-guy/BOT-ESTAT-BETS/internal/logger"
	"github.com/chili-guy/BOT-ESTAT-BETS/pkg/fbref"
)

// DefaultColumns is the header row written to a new workbook. The adj
// column holds manual adjustments in the hand-kept sheets this format
// originated from; it is written as 0 so their formulas keep working.
var DefaultColumns = []string{
	"Player", "Team", "Date", "Opponent", "Minutes", "Goals", "Assists",
	"xG", "xA", "Confronto", "Location", "adj", "Year", "Month",
}

const expectedGoalsFormat = "0.0000"

// WriteRecords appends the records to the workbook at path, creating
// it first when absent. Returns the number of rows written.
func WriteRecords(path string, records []*fbref.PlayerMatchRecord) (int, error) {
	file, sheet, columns, startRow, err := openWorkbook(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	xgStyle, err := file.NewStyle(&excelize.Style{CustomNumFmt: strptr(expectedGoalsFormat)})
	if err != nil {
		return 0, fmt.Errorf("failed to create number format: %w", err)
	}

	for i, rec := range records {
		row := startRow + i
		for col, header := range columns {
			value, numeric := cellValue(rec, header)
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return 0, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return 0, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if numeric {
				if err := file.SetCellStyle(sheet, cell, cell, xgStyle); err != nil {
					return 0, fmt.Errorf("failed to style cell %s: %w", cell, err)
				}
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save workbook: %w", err)
	}
	logger.Inform("Wrote", len(records), "rows to", path)
	return len(records), nil
}

// openWorkbook opens or creates the workbook and returns it together
// with the active sheet name, the column order and the first free row
func openWorkbook(path string) (*excelize.File, string, []string, int, error) {
	if _, err := os.Stat(path); err == nil {
		file, err := excelize.OpenFile(path)
		if err != nil {
			return nil, "", nil, 0, fmt.Errorf("failed to open existing workbook: %w", err)
		}
		sheet := file.GetSheetName(0)
		rows, err := file.GetRows(sheet)
		if err != nil {
			file.Close()
			return nil, "", nil, 0, fmt.Errorf("failed to read workbook rows: %w", err)
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			logger.Info("Appending to existing workbook, keeping its columns")
			return file, sheet, rows[0], len(rows) + 1, nil
		}
		// empty workbook, treat as new
		writeHeader(file, sheet)
		return file, sheet, DefaultColumns, 2, nil
	}

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	writeHeader(file, sheet)
	return file, sheet, DefaultColumns, 2, nil
}

func writeHeader(file *excelize.File, sheet string) {
	for col, header := range DefaultColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		file.SetCellValue(sheet, cell, header)
	}
}

// cellValue maps a header label to the record field it names. Unknown
// labels yield nil so template columns this program does not populate
// stay empty. The second return marks values carrying the four decimal
// expected goals format.
func cellValue(rec *fbref.PlayerMatchRecord, header string) (any, bool) {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "player", "jogador":
		return rec.Player, false
	case "team", "time", "equipe":
		return rec.Team, false
	case "date", "data":
		return rec.Date.Format("2006-01-02"), false
	case "opponent", "adversario", "adversário":
		return rec.Opponent, false
	case "minutes", "min", "minutos":
		return rec.Minutes, false
	case "goals", "gols":
		return rec.Goals, false
	case "assists", "assistencias", "assistências":
		return rec.Assists, false
	case "xg":
		return rec.XG, true
	case "xa":
		return rec.XA, true
	case "confronto":
		return rec.MatchKey(), false
	case "location", "local":
		return rec.Location, false
	case "adj":
		return 0, false
	case "year", "ano":
		return rec.Date.Year(), false
	case "month", "mes", "mês":
		return int(rec.Date.Month()), false
	}
	return nil, false
}

// DefaultOutputPath names the workbook for a run when the user gives
// no explicit path
func DefaultOutputPath(leagueKey string, now time.Time) string {
	return fmt.Sprintf("estatisticas_%s_%s.xlsx", leagueKey, now.Format("2006-01-02"))
}

func strptr(s string) *string { return &s }
