// Package tournamentexporters renders tournament data to spreadsheets and charts and reads
// result sheets back in.
package tournamentexporters

import (
	"fmt"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/xuri/excelize/v2"
)

const (
	StandingsSheet = "Standings"
	FixturesSheet  = "Fixtures"
)

var standingsHeader = []any{
	"Pos", "Team", "P", "W", "D", "L", "PF", "PA", "PD", "TF", "TA", "OB", "DB", "Pts",
}

var fixturesHeader = []any{"Round", "Leg", "Home", "Away", "Kickoff (UTC)"}

// StandingsWorkbook writes ranked standings and the schedule to an XLSX document.
func StandingsWorkbook(title string, ranked []tournamentdomain.StandingsRow, fixtures []tournamentdomain.ScheduledFixture) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StandingsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(FixturesSheet); err != nil {
		return nil, fmt.Errorf("failed to add fixtures sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellValue(StandingsSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := writeRow(f, StandingsSheet, 2, standingsHeader); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(StandingsSheet, 1, 2, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	for i, r := range ranked {
		row := []any{
			r.Position, string(r.Team), r.Played, r.Won, r.Drawn, r.Lost,
			r.PointsFor, r.PointsAgainst, r.PointDifference(), r.TriesFor, r.TriesAgainst,
			r.OffensiveBonuses, r.DefensiveBonuses, r.TablePoints,
		}
		if err := writeRow(f, StandingsSheet, i+3, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, FixturesSheet, 1, fixturesHeader); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(FixturesSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	for i, fx := range fixtures {
		kickoff := ""
		if fx.KickoffAt != nil {
			kickoff = fx.KickoffAt.UTC().Format(time.RFC3339)
		}
		row := []any{fx.Round, fx.Leg, string(fx.Home), string(fx.Away), kickoff}
		if err := writeRow(f, FixturesSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
