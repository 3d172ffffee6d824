package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamentexporters "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/exporters"
)

// readRoster reads one team per line. Blank lines and lines starting with # are skipped.
func readRoster(path string) ([]tournamentdomain.TeamName, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()
	return parseRoster(f)
}

func parseRoster(r io.Reader) ([]tournamentdomain.TeamName, error) {
	var teams []tournamentdomain.TeamName
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		teams = append(teams, tournamentdomain.TeamName(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	return teams, nil
}

func printSchedule(w io.Writer, teams []tournamentdomain.TeamName, legs int, workbook string) error {
	fixtures, err := tournamentdomain.GenerateFixtures(teams, legs)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, round := range tournamentdomain.Rounds(fixtures) {
		fmt.Fprintf(tw, "Round %d (leg %d)\n", round[0].Round, round[0].Leg)
		for _, f := range round {
			fmt.Fprintf(tw, "\t%s\tv\t%s\n", f.Home, f.Away)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if workbook == "" {
		return nil
	}
	scheduled := make([]tournamentdomain.ScheduledFixture, len(fixtures))
	for i, f := range fixtures {
		scheduled[i] = tournamentdomain.ScheduledFixture{Fixture: f}
	}
	table, err := tournamentdomain.NewTable(teams)
	if err != nil {
		return err
	}
	data, err := tournamentexporters.StandingsWorkbook("Schedule", tournamentdomain.Rank(table.Rows()), scheduled)
	if err != nil {
		return err
	}
	return os.WriteFile(workbook, data, 0o644)
}

type tableOutputs struct {
	workbook string
	chart    string
}

func printTable(w io.Writer, teams []tournamentdomain.TeamName, results []byte, out tableOutputs) error {
	imported, err := tournamentexporters.ParseResults(results)
	if err != nil {
		return err
	}

	var entries []tournamentdomain.MatchResult
	for _, row := range imported {
		if row.Err != nil {
			fmt.Fprintf(w, "skipping row %d: %v\n", row.Row, row.Err)
			continue
		}
		entries = append(entries, row.Result)
	}

	aggregator := tournamentdomain.NewStandingsAggregator(tournamentdomain.DefaultScoringRules())
	table, report, err := aggregator.Rebuild(teams, entries)
	if err != nil {
		return err
	}
	for _, rejected := range report.Rejected {
		fmt.Fprintf(w, "rejected: %v\n", rejected)
	}
	for _, id := range report.Duplicates {
		fmt.Fprintf(w, "duplicate result %s ignored\n", id)
	}

	ranked := tournamentdomain.Rank(table.Rows())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Pos\tTeam\tP\tW\tD\tL\tPF\tPA\tPD\tTB\tLB\tPts\t")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\t%d\t%d\t\n",
			r.Position, r.Team, r.Played, r.Won, r.Drawn, r.Lost,
			r.PointsFor, r.PointsAgainst, r.PointDifference(),
			r.OffensiveBonuses, r.DefensiveBonuses, r.TablePoints)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if out.workbook != "" {
		data, err := tournamentexporters.StandingsWorkbook("Standings", ranked, nil)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.workbook, data, 0o644); err != nil {
			return err
		}
	}
	if out.chart != "" {
		data, err := tournamentexporters.StandingsChart("Standings", ranked, tournamentexporters.DefaultPalette)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.chart, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
