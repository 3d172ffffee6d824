package tournamentexporters

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/xuri/excelize/v2"
)

// ImportedResult is one data row of a results sheet. Err is set when the row could not be read;
// Row is the 1-based spreadsheet row number.
type ImportedResult struct {
	Row    int
	Result tournamentdomain.MatchResult
	Err    error
}

var requiredColumns = []string{"result_id", "home", "away", "home_score", "away_score", "home_tries", "away_tries"}

// ParseResults reads match results from the first sheet of an XLSX document.
//
// The first non-empty row is the header. Column names are matched case-insensitively; a
// "status" column is optional and defaults to completed. Blank rows are skipped.
func ParseResults(data []byte) ([]ImportedResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("XLSX file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !blank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := make(map[string]int)
	for i, name := range rows[headerIdx] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var out []ImportedResult
	for i := headerIdx + 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		res, err := parseRow(rows[i], columns)
		out = append(out, ImportedResult{Row: i + 1, Result: res, Err: err})
	}
	return out, nil
}

func parseRow(row []string, columns map[string]int) (tournamentdomain.MatchResult, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	number := func(name string) (int, error) {
		v := cell(name)
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: %q is not a whole number", name, v)
		}
		return n, nil
	}

	r := tournamentdomain.MatchResult{
		ID:     cell("result_id"),
		Home:   tournamentdomain.TeamName(cell("home")),
		Away:   tournamentdomain.TeamName(cell("away")),
		Status: tournamentdomain.StatusCompleted,
	}
	if s := strings.ToLower(cell("status")); s != "" {
		r.Status = tournamentdomain.MatchStatus(s)
	}

	var errs []error
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"home_score", &r.HomeScore},
		{"away_score", &r.AwayScore},
		{"home_tries", &r.HomeTries},
		{"away_tries", &r.AwayTries},
	} {
		n, err := number(field.name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*field.dst = n
	}
	return r, errors.Join(errs...)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
