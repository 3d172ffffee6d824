package tournamentdomain

import (
	"cmp"
	"errors"
	"slices"
)

// StandingsRow is one team's accumulated record.
// Played == Won+Drawn+Lost and TablePoints is always derived from the counters.
type StandingsRow struct {
	Team             TeamName
	Position         int
	Played           int
	Won              int
	Drawn            int
	Lost             int
	PointsFor        int
	PointsAgainst    int
	TriesFor         int
	TriesAgainst     int
	OffensiveBonuses int
	DefensiveBonuses int
	TablePoints      int
}

// PointDifference is points scored minus points conceded.
func (r StandingsRow) PointDifference() int {
	return r.PointsFor - r.PointsAgainst
}

// Table is the mutable standings of one tournament together with the identities
// of every result already folded into it.
type Table struct {
	teams   []TeamName
	rows    map[TeamName]*StandingsRow
	applied map[string]struct{}
}

// NewTable creates an all-zero table for the roster.
func NewTable(teams []TeamName) (*Table, error) {
	if err := ValidateRoster(teams); err != nil {
		return nil, err
	}
	t := &Table{
		teams:   slices.Clone(teams),
		rows:    make(map[TeamName]*StandingsRow, len(teams)),
		applied: make(map[string]struct{}),
	}
	for _, team := range teams {
		t.rows[team] = &StandingsRow{Team: team}
	}
	return t, nil
}

// RestoreTable rebuilds a table from persisted rows and applied result identities.
// Row order defines the roster order.
func RestoreTable(rows []StandingsRow, appliedIDs []string) (*Table, error) {
	teams := make([]TeamName, len(rows))
	for i, r := range rows {
		teams[i] = r.Team
	}
	t, err := NewTable(teams)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		row := r
		row.Position = 0
		t.rows[r.Team] = &row
	}
	for _, id := range appliedIDs {
		t.applied[id] = struct{}{}
	}
	return t, nil
}

// Teams returns the roster in its original order.
func (t *Table) Teams() []TeamName {
	return slices.Clone(t.teams)
}

// Row returns a copy of a team's row.
func (t *Table) Row(team TeamName) (StandingsRow, bool) {
	r, ok := t.rows[team]
	if !ok {
		return StandingsRow{}, false
	}
	return *r, true
}

// Rows returns copies of all rows in roster order.
func (t *Table) Rows() []StandingsRow {
	out := make([]StandingsRow, len(t.teams))
	for i, team := range t.teams {
		out[i] = *t.rows[team]
	}
	return out
}

// HasApplied reports whether a result identity is already part of the table.
func (t *Table) HasApplied(resultID string) bool {
	_, ok := t.applied[resultID]
	return ok
}

// AppliedIDs returns the applied result identities in sorted order.
func (t *Table) AppliedIDs() []string {
	ids := make([]string, 0, len(t.applied))
	for id := range t.applied {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		teams:   slices.Clone(t.teams),
		rows:    make(map[TeamName]*StandingsRow, len(t.rows)),
		applied: make(map[string]struct{}, len(t.applied)),
	}
	for k, v := range t.rows {
		row := *v
		c.rows[k] = &row
	}
	for id := range t.applied {
		c.applied[id] = struct{}{}
	}
	return c
}

// Aggregator folds match results into standings tables.
type Aggregator interface {
	// Apply folds one result into table, mutating exactly the two rows involved.
	// It returns false without error when the result identity was applied before.
	Apply(table *Table, result MatchResult) (bool, error)

	// Rebuild replays results into a fresh table for the roster.
	Rebuild(teams []TeamName, results []MatchResult) (*Table, RebuildReport, error)
}

// RebuildReport describes what a full recompute did with each input result.
type RebuildReport struct {
	Applied    int
	Duplicates []string
	Ignored    []string
	Rejected   []*ValidationError
}

// StandingsAggregator implements Aggregator for a fixed rule set.
type StandingsAggregator struct {
	rules ScoringRuleSet
}

var _ Aggregator = (*StandingsAggregator)(nil)

// NewStandingsAggregator returns an aggregator scoring with rules.
func NewStandingsAggregator(rules ScoringRuleSet) *StandingsAggregator {
	return &StandingsAggregator{rules: rules}
}

// Rules returns the rule set used by the aggregator.
func (a *StandingsAggregator) Rules() ScoringRuleSet {
	return a.rules
}

// Apply validates result and folds it into table.
// A malformed result leaves the table untouched and returns a *ValidationError.
func (a *StandingsAggregator) Apply(table *Table, result MatchResult) (bool, error) {
	if err := CheckResult(table, result); err != nil {
		return false, err
	}
	if table.HasApplied(result.ID) {
		return false, nil
	}

	a.accumulate(table.rows[result.Home], result, Home)
	a.accumulate(table.rows[result.Away], result, Away)
	table.applied[result.ID] = struct{}{}
	return true, nil
}

// Rebuild resets every row to zero and replays the completed results.
//
// Results are replayed sorted by identity and fingerprint, so the output does not depend on
// input order even when a log holds two different payloads under one identity. Malformed results
// are reported and skipped; results that are not completed are ignored.
func (a *StandingsAggregator) Rebuild(teams []TeamName, results []MatchResult) (*Table, RebuildReport, error) {
	table, err := NewTable(teams)
	if err != nil {
		return nil, RebuildReport{}, err
	}

	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(x, y MatchResult) int {
		if c := cmp.Compare(x.ID, y.ID); c != 0 {
			return c
		}
		return cmp.Compare(ResultFingerprint(x), ResultFingerprint(y))
	})

	var report RebuildReport
	for _, r := range ordered {
		if r.Status != StatusCompleted {
			report.Ignored = append(report.Ignored, r.ID)
			continue
		}
		applied, err := a.Apply(table, r)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				report.Rejected = append(report.Rejected, vErr)
				continue
			}
			return nil, report, err
		}
		if !applied {
			report.Duplicates = append(report.Duplicates, r.ID)
			continue
		}
		report.Applied++
	}
	return table, report, nil
}

func (a *StandingsAggregator) accumulate(row *StandingsRow, result MatchResult, p Perspective) {
	scored, conceded, triesFor, triesAgainst := result.side(p)

	row.Played++
	row.PointsFor += scored
	row.PointsAgainst += conceded
	row.TriesFor += triesFor
	row.TriesAgainst += triesAgainst

	switch result.OutcomeFor(p) {
	case Win:
		row.Won++
	case Draw:
		row.Drawn++
	default:
		row.Lost++
	}

	bonus := a.rules.BonusFor(result, p)
	if bonus.Offensive {
		row.OffensiveBonuses++
	}
	if bonus.Defensive {
		row.DefensiveBonuses++
	}

	row.TablePoints = a.rules.TablePoints(*row)
}

// CheckResult reports whether result is a completed, well-formed result between two teams of
// table. The table is not modified.
func CheckResult(table *Table, result MatchResult) error {
	if err := validateResult(table, result); err != nil {
		return err
	}
	if result.Status != StatusCompleted {
		return &ValidationError{ResultID: result.ID, Reason: "result is not completed"}
	}
	return nil
}

func validateResult(table *Table, r MatchResult) error {
	invalid := func(reason string) error {
		return &ValidationError{ResultID: r.ID, Reason: reason}
	}
	switch {
	case r.ID == "":
		return invalid("result identity is required")
	case r.HomeScore < 0 || r.AwayScore < 0:
		return invalid("scores must not be negative")
	case r.HomeTries < 0 || r.AwayTries < 0:
		return invalid("try counts must not be negative")
	case r.Home == r.Away:
		return invalid("home and away team must differ: " + string(r.Home))
	}
	if _, ok := table.rows[r.Home]; !ok {
		return invalid("unknown home team " + string(r.Home))
	}
	if _, ok := table.rows[r.Away]; !ok {
		return invalid("unknown away team " + string(r.Away))
	}
	return nil
}
