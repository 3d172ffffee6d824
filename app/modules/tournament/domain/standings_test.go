package tournamentdomain

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(id string, home, away TeamName, hs, as, ht, at int) MatchResult {
	return MatchResult{
		ID:        id,
		Home:      home,
		Away:      away,
		HomeScore: hs,
		AwayScore: as,
		HomeTries: ht,
		AwayTries: at,
		Status:    StatusCompleted,
	}
}

// seasonResults plays every fixture with pseudo-random scores.
func seasonResults(t *testing.T, teams []TeamName, seed uint64) []MatchResult {
	t.Helper()
	fixtures, err := GenerateFixtures(teams, DefaultLegs)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	results := make([]MatchResult, len(fixtures))
	for i, f := range fixtures {
		ht, at := rng.IntN(7), rng.IntN(7)
		results[i] = completed(
			fmt.Sprintf("m-%03d", i),
			f.Home, f.Away,
			ht*5+rng.IntN(10), at*5+rng.IntN(10),
			ht, at,
		)
	}
	return results
}

func assertRowInvariants(t *testing.T, rules ScoringRuleSet, table *Table) {
	t.Helper()
	var pf, pa int
	for _, row := range table.Rows() {
		assert.Equal(t, row.Played, row.Won+row.Drawn+row.Lost, "played for %s", row.Team)
		assert.Equal(t, rules.TablePoints(row), row.TablePoints, "table points for %s", row.Team)
		pf += row.PointsFor
		pa += row.PointsAgainst
	}
	assert.Equal(t, pf, pa, "points for and against must balance")
}

func TestApplyBonusScenarios(t *testing.T) {
	rules := DefaultScoringRules()
	agg := NewStandingsAggregator(rules)
	table, err := NewTable([]TeamName{"A", "B", "C", "D"})
	require.NoError(t, err)

	applied, err := agg.Apply(table, completed("r1", "A", "B", 20, 3, 5, 0))
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = agg.Apply(table, completed("r2", "C", "D", 15, 20, 2, 3))
	require.NoError(t, err)
	require.True(t, applied)

	a, _ := table.Row("A")
	assert.Equal(t, StandingsRow{
		Team: "A", Played: 1, Won: 1, PointsFor: 20, PointsAgainst: 3,
		TriesFor: 5, OffensiveBonuses: 1, TablePoints: 5,
	}, a)

	b, _ := table.Row("B")
	assert.Equal(t, 0, b.TablePoints)
	assert.Equal(t, 1, b.Lost)

	c, _ := table.Row("C")
	assert.Equal(t, 1, c.TablePoints)
	assert.Equal(t, 1, c.DefensiveBonuses)

	d, _ := table.Row("D")
	assert.Equal(t, 4, d.TablePoints)
	assert.Zero(t, d.OffensiveBonuses)

	assertRowInvariants(t, rules, table)
}

func TestApplyDraw(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	table, err := NewTable([]TeamName{"A", "B"})
	require.NoError(t, err)

	_, err = agg.Apply(table, completed("draw", "A", "B", 10, 10, 1, 1))
	require.NoError(t, err)

	for _, team := range []TeamName{"A", "B"} {
		row, ok := table.Row(team)
		require.True(t, ok)
		assert.Equal(t, 1, row.Drawn)
		assert.Equal(t, 2, row.TablePoints)
		assert.Zero(t, row.DefensiveBonuses)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	table, err := NewTable([]TeamName{"A", "B"})
	require.NoError(t, err)

	result := completed("same", "A", "B", 24, 17, 4, 2)
	applied, err := agg.Apply(table, result)
	require.NoError(t, err)
	require.True(t, applied)
	once := table.Rows()

	applied, err = agg.Apply(table, result)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, cmp.Diff(once, table.Rows()))
	assert.Equal(t, []string{"same"}, table.AppliedIDs())
}

func TestApplyValidation(t *testing.T) {
	tests := []struct {
		name   string
		result MatchResult
	}{
		{name: "unknown away team", result: completed("x", "A", "Z", 10, 3, 1, 0)},
		{name: "unknown home team", result: completed("x", "Z", "A", 10, 3, 1, 0)},
		{name: "team plays itself", result: completed("x", "A", "A", 10, 3, 1, 0)},
		{name: "negative score", result: completed("x", "A", "B", -1, 3, 0, 0)},
		{name: "negative tries", result: completed("x", "A", "B", 5, 3, -1, 0)},
		{name: "missing identity", result: completed("", "A", "B", 5, 3, 1, 0)},
		{name: "not completed", result: MatchResult{ID: "x", Home: "A", Away: "B", Status: StatusScheduled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewStandingsAggregator(DefaultScoringRules())
			table, err := NewTable([]TeamName{"A", "B"})
			require.NoError(t, err)
			before := table.Rows()

			require.ErrorIs(t, CheckResult(table, tt.result), ErrValidation)

			applied, err := agg.Apply(table, tt.result)
			assert.False(t, applied)
			require.ErrorIs(t, err, ErrValidation)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.result.ID, vErr.ResultID)
			assert.Empty(t, cmp.Diff(before, table.Rows()), "table must be untouched")
			assert.Empty(t, table.AppliedIDs())
		})
	}
}

func TestCheckResultLeavesTableUntouched(t *testing.T) {
	table, err := NewTable([]TeamName{"A", "B"})
	require.NoError(t, err)
	result := completed("x", "A", "B", 10, 3, 1, 0)

	require.NoError(t, CheckResult(table, result))
	assert.Empty(t, table.AppliedIDs())

	applied, err := NewStandingsAggregator(DefaultScoringRules()).Apply(table, result)
	require.NoError(t, err)
	require.True(t, applied)
	assert.NoError(t, CheckResult(table, result), "an applied identity is still well-formed")
}

func TestRebuildMatchesSequentialApply(t *testing.T) {
	rules := DefaultScoringRules()
	agg := NewStandingsAggregator(rules)
	teams := roster(6)
	results := seasonResults(t, teams, 42)

	sequential, err := NewTable(teams)
	require.NoError(t, err)
	for _, r := range results {
		_, err := agg.Apply(sequential, r)
		require.NoError(t, err)
	}

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 5; i++ {
		shuffled := append([]MatchResult(nil), results...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		rebuilt, report, err := agg.Rebuild(teams, shuffled)
		require.NoError(t, err)
		assert.Equal(t, len(results), report.Applied)
		assert.Empty(t, cmp.Diff(sequential.Rows(), rebuilt.Rows()))
		assert.Equal(t, sequential.AppliedIDs(), rebuilt.AppliedIDs())
		assertRowInvariants(t, rules, rebuilt)
	}
}

func TestRebuildIsDeterministic(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	teams := roster(5)
	results := seasonResults(t, teams, 3)

	first, _, err := agg.Rebuild(teams, results)
	require.NoError(t, err)
	second, _, err := agg.Rebuild(teams, results)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first.Rows(), second.Rows()))
}

func TestRebuildConflictingPayloadsAreOrderIndependent(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	teams := []TeamName{"A", "B"}
	x := completed("dup", "A", "B", 30, 0, 5, 0)
	y := completed("dup", "A", "B", 0, 30, 0, 5)

	forward, report, err := agg.Rebuild(teams, []MatchResult{x, y})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, []string{"dup"}, report.Duplicates)

	backward, _, err := agg.Rebuild(teams, []MatchResult{y, x})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(forward.Rows(), backward.Rows()))
}

func TestRebuildSkipsMalformedAndIgnoresPending(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	teams := []TeamName{"A", "B", "C"}
	results := []MatchResult{
		completed("r1", "A", "B", 20, 10, 3, 1),
		completed("r2", "A", "Z", 20, 10, 3, 1),
		{ID: "r3", Home: "B", Away: "C", Status: StatusScheduled},
		completed("r4", "C", "A", 7, 7, 1, 1),
	}

	table, report, err := agg.Rebuild(teams, results)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, []string{"r3"}, report.Ignored)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "r2", report.Rejected[0].ResultID)

	a, _ := table.Row("A")
	assert.Equal(t, 2, a.Played)
	assert.Equal(t, []string{"r1", "r4"}, table.AppliedIDs())
}

func TestRebuildEmptyLogIsZeroTable(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	table, report, err := agg.Rebuild([]TeamName{"A", "B"}, nil)
	require.NoError(t, err)
	assert.Zero(t, report.Applied)
	for _, row := range table.Rows() {
		assert.Equal(t, StandingsRow{Team: row.Team}, row)
	}
}

func TestRebuildInvalidRoster(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	_, _, err := agg.Rebuild([]TeamName{"A"}, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRestoreTableRoundTrip(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	teams := roster(4)
	original, _, err := agg.Rebuild(teams, seasonResults(t, teams, 9))
	require.NoError(t, err)

	restored, err := RestoreTable(original.Rows(), original.AppliedIDs())
	require.NoError(t, err)
	assert.Equal(t, original.Teams(), restored.Teams())
	assert.Empty(t, cmp.Diff(original.Rows(), restored.Rows()))
	assert.True(t, restored.HasApplied("m-000"))
}

func TestCloneIsIndependent(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	table, err := NewTable([]TeamName{"A", "B"})
	require.NoError(t, err)
	clone := table.Clone()

	_, err = agg.Apply(clone, completed("r1", "A", "B", 10, 0, 2, 0))
	require.NoError(t, err)

	a, _ := table.Row("A")
	assert.Zero(t, a.Played)
	assert.False(t, table.HasApplied("r1"))
}
