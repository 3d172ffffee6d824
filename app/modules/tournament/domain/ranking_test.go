package tournamentdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamsOf(rows []StandingsRow) []TeamName {
	out := make([]TeamName, len(rows))
	for i, r := range rows {
		out[i] = r.Team
	}
	return out
}

func TestRankTieBreakers(t *testing.T) {
	tests := []struct {
		name string
		rows []StandingsRow
		want []TeamName
	}{
		{
			name: "table points first",
			rows: []StandingsRow{
				{Team: "A", TablePoints: 5},
				{Team: "B", TablePoints: 9},
			},
			want: []TeamName{"B", "A"},
		},
		{
			name: "point difference breaks equal points",
			rows: []StandingsRow{
				{Team: "A", TablePoints: 9, PointsFor: 50, PointsAgainst: 40},
				{Team: "B", TablePoints: 9, PointsFor: 60, PointsAgainst: 30},
			},
			want: []TeamName{"B", "A"},
		},
		{
			name: "tries scored breaks equal difference",
			rows: []StandingsRow{
				{Team: "A", TablePoints: 9, PointsFor: 50, PointsAgainst: 40, TriesFor: 5},
				{Team: "B", TablePoints: 9, PointsFor: 40, PointsAgainst: 30, TriesFor: 7},
			},
			want: []TeamName{"B", "A"},
		},
		{
			name: "name ascending is the final key",
			rows: []StandingsRow{
				{Team: "Cardiff", TablePoints: 9},
				{Team: "Bath", TablePoints: 9},
				{Team: "Exeter", TablePoints: 9},
			},
			want: []TeamName{"Bath", "Cardiff", "Exeter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := Rank(tt.rows)
			assert.Equal(t, tt.want, teamsOf(ranked))
			for i, r := range ranked {
				assert.Equal(t, i+1, r.Position)
			}
		})
	}
}

func TestRankIsTotalAndInputOrderIndependent(t *testing.T) {
	agg := NewStandingsAggregator(DefaultScoringRules())
	teams := roster(8)
	table, _, err := agg.Rebuild(teams, seasonResults(t, teams, 17))
	require.NoError(t, err)

	rows := table.Rows()
	want := teamsOf(Rank(rows))

	reversed := make([]StandingsRow, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}
	assert.Equal(t, want, teamsOf(Rank(reversed)))

	ranked := Rank(rows)
	for i := 1; i < len(ranked); i++ {
		assert.Negative(t, compareRows(ranked[i-1], ranked[i]), "rows %d and %d", i-1, i)
	}
}

func TestRankDoesNotModifyInput(t *testing.T) {
	rows := []StandingsRow{{Team: "B", TablePoints: 1}, {Team: "A", TablePoints: 2}}
	_ = Rank(rows)
	assert.Equal(t, TeamName("B"), rows[0].Team)
	assert.Zero(t, rows[0].Position)
}
