package tournamentdomain

import (
	"cmp"
	"slices"
)

// Rank orders rows by table points, point difference and tries scored (all descending),
// then by team name ascending, and stamps each row with its 1-based position.
// The input slice is not modified.
func Rank(rows []StandingsRow) []StandingsRow {
	ranked := slices.Clone(rows)
	slices.SortStableFunc(ranked, compareRows)
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

func compareRows(a, b StandingsRow) int {
	if c := cmp.Compare(b.TablePoints, a.TablePoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.PointDifference(), a.PointDifference()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.TriesFor, a.TriesFor); c != 0 {
		return c
	}
	return cmp.Compare(a.Team, b.Team)
}
