package tournamentdomain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(n int) []TeamName {
	teams := make([]TeamName, n)
	for i := range teams {
		teams[i] = TeamName(fmt.Sprintf("T%02d", i+1))
	}
	return teams
}

func TestGenerateFixturesFourTeams(t *testing.T) {
	fixtures, err := GenerateFixtures([]TeamName{"A", "B", "C", "D"}, 2)
	require.NoError(t, err)
	require.Len(t, fixtures, 12)

	rounds := Rounds(fixtures)
	require.Len(t, rounds, 6)
	for i, round := range rounds {
		assert.Len(t, round, 2, "round %d", i+1)
		assert.Equal(t, i+1, round[0].Round)
	}

	home := map[TeamName]int{}
	away := map[TeamName]int{}
	for _, f := range fixtures {
		home[f.Home]++
		away[f.Away]++
		if f.Round <= 3 {
			assert.Equal(t, 1, f.Leg)
		} else {
			assert.Equal(t, 2, f.Leg)
		}
	}
	for _, team := range []TeamName{"A", "B", "C", "D"} {
		assert.Equal(t, 3, home[team], "home games for %s", team)
		assert.Equal(t, 3, away[team], "away games for %s", team)
	}
}

func TestGenerateFixturesCoverage(t *testing.T) {
	for n := 2; n <= 11; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			teams := roster(n)
			fixtures, err := GenerateFixtures(teams, DefaultLegs)
			require.NoError(t, err)
			require.Len(t, fixtures, n*(n-1))

			ordered := map[[2]TeamName]int{}
			for _, f := range fixtures {
				assert.NotEqual(t, f.Home, f.Away)
				ordered[[2]TeamName{f.Home, f.Away}]++
			}
			for _, x := range teams {
				for _, y := range teams {
					if x == y {
						continue
					}
					assert.Equal(t, 1, ordered[[2]TeamName{x, y}], "%s v %s", x, y)
				}
			}
		})
	}
}

func TestGenerateFixturesNoTeamPlaysTwicePerRound(t *testing.T) {
	for _, n := range []int{4, 5, 7, 8} {
		fixtures, err := GenerateFixtures(roster(n), DefaultLegs)
		require.NoError(t, err)

		for _, round := range Rounds(fixtures) {
			seen := map[TeamName]bool{}
			for _, f := range round {
				assert.False(t, seen[f.Home], "%s twice in round %d", f.Home, f.Round)
				assert.False(t, seen[f.Away], "%s twice in round %d", f.Away, f.Round)
				seen[f.Home], seen[f.Away] = true, true
			}
		}
	}
}

func TestGenerateFixturesOddRosterUsesBye(t *testing.T) {
	fixtures, err := GenerateFixtures(roster(5), DefaultLegs)
	require.NoError(t, err)
	require.Len(t, fixtures, 20)

	rounds := Rounds(fixtures)
	require.Len(t, rounds, 10, "bye still consumes a round slot")
	for _, round := range rounds {
		assert.Len(t, round, 2, "one team rests each round")
	}
}

func TestGenerateFixturesSecondLegMirrorsFirst(t *testing.T) {
	fixtures, err := GenerateFixtures(roster(6), DefaultLegs)
	require.NoError(t, err)

	rounds := Rounds(fixtures)
	perLeg := len(rounds) / 2
	for r := 0; r < perLeg; r++ {
		first, second := rounds[r], rounds[r+perLeg]
		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Home, second[i].Away)
			assert.Equal(t, first[i].Away, second[i].Home)
			assert.Equal(t, first[i].Round+perLeg, second[i].Round)
		}
	}
}

func TestGenerateFixturesLegs(t *testing.T) {
	single, err := GenerateFixtures(roster(4), 1)
	require.NoError(t, err)
	assert.Len(t, single, 6)

	defaulted, err := GenerateFixtures(roster(4), 0)
	require.NoError(t, err)
	assert.Len(t, defaulted, 12)

	triple, err := GenerateFixtures(roster(4), 3)
	require.NoError(t, err)
	assert.Len(t, triple, 18)
	assert.Equal(t, single[0].Home, triple[12].Home)
}

func TestGenerateFixturesConfigurationErrors(t *testing.T) {
	tests := []struct {
		name       string
		teams      []TeamName
		legs       int
		teamsInErr []TeamName
	}{
		{name: "empty roster", teams: nil, legs: 2},
		{name: "single team", teams: []TeamName{"A"}, legs: 2, teamsInErr: []TeamName{"A"}},
		{name: "duplicate names", teams: []TeamName{"A", "B", "A"}, legs: 2, teamsInErr: []TeamName{"A"}},
		{name: "blank name", teams: []TeamName{"A", " "}, legs: 2},
		{name: "negative legs", teams: []TeamName{"A", "B"}, legs: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixtures, err := GenerateFixtures(tt.teams, tt.legs)
			assert.Nil(t, fixtures)
			require.ErrorIs(t, err, ErrConfiguration)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			if tt.teamsInErr != nil {
				assert.Equal(t, tt.teamsInErr, cfgErr.Teams)
			}
		})
	}
}

func TestGenerateFixturesDoesNotMutateRoster(t *testing.T) {
	teams := roster(5)
	before := append([]TeamName(nil), teams...)
	_, err := GenerateFixtures(teams, DefaultLegs)
	require.NoError(t, err)
	assert.Equal(t, before, teams)
}
