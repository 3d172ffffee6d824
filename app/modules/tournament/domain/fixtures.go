package tournamentdomain

import (
	"slices"
	"strings"
)

// DefaultLegs is a double round-robin: every team hosts every other team once.
const DefaultLegs = 2

// bye marks the placeholder slot added to an odd roster.
const bye = -1

type pairing struct {
	home, away int
}

// GenerateFixtures builds a round-robin schedule with the circle method.
//
// team[0] stays fixed while the remaining slots rotate one position per round; each round pairs
// slot i with slot n-1-i. An odd roster gets a bye slot whose fixtures are dropped, so the team
// drawn against it rests that round. Every following leg replays the first leg's pairings with
// home and away swapped on odd legs, numbered after the previous leg.
//
// legs == 0 selects DefaultLegs.
func GenerateFixtures(teams []TeamName, legs int) ([]Fixture, error) {
	if legs == 0 {
		legs = DefaultLegs
	}
	if legs < 0 {
		return nil, &ConfigurationError{Reason: "legs must be positive"}
	}
	if err := ValidateRoster(teams); err != nil {
		return nil, err
	}

	slots := make([]int, len(teams))
	for i := range slots {
		slots[i] = i
	}
	if len(slots)%2 != 0 {
		slots = append(slots, bye)
	}
	n := len(slots)
	roundsPerLeg := n - 1

	firstLeg := make([][]pairing, roundsPerLeg)
	for r := 0; r < roundsPerLeg; r++ {
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == bye || away == bye {
				continue
			}
			firstLeg[r] = append(firstLeg[r], pairing{home: home, away: away})
		}

		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}

	perLeg := len(teams) * (len(teams) - 1) / 2
	fixtures := make([]Fixture, 0, perLeg*legs)
	for leg := 0; leg < legs; leg++ {
		mirrored := leg%2 == 1
		for r, round := range firstLeg {
			for _, p := range round {
				home, away := teams[p.home], teams[p.away]
				if mirrored {
					home, away = away, home
				}
				fixtures = append(fixtures, Fixture{
					Round: leg*roundsPerLeg + r + 1,
					Leg:   leg + 1,
					Home:  home,
					Away:  away,
				})
			}
		}
	}
	return fixtures, nil
}

// ValidateRoster checks that a roster has at least two uniquely named teams.
func ValidateRoster(teams []TeamName) error {
	seen := make(map[TeamName]struct{}, len(teams))
	var blank, duplicates []TeamName
	for _, t := range teams {
		if strings.TrimSpace(string(t)) == "" {
			blank = append(blank, t)
			continue
		}
		if _, ok := seen[t]; ok {
			if !slices.Contains(duplicates, t) {
				duplicates = append(duplicates, t)
			}
			continue
		}
		seen[t] = struct{}{}
	}

	switch {
	case len(blank) > 0:
		return &ConfigurationError{Reason: "team names must not be empty"}
	case len(duplicates) > 0:
		return &ConfigurationError{Reason: "duplicate team names", Teams: duplicates}
	case len(seen) < 2:
		return &ConfigurationError{Reason: "at least two teams are required", Teams: slices.Clone(teams)}
	}
	return nil
}

// Rounds groups fixtures by round number, ordered by round.
func Rounds(fixtures []Fixture) [][]Fixture {
	byRound := make(map[int][]Fixture)
	for _, f := range fixtures {
		byRound[f.Round] = append(byRound[f.Round], f)
	}
	keys := make([]int, 0, len(byRound))
	for k := range byRound {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rounds := make([][]Fixture, len(keys))
	for i, k := range keys {
		rounds[i] = byRound[k]
	}
	return rounds
}
