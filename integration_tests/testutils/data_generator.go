//go:build integration

package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
)

// TestDataGenerator creates rosters and results for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator creates a generator with an optional seed.
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	s := uint64(time.Now().UnixNano())
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(s), seed: s}
}

// Seed returns the seed the generator was created with.
func (g *TestDataGenerator) Seed() uint64 {
	return g.seed
}

// TournamentName returns a unique tournament name.
func (g *TestDataGenerator) TournamentName() string {
	return fmt.Sprintf("%s Cup %s", g.faker.City(), uuid.NewString()[:8])
}

// Roster returns n distinct club names.
func (g *TestDataGenerator) Roster(n int) []string {
	seen := make(map[string]struct{}, n)
	teams := make([]string, 0, n)
	for len(teams) < n {
		name := fmt.Sprintf("%s %s", g.faker.City(), g.faker.RandomString([]string{"RFC", "Rugby", "Warriors", "Harlequins"}))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		teams = append(teams, name)
	}
	return teams
}

// Result returns a completed result for a fixture with plausible rugby scores.
func (g *TestDataGenerator) Result(f tournamentdomain.Fixture) tournamentdomain.MatchResult {
	homeTries := g.faker.Number(0, 7)
	awayTries := g.faker.Number(0, 7)
	return tournamentdomain.MatchResult{
		ID:        uuid.NewString(),
		Home:      f.Home,
		Away:      f.Away,
		HomeScore: homeTries*5 + g.faker.Number(0, 4)*2 + g.faker.Number(0, 3)*3,
		AwayScore: awayTries*5 + g.faker.Number(0, 4)*2 + g.faker.Number(0, 3)*3,
		HomeTries: homeTries,
		AwayTries: awayTries,
		Status:    tournamentdomain.StatusCompleted,
	}
}
