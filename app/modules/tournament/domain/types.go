package tournamentdomain

import "time"

// TeamName identifies a team. Names are unique within a tournament.
type TeamName string

// Perspective selects one side of a match.
type Perspective int

const (
	Home Perspective = iota
	Away
)

func (p Perspective) String() string {
	if p == Away {
		return "away"
	}
	return "home"
}

// Outcome is the result of a match from one side's perspective.
type Outcome int

const (
	Loss Outcome = iota
	Draw
	Win
)

// MatchStatus is the lifecycle state of a recorded match.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusCompleted MatchStatus = "completed"
)

// Fixture is a scheduled pairing. Fixtures are read-only once generated.
type Fixture struct {
	Round int
	Leg   int
	Home  TeamName
	Away  TeamName
}

// ScheduledFixture is a fixture with its kickoff, once one has been assigned.
type ScheduledFixture struct {
	Fixture
	KickoffAt *time.Time
}

// MatchResult is a finished match as reported by the result-recording workflow.
type MatchResult struct {
	ID        string
	Home      TeamName
	Away      TeamName
	HomeScore int
	AwayScore int
	HomeTries int
	AwayTries int
	Status    MatchStatus
}

// side returns the (scored, conceded, triesFor, triesAgainst) view for one perspective.
func (m MatchResult) side(p Perspective) (scored, conceded, triesFor, triesAgainst int) {
	if p == Away {
		return m.AwayScore, m.HomeScore, m.AwayTries, m.HomeTries
	}
	return m.HomeScore, m.AwayScore, m.HomeTries, m.AwayTries
}

// OutcomeFor reports whether the given side won, drew or lost.
func (m MatchResult) OutcomeFor(p Perspective) Outcome {
	scored, conceded, _, _ := m.side(p)
	switch {
	case scored > conceded:
		return Win
	case scored < conceded:
		return Loss
	default:
		return Draw
	}
}

// Team returns the team playing on the given side.
func (m MatchResult) Team(p Perspective) TeamName {
	if p == Away {
		return m.Away
	}
	return m.Home
}
