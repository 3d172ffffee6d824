package tournamentdb

import (
	"context"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tournament is a named competition with a fixed roster.
// StandingsVersion increases with every write to the standings rows.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	Name             string    `bun:"name,notnull,unique"`
	Legs             int       `bun:"legs,notnull"`
	StandingsVersion int64     `bun:"standings_version,notnull,default:0"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Tournament)(nil)

func (t *Tournament) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Team is a roster entry. Seed keeps the roster order the fixtures were generated from.
type Team struct {
	bun.BaseModel `bun:"table:tournament_teams,alias:tt"`

	TournamentID uuid.UUID `bun:"tournament_id,pk,type:uuid"`
	Name         string    `bun:"name,pk"`
	Seed         int       `bun:"seed,notnull"`
}

// Fixture is one scheduled pairing.
type Fixture struct {
	bun.BaseModel `bun:"table:tournament_fixtures,alias:tf"`

	TournamentID uuid.UUID  `bun:"tournament_id,pk,type:uuid"`
	Round        int        `bun:"round,pk"`
	Home         string     `bun:"home,pk"`
	Away         string     `bun:"away,notnull"`
	Leg          int        `bun:"leg,notnull"`
	KickoffAt    *time.Time `bun:"kickoff_at,nullzero"`
}

// ToDomain converts the row to a domain fixture.
func (f *Fixture) ToDomain() tournamentdomain.Fixture {
	return tournamentdomain.Fixture{
		Round: f.Round,
		Leg:   f.Leg,
		Home:  tournamentdomain.TeamName(f.Home),
		Away:  tournamentdomain.TeamName(f.Away),
	}
}

// MatchResult is an accepted result. A result identity is stored at most once per tournament.
type MatchResult struct {
	bun.BaseModel `bun:"table:match_results,alias:mr"`

	TournamentID uuid.UUID `bun:"tournament_id,pk,type:uuid"`
	ResultID     string    `bun:"result_id,pk"`
	Home         string    `bun:"home,notnull"`
	Away         string    `bun:"away,notnull"`
	HomeScore    int       `bun:"home_score,notnull"`
	AwayScore    int       `bun:"away_score,notnull"`
	HomeTries    int       `bun:"home_tries,notnull"`
	AwayTries    int       `bun:"away_tries,notnull"`
	Status       string    `bun:"status,notnull"`
	Fingerprint  string    `bun:"fingerprint,notnull"`
	RecordedAt   time.Time `bun:"recorded_at,nullzero,notnull,default:current_timestamp"`
}

// MatchResultFromDomain builds the row for r.
func MatchResultFromDomain(tournamentID uuid.UUID, r tournamentdomain.MatchResult) *MatchResult {
	return &MatchResult{
		TournamentID: tournamentID,
		ResultID:     r.ID,
		Home:         string(r.Home),
		Away:         string(r.Away),
		HomeScore:    r.HomeScore,
		AwayScore:    r.AwayScore,
		HomeTries:    r.HomeTries,
		AwayTries:    r.AwayTries,
		Status:       string(r.Status),
		Fingerprint:  tournamentdomain.ResultFingerprint(r),
	}
}

// ToDomain converts the row to a domain result.
func (m *MatchResult) ToDomain() tournamentdomain.MatchResult {
	return tournamentdomain.MatchResult{
		ID:        m.ResultID,
		Home:      tournamentdomain.TeamName(m.Home),
		Away:      tournamentdomain.TeamName(m.Away),
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		HomeTries: m.HomeTries,
		AwayTries: m.AwayTries,
		Status:    tournamentdomain.MatchStatus(m.Status),
	}
}

// ResultConflict records a payload that arrived under an already stored identity with different data.
type ResultConflict struct {
	bun.BaseModel `bun:"table:match_result_conflicts,alias:rc"`

	ID           int64                        `bun:"id,pk,autoincrement"`
	TournamentID uuid.UUID                    `bun:"tournament_id,type:uuid,notnull"`
	ResultID     string                       `bun:"result_id,notnull"`
	Fingerprint  string                       `bun:"fingerprint,notnull"`
	Payload      tournamentdomain.MatchResult `bun:"payload,type:jsonb,notnull"`
	ReceivedAt   time.Time                    `bun:"received_at,nullzero,notnull,default:current_timestamp"`
}

// Standing is the persisted row of one team.
type Standing struct {
	bun.BaseModel `bun:"table:tournament_standings,alias:ts"`

	TournamentID     uuid.UUID `bun:"tournament_id,pk,type:uuid"`
	Team             string    `bun:"team,pk"`
	Seed             int       `bun:"seed,notnull"`
	Played           int       `bun:"played,notnull,default:0"`
	Won              int       `bun:"won,notnull,default:0"`
	Drawn            int       `bun:"drawn,notnull,default:0"`
	Lost             int       `bun:"lost,notnull,default:0"`
	PointsFor        int       `bun:"points_for,notnull,default:0"`
	PointsAgainst    int       `bun:"points_against,notnull,default:0"`
	TriesFor         int       `bun:"tries_for,notnull,default:0"`
	TriesAgainst     int       `bun:"tries_against,notnull,default:0"`
	OffensiveBonuses int       `bun:"offensive_bonuses,notnull,default:0"`
	DefensiveBonuses int       `bun:"defensive_bonuses,notnull,default:0"`
	TablePoints      int       `bun:"table_points,notnull,default:0"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// StandingFromDomain builds the row for r at roster position seed.
func StandingFromDomain(tournamentID uuid.UUID, seed int, r tournamentdomain.StandingsRow) Standing {
	return Standing{
		TournamentID:     tournamentID,
		Team:             string(r.Team),
		Seed:             seed,
		Played:           r.Played,
		Won:              r.Won,
		Drawn:            r.Drawn,
		Lost:             r.Lost,
		PointsFor:        r.PointsFor,
		PointsAgainst:    r.PointsAgainst,
		TriesFor:         r.TriesFor,
		TriesAgainst:     r.TriesAgainst,
		OffensiveBonuses: r.OffensiveBonuses,
		DefensiveBonuses: r.DefensiveBonuses,
		TablePoints:      r.TablePoints,
	}
}

// ToDomain converts the row to a domain standings row.
func (s *Standing) ToDomain() tournamentdomain.StandingsRow {
	return tournamentdomain.StandingsRow{
		Team:             tournamentdomain.TeamName(s.Team),
		Played:           s.Played,
		Won:              s.Won,
		Drawn:            s.Drawn,
		Lost:             s.Lost,
		PointsFor:        s.PointsFor,
		PointsAgainst:    s.PointsAgainst,
		TriesFor:         s.TriesFor,
		TriesAgainst:     s.TriesAgainst,
		OffensiveBonuses: s.OffensiveBonuses,
		DefensiveBonuses: s.DefensiveBonuses,
		TablePoints:      s.TablePoints,
	}
}
