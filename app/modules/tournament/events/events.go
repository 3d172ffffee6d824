// Package tournamentevents defines the topics and payloads exchanged by the tournament module.
package tournamentevents

import (
	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
)

// Topics. Every payload is JSON-encoded; versions are bumped on breaking payload changes.
const (
	TournamentCreateRequestedV1 = "tournament.create.requested.v1"
	TournamentCreatedV1         = "tournament.created.v1"
	TournamentCreateFailedV1    = "tournament.create.failed.v1"

	ResultRecordedV1   = "tournament.result.recorded.v1"
	StandingsUpdatedV1 = "tournament.standings.updated.v1"
	ResultRejectedV1   = "tournament.result.rejected.v1"

	StandingsRebuildRequestedV1 = "tournament.standings.rebuild.requested.v1"
	StandingsRebuiltV1          = "tournament.standings.rebuilt.v1"

	StandingsRequestV1 = "tournament.standings.request.v1"
	// StandingsResponseV1 receives standings responses when a request carries no reply_to.
	StandingsResponseV1 = "tournament.standings.response.v1"

	// StandingsQueryV1 is a plain NATS request-reply subject, answered outside the router.
	StandingsQueryV1 = "tournament.standings.query.v1"
)

// TournamentCreateRequestedPayloadV1 asks for a new tournament with a generated schedule.
type TournamentCreateRequestedPayloadV1 struct {
	Name  string   `json:"name"`
	Teams []string `json:"teams"`
	Legs  int      `json:"legs,omitempty"`
}

// TournamentCreatedPayloadV1 announces a tournament and the size of its schedule.
type TournamentCreatedPayloadV1 struct {
	TournamentID string   `json:"tournament_id"`
	Name         string   `json:"name"`
	Teams        []string `json:"teams"`
	Legs         int      `json:"legs"`
	Rounds       int      `json:"rounds"`
	Fixtures     int      `json:"fixtures"`
}

// TournamentCreateFailedPayloadV1 reports why a tournament could not be created.
type TournamentCreateFailedPayloadV1 struct {
	Name   string   `json:"name"`
	Reason string   `json:"reason"`
	Teams  []string `json:"teams,omitempty"`
}

// ResultRecordedPayloadV1 carries a finished match into the standings.
type ResultRecordedPayloadV1 struct {
	TournamentID string `json:"tournament_id"`
	ResultID     string `json:"result_id"`
	Home         string `json:"home"`
	Away         string `json:"away"`
	HomeScore    int    `json:"home_score"`
	AwayScore    int    `json:"away_score"`
	HomeTries    int    `json:"home_tries"`
	AwayTries    int    `json:"away_tries"`
	Status       string `json:"status"`
}

// MatchResult converts the payload into the domain type. A blank status means completed.
func (p *ResultRecordedPayloadV1) MatchResult() tournamentdomain.MatchResult {
	status := tournamentdomain.MatchStatus(p.Status)
	if status == "" {
		status = tournamentdomain.StatusCompleted
	}
	return tournamentdomain.MatchResult{
		ID:        p.ResultID,
		Home:      tournamentdomain.TeamName(p.Home),
		Away:      tournamentdomain.TeamName(p.Away),
		HomeScore: p.HomeScore,
		AwayScore: p.AwayScore,
		HomeTries: p.HomeTries,
		AwayTries: p.AwayTries,
		Status:    status,
	}
}

// StandingsRowV1 is the wire form of one ranked row.
type StandingsRowV1 struct {
	Position         int    `json:"position"`
	Team             string `json:"team"`
	Played           int    `json:"played"`
	Won              int    `json:"won"`
	Drawn            int    `json:"drawn"`
	Lost             int    `json:"lost"`
	PointsFor        int    `json:"points_for"`
	PointsAgainst    int    `json:"points_against"`
	PointDifference  int    `json:"point_difference"`
	TriesFor         int    `json:"tries_for"`
	TriesAgainst     int    `json:"tries_against"`
	OffensiveBonuses int    `json:"offensive_bonuses"`
	DefensiveBonuses int    `json:"defensive_bonuses"`
	TablePoints      int    `json:"table_points"`
}

// StandingsFromDomain converts ranked rows to their wire form, keeping order.
func StandingsFromDomain(rows []tournamentdomain.StandingsRow) []StandingsRowV1 {
	out := make([]StandingsRowV1, len(rows))
	for i, r := range rows {
		out[i] = StandingsRowV1{
			Position:         r.Position,
			Team:             string(r.Team),
			Played:           r.Played,
			Won:              r.Won,
			Drawn:            r.Drawn,
			Lost:             r.Lost,
			PointsFor:        r.PointsFor,
			PointsAgainst:    r.PointsAgainst,
			PointDifference:  r.PointDifference(),
			TriesFor:         r.TriesFor,
			TriesAgainst:     r.TriesAgainst,
			OffensiveBonuses: r.OffensiveBonuses,
			DefensiveBonuses: r.DefensiveBonuses,
			TablePoints:      r.TablePoints,
		}
	}
	return out
}

// StandingsUpdatedPayloadV1 is published after a result changed (or re-confirmed) the table.
type StandingsUpdatedPayloadV1 struct {
	TournamentID string           `json:"tournament_id"`
	ResultID     string           `json:"result_id"`
	Idempotent   bool             `json:"idempotent"`
	Conflict     bool             `json:"conflict"`
	Standings    []StandingsRowV1 `json:"standings"`
}

// ResultRejectedPayloadV1 reports a result that could not be aggregated.
type ResultRejectedPayloadV1 struct {
	TournamentID string `json:"tournament_id"`
	ResultID     string `json:"result_id"`
	Reason       string `json:"reason"`
}

// StandingsRebuildRequestedPayloadV1 asks for a full recompute of a tournament's table.
type StandingsRebuildRequestedPayloadV1 struct {
	TournamentID string `json:"tournament_id"`
}

// RejectedResultV1 names a result skipped during a rebuild.
type RejectedResultV1 struct {
	ResultID string `json:"result_id"`
	Reason   string `json:"reason"`
}

// StandingsRebuiltPayloadV1 reports the outcome of a full recompute.
type StandingsRebuiltPayloadV1 struct {
	TournamentID string             `json:"tournament_id"`
	Applied      int                `json:"applied"`
	Duplicates   []string           `json:"duplicates,omitempty"`
	Ignored      []string           `json:"ignored,omitempty"`
	Rejected     []RejectedResultV1 `json:"rejected,omitempty"`
	Standings    []StandingsRowV1   `json:"standings"`
}

// RejectedFromDomain converts rebuild rejections to their wire form.
func RejectedFromDomain(errs []*tournamentdomain.ValidationError) []RejectedResultV1 {
	if len(errs) == 0 {
		return nil
	}
	out := make([]RejectedResultV1, len(errs))
	for i, e := range errs {
		out[i] = RejectedResultV1{ResultID: e.ResultID, Reason: e.Reason}
	}
	return out
}

// StandingsRequestPayloadV1 is the body of a standings request.
type StandingsRequestPayloadV1 struct {
	TournamentID string `json:"tournament_id"`
}

// StandingsResponsePayloadV1 answers a standings request. Error is set instead of Standings
// when the lookup failed.
type StandingsResponsePayloadV1 struct {
	TournamentID string           `json:"tournament_id"`
	Standings    []StandingsRowV1 `json:"standings,omitempty"`
	Error        string           `json:"error,omitempty"`
}
