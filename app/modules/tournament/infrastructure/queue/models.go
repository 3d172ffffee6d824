package tournamentqueue

import (
	"github.com/riverqueue/river"
)

// QueueName is the dedicated River queue for tournament jobs.
const QueueName = "tournament"

// RebuildStandingsArgs asks for a full recompute of one tournament's standings.
type RebuildStandingsArgs struct {
	TournamentID string `json:"tournament_id"`
}

// Kind returns the job type identifier for River
func (RebuildStandingsArgs) Kind() string { return "tournament_rebuild_standings" }

// InsertOpts keeps at most one unfinished rebuild per tournament.
func (RebuildStandingsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 10,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}
