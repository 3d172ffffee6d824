package tournamenthandlers

import (
	"context"

	tournamentevents "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/rugby-bot/pkg/handlerwrapper"
)

// Handlers defines the interface for tournament event handlers.
type Handlers interface {
	// HandleTournamentCreateRequested creates a tournament and its schedule.
	HandleTournamentCreateRequested(ctx context.Context, payload *tournamentevents.TournamentCreateRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleResultRecorded folds a finished match into the standings.
	HandleResultRecorded(ctx context.Context, payload *tournamentevents.ResultRecordedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleStandingsRebuildRequested recomputes a table from the stored result log.
	HandleStandingsRebuildRequested(ctx context.Context, payload *tournamentevents.StandingsRebuildRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleStandingsRequest answers a standings request on its reply subject.
	HandleStandingsRequest(ctx context.Context, payload *tournamentevents.StandingsRequestPayloadV1) ([]handlerwrapper.Result, error)
}
