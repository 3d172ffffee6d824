//go:build integration

package natsreply_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	tournamentservice "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/application"
	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	tournamentevents "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/events"
	"github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/natsreply"
	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/rugby-bot/integration_tests/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var env *testutils.TestEnvironment

func TestMain(m *testing.M) {
	var err error
	env, err = testutils.NewTestEnvironment(true)
	if err != nil {
		panic(err)
	}
	code := m.Run()
	env.Cleanup()
	os.Exit(code)
}

func TestResponder_AnswersOverNATS(t *testing.T) {
	env.Reset(t)
	logger := slog.New(slog.DiscardHandler)

	svc := tournamentservice.NewTournamentService(
		tournamentdb.NewRepository(env.DB),
		tournamentdomain.NewRegistry(tournamentdomain.NewStandingsAggregator(tournamentdomain.DefaultScoringRules())),
		logger,
		nil,
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
	)

	roster := env.Data.Roster(4)
	created, err := svc.CreateTournament(env.Ctx, tournamentservice.CreateTournamentRequest{Name: env.Data.TournamentName(), Teams: roster})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())
	tour := *created.Success

	for _, f := range tour.Fixtures[:2] {
		res, err := svc.RecordResult(env.Ctx, tour.ID, env.Data.Result(f))
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
	}

	responder := natsreply.NewResponder(svc, env.NatsConn, logger, 5*time.Second)
	require.NoError(t, responder.Start())
	t.Cleanup(func() { _ = responder.Stop() })
	require.NoError(t, env.NatsConn.Flush())

	body, err := json.Marshal(tournamentevents.StandingsRequestPayloadV1{TournamentID: tour.ID.String()})
	require.NoError(t, err)
	msg, err := env.NatsConn.Request(tournamentevents.StandingsQueryV1, body, 5*time.Second)
	require.NoError(t, err)

	var resp tournamentevents.StandingsResponsePayloadV1
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	assert.Empty(t, resp.Error)
	require.Len(t, resp.Standings, 4)
	assert.Equal(t, 1, resp.Standings[0].Position)

	played := 0
	for _, row := range resp.Standings {
		played += row.Played
	}
	assert.Equal(t, 4, played)

	msg, err = env.NatsConn.Request(tournamentevents.StandingsQueryV1, []byte(`{"tournament_id":"nope"}`), 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg.Data, &resp))
	assert.Equal(t, "invalid tournament id", resp.Error)
}
