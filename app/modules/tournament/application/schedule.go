package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/rugby-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
)

// Absolute layouts tried before natural-language parsing.
var kickoffLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ScheduleKickoffs assigns a kickoff to every round: round r starts at start + (r-1)*interval,
// where start is firstRound parsed relative to the service clock ("next saturday at 3pm").
func (s *TournamentService) ScheduleKickoffs(ctx context.Context, tournamentID uuid.UUID, firstRound string, interval time.Duration) (results.OperationResult[*FixturesView, error], error) {
	return withTelemetry(s, ctx, "ScheduleKickoffs", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*FixturesView, error], error) {
		if interval <= 0 {
			return results.FailureResult[*FixturesView, error](fmt.Errorf("%w: interval must be positive", ErrInvalidKickoff)), nil
		}
		start, err := s.parseKickoff(firstRound)
		if err != nil {
			return results.FailureResult[*FixturesView, error](err), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*FixturesView, error], error) {
			return s.scheduleKickoffsLogic(ctx, db, tournamentID, start, interval)
		})
	})
}

func (s *TournamentService) scheduleKickoffsLogic(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, start time.Time, interval time.Duration) (results.OperationResult[*FixturesView, error], error) {
	if _, err := s.repo.LockTournament(ctx, db, tournamentID); err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return results.FailureResult[*FixturesView, error](ErrTournamentNotFound), nil
		}
		return results.OperationResult[*FixturesView, error]{}, fmt.Errorf("failed to lock tournament: %w", err)
	}

	fixtures, err := s.loadFixtures(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*FixturesView, error]{}, err
	}

	kickoffs := make(map[int]time.Time)
	for i := range fixtures {
		round := fixtures[i].Round
		kickoff, ok := kickoffs[round]
		if !ok {
			kickoff = start.Add(time.Duration(round-1) * interval)
			kickoffs[round] = kickoff
		}
		fixtures[i].KickoffAt = &kickoff
	}
	if len(kickoffs) > 0 {
		if err := s.repo.SetKickoffs(ctx, db, tournamentID, kickoffs); err != nil {
			return results.OperationResult[*FixturesView, error]{}, fmt.Errorf("failed to store kickoffs: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Kickoffs scheduled",
		correlationAttr(ctx),
		slog.String("tournament_id", tournamentID.String()),
		slog.String("first_kickoff", start.Format(time.RFC3339)),
		slog.Int("rounds", len(kickoffs)),
	)
	return results.SuccessResult[*FixturesView, error](&FixturesView{TournamentID: tournamentID, Fixtures: fixtures}), nil
}

// parseKickoff resolves input to a UTC instant no earlier than the current minute.
func (s *TournamentService) parseKickoff(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: start time is required", ErrInvalidKickoff)
	}
	now := s.clock.Now().In(s.location)

	parsed, ok := time.Time{}, false
	for _, layout := range kickoffLayouts {
		if t, err := time.ParseInLocation(layout, input, s.location); err == nil {
			parsed, ok = t, true
			break
		}
	}
	if !ok {
		w := when.New(nil)
		w.Add(en.All...)
		r, err := w.Parse(strings.ToLower(input), now)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidKickoff, err)
		}
		if r == nil {
			return time.Time{}, fmt.Errorf("%w: could not recognize %q", ErrInvalidKickoff, input)
		}
		parsed = r.Time.In(s.location)
	}

	parsed = parsed.Truncate(time.Minute)
	if parsed.Before(now.Truncate(time.Minute)) {
		return time.Time{}, fmt.Errorf("%w: %s is in the past", ErrInvalidKickoff, parsed.Format(time.RFC3339))
	}
	return parsed.UTC(), nil
}
