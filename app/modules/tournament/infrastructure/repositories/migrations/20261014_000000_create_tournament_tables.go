package tournamentmigrations

import (
	"context"
	"fmt"

	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournament tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*tournamentdb.Tournament)(nil),
				(*tournamentdb.Team)(nil),
				(*tournamentdb.Fixture)(nil),
				(*tournamentdb.MatchResult)(nil),
				(*tournamentdb.ResultConflict)(nil),
				(*tournamentdb.Standing)(nil),
			}
			for _, m := range models {
				if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", m, err)
				}
			}

			for _, stmt := range []string{
				`ALTER TABLE tournament_teams ADD CONSTRAINT fk_tournament_teams_tournament
					FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE`,
				`ALTER TABLE tournament_fixtures ADD CONSTRAINT fk_tournament_fixtures_tournament
					FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE`,
				`ALTER TABLE match_results ADD CONSTRAINT fk_match_results_tournament
					FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE`,
				`ALTER TABLE match_result_conflicts ADD CONSTRAINT fk_match_result_conflicts_tournament
					FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE`,
				`ALTER TABLE tournament_standings ADD CONSTRAINT fk_tournament_standings_tournament
					FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE`,
				`CREATE INDEX IF NOT EXISTS idx_tournament_fixtures_kickoff ON tournament_fixtures (kickoff_at)`,
				`CREATE INDEX IF NOT EXISTS idx_match_result_conflicts_result ON match_result_conflicts (tournament_id, result_id)`,
			} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply %q: %w", stmt, err)
				}
			}

			fmt.Println("Tournament tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournament tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*tournamentdb.Standing)(nil),
				(*tournamentdb.ResultConflict)(nil),
				(*tournamentdb.MatchResult)(nil),
				(*tournamentdb.Fixture)(nil),
				(*tournamentdb.Team)(nil),
				(*tournamentdb.Tournament)(nil),
			}
			for _, m := range models {
				if _, err := tx.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx); err != nil {
					return fmt.Errorf("failed to drop table for %T: %w", m, err)
				}
			}
			fmt.Println("Tournament tables dropped successfully!")
			return nil
		})
	})
}
