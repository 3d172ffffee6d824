//go:build integration

package testutils

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/rugby-bot/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by integration tests.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	DSN           string
	NatsURL       string
	NatsConn      *nats.Conn
	Data          *TestDataGenerator
}

// NewTestEnvironment starts Postgres, and NATS when withNATS is set, and migrates the database.
func NewTestEnvironment(withNATS bool) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{Ctx: ctx, CancelContext: cancel, Data: NewTestDataGenerator()}

	pg, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer, env.DSN = pg, dsn
	env.DB = OpenDB(dsn)

	if err := RunMigrations(ctx, env.DB, dsn); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if withNATS {
		nc, natsURL, err := containers.SetupNatsContainer(ctx)
		if err != nil {
			env.Cleanup()
			return nil, fmt.Errorf("failed to setup nats container: %w", err)
		}
		env.NatsContainer, env.NatsURL = nc, natsURL

		conn, err := nats.Connect(natsURL, nats.Timeout(10*time.Second))
		if err != nil {
			env.Cleanup()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		env.NatsConn = conn
	}

	log.Printf("Integration environment ready (seed %d)", env.Data.Seed())
	return env, nil
}

// Reset clears all application data between tests.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if err := CleanupDatabase(env.Ctx, env.DB); err != nil {
		t.Fatalf("cleanup database: %v", err)
	}
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		if err := env.DB.Close(); err != nil {
			log.Printf("Error closing DB: %v", err)
		}
	}
	ctx := context.Background()
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate Postgres container: %v", err)
		}
	}
	env.CancelContext()
}
