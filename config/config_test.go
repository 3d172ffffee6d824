package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "NATS_URL", "HTTP_ADDR", "HTTP_RATE_LIMIT", "HTTP_RATE_BURST",
		"NATS_QUERY_TIMEOUT", "STANDINGS_CACHE_TTL", "QUEUE_MAX_WORKERS", "SCHEDULE_LOCATION",
		"METRICS_ENABLED", "ENV", "LOG_LEVEL", "SCORING_WIN_POINTS", "SCORING_TRY_BONUS_THRESHOLD",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
postgres:
  dsn: postgres://file
nats:
  url: nats://file:4222
http:
  addr: ":9000"
  rate_limit: 2.5
scoring:
  win_points: 5
cache:
  standings_ttl: 1m
queue:
  max_workers: 3
schedule:
  location: UTC
observability:
  environment: staging
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file", cfg.Postgres.DSN)
	assert.Equal(t, "nats://file:4222", cfg.NATS.URL)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 2.5, cfg.HTTP.RateLimit)
	assert.Equal(t, defaultRateBurst, cfg.HTTP.RateBurst)
	assert.Equal(t, time.Minute, cfg.Cache.StandingsTTL)
	assert.Equal(t, 3, cfg.Queue.MaxWorkers)
	assert.Equal(t, defaultQueryTimeout, cfg.NATS.QueryTimeout)
	assert.Equal(t, "staging", cfg.Observability.Environment)

	rules, err := cfg.ScoringRules()
	require.NoError(t, err)
	want := tournamentdomain.DefaultScoringRules()
	want.WinPoints = 5
	assert.Equal(t, want, rules)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "postgres:\n  dsn: postgres://file\nnats:\n  url: nats://file\n")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("STANDINGS_CACHE_TTL", "5s")
	t.Setenv("SCORING_TRY_BONUS_THRESHOLD", "3")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.Equal(t, "nats://file", cfg.NATS.URL)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.Cache.StandingsTTL)

	rules, err := cfg.ScoringRules()
	require.NoError(t, err)
	assert.Equal(t, 3, rules.TryBonusThreshold)
	assert.Equal(t, 4, rules.WinPoints)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	t.Run("requires database url", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(missing)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("requires nats url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://env")
		_, err := LoadConfig(missing)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NATS_URL")
	})

	t.Run("applies defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("NATS_URL", "nats://env")

		cfg, err := LoadConfig(missing)
		require.NoError(t, err)
		assert.Equal(t, defaultHTTPAddr, cfg.HTTP.Addr)
		assert.Equal(t, float64(defaultRateLimit), cfg.HTTP.RateLimit)
		assert.Equal(t, defaultCacheTTL, cfg.Cache.StandingsTTL)
		assert.Equal(t, defaultMaxWorkers, cfg.Queue.MaxWorkers)

		rules, err := cfg.ScoringRules()
		require.NoError(t, err)
		assert.Equal(t, tournamentdomain.DefaultScoringRules(), rules)
	})
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"cache ttl", "STANDINGS_CACHE_TTL", "soon"},
		{"rate limit", "HTTP_RATE_LIMIT", "fast"},
		{"workers", "QUEUE_MAX_WORKERS", "many"},
		{"scoring", "SCORING_WIN_POINTS", "four"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://env")
			t.Setenv("NATS_URL", "nats://env")
			t.Setenv(tt.env, tt.val)

			_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(writeConfig(t, "postgres: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestScoringRules_RejectsInvalidOverride(t *testing.T) {
	zero := 0
	cfg := &Config{Scoring: ScoringConfig{TryBonusThreshold: &zero}}

	_, err := cfg.ScoringRules()
	require.Error(t, err)
	assert.ErrorIs(t, err, tournamentdomain.ErrConfiguration)
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Schedule.Location = "Mars/Olympus_Mons"
	_, err = cfg.Location()
	require.Error(t, err)
}

func TestLoadConfig_Example(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join("..", "config.example.yaml"))
	require.NoError(t, err)

	rules, err := cfg.ScoringRules()
	require.NoError(t, err)
	assert.Equal(t, tournamentdomain.DefaultScoringRules(), rules)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.StandingsTTL)
}

func TestScoringConfig_CoversEveryRule(t *testing.T) {
	rules := reflect.TypeOf(tournamentdomain.ScoringRuleSet{})
	overrides := reflect.TypeOf(ScoringConfig{})
	require.Equal(t, rules.NumField(), overrides.NumField())

	for i := range rules.NumField() {
		field := rules.Field(i)
		assert.Empty(t, field.Tag, "%s carries no decoding tags", field.Name)

		override, ok := overrides.FieldByName(field.Name)
		require.True(t, ok, "no override for %s", field.Name)
		assert.Equal(t, reflect.PointerTo(field.Type), override.Type)
		assert.NotEmpty(t, override.Tag.Get("yaml"))
	}
}
