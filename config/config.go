package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Cache         CacheConfig         `yaml:"cache"`
	Queue         QueueConfig         `yaml:"queue"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL          string        `yaml:"url"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// HTTPConfig holds the read API listener settings.
type HTTPConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per client IP
	RateBurst int     `yaml:"rate_burst"`
}

// ScoringConfig overrides individual fields of the default rule set. Unset fields keep their default.
type ScoringConfig struct {
	WinPoints             *int `yaml:"win_points"`
	DrawPoints            *int `yaml:"draw_points"`
	LossPoints            *int `yaml:"loss_points"`
	OffensiveBonusPoints  *int `yaml:"offensive_bonus_points"`
	DefensiveBonusPoints  *int `yaml:"defensive_bonus_points"`
	TryBonusThreshold     *int `yaml:"try_bonus_threshold"`
	LosingMarginThreshold *int `yaml:"losing_margin_threshold"`
}

// CacheConfig holds the standings cache settings. A negative TTL disables the cache.
type CacheConfig struct {
	StandingsTTL time.Duration `yaml:"standings_ttl"`
}

// QueueConfig holds River settings.
type QueueConfig struct {
	MaxWorkers int `yaml:"max_workers"`
}

// ScheduleConfig holds kickoff scheduling settings.
type ScheduleConfig struct {
	Location string `yaml:"location"` // IANA name, e.g. Europe/London
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

const (
	defaultHTTPAddr     = ":8080"
	defaultRateLimit    = 10
	defaultRateBurst    = 20
	defaultCacheTTL     = 30 * time.Second
	defaultMaxWorkers   = 5
	defaultQueryTimeout = 5 * time.Second
)

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	// Load Postgres DSN
	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	// Load NATS URL
	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnvOverrides reads every optional variable shared by both load paths.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT value: %v", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST value: %v", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("NATS_QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NATS_QUERY_TIMEOUT value: %v", err)
		}
		cfg.NATS.QueryTimeout = d
	}
	if v := os.Getenv("STANDINGS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STANDINGS_CACHE_TTL value: %v", err)
		}
		cfg.Cache.StandingsTTL = d
	}
	if v := os.Getenv("QUEUE_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_MAX_WORKERS value: %v", err)
		}
		cfg.Queue.MaxWorkers = n
	}
	if v := os.Getenv("SCHEDULE_LOCATION"); v != "" {
		cfg.Schedule.Location = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Observability.MetricsEnabled = v == "true"
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	scoring := []struct {
		env   string
		field **int
	}{
		{"SCORING_WIN_POINTS", &cfg.Scoring.WinPoints},
		{"SCORING_DRAW_POINTS", &cfg.Scoring.DrawPoints},
		{"SCORING_LOSS_POINTS", &cfg.Scoring.LossPoints},
		{"SCORING_OFFENSIVE_BONUS_POINTS", &cfg.Scoring.OffensiveBonusPoints},
		{"SCORING_DEFENSIVE_BONUS_POINTS", &cfg.Scoring.DefensiveBonusPoints},
		{"SCORING_TRY_BONUS_THRESHOLD", &cfg.Scoring.TryBonusThreshold},
		{"SCORING_LOSING_MARGIN_THRESHOLD", &cfg.Scoring.LosingMarginThreshold},
	}
	for _, s := range scoring {
		v := os.Getenv(s.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %v", s.env, err)
		}
		*s.field = &n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
	if c.HTTP.RateLimit <= 0 {
		c.HTTP.RateLimit = defaultRateLimit
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = defaultRateBurst
	}
	if c.NATS.QueryTimeout <= 0 {
		c.NATS.QueryTimeout = defaultQueryTimeout
	}
	if c.Cache.StandingsTTL < 0 {
		c.Cache.StandingsTTL = 0
	} else if c.Cache.StandingsTTL == 0 {
		c.Cache.StandingsTTL = defaultCacheTTL
	}
	if c.Queue.MaxWorkers <= 0 {
		c.Queue.MaxWorkers = defaultMaxWorkers
	}
}

// ScoringRules returns the default rule set with any configured overrides applied.
func (c *Config) ScoringRules() (tournamentdomain.ScoringRuleSet, error) {
	rules := tournamentdomain.DefaultScoringRules()
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&rules.WinPoints, c.Scoring.WinPoints)
	set(&rules.DrawPoints, c.Scoring.DrawPoints)
	set(&rules.LossPoints, c.Scoring.LossPoints)
	set(&rules.OffensiveBonusPoints, c.Scoring.OffensiveBonusPoints)
	set(&rules.DefensiveBonusPoints, c.Scoring.DefensiveBonusPoints)
	set(&rules.TryBonusThreshold, c.Scoring.TryBonusThreshold)
	set(&rules.LosingMarginThreshold, c.Scoring.LosingMarginThreshold)

	if err := rules.Validate(); err != nil {
		return tournamentdomain.ScoringRuleSet{}, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	return rules, nil
}

// Location resolves the kickoff time zone, UTC when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule location %q: %w", c.Schedule.Location, err)
	}
	return loc, nil
}
