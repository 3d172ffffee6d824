package tournamentdomain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is across module boundaries.
var (
	// ErrConfiguration marks an invalid roster or rule set.
	ErrConfiguration = errors.New("invalid tournament configuration")

	// ErrValidation marks a malformed match result.
	ErrValidation = errors.New("invalid match result")
)

// ConfigurationError is returned when a roster or rule set cannot produce a tournament.
type ConfigurationError struct {
	Reason string
	Teams  []TeamName
}

func (e *ConfigurationError) Error() string {
	if len(e.Teams) == 0 {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	names := make([]string, len(e.Teams))
	for i, t := range e.Teams {
		names[i] = string(t)
	}
	return fmt.Sprintf("configuration error: %s (teams: %s)", e.Reason, strings.Join(names, ", "))
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ValidationError is returned for a single result that cannot be aggregated.
type ValidationError struct {
	ResultID string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for result %q: %s", e.ResultID, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
