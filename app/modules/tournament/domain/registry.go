package tournamentdomain

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Registry holds the live standings table of many tournaments.
//
// Writers of one tournament (Apply, Rebuild, Load) are serialized by that tournament's lock;
// different tournaments never contend. Every write produces a new table and publishes it with an
// atomic swap, so Snapshot never observes a half-applied result or a partial replay.
type Registry struct {
	aggregator Aggregator

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	writeMu sync.Mutex
	current atomic.Pointer[Table]
}

// NewRegistry returns an empty registry using aggregator for every write.
func NewRegistry(aggregator Aggregator) *Registry {
	return &Registry{
		aggregator: aggregator,
		entries:    make(map[string]*registryEntry),
	}
}

func (r *Registry) entry(tournamentID string, create bool) *registryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[tournamentID]
	if !ok && create {
		e = &registryEntry{}
		r.entries[tournamentID] = e
	}
	return e
}

// Load installs table as the current standings of a tournament, replacing any previous one.
func (r *Registry) Load(tournamentID string, table *Table) {
	e := r.entry(tournamentID, true)
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.current.Store(table.Clone())
}

// Apply folds one result into a tournament's table and returns the new snapshot.
// applied is false when the identity had already been folded in.
func (r *Registry) Apply(tournamentID string, result MatchResult) (snapshot *Table, applied bool, err error) {
	e := r.entry(tournamentID, false)
	if e == nil {
		return nil, false, fmt.Errorf("tournament %q has no loaded table", tournamentID)
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	current := e.current.Load()
	if current == nil {
		return nil, false, fmt.Errorf("tournament %q has no loaded table", tournamentID)
	}
	next := current.Clone()
	applied, err = r.aggregator.Apply(next, result)
	if err != nil {
		return current.Clone(), false, err
	}
	if applied {
		e.current.Store(next)
	}
	return next.Clone(), applied, nil
}

// Rebuild recomputes a tournament's table from its result log and swaps it in once complete.
// When no table is loaded yet the roster must be supplied through teams.
func (r *Registry) Rebuild(tournamentID string, teams []TeamName, results []MatchResult) (*Table, RebuildReport, error) {
	e := r.entry(tournamentID, true)
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if len(teams) == 0 {
		current := e.current.Load()
		if current == nil {
			return nil, RebuildReport{}, fmt.Errorf("tournament %q has no roster to rebuild", tournamentID)
		}
		teams = current.Teams()
	}

	fresh, report, err := r.aggregator.Rebuild(teams, results)
	if err != nil {
		return nil, report, err
	}
	e.current.Store(fresh)
	return fresh.Clone(), report, nil
}

// Snapshot returns a copy of a tournament's current table.
func (r *Registry) Snapshot(tournamentID string) (*Table, bool) {
	e := r.entry(tournamentID, false)
	if e == nil {
		return nil, false
	}
	t := e.current.Load()
	if t == nil {
		return nil, false
	}
	return t.Clone(), true
}

// Forget drops a tournament's table.
func (r *Registry) Forget(tournamentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, tournamentID)
}
