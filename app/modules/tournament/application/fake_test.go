package tournamentservice

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	tournamentdb "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Tournament Repo
// ------------------------

// FakeTournamentRepo keeps rows in memory. Any XxxFunc that is set replaces the default behavior.
type FakeTournamentRepo struct {
	mu    sync.Mutex
	trace []string

	tournaments map[uuid.UUID]*tournamentdb.Tournament
	teams       map[uuid.UUID][]tournamentdb.Team
	fixtures    map[uuid.UUID][]tournamentdb.Fixture
	results     map[uuid.UUID]map[string]tournamentdb.MatchResult
	conflicts   []tournamentdb.ResultConflict
	// nextConflictID mimics the autoincrement key of stored conflicts.
	nextConflictID int64
	standings      map[uuid.UUID]map[string]tournamentdb.Standing

	CreateTournamentFunc     func(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament, teams []tournamentdb.Team, fixtures []tournamentdb.Fixture, standings []tournamentdb.Standing) error
	GetTournamentFunc        func(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error)
	LockTournamentFunc       func(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error)
	BumpStandingsVersionFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) (int64, error)
	ListStandingsFunc        func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.Standing, error)
	UpsertStandingsFunc      func(ctx context.Context, db bun.IDB, rows []tournamentdb.Standing) error
	InsertResultFunc         func(ctx context.Context, db bun.IDB, r *tournamentdb.MatchResult) error
	SetKickoffsFunc          func(ctx context.Context, db bun.IDB, id uuid.UUID, kickoffs map[int]time.Time) error
}

func NewFakeTournamentRepo() *FakeTournamentRepo {
	return &FakeTournamentRepo{
		trace:       []string{},
		tournaments: make(map[uuid.UUID]*tournamentdb.Tournament),
		teams:       make(map[uuid.UUID][]tournamentdb.Team),
		fixtures:    make(map[uuid.UUID][]tournamentdb.Fixture),
		results:     make(map[uuid.UUID]map[string]tournamentdb.MatchResult),
		standings:   make(map[uuid.UUID]map[string]tournamentdb.Standing),
	}
}

func (f *FakeTournamentRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeTournamentRepo) CreateTournament(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament, teams []tournamentdb.Team, fixtures []tournamentdb.Fixture, standings []tournamentdb.Standing) error {
	f.record("CreateTournament")
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, db, t, teams, fixtures, standings)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tournaments {
		if existing.Name == t.Name {
			return tournamentdb.ErrTournamentExists
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	stored := *t
	f.tournaments[t.ID] = &stored
	for i := range teams {
		teams[i].TournamentID = t.ID
	}
	for i := range fixtures {
		fixtures[i].TournamentID = t.ID
	}
	f.teams[t.ID] = slices.Clone(teams)
	f.fixtures[t.ID] = slices.Clone(fixtures)
	f.results[t.ID] = make(map[string]tournamentdb.MatchResult)
	f.standings[t.ID] = make(map[string]tournamentdb.Standing)
	for _, s := range standings {
		s.TournamentID = t.ID
		f.standings[t.ID][s.Team] = s
	}
	return nil
}

func (f *FakeTournamentRepo) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error) {
	f.record("GetTournament")
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, db, id)
	}
	return f.getTournament(id)
}

func (f *FakeTournamentRepo) LockTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error) {
	f.record("LockTournament")
	if f.LockTournamentFunc != nil {
		return f.LockTournamentFunc(ctx, db, id)
	}
	return f.getTournament(id)
}

func (f *FakeTournamentRepo) getTournament(id uuid.UUID) (*tournamentdb.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return nil, tournamentdb.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f *FakeTournamentRepo) BumpStandingsVersion(ctx context.Context, db bun.IDB, id uuid.UUID) (int64, error) {
	f.record("BumpStandingsVersion")
	if f.BumpStandingsVersionFunc != nil {
		return f.BumpStandingsVersionFunc(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return 0, tournamentdb.ErrNoRowsAffected
	}
	t.StandingsVersion++
	return t.StandingsVersion, nil
}

func (f *FakeTournamentRepo) ListTeams(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.Team, error) {
	f.record("ListTeams")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.teams[id]), nil
}

func (f *FakeTournamentRepo) ListFixtures(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.Fixture, error) {
	f.record("ListFixtures")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.fixtures[id])
	slices.SortStableFunc(out, func(a, b tournamentdb.Fixture) int {
		if c := cmp.Compare(a.Round, b.Round); c != 0 {
			return c
		}
		return cmp.Compare(a.Home, b.Home)
	})
	return out, nil
}

func (f *FakeTournamentRepo) SetKickoffs(ctx context.Context, db bun.IDB, id uuid.UUID, kickoffs map[int]time.Time) error {
	f.record("SetKickoffs")
	if f.SetKickoffsFunc != nil {
		return f.SetKickoffsFunc(ctx, db, id, kickoffs)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.fixtures[id] {
		if at, ok := kickoffs[f.fixtures[id][i].Round]; ok {
			at := at.UTC()
			f.fixtures[id][i].KickoffAt = &at
		}
	}
	return nil
}

func (f *FakeTournamentRepo) GetResult(ctx context.Context, db bun.IDB, id uuid.UUID, resultID string) (*tournamentdb.MatchResult, error) {
	f.record("GetResult")
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id][resultID]
	if !ok {
		return nil, tournamentdb.ErrNotFound
	}
	return &r, nil
}

func (f *FakeTournamentRepo) InsertResult(ctx context.Context, db bun.IDB, r *tournamentdb.MatchResult) error {
	f.record("InsertResult")
	if f.InsertResultFunc != nil {
		return f.InsertResultFunc(ctx, db, r)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.results[r.TournamentID][r.ResultID]; ok {
		return tournamentdb.ErrResultExists
	}
	if f.results[r.TournamentID] == nil {
		f.results[r.TournamentID] = make(map[string]tournamentdb.MatchResult)
	}
	f.results[r.TournamentID][r.ResultID] = *r
	return nil
}

func (f *FakeTournamentRepo) InsertConflict(ctx context.Context, db bun.IDB, c *tournamentdb.ResultConflict) error {
	f.record("InsertConflict")
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.nextConflictID + 1
	f.nextConflictID = c.ID
	f.conflicts = append(f.conflicts, *c)
	return nil
}

func (f *FakeTournamentRepo) ReplaceResult(ctx context.Context, db bun.IDB, r *tournamentdb.MatchResult) error {
	f.record("ReplaceResult")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.results[r.TournamentID][r.ResultID]; !ok {
		return tournamentdb.ErrNoRowsAffected
	}
	f.results[r.TournamentID][r.ResultID] = *r
	return nil
}

func (f *FakeTournamentRepo) ListConflicts(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.ResultConflict, error) {
	f.record("ListConflicts")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tournamentdb.ResultConflict
	for _, c := range f.conflicts {
		if c.TournamentID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *FakeTournamentRepo) GetConflict(ctx context.Context, db bun.IDB, id uuid.UUID, conflictID int64) (*tournamentdb.ResultConflict, error) {
	f.record("GetConflict")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conflicts {
		if c.TournamentID == id && c.ID == conflictID {
			return &c, nil
		}
	}
	return nil, tournamentdb.ErrNotFound
}

func (f *FakeTournamentRepo) DeleteConflicts(ctx context.Context, db bun.IDB, id uuid.UUID, resultID string) error {
	f.record("DeleteConflicts")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts = slices.DeleteFunc(f.conflicts, func(c tournamentdb.ResultConflict) bool {
		return c.TournamentID == id && c.ResultID == resultID
	})
	return nil
}

func (f *FakeTournamentRepo) ListResults(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.MatchResult, error) {
	f.record("ListResults")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tournamentdb.MatchResult, 0, len(f.results[id]))
	for _, r := range f.results[id] {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b tournamentdb.MatchResult) int { return cmp.Compare(a.ResultID, b.ResultID) })
	return out, nil
}

func (f *FakeTournamentRepo) ListResultIDs(ctx context.Context, db bun.IDB, id uuid.UUID) ([]string, error) {
	f.record("ListResultIDs")
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.results[id]))
	for rid := range f.results[id] {
		ids = append(ids, rid)
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *FakeTournamentRepo) ListStandings(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.Standing, error) {
	f.record("ListStandings")
	if f.ListStandingsFunc != nil {
		return f.ListStandingsFunc(ctx, db, id)
	}
	return f.storedStandings(id), nil
}

func (f *FakeTournamentRepo) storedStandings(id uuid.UUID) []tournamentdb.Standing {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tournamentdb.Standing, 0, len(f.standings[id]))
	for _, s := range f.standings[id] {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b tournamentdb.Standing) int { return cmp.Compare(a.Seed, b.Seed) })
	return out
}

func (f *FakeTournamentRepo) UpsertStandings(ctx context.Context, db bun.IDB, rows []tournamentdb.Standing) error {
	f.record("UpsertStandings")
	if f.UpsertStandingsFunc != nil {
		return f.UpsertStandingsFunc(ctx, db, rows)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		if f.standings[r.TournamentID] == nil {
			f.standings[r.TournamentID] = make(map[string]tournamentdb.Standing)
		}
		f.standings[r.TournamentID][r.Team] = r
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeTournamentRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeTournamentRepo) ResetTrace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = []string{}
}

func (f *FakeTournamentRepo) Conflicts() []tournamentdb.ResultConflict {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.conflicts)
}

// StoreResult writes a result row directly, bypassing the service.
func (f *FakeTournamentRepo) StoreResult(r *tournamentdb.MatchResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[r.TournamentID][r.ResultID] = *r
}

// Ensure the fake actually satisfies the interface
var _ tournamentdb.Repository = (*FakeTournamentRepo)(nil)

// ------------------------
// Fake Clock
// ------------------------

type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
