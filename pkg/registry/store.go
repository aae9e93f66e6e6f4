package registry

import "sync"

// TeamStore owns the single shared Team value. Readers take a
// snapshot once per decision; writers replace the whole value under
// one lock. Apply is read-compute-swap, so a slow computation inside
// the callback cannot interleave with another writer.
type TeamStore struct {
	mu      sync.Mutex
	team    Team
	version uint64
}

// NewTeamStore creates a store seeded with the given team.
func NewTeamStore(team Team) *TeamStore {
	return &TeamStore{team: team}
}

// Snapshot returns the current team value.
func (s *TeamStore) Snapshot() Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team
}

// Version returns the number of replacements applied so far.
func (s *TeamStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Replace swaps in a new team value.
func (s *TeamStore) Replace(team Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.team = team
	s.version++
}

// Apply runs fn against the current team and stores its result,
// holding the lock across the whole read-compute-swap.
func (s *TeamStore) Apply(fn func(Team) Team) Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.team = fn(s.team)
	s.version++
	return s.team
}
