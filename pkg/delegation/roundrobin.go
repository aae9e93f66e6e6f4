package delegation

import (
	"fmt"
	"sync"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

// RoundRobin rotates through the candidate pool. The cursor is the
// strategy's only state; it advances by the number of agents actually
// returned and wraps modulo the pool size.
type RoundRobin struct {
	mu     sync.Mutex
	cursor int
}

// NewRoundRobin creates a rotation strategy starting at the first
// agent in id order.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

func (*RoundRobin) Name() string { return "round-robin" }

// pool is the available agents, or every agent when none are
// available.
func (s *RoundRobin) pool(team registry.Team) []registry.State {
	if available := team.Available(); len(available) > 0 {
		return available
	}
	return team.States()
}

func (s *RoundRobin) SelectAgent(c Criteria, team registry.Team) (Decision, error) {
	decisions, err := s.SelectAgents(c, team, 1)
	if err != nil {
		return Decision{}, err
	}
	if len(decisions) == 0 {
		return noMatch("no agent in rotation"), nil
	}
	return decisions[0], nil
}

func (s *RoundRobin) SelectAgents(c Criteria, team registry.Team, count int) ([]Decision, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidCount)
	}

	pool := s.pool(team)
	n := len(pool)
	if n == 0 {
		return nil, nil
	}
	if count > n {
		count = n
	}

	s.mu.Lock()
	start := s.cursor % n
	s.cursor = (start + count) % n
	s.mu.Unlock()

	decisions := make([]Decision, 0, count)
	for i := 0; i < count; i++ {
		state := pool[(start+i)%n]
		d := Decision{
			AgentID:   state.Identity.ID,
			Score:     1 - float64(i)/float64(n),
			Reasoning: fmt.Sprintf("agent %s is position %d in the rotation", state.Identity.ID, i+1),
		}
		for j := i + 1; j < i+1+3 && j < i+n; j++ {
			d.Alternatives = append(d.Alternatives, pool[(start+j)%n].Identity.ID)
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}
