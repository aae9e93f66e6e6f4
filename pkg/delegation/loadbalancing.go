package delegation

import (
	"fmt"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

// LoadBalancing spreads work across the team: agents with fewer
// finished plus in-flight tasks score higher, blended with their
// success rate. Task counts are normalized by the busiest candidate.
type LoadBalancing struct{}

// NewLoadBalancing creates the load spreading strategy.
func NewLoadBalancing() *LoadBalancing {
	return &LoadBalancing{}
}

func (*LoadBalancing) Name() string { return "load-balancing" }

const (
	loadWeight    = 0.6
	successWeight = 0.4
)

// pool is the available agents; when none are available and the
// caller preferred availability, every agent is considered instead.
func (s *LoadBalancing) pool(c Criteria, team registry.Team) []registry.State {
	available := team.Available()
	if len(available) > 0 {
		return available
	}
	if c.PreferAvailable {
		return team.States()
	}
	return nil
}

func (s *LoadBalancing) rankTeam(c Criteria, team registry.Team) []candidate {
	pool := s.pool(c, team)
	if len(pool) == 0 {
		return nil
	}

	maxTasks := 1
	for _, state := range pool {
		if t := state.TotalTasks(); t > maxTasks {
			maxTasks = t
		}
	}

	candidates := make([]candidate, 0, len(pool))
	for _, state := range pool {
		inFlight := 0
		if !state.Available() {
			inFlight = 1
		}
		loadFactor := 1 - float64(state.TotalTasks()+inFlight)/float64(maxTasks+1)
		score := loadWeight*loadFactor + successWeight*state.SuccessRate()
		candidates = append(candidates, candidate{id: state.Identity.ID, score: score})
	}
	return rank(candidates)
}

func (s *LoadBalancing) SelectAgent(c Criteria, team registry.Team) (Decision, error) {
	if err := validateCriteria(c); err != nil {
		return Decision{}, err
	}
	ranked := s.rankTeam(c, team)
	if len(ranked) == 0 {
		return noMatch("no available agent to balance load onto"), nil
	}
	return decisionAt(ranked, 0, s.reason(ranked[0])), nil
}

func (s *LoadBalancing) SelectAgents(c Criteria, team registry.Team, count int) ([]Decision, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidCount)
	}
	return selectTop(s.rankTeam(c, team), count, s.reason), nil
}

func (s *LoadBalancing) reason(c candidate) string {
	return fmt.Sprintf("agent %s scored %.2f on load factor and success rate", c.id, c.score)
}
