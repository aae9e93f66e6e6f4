package delegation

import (
	"fmt"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

// RoleBased prefers agents whose role matches the requested one, but
// pools bonused and non-bonused candidates together: a strong agent
// with the wrong role can still outrank a weak role match. Without a
// preferred role it behaves exactly like CapabilityBased.
type RoleBased struct {
	fallback *CapabilityBased
}

// NewRoleBased creates the role preference strategy.
func NewRoleBased() *RoleBased {
	return &RoleBased{fallback: NewCapabilityBased()}
}

func (*RoleBased) Name() string { return "role-based" }

const (
	roleBonus     = 0.20
	roleIdleBonus = 0.05
)

func (s *RoleBased) rankTeam(c Criteria, team registry.Team) []candidate {
	var candidates []candidate
	for _, state := range team.States() {
		base := 0.5*state.SuccessRate() + 0.5*coverage(state, c.RequiredCapabilities)
		if c.PreferAvailable && state.Available() {
			base += roleIdleBonus
		}
		score := base
		if state.Identity.Role == c.PreferredRole {
			score += roleBonus
		}
		// Rank on the raw score; clamping here would erase the idle
		// bonus once the role bonus saturates the scale. The reported
		// Decision score is clamped by decisionAt.
		candidates = append(candidates, candidate{id: state.Identity.ID, score: score})
	}
	return rank(candidates)
}

func (s *RoleBased) SelectAgent(c Criteria, team registry.Team) (Decision, error) {
	if c.PreferredRole == "" {
		return s.fallback.SelectAgent(c, team)
	}
	if err := validateCriteria(c); err != nil {
		return Decision{}, err
	}
	ranked := s.rankTeam(c, team)
	if len(ranked) == 0 {
		return noMatch(fmt.Sprintf("no candidate for role %q", c.PreferredRole)), nil
	}
	return decisionAt(ranked, 0, s.reason(c, ranked[0])), nil
}

func (s *RoleBased) SelectAgents(c Criteria, team registry.Team, count int) ([]Decision, error) {
	if c.PreferredRole == "" {
		return s.fallback.SelectAgents(c, team, count)
	}
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidCount)
	}
	reason := func(cand candidate) string { return s.reason(c, cand) }
	return selectTop(s.rankTeam(c, team), count, reason), nil
}

func (s *RoleBased) reason(c Criteria, cand candidate) string {
	return fmt.Sprintf("agent %s scored %.2f with role preference %q", cand.id, clampScore(cand.score), c.PreferredRole)
}
