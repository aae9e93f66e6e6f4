package delegation

import (
	"fmt"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

// CapabilityBased scores agents by how well their declared
// capabilities cover the required ones: coverage times mean matched
// proficiency, falling back to the agent's success rate when nothing
// is required. Agents covering none of the required capabilities are
// never selected, and agents below MinProficiency are excluded before
// the availability bonus, so the bonus can never lift an unqualified
// agent over the threshold.
type CapabilityBased struct{}

// NewCapabilityBased creates the capability matching strategy.
func NewCapabilityBased() *CapabilityBased {
	return &CapabilityBased{}
}

func (*CapabilityBased) Name() string { return "capability-based" }

// availabilityBonus is the flat boost an idle agent receives when the
// caller prefers available agents.
const availabilityBonus = 0.10

// baseScore is the pre-bonus capability score used for threshold
// filtering.
func (s *CapabilityBased) baseScore(state registry.State, c Criteria) float64 {
	if len(c.RequiredCapabilities) == 0 {
		return state.SuccessRate()
	}
	matched := 0
	profSum := 0.0
	for _, name := range c.RequiredCapabilities {
		if state.Identity.HasCapability(name) {
			matched++
			profSum += state.Identity.ProficiencyFor(name)
		}
	}
	if matched == 0 {
		return 0
	}
	cov := float64(matched) / float64(len(c.RequiredCapabilities))
	return cov * (profSum / float64(matched))
}

func (s *CapabilityBased) rankTeam(c Criteria, team registry.Team) []candidate {
	var candidates []candidate
	for _, state := range team.States() {
		// Zero coverage means no fit at all, regardless of threshold.
		if len(c.RequiredCapabilities) > 0 && coverage(state, c.RequiredCapabilities) == 0 {
			continue
		}
		base := s.baseScore(state, c)
		if base < c.MinProficiency {
			continue
		}
		score := base
		if c.PreferAvailable && state.Available() {
			score = clampScore(score + availabilityBonus)
		}
		candidates = append(candidates, candidate{id: state.Identity.ID, score: score})
	}
	return rank(candidates)
}

func (s *CapabilityBased) SelectAgent(c Criteria, team registry.Team) (Decision, error) {
	if err := validateCriteria(c); err != nil {
		return Decision{}, err
	}
	ranked := s.rankTeam(c, team)
	if len(ranked) == 0 {
		return noMatch(fmt.Sprintf("no agent covers the required capabilities %v at proficiency >= %.2f",
			c.RequiredCapabilities, c.MinProficiency)), nil
	}
	return decisionAt(ranked, 0, s.reason(ranked[0])), nil
}

func (s *CapabilityBased) SelectAgents(c Criteria, team registry.Team, count int) ([]Decision, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidCount)
	}
	return selectTop(s.rankTeam(c, team), count, s.reason), nil
}

func (s *CapabilityBased) reason(c candidate) string {
	return fmt.Sprintf("agent %s scored %.2f on capability coverage and proficiency", c.id, clampScore(c.score))
}
