package delegation

import (
	"fmt"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

// BestFit blends capability fit, availability, success history and
// role match into one weighted score.
type BestFit struct{}

// NewBestFit creates the weighted scoring strategy.
func NewBestFit() *BestFit {
	return &BestFit{}
}

func (*BestFit) Name() string { return "best-fit" }

const (
	bestFitCapabilityWeight   = 0.40
	bestFitAvailabilityWeight = 0.25
	bestFitSuccessWeight      = 0.25
	bestFitRoleWeight         = 0.10

	neutralScore     = 0.5
	busyAvailability = 0.3
)

// capabilityPart averages proficiency over the required capabilities
// (missing ones count as zero). With no requirements it falls back to
// the mean of all declared proficiencies, or a neutral 0.5 for an
// agent declaring nothing.
func (s *BestFit) capabilityPart(state registry.State, c Criteria) float64 {
	if len(c.RequiredCapabilities) == 0 {
		if len(state.Identity.Capabilities) == 0 {
			return neutralScore
		}
		sum := 0.0
		for _, declared := range state.Identity.Capabilities {
			sum += declared.Proficiency
		}
		return sum / float64(len(state.Identity.Capabilities))
	}
	sum := 0.0
	for _, name := range c.RequiredCapabilities {
		sum += state.Identity.ProficiencyFor(name)
	}
	return sum / float64(len(c.RequiredCapabilities))
}

func (s *BestFit) score(state registry.State, c Criteria) float64 {
	availability := busyAvailability
	if state.Available() {
		availability = 1.0
	}

	roleMatch := neutralScore
	if c.PreferredRole == "" || state.Identity.Role == c.PreferredRole {
		roleMatch = 1.0
	}

	return bestFitCapabilityWeight*s.capabilityPart(state, c) +
		bestFitAvailabilityWeight*availability +
		bestFitSuccessWeight*state.SuccessRate() +
		bestFitRoleWeight*roleMatch
}

func (s *BestFit) rankTeam(c Criteria, team registry.Team) []candidate {
	var candidates []candidate
	for _, state := range team.States() {
		candidates = append(candidates, candidate{id: state.Identity.ID, score: s.score(state, c)})
	}
	return rank(candidates)
}

func (s *BestFit) SelectAgent(c Criteria, team registry.Team) (Decision, error) {
	if err := validateCriteria(c); err != nil {
		return Decision{}, err
	}
	ranked := s.rankTeam(c, team)
	if len(ranked) == 0 {
		return noMatch("team is empty"), nil
	}
	return decisionAt(ranked, 0, s.reason(ranked[0])), nil
}

func (s *BestFit) SelectAgents(c Criteria, team registry.Team, count int) ([]Decision, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidCount)
	}
	return selectTop(s.rankTeam(c, team), count, s.reason), nil
}

func (s *BestFit) reason(c candidate) string {
	return fmt.Sprintf("agent %s scored %.2f across capability, availability, history and role", c.id, c.score)
}
