package delegation

import (
	"fmt"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

// Weighted pairs a child strategy with its weight in a composite.
type Weighted struct {
	Strategy Strategy
	Weight   float64
}

// Composite aggregates the opinions of several child strategies.
// Every agent any child picked, as primary or alternative, receives
// score×weight; alternatives contribute at half score and half
// weight. The aggregate is normalized by the sum of all child
// weights, and agents below MinProficiency after aggregation are
// dropped.
type Composite struct {
	name     string
	children []Weighted
}

// NewComposite builds a composite from the given weighted children.
func NewComposite(name string, children ...Weighted) *Composite {
	return &Composite{name: name, children: children}
}

// NewBalanced is the pre-built composite mixing capability matching,
// load balancing and best-fit scoring.
func NewBalanced() *Composite {
	return NewComposite("balanced",
		Weighted{Strategy: NewCapabilityBased(), Weight: 0.35},
		Weighted{Strategy: NewLoadBalancing(), Weight: 0.35},
		Weighted{Strategy: NewBestFit(), Weight: 0.30},
	)
}

func (s *Composite) Name() string { return s.name }

func (s *Composite) rankTeam(c Criteria, team registry.Team) ([]candidate, error) {
	totalWeight := 0.0
	for _, child := range s.children {
		totalWeight += child.Weight
	}
	if totalWeight == 0 {
		return nil, nil
	}

	accumulated := make(map[string]float64)
	var order []string // first-seen order keeps ranking deterministic
	note := func(id string, contribution float64) {
		if _, seen := accumulated[id]; !seen {
			order = append(order, id)
		}
		accumulated[id] += contribution
	}

	// Children see the criteria without the proficiency floor; the
	// floor applies to the aggregate below.
	childCriteria := c
	childCriteria.MinProficiency = 0

	for _, child := range s.children {
		d, err := child.Strategy.SelectAgent(childCriteria, team)
		if err != nil {
			return nil, fmt.Errorf("composite child %s: %w", child.Strategy.Name(), err)
		}
		if !d.Matched() {
			continue
		}
		note(d.AgentID, d.Score*child.Weight)
		for _, alt := range d.Alternatives {
			note(alt, (d.Score*0.5)*(child.Weight*0.5))
		}
	}

	var candidates []candidate
	for _, id := range order {
		score := accumulated[id] / totalWeight
		if score < c.MinProficiency {
			continue
		}
		candidates = append(candidates, candidate{id: id, score: score})
	}
	return rank(candidates), nil
}

func (s *Composite) SelectAgent(c Criteria, team registry.Team) (Decision, error) {
	if err := validateCriteria(c); err != nil {
		return Decision{}, err
	}
	ranked, err := s.rankTeam(c, team)
	if err != nil {
		return Decision{}, err
	}
	if len(ranked) == 0 {
		return noMatch(fmt.Sprintf("no child strategy of %s produced a qualifying agent", s.name)), nil
	}
	return decisionAt(ranked, 0, s.reason(ranked[0])), nil
}

func (s *Composite) SelectAgents(c Criteria, team registry.Team, count int) ([]Decision, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidCount)
	}
	ranked, err := s.rankTeam(c, team)
	if err != nil {
		return nil, err
	}
	return selectTop(ranked, count, s.reason), nil
}

func (s *Composite) reason(c candidate) string {
	return fmt.Sprintf("agent %s scored %.2f aggregated across %d strategies", c.id, c.score, len(s.children))
}
