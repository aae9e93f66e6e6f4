// Package delegation chooses agents for tasks. Each strategy scores a
// team snapshot against selection criteria; a no-match is a normal
// Decision value with an empty agent id, never an error.
package delegation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

// Sentinel errors for caller-contract violations.
var (
	ErrInvalidCount       = errors.New("selection count must be positive")
	ErrInvalidProficiency = errors.New("minimum proficiency must be between 0 and 1")
	ErrUnknownStrategy    = errors.New("unknown delegation strategy")
)

// Criteria describes what the caller needs from an agent.
type Criteria struct {
	Goal                 string
	RequiredCapabilities []string
	MinProficiency       float64
	PreferAvailable      bool
	PreferredRole        registry.Role
}

// Decision is the outcome of one selection. Alternatives holds up to
// three runner-up agent ids in rank order.
type Decision struct {
	AgentID      string
	Reasoning    string
	Score        float64
	Alternatives []string
}

// Matched reports whether an agent was selected.
func (d Decision) Matched() bool {
	return d.AgentID != ""
}

// Strategy selects agents from a team snapshot. Implementations are
// deterministic for identical inputs, except RoundRobin whose only
// state is its rotation cursor.
type Strategy interface {
	Name() string
	SelectAgent(c Criteria, team registry.Team) (Decision, error)
	SelectAgents(c Criteria, team registry.Team, count int) ([]Decision, error)
}

// New is a factory over the built-in strategies, keyed by Name().
func New(name string) (Strategy, error) {
	switch name {
	case "capability-based":
		return NewCapabilityBased(), nil
	case "role-based":
		return NewRoleBased(), nil
	case "load-balancing":
		return NewLoadBalancing(), nil
	case "round-robin":
		return NewRoundRobin(), nil
	case "best-fit":
		return NewBestFit(), nil
	case "balanced":
		return NewBalanced(), nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
}

func validateCriteria(c Criteria) error {
	if c.MinProficiency < 0 || c.MinProficiency > 1 {
		return fmt.Errorf("min proficiency %v: %w", c.MinProficiency, ErrInvalidProficiency)
	}
	return nil
}

// candidate is one scored agent during ranking.
type candidate struct {
	id    string
	score float64
}

// rank orders candidates by score descending. The input is built from
// sorted team iteration, and the stable sort keeps ties in id order,
// so ranking is deterministic for a given snapshot.
func rank(candidates []candidate) []candidate {
	out := make([]candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out
}

// decisionAt builds the Decision for ranked[i], with up to three
// runner-ups taken from the positions after i.
func decisionAt(ranked []candidate, i int, reason string) Decision {
	d := Decision{
		AgentID:   ranked[i].id,
		Score:     clampScore(ranked[i].score),
		Reasoning: reason,
	}
	for j := i + 1; j < len(ranked) && len(d.Alternatives) < 3; j++ {
		d.Alternatives = append(d.Alternatives, ranked[j].id)
	}
	return d
}

func noMatch(reason string) Decision {
	return Decision{Reasoning: reason}
}

// selectTop is the shared SelectAgents body: take the best count
// agents from a ranking produced by fn.
func selectTop(ranked []candidate, count int, reason func(candidate) string) []Decision {
	if count > len(ranked) {
		count = len(ranked)
	}
	decisions := make([]Decision, 0, count)
	for i := 0; i < count; i++ {
		decisions = append(decisions, decisionAt(ranked, i, reason(ranked[i])))
	}
	return decisions
}

func clampScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}

// coverage is the fraction of required capabilities the agent
// declares, 1 when nothing is required.
func coverage(s registry.State, required []string) float64 {
	if len(required) == 0 {
		return 1
	}
	matched := 0
	for _, name := range required {
		if s.Identity.HasCapability(name) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}
