package consensus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTopic    = errors.New("voting topic is empty")
	ErrNoOptions     = errors.New("voting session needs at least one option")
	ErrNilProtocol   = errors.New("voting session needs a protocol")
	ErrDuplicateVote = errors.New("agent has already voted")
	ErrUnknownOption = errors.New("option is not part of this session")
)

// VotingSession collects votes on a fixed option set and evaluates
// them with its protocol. One lock guards the vote list and the
// voted-agent set. Results replay the full vote snapshot through the
// protocol on every call: protocols are not additive (unanimity can
// flip on any later vote), so there is no cached tally to go stale.
type VotingSession struct {
	id        string
	topic     string
	options   map[string]struct{}
	protocol  Protocol
	createdAt time.Time

	mu    sync.Mutex
	votes []Vote
	voted map[string]struct{}
}

// NewSession creates a voting session on the given topic and options.
func NewSession(topic string, options []string, protocol Protocol) (*VotingSession, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if len(options) == 0 {
		return nil, ErrNoOptions
	}
	if protocol == nil {
		return nil, ErrNilProtocol
	}

	optionSet := make(map[string]struct{}, len(options))
	for _, opt := range options {
		optionSet[opt] = struct{}{}
	}
	return &VotingSession{
		id:        "session-" + uuid.New().String(),
		topic:     topic,
		options:   optionSet,
		protocol:  protocol,
		createdAt: time.Now(),
		voted:     make(map[string]struct{}),
	}, nil
}

// ID returns the session identifier.
func (s *VotingSession) ID() string { return s.id }

// Topic returns what is being voted on.
func (s *VotingSession) Topic() string { return s.topic }

// CastVote records a vote. A second vote from the same agent and a
// vote for an option outside the session's set are explicit failures,
// not silent drops.
func (s *VotingSession) CastVote(v Vote) error {
	if v.AgentID == "" {
		return ErrEmptyAgentID
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence %v: %w", v.Confidence, ErrInvalidConfidence)
	}
	if _, ok := s.options[v.Option]; !ok {
		return fmt.Errorf("option %q: %w", v.Option, ErrUnknownOption)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, already := s.voted[v.AgentID]; already {
		return fmt.Errorf("agent %q: %w", v.AgentID, ErrDuplicateVote)
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}
	s.voted[v.AgentID] = struct{}{}
	s.votes = append(s.votes, v)
	return nil
}

// HasVoted reports whether the agent already cast a vote.
func (s *VotingSession) HasVoted(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.voted[agentID]
	return ok
}

// Votes returns a copy of the votes cast so far.
func (s *VotingSession) Votes() []Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Vote, len(s.votes))
	copy(out, s.votes)
	return out
}

// Result evaluates the current votes under the session protocol.
func (s *VotingSession) Result() Outcome {
	return s.protocol.Evaluate(s.Votes())
}

// TryResult returns the outcome only when the protocol reports that
// consensus was reached.
func (s *VotingSession) TryResult() (Outcome, bool) {
	outcome := s.Result()
	return outcome, outcome.Reached
}
