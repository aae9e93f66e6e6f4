// Package consensus aggregates agent votes into a single decision.
// Protocols are pure functions over a vote list; the voting session
// adds stateful, thread-safe vote collection on top.
package consensus

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrEmptyAgentID      = errors.New("vote agent id is empty")
	ErrEmptyOption       = errors.New("vote option is empty")
)

// Vote is one agent's opinion: a free-form option plus how sure the
// agent is about it.
type Vote struct {
	AgentID    string
	Option     string
	Confidence float64
	Reasoning  string
	Timestamp  time.Time
}

// NewVote builds a validated vote.
func NewVote(agentID, option string, confidence float64, reasoning string) (Vote, error) {
	if agentID == "" {
		return Vote{}, ErrEmptyAgentID
	}
	if option == "" {
		return Vote{}, ErrEmptyOption
	}
	if confidence < 0 || confidence > 1 {
		return Vote{}, fmt.Errorf("confidence %v: %w", confidence, ErrInvalidConfidence)
	}
	return Vote{
		AgentID:    agentID,
		Option:     option,
		Confidence: confidence,
		Reasoning:  reasoning,
		Timestamp:  time.Now(),
	}, nil
}

// Outcome is the result of evaluating votes under one protocol. The
// winning option is empty when no winner emerged, and Reached reports
// whether the protocol's definition of agreement was met.
type Outcome struct {
	Strategy       string
	WinningOption  string
	Confidence     float64
	Reached        bool
	VoteCounts     map[string]int
	ConfidenceSums map[string]float64
	TotalVotes     int
}
