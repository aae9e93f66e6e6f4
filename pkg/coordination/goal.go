// Package coordination turns goals into tasks, assigns them to agents
// through a delegation strategy, and reports the batch outcome. Task
// lifecycle messages go out on the message bus.
package coordination

import "github.com/google/uuid"

// Goal is a unit of work. A goal with sub-goals is a composite: only
// its leaves become tasks.
type Goal struct {
	ID                   string
	Description          string
	RequiredCapabilities []string
	MinProficiency       float64
	SubGoals             []Goal
}

// NewGoal creates a goal with a fresh id.
func NewGoal(description string, subGoals ...Goal) Goal {
	return Goal{
		ID:          "goal-" + uuid.New().String(),
		Description: description,
		SubGoals:    subGoals,
	}
}

// WithCapabilities returns the goal requiring the given capability
// names. Requirements flow into the tasks the goal decomposes to.
func (g Goal) WithCapabilities(names ...string) Goal {
	g.RequiredCapabilities = names
	return g
}

// WithMinProficiency returns the goal requiring at least the given
// capability score from the agent that takes its tasks.
func (g Goal) WithMinProficiency(p float64) Goal {
	g.MinProficiency = p
	return g
}

// Decompose flattens the goal tree into tasks, depth-first in
// pre-order. A leaf becomes one task; a composite contributes its
// sub-goals' tasks in declaration order and no task of its own. A leaf
// with an empty description contributes nothing, so a degenerate tree
// can decompose to zero tasks - the coordinator treats that as a
// failure, not an empty success.
func (g Goal) Decompose() []Task {
	if len(g.SubGoals) == 0 {
		if g.Description == "" {
			return nil
		}
		return []Task{newTask(g)}
	}
	var tasks []Task
	for _, sub := range g.SubGoals {
		tasks = append(tasks, sub.Decompose()...)
	}
	return tasks
}
