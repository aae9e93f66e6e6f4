package coordination

import (
	"sort"
	"time"
)

// Result is the outcome of executing one goal: the tasks it decomposed
// to with their final statuses, plus the elapsed time. Err is set only
// for coordination-level failures (no available agents, empty
// decomposition, cancellation) - ordinary task failures live on the
// tasks themselves.
type Result struct {
	GoalID   string
	Tasks    []Task
	Duration time.Duration
	Err      error
}

// Success reports whether every task reached Completed. A result with
// no tasks or a coordination-level error is never a success.
func (r Result) Success() bool {
	if r.Err != nil || len(r.Tasks) == 0 {
		return false
	}
	for _, t := range r.Tasks {
		if t.Status != TaskCompleted {
			return false
		}
	}
	return true
}

// SuccessRate is the fraction of tasks that completed.
func (r Result) SuccessRate() float64 {
	if len(r.Tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range r.Tasks {
		if t.Status == TaskCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(r.Tasks))
}

// Participants returns the sorted, de-duplicated ids of agents that
// received an assignment.
func (r Result) Participants() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range r.Tasks {
		if t.AssignedTo == "" {
			continue
		}
		if _, ok := seen[t.AssignedTo]; ok {
			continue
		}
		seen[t.AssignedTo] = struct{}{}
		ids = append(ids, t.AssignedTo)
	}
	sort.Strings(ids)
	return ids
}

// FailedTasks returns the tasks that ended in Failed.
func (r Result) FailedTasks() []Task {
	var failed []Task
	for _, t := range r.Tasks {
		if t.Status == TaskFailed {
			failed = append(failed, t)
		}
	}
	return failed
}
