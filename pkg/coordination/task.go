package coordination

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is a task's position in its lifecycle. Transitions only
// move forward; Completed, Failed and Cancelled are terminal.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Task is one assignable unit of work derived from a goal. Like agent
// states, tasks are values: every transition returns a new task and an
// out-of-order transition returns the receiver unchanged.
type Task struct {
	ID                   string
	GoalID               string
	Description          string
	RequiredCapabilities []string
	MinProficiency       float64
	Status               TaskStatus
	AssignedTo           string
	Reason               string
	CreatedAt            time.Time
	StartedAt            time.Time
	FinishedAt           time.Time
}

func newTask(g Goal) Task {
	return Task{
		ID:                   "task-" + uuid.New().String(),
		GoalID:               g.ID,
		Description:          g.Description,
		RequiredCapabilities: g.RequiredCapabilities,
		MinProficiency:       g.MinProficiency,
		Status:               TaskPending,
		CreatedAt:            time.Now(),
	}
}

// Assign binds a pending task to an agent.
func (t Task) Assign(agentID string) Task {
	if t.Status != TaskPending {
		return t
	}
	t.Status = TaskAssigned
	t.AssignedTo = agentID
	return t
}

// Start moves an assigned task into execution.
func (t Task) Start() Task {
	if t.Status != TaskAssigned {
		return t
	}
	t.Status = TaskInProgress
	t.StartedAt = time.Now()
	return t
}

// Complete finishes an in-progress task successfully.
func (t Task) Complete() Task {
	if t.Status != TaskInProgress {
		return t
	}
	t.Status = TaskCompleted
	t.FinishedAt = time.Now()
	return t
}

// Fail terminates the task with a reason. Any non-terminal task can
// fail: delegation may find no agent before the task was ever
// assigned.
func (t Task) Fail(reason string) Task {
	if t.Terminal() {
		return t
	}
	t.Status = TaskFailed
	t.Reason = reason
	t.FinishedAt = time.Now()
	return t
}

// Cancel terminates a task that will not run.
func (t Task) Cancel() Task {
	if t.Terminal() {
		return t
	}
	t.Status = TaskCancelled
	t.FinishedAt = time.Now()
	return t
}

// Terminal reports whether the task reached a final status.
func (t Task) Terminal() bool {
	switch t.Status {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}
