package registry

import "time"

// Status is an agent's availability for new work.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusBusy    Status = "busy"
	StatusWaiting Status = "waiting"
	StatusError   Status = "error"
	StatusOffline Status = "offline"
)

// State couples an identity with its runtime bookkeeping. Every
// transition returns a new value; concurrent team updates compose as
// read snapshot, compute, swap.
type State struct {
	Identity       Identity
	Status         Status
	CurrentTaskID  string
	CompletedTasks int
	FailedTasks    int
	LastActivityAt time.Time
}

// NewState returns the initial idle state for an identity.
func NewState(ident Identity) State {
	return State{
		Identity:       ident,
		Status:         StatusIdle,
		LastActivityAt: time.Now(),
	}
}

// StartTask marks the agent busy on the given task.
func (s State) StartTask(taskID string) State {
	s.Status = StatusBusy
	s.CurrentTaskID = taskID
	s.LastActivityAt = time.Now()
	return s
}

// CompleteTask records a success and returns the agent to idle.
func (s State) CompleteTask() State {
	s.Status = StatusIdle
	s.CurrentTaskID = ""
	s.CompletedTasks++
	s.LastActivityAt = time.Now()
	return s
}

// FailTask records a failure and moves the agent to the error status.
func (s State) FailTask() State {
	s.Status = StatusError
	s.CurrentTaskID = ""
	s.FailedTasks++
	s.LastActivityAt = time.Now()
	return s
}

// WithStatus returns the state with the status replaced.
func (s State) WithStatus(status Status) State {
	s.Status = status
	s.LastActivityAt = time.Now()
	return s
}

// SuccessRate is completed/(completed+failed), or 1 when the agent has
// not attempted any task yet.
func (s State) SuccessRate() float64 {
	total := s.CompletedTasks + s.FailedTasks
	if total == 0 {
		return 1
	}
	return float64(s.CompletedTasks) / float64(total)
}

// Available reports whether the agent can take a task right now.
func (s State) Available() bool {
	return s.Status == StatusIdle
}

// TotalTasks is the number of tasks the agent has finished, in either
// direction.
func (s State) TotalTasks() int {
	return s.CompletedTasks + s.FailedTasks
}
