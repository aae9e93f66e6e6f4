package coordination

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/emergent-labs/hivemind/pkg/delegation"
	"github.com/emergent-labs/hivemind/pkg/messaging"
	"github.com/emergent-labs/hivemind/pkg/registry"
)

// Lifecycle topics published during task execution.
const (
	TopicTaskAssigned  = "task.assigned"
	TopicTaskCompleted = "task.completed"
)

const coordinatorID = "coordinator"

const defaultWorkDelay = 10 * time.Millisecond

var (
	ErrNilStore           = errors.New("coordinator needs a team store")
	ErrNilBus             = errors.New("coordinator needs a message bus")
	ErrNilStrategy        = errors.New("delegation strategy is nil")
	ErrNoAvailableAgents  = errors.New("no agents available")
	ErrEmptyDecomposition = errors.New("goal decomposed to no tasks")
)

// Coordinator drives goals to completion: decompose into tasks, pick
// an agent per task through the delegation strategy, walk the agent
// through busy and back, and publish lifecycle messages. Tasks inside
// one goal run sequentially in decomposition order; independent goals
// may run concurrently through ExecuteParallel.
type Coordinator struct {
	store      *registry.TeamStore
	bus        messaging.MessageBus
	logger     *slog.Logger
	workDelay  time.Duration
	ackTimeout time.Duration

	mu       sync.Mutex
	strategy delegation.Strategy
}

// Option configures a coordinator.
type Option func(*Coordinator)

// WithStrategy sets the delegation strategy.
func WithStrategy(s delegation.Strategy) Option {
	return func(c *Coordinator) { c.strategy = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithWorkDelay sets how long the simulated execution of each task
// holds its agent busy.
func WithWorkDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.workDelay = d }
}

// WithRequestTimeout makes the coordinator send "task.assigned" as a
// correlated request and wait up to d for the agent's acknowledgment.
// Zero (the default) publishes assignments fire-and-forget. A missing
// ack is logged, never a task failure.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.ackTimeout = d }
}

// NewCoordinator creates a coordinator over the given team store and
// bus. The default strategy is capability-based.
func NewCoordinator(store *registry.TeamStore, bus messaging.MessageBus, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if bus == nil {
		return nil, ErrNilBus
	}
	c := &Coordinator{
		store:     store,
		bus:       bus,
		logger:    slog.Default(),
		workDelay: defaultWorkDelay,
		strategy:  delegation.NewCapabilityBased(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.strategy == nil {
		return nil, ErrNilStrategy
	}
	return c, nil
}

// SetStrategy swaps the delegation strategy for subsequent tasks.
func (c *Coordinator) SetStrategy(s delegation.Strategy) error {
	if s == nil {
		return ErrNilStrategy
	}
	c.mu.Lock()
	c.strategy = s
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) currentStrategy() delegation.Strategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy
}

// Execute runs one goal to completion. It fails fast when the team has
// no available agents or the goal decomposes to nothing. A task whose
// delegation finds no agent is marked Failed and the batch moves on;
// cancellation stops the loop before the next unstarted task and marks
// the remainder Cancelled. The returned error mirrors Result.Err.
func (c *Coordinator) Execute(ctx context.Context, goal Goal) (Result, error) {
	start := time.Now()
	result := Result{GoalID: goal.ID}

	if len(c.store.Snapshot().Available()) == 0 {
		result.Err = ErrNoAvailableAgents
		result.Duration = time.Since(start)
		return result, result.Err
	}

	tasks := goal.Decompose()
	if len(tasks) == 0 {
		result.Err = ErrEmptyDecomposition
		result.Duration = time.Since(start)
		return result, result.Err
	}

	c.logger.Info("executing goal",
		"goal_id", goal.ID,
		"description", goal.Description,
		"tasks", len(tasks))

	for i := range tasks {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(tasks); j++ {
				tasks[j] = tasks[j].Cancel()
			}
			result.Err = err
			break
		}
		tasks[i] = c.runTask(ctx, tasks[i])
	}

	result.Tasks = tasks
	result.Duration = time.Since(start)
	return result, result.Err
}

// ExecuteParallel runs one Execute per goal concurrently and returns
// the results in goal order. The error is the join of the per-goal
// errors.
func (c *Coordinator) ExecuteParallel(ctx context.Context, goals []Goal) ([]Result, error) {
	results := make([]Result, len(goals))
	errs := make([]error, len(goals))

	var wg sync.WaitGroup
	for i, g := range goals {
		wg.Add(1)
		go func(i int, g Goal) {
			defer wg.Done()
			results[i], errs[i] = c.Execute(ctx, g)
		}(i, g)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

// runTask takes one task from pending to a terminal status. Work is
// simulated by holding the chosen agent busy for the work delay; a
// task already dispatched is never aborted mid-flight.
func (c *Coordinator) runTask(ctx context.Context, task Task) Task {
	snapshot := c.store.Snapshot()
	decision, err := c.currentStrategy().SelectAgent(delegation.Criteria{
		Goal:                 task.Description,
		RequiredCapabilities: task.RequiredCapabilities,
		MinProficiency:       task.MinProficiency,
		PreferAvailable:      true,
	}, snapshot)
	if err != nil {
		return task.Fail(err.Error())
	}
	if !decision.Matched() {
		c.logger.Warn("no agent for task",
			"task_id", task.ID,
			"reason", decision.Reasoning)
		return task.Fail(decision.Reasoning)
	}

	task = task.Assign(decision.AgentID).Start()
	c.store.Apply(func(team registry.Team) registry.Team {
		if s, ok := team.Get(decision.AgentID); ok {
			return team.Update(decision.AgentID, s.StartTask(task.ID))
		}
		return team
	})

	c.announceAssignment(ctx, decision.AgentID, task)

	time.Sleep(c.workDelay)

	c.store.Apply(func(team registry.Team) registry.Team {
		if s, ok := team.Get(decision.AgentID); ok {
			return team.Update(decision.AgentID, s.CompleteTask())
		}
		return team
	})
	task = task.Complete()

	c.publish(messaging.NewNotification(coordinatorID, decision.AgentID, TopicTaskCompleted, task.ID))

	c.logger.Info("task completed",
		"task_id", task.ID,
		"agent_id", decision.AgentID,
		"score", decision.Score)
	return task
}

// announceAssignment tells the agent about its task. With an ack
// timeout configured the assignment is a correlated request and the
// coordinator waits for the agent's response; either way a transport
// problem is logged and the task proceeds.
func (c *Coordinator) announceAssignment(ctx context.Context, agentID string, task Task) {
	m := messaging.NewRequest(coordinatorID, agentID, TopicTaskAssigned, task.Description)
	if c.ackTimeout <= 0 {
		c.publish(m)
		return
	}
	if _, err := c.bus.Request(ctx, m, c.ackTimeout); err != nil {
		c.logger.Warn("assignment not acknowledged",
			"task_id", task.ID,
			"agent_id", agentID,
			"error", err)
	}
}

// publish sends a lifecycle message best-effort. A bus failure here is
// logged, never turned into a task failure: the work itself succeeded.
func (c *Coordinator) publish(m messaging.Message) {
	if err := c.bus.Publish(m); err != nil {
		c.logger.Warn("lifecycle publish failed",
			"topic", m.Topic,
			"error", err)
	}
}
