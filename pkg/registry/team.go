package registry

import "sort"

// Team is an immutable snapshot of agent states keyed by agent id.
// Add, Remove and Update return a new team and leave the receiver
// usable by readers that already hold it.
type Team struct {
	agents map[string]State
}

// NewTeam builds a team from the given states. A later state for the
// same agent id wins.
func NewTeam(states ...State) Team {
	agents := make(map[string]State, len(states))
	for _, s := range states {
		agents[s.Identity.ID] = s
	}
	return Team{agents: agents}
}

// Add returns a team with the state inserted or replaced.
func (t Team) Add(s State) Team {
	next := t.copyAgents(1)
	next[s.Identity.ID] = s
	return Team{agents: next}
}

// Remove returns a team without the given agent. Removing an unknown
// id returns the team unchanged.
func (t Team) Remove(agentID string) Team {
	if _, ok := t.agents[agentID]; !ok {
		return t
	}
	next := t.copyAgents(0)
	delete(next, agentID)
	return Team{agents: next}
}

// Update returns a team with the agent's state replaced. Updating an
// unknown id is a no-op, never an error: coordination code that races
// a removal must not crash.
func (t Team) Update(agentID string, s State) Team {
	if _, ok := t.agents[agentID]; !ok {
		return t
	}
	next := t.copyAgents(0)
	next[agentID] = s
	return Team{agents: next}
}

// Get looks up an agent state by id.
func (t Team) Get(agentID string) (State, bool) {
	s, ok := t.agents[agentID]
	return s, ok
}

// IDs returns all agent ids in sorted order. Sorted iteration keeps
// every selection strategy deterministic for a given snapshot.
func (t Team) IDs() []string {
	ids := make([]string, 0, len(t.agents))
	for id := range t.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// States returns all agent states ordered by agent id.
func (t Team) States() []State {
	states := make([]State, 0, len(t.agents))
	for _, id := range t.IDs() {
		states = append(states, t.agents[id])
	}
	return states
}

// Available returns the states of all idle agents, ordered by id.
func (t Team) Available() []State {
	var states []State
	for _, s := range t.States() {
		if s.Available() {
			states = append(states, s)
		}
	}
	return states
}

// Len is the number of agents on the team.
func (t Team) Len() int {
	return len(t.agents)
}

func (t Team) copyAgents(extra int) map[string]State {
	next := make(map[string]State, len(t.agents)+extra)
	for id, s := range t.agents {
		next[id] = s
	}
	return next
}
