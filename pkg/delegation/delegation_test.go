package delegation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-labs/hivemind/pkg/registry"
)

func agentState(id string, role registry.Role, caps ...registry.Capability) registry.State {
	return registry.NewState(registry.NewIdentity(id, role, registry.WithID(id), registry.WithCapabilities(caps...)))
}

func skill(name string, proficiency float64) registry.Capability {
	return registry.MustCapability(name, "", proficiency)
}

func TestCapabilityBased(t *testing.T) {
	s := NewCapabilityBased()
	alice := agentState("alice", registry.RoleExecutor, skill("coding", 0.9), skill("review", 0.6))
	bob := agentState("bob", registry.RoleExecutor, skill("coding", 0.5))
	team := registry.NewTeam(alice, bob)

	t.Run("coverage times mean matched proficiency", func(t *testing.T) {
		d, err := s.SelectAgent(Criteria{RequiredCapabilities: []string{"coding", "review"}}, team)
		require.NoError(t, err)
		assert.Equal(t, "alice", d.AgentID)
		assert.InDelta(t, 0.75, d.Score, 1e-9) // 1.0 coverage * (0.9+0.6)/2
		assert.Equal(t, []string{"bob"}, d.Alternatives)
	})

	t.Run("partial coverage scores lower", func(t *testing.T) {
		ds, err := s.SelectAgents(Criteria{RequiredCapabilities: []string{"coding", "review"}}, team, 2)
		require.NoError(t, err)
		require.Len(t, ds, 2)
		assert.Equal(t, "bob", ds[1].AgentID)
		assert.InDelta(t, 0.25, ds[1].Score, 1e-9) // 0.5 coverage * 0.5
	})

	t.Run("threshold filters before the availability bonus", func(t *testing.T) {
		// bob's base 0.25 plus the 0.10 idle bonus would pass 0.30, but
		// the filter applies to the pre-bonus score.
		d, err := s.SelectAgent(Criteria{
			RequiredCapabilities: []string{"coding", "review"},
			MinProficiency:       0.30,
			PreferAvailable:      true,
		}, team)
		require.NoError(t, err)
		assert.Equal(t, "alice", d.AgentID)
		assert.InDelta(t, 0.85, d.Score, 1e-9) // 0.75 + 0.10 bonus
		assert.Empty(t, d.Alternatives)
	})

	t.Run("selected score never ends below the threshold", func(t *testing.T) {
		for _, min := range []float64{0, 0.2, 0.5, 0.8, 1} {
			d, err := s.SelectAgent(Criteria{
				RequiredCapabilities: []string{"coding"},
				MinProficiency:       min,
				PreferAvailable:      true,
			}, team)
			require.NoError(t, err)
			if d.Matched() {
				assert.GreaterOrEqual(t, d.Score, min)
			}
		}
	})

	t.Run("no required capabilities falls back to success rate", func(t *testing.T) {
		seasoned := agentState("seasoned", registry.RoleExecutor)
		seasoned.CompletedTasks = 1
		seasoned.FailedTasks = 1 // success rate 0.5
		fresh := agentState("fresh", registry.RoleExecutor)

		d, err := s.SelectAgent(Criteria{}, registry.NewTeam(seasoned, fresh))
		require.NoError(t, err)
		assert.Equal(t, "fresh", d.AgentID)
		assert.InDelta(t, 1.0, d.Score, 1e-9)
	})

	t.Run("no qualifying agent is a no-match, not an error", func(t *testing.T) {
		d, err := s.SelectAgent(Criteria{RequiredCapabilities: []string{"alchemy"}}, team)
		require.NoError(t, err)
		assert.False(t, d.Matched())
		assert.NotEmpty(t, d.Reasoning)
	})

	t.Run("zero coverage never matches, even at threshold zero", func(t *testing.T) {
		// Nobody declares "alchemy"; a zero base score must not slip
		// past a MinProficiency of 0 or be revived by the idle bonus.
		d, err := s.SelectAgent(Criteria{
			RequiredCapabilities: []string{"alchemy"},
			MinProficiency:       0,
			PreferAvailable:      true,
		}, team)
		require.NoError(t, err)
		assert.False(t, d.Matched())

		ds, err := s.SelectAgents(Criteria{RequiredCapabilities: []string{"alchemy"}}, team, 2)
		require.NoError(t, err)
		assert.Empty(t, ds)
	})

	t.Run("bonus is capped at 1.0", func(t *testing.T) {
		expert := agentState("expert", registry.RoleExecutor, skill("coding", 1.0))
		d, err := s.SelectAgent(Criteria{
			RequiredCapabilities: []string{"coding"},
			PreferAvailable:      true,
		}, registry.NewTeam(expert))
		require.NoError(t, err)
		assert.Equal(t, 1.0, d.Score)
	})
}

func TestRoleBased(t *testing.T) {
	s := NewRoleBased()

	t.Run("no preferred role delegates to capability matching", func(t *testing.T) {
		alice := agentState("alice", registry.RoleExecutor, skill("coding", 0.9))
		team := registry.NewTeam(alice)
		c := Criteria{RequiredCapabilities: []string{"coding"}}

		got, err := s.SelectAgent(c, team)
		require.NoError(t, err)
		want, err := NewCapabilityBased().SelectAgent(c, team)
		require.NoError(t, err)
		assert.Equal(t, want.AgentID, got.AgentID)
		assert.Equal(t, want.Score, got.Score)
	})

	t.Run("matching role gets the bonus", func(t *testing.T) {
		planner := agentState("planner", registry.RolePlanner)
		executor := agentState("executor", registry.RoleExecutor)
		d, err := s.SelectAgent(Criteria{PreferredRole: registry.RolePlanner}, registry.NewTeam(planner, executor))
		require.NoError(t, err)
		assert.Equal(t, "planner", d.AgentID)
		assert.Equal(t, 1.0, d.Score) // 0.5+0.5 base, +0.20 capped
	})

	t.Run("strong non-matching agent can outrank a weak role match", func(t *testing.T) {
		weakPlanner := agentState("weak-planner", registry.RolePlanner)
		weakPlanner.FailedTasks = 4 // success rate 0 -> base 0.5, +0.2 = 0.7
		strongExecutor := agentState("strong-executor", registry.RoleExecutor) // base 1.0

		d, err := s.SelectAgent(Criteria{PreferredRole: registry.RolePlanner}, registry.NewTeam(weakPlanner, strongExecutor))
		require.NoError(t, err)
		assert.Equal(t, "strong-executor", d.AgentID)
	})

	t.Run("idle bonus applies when availability preferred", func(t *testing.T) {
		busy := agentState("busy", registry.RolePlanner).StartTask("t")
		idle := agentState("idle", registry.RolePlanner)

		ds, err := s.SelectAgents(Criteria{PreferredRole: registry.RolePlanner, PreferAvailable: true}, registry.NewTeam(busy, idle), 2)
		require.NoError(t, err)
		require.Len(t, ds, 2)
		assert.Equal(t, "idle", ds[0].AgentID)

		// Both raw scores exceed 1.0 (1.25 vs 1.20): ranking must keep
		// the idle bonus visible while the reported scores cap at 1.0.
		assert.Equal(t, 1.0, ds[0].Score)
		assert.Equal(t, 1.0, ds[1].Score)
	})
}

func TestLoadBalancing(t *testing.T) {
	s := NewLoadBalancing()

	t.Run("least loaded agent wins", func(t *testing.T) {
		rested := agentState("rested", registry.RoleExecutor)
		worked := agentState("worked", registry.RoleExecutor)
		worked.CompletedTasks = 5

		d, err := s.SelectAgent(Criteria{}, registry.NewTeam(rested, worked))
		require.NoError(t, err)
		assert.Equal(t, "rested", d.AgentID)
		assert.InDelta(t, 1.0, d.Score, 1e-9) // load factor 1, success 1
	})

	t.Run("busy agents count one in-flight task", func(t *testing.T) {
		busy := agentState("busy", registry.RoleExecutor)
		busy.CompletedTasks = 2
		busy = busy.StartTask("t")

		d, err := s.SelectAgent(Criteria{PreferAvailable: true}, registry.NewTeam(busy))
		require.NoError(t, err)
		// load factor 1 - (2+1)/(2+1) = 0, success rate 1
		assert.InDelta(t, 0.4, d.Score, 1e-9)
	})

	t.Run("falls back to all agents only when availability preferred", func(t *testing.T) {
		busy := agentState("busy", registry.RoleExecutor).StartTask("t")
		team := registry.NewTeam(busy)

		d, err := s.SelectAgent(Criteria{PreferAvailable: true}, team)
		require.NoError(t, err)
		assert.Equal(t, "busy", d.AgentID)

		d, err = s.SelectAgent(Criteria{}, team)
		require.NoError(t, err)
		assert.False(t, d.Matched())
	})
}

func TestRoundRobin(t *testing.T) {
	team := registry.NewTeam(
		agentState("a", registry.RoleExecutor),
		agentState("b", registry.RoleExecutor),
		agentState("c", registry.RoleExecutor),
	)

	t.Run("n selections visit every agent exactly once", func(t *testing.T) {
		s := NewRoundRobin()
		seen := make(map[string]int)
		for i := 0; i < 3; i++ {
			d, err := s.SelectAgent(Criteria{}, team)
			require.NoError(t, err)
			seen[d.AgentID]++
		}
		assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)

		// Fourth selection wraps.
		d, err := s.SelectAgent(Criteria{}, team)
		require.NoError(t, err)
		assert.Equal(t, "a", d.AgentID)
	})

	t.Run("cursor advances by the count actually returned", func(t *testing.T) {
		s := NewRoundRobin()
		ds, err := s.SelectAgents(Criteria{}, team, 2)
		require.NoError(t, err)
		require.Len(t, ds, 2)
		assert.Equal(t, "a", ds[0].AgentID)
		assert.Equal(t, "b", ds[1].AgentID)
		assert.InDelta(t, 1.0, ds[0].Score, 1e-9)
		assert.InDelta(t, 1-1.0/3, ds[1].Score, 1e-9)

		d, err := s.SelectAgent(Criteria{}, team)
		require.NoError(t, err)
		assert.Equal(t, "c", d.AgentID)
	})

	t.Run("count larger than the pool returns the whole pool", func(t *testing.T) {
		s := NewRoundRobin()
		ds, err := s.SelectAgents(Criteria{}, team, 10)
		require.NoError(t, err)
		assert.Len(t, ds, 3)
	})

	t.Run("empty team yields no decisions", func(t *testing.T) {
		s := NewRoundRobin()
		d, err := s.SelectAgent(Criteria{}, registry.NewTeam())
		require.NoError(t, err)
		assert.False(t, d.Matched())
	})
}

func TestBestFit(t *testing.T) {
	s := NewBestFit()

	t.Run("weighted blend", func(t *testing.T) {
		coder := agentState("coder", registry.RoleExecutor, skill("coding", 0.8))
		d, err := s.SelectAgent(Criteria{
			RequiredCapabilities: []string{"coding"},
			PreferredRole:        registry.RoleExecutor,
		}, registry.NewTeam(coder))
		require.NoError(t, err)
		// 0.4*0.8 + 0.25*1.0 + 0.25*1.0 + 0.1*1.0
		assert.InDelta(t, 0.92, d.Score, 1e-9)
	})

	t.Run("role mismatch scores half the role weight", func(t *testing.T) {
		coder := agentState("coder", registry.RoleCritic, skill("coding", 0.8))
		d, err := s.SelectAgent(Criteria{
			RequiredCapabilities: []string{"coding"},
			PreferredRole:        registry.RoleExecutor,
		}, registry.NewTeam(coder))
		require.NoError(t, err)
		assert.InDelta(t, 0.87, d.Score, 1e-9)
	})

	t.Run("busy agent availability is 0.3", func(t *testing.T) {
		busy := agentState("busy", registry.RoleExecutor, skill("coding", 0.8)).StartTask("t")
		d, err := s.SelectAgent(Criteria{
			RequiredCapabilities: []string{"coding"},
			PreferredRole:        registry.RoleExecutor,
		}, registry.NewTeam(busy))
		require.NoError(t, err)
		// 0.4*0.8 + 0.25*0.3 + 0.25*1.0 + 0.1*1.0
		assert.InDelta(t, 0.745, d.Score, 1e-9)
	})

	t.Run("agent with no declared capabilities scores neutral", func(t *testing.T) {
		blank := agentState("blank", registry.RoleGeneralist)
		d, err := s.SelectAgent(Criteria{}, registry.NewTeam(blank))
		require.NoError(t, err)
		// 0.4*0.5 + 0.25*1.0 + 0.25*1.0 + 0.1*1.0
		assert.InDelta(t, 0.8, d.Score, 1e-9)
	})
}

func TestComposite(t *testing.T) {
	alice := agentState("alice", registry.RoleExecutor, skill("coding", 0.9), skill("review", 0.6))
	bob := agentState("bob", registry.RoleExecutor, skill("coding", 0.5))
	team := registry.NewTeam(alice, bob)

	t.Run("single child is the child normalized", func(t *testing.T) {
		s := NewComposite("solo", Weighted{Strategy: NewCapabilityBased(), Weight: 1.0})
		d, err := s.SelectAgent(Criteria{RequiredCapabilities: []string{"coding", "review"}}, team)
		require.NoError(t, err)
		assert.Equal(t, "alice", d.AgentID)
		assert.InDelta(t, 0.75, d.Score, 1e-9)
	})

	t.Run("alternatives contribute at half score and half weight", func(t *testing.T) {
		s := NewComposite("solo", Weighted{Strategy: NewCapabilityBased(), Weight: 1.0})
		ds, err := s.SelectAgents(Criteria{RequiredCapabilities: []string{"coding", "review"}}, team, 2)
		require.NoError(t, err)
		require.Len(t, ds, 2)
		assert.Equal(t, "bob", ds[1].AgentID)
		assert.InDelta(t, 0.75*0.5*0.5, ds[1].Score, 1e-9)
	})

	t.Run("proficiency floor applies after aggregation", func(t *testing.T) {
		s := NewComposite("solo", Weighted{Strategy: NewCapabilityBased(), Weight: 1.0})
		ds, err := s.SelectAgents(Criteria{
			RequiredCapabilities: []string{"coding", "review"},
			MinProficiency:       0.5,
		}, team, 2)
		require.NoError(t, err)
		// bob aggregates to 0.1875, below the floor.
		require.Len(t, ds, 1)
		assert.Equal(t, "alice", ds[0].AgentID)
	})

	t.Run("balanced never selects below the floor", func(t *testing.T) {
		s := NewBalanced()
		d, err := s.SelectAgent(Criteria{
			RequiredCapabilities: []string{"coding"},
			MinProficiency:       0.99,
		}, team)
		require.NoError(t, err)
		if d.Matched() {
			assert.GreaterOrEqual(t, d.Score, 0.99)
		}
	})

	t.Run("balanced agrees with its children on an obvious pick", func(t *testing.T) {
		d, err := NewBalanced().SelectAgent(Criteria{RequiredCapabilities: []string{"coding", "review"}}, team)
		require.NoError(t, err)
		assert.Equal(t, "alice", d.AgentID)
	})
}

func TestValidation(t *testing.T) {
	team := registry.NewTeam(agentState("a", registry.RoleExecutor))
	strategies := []Strategy{
		NewCapabilityBased(), NewRoleBased(), NewLoadBalancing(), NewRoundRobin(), NewBestFit(), NewBalanced(),
	}

	for _, s := range strategies {
		s := s
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.SelectAgents(Criteria{}, team, 0)
			assert.ErrorIs(t, err, ErrInvalidCount)
			_, err = s.SelectAgents(Criteria{}, team, -1)
			assert.ErrorIs(t, err, ErrInvalidCount)
			_, err = s.SelectAgent(Criteria{MinProficiency: 1.5}, team)
			assert.ErrorIs(t, err, ErrInvalidProficiency)
		})
	}
}

func TestFactory(t *testing.T) {
	for _, name := range []string{
		"capability-based", "role-based", "load-balancing", "round-robin", "best-fit", "balanced",
	} {
		s, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := New("psychic")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
