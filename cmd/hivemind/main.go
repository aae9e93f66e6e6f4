package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/emergent-labs/hivemind/internal/logging"
	"github.com/emergent-labs/hivemind/pkg/config"
	"github.com/emergent-labs/hivemind/pkg/consensus"
	"github.com/emergent-labs/hivemind/pkg/coordination"
	"github.com/emergent-labs/hivemind/pkg/delegation"
	"github.com/emergent-labs/hivemind/pkg/messaging"
	"github.com/emergent-labs/hivemind/pkg/registry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hivemind",
		Short: "Hivemind coordinates a team of agents: delegates tasks, runs votes, and reports the outcome.",
	}

	runCmd := &cobra.Command{
		Use:   "run [goal description]",
		Short: "Execute a goal against the configured team",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGoal,
	}
	runCmd.Flags().String("strategy", "", "delegation strategy (overrides config)")
	runCmd.Flags().StringSlice("capabilities", nil, "capabilities each task requires")

	voteCmd := &cobra.Command{
		Use:   "vote [topic]",
		Short: "Run a demo voting session among the configured team",
		Args:  cobra.ExactArgs(1),
		RunE:  runVote,
	}
	voteCmd.Flags().StringSlice("options", []string{"yes", "no"}, "options to vote on")

	for _, envFile := range []string{
		".env",
		"../../.env",
		"../../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(voteCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGoal(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	name := cfg.Coordinator.Strategy
	if flag, _ := cmd.Flags().GetString("strategy"); flag != "" {
		name = flag
	}
	strategy, err := delegation.New(name)
	if err != nil {
		return err
	}

	team, err := teamFromConfig(cfg)
	if err != nil {
		return err
	}
	store := registry.NewTeamStore(team)

	bus := messaging.NewBus(
		messaging.WithHistorySize(cfg.Bus.HistorySize),
		messaging.WithLogger(logger))
	defer bus.Close()

	coordinator, err := coordination.NewCoordinator(store, bus,
		coordination.WithStrategy(strategy),
		coordination.WithLogger(logger),
		coordination.WithWorkDelay(cfg.Coordinator.WorkDelay),
		coordination.WithRequestTimeout(cfg.Coordinator.RequestTimeout))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	caps, _ := cmd.Flags().GetStringSlice("capabilities")
	goal := coordination.NewGoal(strings.Join(args, " ")).WithCapabilities(caps...)

	result, err := coordinator.Execute(ctx, goal)
	if err != nil {
		return err
	}

	fmt.Printf("goal %s: success=%v rate=%.2f duration=%s\n",
		result.GoalID, result.Success(), result.SuccessRate(), result.Duration)
	for _, task := range result.Tasks {
		line := fmt.Sprintf("  task %s [%s] agent=%s", task.Description, task.Status, task.AssignedTo)
		if task.Reason != "" {
			line += " reason=" + task.Reason
		}
		fmt.Println(line)
	}
	return nil
}

func runVote(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(cfg.Team) == 0 {
		return fmt.Errorf("no team configured: add agents under 'team' in the config file")
	}

	options, _ := cmd.Flags().GetStringSlice("options")
	session, err := consensus.NewSession(args[0], options, consensus.NewMajority())
	if err != nil {
		return err
	}

	// Demo flow: agents vote round-robin over the options. Real votes
	// would come in over the bus.
	for i, agent := range cfg.Team {
		option := options[i%len(options)]
		vote, err := consensus.NewVote(agent.ID, option, 0.5+0.5*float64(i%2), "")
		if err != nil {
			return err
		}
		if err := session.CastVote(vote); err != nil {
			return err
		}
	}

	outcome := session.Result()
	fmt.Printf("topic %q: consensus=%v winner=%q confidence=%.2f votes=%d\n",
		session.Topic(), outcome.Reached, outcome.WinningOption, outcome.Confidence, outcome.TotalVotes)
	for option, count := range outcome.VoteCounts {
		fmt.Printf("  %s: %d (confidence %.2f)\n", option, count, outcome.ConfidenceSums[option])
	}
	return nil
}

// teamFromConfig builds the initial team from the config file, or a
// small default team when none is configured.
func teamFromConfig(cfg *config.Config) (registry.Team, error) {
	if len(cfg.Team) == 0 {
		return registry.NewTeam(
			registry.NewState(registry.NewIdentity("generalist-1", registry.RoleGeneralist)),
			registry.NewState(registry.NewIdentity("generalist-2", registry.RoleGeneralist)),
		), nil
	}

	states := make([]registry.State, 0, len(cfg.Team))
	for _, a := range cfg.Team {
		opts := []registry.IdentityOption{}
		if a.ID != "" {
			opts = append(opts, registry.WithID(a.ID))
		}
		for _, c := range a.Capabilities {
			capability, err := registry.NewCapability(c.Name, "", c.Proficiency)
			if err != nil {
				return registry.Team{}, fmt.Errorf("agent %q: %w", a.Name, err)
			}
			opts = append(opts, registry.WithCapabilities(capability))
		}
		role := registry.Role(a.Role)
		if role == "" {
			role = registry.RoleGeneralist
		}
		states = append(states, registry.NewState(registry.NewIdentity(a.Name, role, opts...)))
	}
	return registry.NewTeam(states...), nil
}
