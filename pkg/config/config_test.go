package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	assert.Equal(t, "balanced", cfg.Coordinator.Strategy)
	assert.Equal(t, 100*time.Millisecond, cfg.Coordinator.WorkDelay)
	assert.Zero(t, cfg.Coordinator.RequestTimeout)
	assert.Equal(t, 1000, cfg.Bus.HistorySize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Team)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	// Point config to a non-existent file so defaults apply.
	t.Setenv("HIVEMIND_CONFIG", "/nonexistent/config.yaml")
	t.Setenv("HIVEMIND_STRATEGY", "round-robin")
	t.Setenv("HIVEMIND_WORK_DELAY", "250ms")
	t.Setenv("HIVEMIND_REQUEST_TIMEOUT", "2s")
	t.Setenv("HIVEMIND_HISTORY_SIZE", "50")
	t.Setenv("HIVEMIND_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "round-robin", cfg.Coordinator.Strategy)
	assert.Equal(t, 250*time.Millisecond, cfg.Coordinator.WorkDelay)
	assert.Equal(t, 50, cfg.Bus.HistorySize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Coordinator.RequestTimeout)
	// Untouched settings keep their defaults.
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("HIVEMIND_CONFIG", "/nonexistent/config.yaml")

	cases := map[string]string{
		"HIVEMIND_WORK_DELAY":      "soon",
		"HIVEMIND_REQUEST_TIMEOUT": "5 minutes",
		"HIVEMIND_HISTORY_SIZE":    "lots",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
coordinator:
  strategy: "best-fit"
  work_delay: 20ms
bus:
  history_size: 200
logging:
  level: "warn"
  format: "json"
team:
  - id: "agent-1"
    name: "researcher"
    role: "planner"
    capabilities:
      - name: "research"
        proficiency: 0.9
  - id: "agent-2"
    name: "builder"
    role: "executor"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	t.Setenv("HIVEMIND_CONFIG", cfgPath)
	// Clear any env overrides
	t.Setenv("HIVEMIND_STRATEGY", "")
	t.Setenv("HIVEMIND_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "best-fit", cfg.Coordinator.Strategy)
	assert.Equal(t, 20*time.Millisecond, cfg.Coordinator.WorkDelay)
	assert.Equal(t, 200, cfg.Bus.HistorySize)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.Len(t, cfg.Team, 2)
	assert.Equal(t, "agent-1", cfg.Team[0].ID)
	assert.Equal(t, "planner", cfg.Team[0].Role)
	require.Len(t, cfg.Team[0].Capabilities, 1)
	assert.Equal(t, "research", cfg.Team[0].Capabilities[0].Name)
	assert.Equal(t, 0.9, cfg.Team[0].Capabilities[0].Proficiency)
	assert.Empty(t, cfg.Team[1].Capabilities)
}
