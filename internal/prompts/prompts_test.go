package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Defaults(t *testing.T) {
	m := NewManager("")

	assert.Contains(t, m.PlannerPrompt(), "Plan: <step_number>.")
	assert.Contains(t, m.SolverPrompt(), "professional solver")
}

func TestManager_DirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "planner.md"), []byte("custom planner"), 0644))

	m := NewManager(dir)

	assert.Equal(t, "custom planner", m.PlannerPrompt())
	// No solver.md present, falls back to the default.
	assert.Contains(t, m.SolverPrompt(), "professional solver")
}
