package prompts

import (
	"os"
	"path/filepath"
)

const defaultPlannerPrompt = `You are a expert planner. Your task is to break down complex tasks into a series of steps that can be executed by available tools.

Follow these rules:
1. Create steps that use available tools to gather information or perform calculations
2. Each step should have a clear purpose and produce a result stored in a variable
3. Use variable substitution (#variable_name#) to reference results from previous steps
4. The final step should be a SOLVE step that combines all information to answer the original question
5. Keep steps simple and focused on one task each
6. Consider dependencies between steps

Format your response as:
Plan: <step_number>. <step_type> <tool_name> <tool_input> -> <variable_name>

Example 1:
Plan: 1. TOOL search What is the capital of France? -> #search_result#
Plan: 2. TOOL wikipedia #search_result# -> #wiki_info#
Plan: 3. SOLVE Use the information from #search_result# and #wiki_info# to answer the question about the capital of France -> #answer#

Example 2:
Plan: 1. TOOL calculator sqrt(16) + 3 * 4 -> #result#
Plan: 2. SOLVE Use the result from #result# to answer the question about the mathematics -> #answer#
`

const defaultSolverPrompt = `You are a professional solver. Your task is to analyze the provided information and generate a final answer.

Use the available information to provide a comprehensive, accurate answer to the original question. Be clear, concise, and factual.`

// Manager serves the planner and solver system prompts. Prompts can be
// overridden by dropping planner.md / solver.md into the prompt directory;
// otherwise the built-in defaults are used.
type Manager struct {
	Directory string
}

func NewManager(dir string) *Manager {
	return &Manager{Directory: dir}
}

func (m *Manager) PlannerPrompt() string {
	return m.load("planner.md", defaultPlannerPrompt)
}

func (m *Manager) SolverPrompt() string {
	return m.load("solver.md", defaultSolverPrompt)
}

func (m *Manager) load(name, fallback string) string {
	if m == nil || m.Directory == "" {
		return fallback
	}
	data, err := os.ReadFile(filepath.Join(m.Directory, name))
	if err != nil || len(data) == 0 {
		return fallback
	}
	return string(data)
}
