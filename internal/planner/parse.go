package planner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/karanj/rewoo/internal/plan"
)

const (
	planLinePrefix = "Plan:"
	toolKeyword    = "TOOL "
	solveKeyword   = "SOLVE "
)

// ParsePlanText converts completion output into an ordered step list. Lines
// that do not follow the plan grammar are skipped; step order follows the
// declared step numbers, ties keeping their textual order.
func ParsePlanText(text string) []*plan.Step {
	steps, _ := parsePlanText(text)
	return steps
}

func parsePlanText(text string) ([]*plan.Step, []string) {
	var steps []*plan.Step
	var skipped []string

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, planLinePrefix) {
			continue
		}

		step, err := ParseStepLine(line)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s (%v)", line, err))
			continue
		}
		steps = append(steps, step)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Number < steps[j].Number
	})

	return steps, skipped
}

// ParseStepLine parses one "Plan:" directive of the form
//
//	Plan: <n>. TOOL <tool_name> <tool_input> -> #<variable_name>#
//	Plan: <n>. SOLVE <solve_input> -> #<variable_name>#
func ParseStepLine(line string) (*plan.Step, error) {
	stepText := strings.TrimSpace(strings.TrimPrefix(line, planLinePrefix))

	parts := strings.SplitN(stepText, " -> ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("missing output variable")
	}
	variable := strings.ReplaceAll(strings.TrimSpace(parts[1]), "#", "")

	numbered := strings.SplitN(strings.TrimSpace(parts[0]), ".", 2)
	if len(numbered) != 2 {
		return nil, fmt.Errorf("missing step number")
	}
	number, err := strconv.Atoi(strings.TrimSpace(numbered[0]))
	if err != nil {
		return nil, fmt.Errorf("non-numeric step number %q", strings.TrimSpace(numbered[0]))
	}

	rest := strings.TrimSpace(numbered[1])
	switch {
	case strings.HasPrefix(rest, toolKeyword):
		toolPart := strings.TrimSpace(rest[len(toolKeyword):])
		toolParts := strings.SplitN(toolPart, " ", 2)
		input := ""
		if len(toolParts) == 2 {
			input = toolParts[1]
		}
		return plan.NewToolStep(number, toolParts[0], input, variable), nil

	case strings.HasPrefix(rest, solveKeyword):
		return plan.NewSolveStep(number, strings.TrimSpace(rest[len(solveKeyword):]), variable), nil

	default:
		return nil, fmt.Errorf("unknown step keyword")
	}
}

// FallbackSteps builds the deterministic three-step plan used when the
// completion service fails or its response yields no parsable steps: search
// the task, look it up on wikipedia, then solve from both results.
func FallbackSteps(taskDescription string) []*plan.Step {
	return []*plan.Step{
		plan.NewToolStep(1, "search", taskDescription, "search_result"),
		plan.NewToolStep(2, "wikipedia", taskDescription, "wiki_info"),
		plan.NewSolveStep(3, fmt.Sprintf(
			"Use the search results #search_result# and Wikipedia information #wiki_info# to provide a comprehensive answer to: %s",
			taskDescription), "answer"),
	}
}
