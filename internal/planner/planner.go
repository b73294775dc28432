package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/karanj/rewoo/internal/llm"
	"github.com/karanj/rewoo/internal/observability"
	"github.com/karanj/rewoo/internal/plan"
	"github.com/karanj/rewoo/internal/prompts"
	"github.com/karanj/rewoo/internal/task"
	"github.com/karanj/rewoo/internal/tools"
)

// Validation failures reported before execution starts.
var (
	ErrEmptyPlan   = errors.New("plan has no steps")
	ErrUnknownTool = errors.New("plan references unknown tool")
	ErrNoSolveStep = errors.New("plan has no solve step")
)

// UpdateType tags a planning progress update.
type UpdateType string

const (
	UpdateStatus      UpdateType = "status"
	UpdatePlanCreated UpdateType = "plan_created"
)

// Update is one element of the streaming plan-generation output.
type Update struct {
	Type     UpdateType `json:"type"`
	Message  string     `json:"message,omitempty"`
	Progress int        `json:"progress,omitempty"`
	Plan     *plan.Plan `json:"plan,omitempty"`
}

// Planner turns a task request into an executable plan by prompting the
// completion service and parsing its response.
type Planner struct {
	completer llm.Completer
	registry  *tools.Registry
	prompts   *prompts.Manager
	logger    *observability.Logger
}

func New(completer llm.Completer, registry *tools.Registry, pm *prompts.Manager, logger *observability.Logger) *Planner {
	return &Planner{
		completer: completer,
		registry:  registry,
		prompts:   pm,
		logger:    logger,
	}
}

// CreatePlan generates a plan for the request. Plan generation never fails
// outright: completion errors and unparsable responses degrade to the
// deterministic fallback plan.
func (p *Planner) CreatePlan(ctx context.Context, req *task.Request) (*plan.Plan, error) {
	steps := p.generateSteps(ctx, req)

	pl := plan.New(req.Description, steps)
	pl.Metadata["task_request_id"] = req.RequestID
	if req.Type != "" {
		pl.Metadata["task_type"] = string(req.Type)
	}
	pl.Metadata["created_by"] = "planner"

	p.logger.LogPlan(req.RequestID, pl.ID, len(steps))
	return pl, nil
}

// CreatePlanStreaming is CreatePlan with progress updates delivered through
// emit, ending with a plan_created update carrying the plan.
func (p *Planner) CreatePlanStreaming(ctx context.Context, req *task.Request, emit func(Update)) (*plan.Plan, error) {
	if emit == nil {
		return p.CreatePlan(ctx, req)
	}

	emit(Update{Type: UpdateStatus, Message: "Starting plan generation", Progress: 10})

	steps := p.generateSteps(ctx, req)
	emit(Update{Type: UpdateStatus, Message: fmt.Sprintf("Generated %d steps", len(steps)), Progress: 80})

	pl := plan.New(req.Description, steps)
	pl.Metadata["task_request_id"] = req.RequestID
	if req.Type != "" {
		pl.Metadata["task_type"] = string(req.Type)
	}
	pl.Metadata["created_by"] = "planner"

	p.logger.LogPlan(req.RequestID, pl.ID, len(steps))
	emit(Update{Type: UpdateStatus, Message: "Plan creation completed", Progress: 100})
	emit(Update{Type: UpdatePlanCreated, Plan: pl})
	return pl, nil
}

func (p *Planner) generateSteps(ctx context.Context, req *task.Request) []*plan.Step {
	system := p.prompts.PlannerPrompt()
	user := p.userPrompt(req)

	text, err := p.completer.Complete(ctx, system, user)
	if err != nil {
		p.logger.LogWarning(req.RequestID, fmt.Sprintf("plan generation failed, using fallback plan: %v", err))
		return FallbackSteps(req.Description)
	}
	p.logger.LogLLM(req.RequestID, "", user, text)

	steps, skipped := parsePlanText(text)
	for _, line := range skipped {
		p.logger.LogWarning(req.RequestID, "skipped plan line: "+line)
	}
	if len(steps) == 0 {
		p.logger.LogWarning(req.RequestID, "plan response contained no steps, using fallback plan")
		return FallbackSteps(req.Description)
	}
	return steps
}

func (p *Planner) userPrompt(req *task.Request) string {
	var descriptions []string
	for _, info := range p.registry.List() {
		descriptions = append(descriptions, fmt.Sprintf("- %s: %s", info.Name, info.Description))
	}

	taskType := string(req.Type)
	if taskType == "" {
		taskType = "General"
	}

	return fmt.Sprintf(`Task: %s
Task Type: %s

Available Tools:
%s

Create a step-by-step plan to complete this task using the available tools. Each step should be clear and focused.`,
		req.Description, taskType, strings.Join(descriptions, "\n"))
}

// Validate checks that a plan is well-formed: it has at least one step, every
// tool step names a registered tool, and at least one step is a solve step.
// A violation is a validation failure for the caller to handle, not a crash.
func Validate(p *plan.Plan, registry *tools.Registry) error {
	if len(p.Steps) == 0 {
		return ErrEmptyPlan
	}

	hasSolve := false
	for _, s := range p.Steps {
		switch s.Kind {
		case plan.StepKindTool:
			if !registry.Has(s.ToolName) {
				return fmt.Errorf("%w: %q", ErrUnknownTool, s.ToolName)
			}
		case plan.StepKindSolve:
			hasSolve = true
		}
	}
	if !hasSolve {
		return ErrNoSolveStep
	}
	return nil
}
