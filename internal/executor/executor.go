package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/karanj/rewoo/internal/governance"
	"github.com/karanj/rewoo/internal/llm"
	"github.com/karanj/rewoo/internal/observability"
	"github.com/karanj/rewoo/internal/plan"
	"github.com/karanj/rewoo/internal/prompts"
	"github.com/karanj/rewoo/internal/tools"
)

// Executor drives a plan to a terminal state, one step per iteration. Steps
// of the same plan never run concurrently; separate plans may execute
// concurrently on the shared registry and completer.
type Executor struct {
	registry      *tools.Registry
	completer     llm.Completer
	policy        governance.PolicyEngine
	prompts       *prompts.Manager
	logger        *observability.Logger
	maxIterations int
}

func New(registry *tools.Registry, completer llm.Completer, pm *prompts.Manager, logger *observability.Logger, maxIterations int) *Executor {
	if maxIterations <= 0 {
		maxIterations = plan.DefaultMaxIterations
	}
	return &Executor{
		registry:      registry,
		completer:     completer,
		prompts:       pm,
		logger:        logger,
		maxIterations: maxIterations,
	}
}

// WithPolicy installs a policy engine consulted before each tool dispatch.
func (e *Executor) WithPolicy(policy governance.PolicyEngine) *Executor {
	e.policy = policy
	return e
}

// ExecutePlan runs the plan to a terminal status and returns it.
func (e *Executor) ExecutePlan(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	return e.run(ctx, p, nil)
}

// ExecutePlanStreaming runs the plan, reporting each state transition through
// emit before the same transition is visible on the returned plan's next
// mutation. Emission order equals execution order.
func (e *Executor) ExecutePlanStreaming(ctx context.Context, p *plan.Plan, emit func(Event)) (*plan.Plan, error) {
	return e.run(ctx, p, emit)
}

func (e *Executor) run(ctx context.Context, p *plan.Plan, emit func(Event)) (*plan.Plan, error) {
	p.Status = plan.StatusRunning
	now := time.Now()
	p.StartedAt = &now

	e.emit(emit, Event{Type: EventExecutionStarted, PlanID: p.ID, TotalSteps: len(p.Steps)})

	ectx := plan.NewContext(e.maxIterations)
	for ectx.Iteration < ectx.MaxIterations {
		// Cooperative cancellation checkpoint: the in-flight step always
		// finishes and is recorded before cancellation is observed here.
		if ctx.Err() != nil {
			p.Status = plan.StatusCancelled
			break
		}
		ectx.Iteration++

		step := p.NextStep()
		if step == nil {
			break
		}

		e.executeStep(ctx, p, step, ectx, emit)

		if p.IsCompleted() {
			break
		}
		if p.HasFailedSteps() {
			p.Status = plan.StatusFailed
			break
		}
	}

	e.finalize(p)
	e.emit(emit, Event{
		Type:        EventExecutionCompleted,
		PlanID:      p.ID,
		Status:      p.Status,
		FinalAnswer: p.FinalAnswer,
	})
	return p, nil
}

func (e *Executor) finalize(p *plan.Plan) {
	if p.IsCompleted() {
		p.Status = plan.StatusCompleted
		if s := p.LastSolveStep(); s != nil {
			p.FinalAnswer = s.Result
		}
	} else if p.Status != plan.StatusFailed && p.Status != plan.StatusCancelled {
		// No runnable step left, or the iteration budget ran out.
		p.Status = plan.StatusFailed
	}
	now := time.Now()
	p.CompletedAt = &now
}

func (e *Executor) executeStep(ctx context.Context, p *plan.Plan, s *plan.Step, ectx *plan.Context, emit func(Event)) {
	s.Status = plan.StepRunning
	now := time.Now()
	s.StartedAt = &now
	ectx.CurrentStep = s

	e.logger.LogStep(p.ID, s.ID, string(s.Status), s.Description)
	e.emit(emit, Event{
		Type:        EventStepStarted,
		StepID:      s.ID,
		StepNumber:  s.Number,
		Description: s.Description,
	})

	var result string
	var err error
	switch s.Kind {
	case plan.StepKindTool:
		result, err = e.executeToolStep(ctx, s, ectx, emit)
	case plan.StepKindSolve:
		// The solver degrades to a best-effort answer on completion failure,
		// so a solve step never fails.
		result = e.executeSolveStep(ctx, p, s, ectx)
	default:
		err = fmt.Errorf("unknown step kind %q", s.Kind)
	}

	done := time.Now()
	s.CompletedAt = &done

	if err != nil {
		s.Status = plan.StepFailed
		s.Error = err.Error()
		e.logger.LogStep(p.ID, s.ID, string(s.Status), s.Error)
		e.emit(emit, Event{
			Type:       EventStepFailed,
			StepID:     s.ID,
			StepNumber: s.Number,
			Error:      s.Error,
		})
		return
	}

	s.Status = plan.StepCompleted
	s.Result = result
	if s.Variable != "" {
		ectx.SetVariable(s.Variable, result)
	}
	e.logger.LogStep(p.ID, s.ID, string(s.Status), s.Description)
	e.emit(emit, Event{
		Type:       EventStepCompleted,
		StepID:     s.ID,
		StepNumber: s.Number,
		Result:     result,
	})
}

func (e *Executor) executeToolStep(ctx context.Context, s *plan.Step, ectx *plan.Context, emit func(Event)) (string, error) {
	if s.ToolName == "" {
		return "", fmt.Errorf("tool step must have a tool name")
	}

	input := ectx.Substitute(s.Input)

	if e.policy != nil {
		verdict, err := e.policy.Evaluate(ctx, governance.Request{Tool: s.ToolName, Input: input})
		if err != nil {
			return "", fmt.Errorf("policy evaluation failed: %w", err)
		}
		if verdict.Effect == governance.EffectDeny {
			return "", fmt.Errorf("tool call denied by policy: %s", verdict.Reason)
		}
	}

	e.logger.LogToolCall("", s.ID, s.ToolName, input)
	start := time.Now()

	if emit == nil {
		res := e.registry.Execute(ctx, s.ToolName, input)
		e.logger.LogToolResult("", s.ID, s.ToolName, res.Success, time.Since(start).Milliseconds())
		if !res.Success {
			return "", fmt.Errorf("%s", res.Error)
		}
		return res.Value, nil
	}

	var final *tools.Result
	for update := range e.registry.ExecuteStreaming(ctx, s.ToolName, input) {
		u := update
		e.emit(emit, Event{
			Type:       EventStepProgress,
			StepID:     s.ID,
			StepNumber: s.Number,
			ToolUpdate: &u,
		})

		switch update.Type {
		case tools.UpdateResult:
			final = update.Result
		case tools.UpdateError:
			e.logger.LogToolResult("", s.ID, s.ToolName, false, time.Since(start).Milliseconds())
			return "", fmt.Errorf("%s", update.Message)
		}
	}

	if final == nil || !final.Success {
		e.logger.LogToolResult("", s.ID, s.ToolName, false, time.Since(start).Milliseconds())
		if final != nil {
			return "", fmt.Errorf("%s", final.Error)
		}
		return "", fmt.Errorf("tool %q produced no result", s.ToolName)
	}

	e.logger.LogToolResult("", s.ID, s.ToolName, true, time.Since(start).Milliseconds())
	return final.Value, nil
}

func (e *Executor) executeSolveStep(ctx context.Context, p *plan.Plan, s *plan.Step, ectx *plan.Context) string {
	input := ectx.Substitute(s.Input)

	user := fmt.Sprintf(`Original Task: %s

Available Information:
%s

Solve: %s

Please provide a final answer based on the available information.`,
		p.TaskDescription, strings.Join(variableLines(ectx), "\n"), input)

	answer, err := e.completer.Complete(ctx, e.prompts.SolverPrompt(), user)
	if err != nil {
		// Degrade gracefully instead of failing the step: answer from the
		// collected variables alone.
		e.logger.LogWarning("", fmt.Sprintf("solve step %s degraded: %v", s.ID, err))
		return "Based on the available information: " + strings.Join(variableLines(ectx), ", ")
	}
	e.logger.LogLLM("", p.ID, user, answer)
	return strings.TrimSpace(answer)
}

func variableLines(ectx *plan.Context) []string {
	names := make([]string, 0, len(ectx.Variables))
	for name := range ectx.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, ectx.Variables[name]))
	}
	return lines
}

func (e *Executor) emit(emit func(Event), evt Event) {
	if emit != nil {
		emit(evt)
	}
}
