package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StepKind is the closed set of step types a plan can contain.
type StepKind string

const (
	StepKindTool  StepKind = "tool"
	StepKindSolve StepKind = "solve"
)

// StepStatus is the execution status of a single step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Status is the execution status of a whole plan.
type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var terminalStepStatuses = map[StepStatus]bool{
	StepCompleted: true,
	StepFailed:    true,
	StepSkipped:   true,
}

var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusFailed:    true,
	StatusCancelled: true,
}

// Step transitions: pending → running → completed|failed.
// skipped is a legal terminal state for steps whose dependency never completes.
var validStepTransitions = map[StepStatus]map[StepStatus]bool{
	StepPending: {
		StepRunning: true,
		StepSkipped: true,
	},
	StepRunning: {
		StepCompleted: true,
		StepFailed:    true,
	},
}

var validPlanTransitions = map[Status]map[Status]bool{
	StatusCreated: {
		StatusRunning:   true,
		StatusCancelled: true,
	},
	StatusRunning: {
		StatusCompleted: true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
}

func IsStepTerminal(s StepStatus) bool {
	return terminalStepStatuses[s]
}

func IsTerminal(s Status) bool {
	return terminalStatuses[s]
}

func ValidateStepTransition(from, to StepStatus) error {
	if IsStepTerminal(from) {
		return fmt.Errorf("cannot transition from terminal step status %q", from)
	}
	if !validStepTransitions[from][to] {
		return fmt.Errorf("invalid step transition: %q -> %q", from, to)
	}
	return nil
}

func ValidateTransition(from, to Status) error {
	if IsTerminal(from) {
		return fmt.Errorf("cannot transition from terminal plan status %q", from)
	}
	if !validPlanTransitions[from][to] {
		return fmt.Errorf("invalid plan transition: %q -> %q", from, to)
	}
	return nil
}

// Step is one scheduled unit of work: a tool invocation or the final
// synthesis (solve) step.
type Step struct {
	ID          string     `json:"step_id"`
	Kind        StepKind   `json:"step_kind"`
	Number      int        `json:"step_number"`
	ToolName    string     `json:"tool_name,omitempty"`
	Input       string     `json:"tool_input,omitempty"`
	Variable    string     `json:"variable_name,omitempty"`
	DependsOn   []string   `json:"depends_on,omitempty"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewToolStep creates a pending tool step. The input may contain #variable#
// placeholders resolved at execution time.
func NewToolStep(number int, toolName, input, variable string) *Step {
	return &Step{
		ID:          uuid.NewString(),
		Kind:        StepKindTool,
		Number:      number,
		ToolName:    toolName,
		Input:       input,
		Variable:    variable,
		Description: stepDescription(number, StepKindTool, input),
		Status:      StepPending,
	}
}

// NewSolveStep creates a pending solve step.
func NewSolveStep(number int, input, variable string) *Step {
	return &Step{
		ID:          uuid.NewString(),
		Kind:        StepKindSolve,
		Number:      number,
		Input:       input,
		Variable:    variable,
		Description: stepDescription(number, StepKindSolve, input),
		Status:      StepPending,
	}
}

func stepDescription(number int, kind StepKind, input string) string {
	if len(input) > 50 {
		input = input[:50] + "..."
	}
	return fmt.Sprintf("Step %d: %s - %s", number, kind, input)
}

// Plan is an ordered collection of steps derived from a task description.
type Plan struct {
	ID              string            `json:"plan_id"`
	TaskDescription string            `json:"task_description"`
	Steps           []*Step           `json:"steps"`
	Status          Status            `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	FinalAnswer     string            `json:"final_answer,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

func New(taskDescription string, steps []*Step) *Plan {
	return &Plan{
		ID:              uuid.NewString(),
		TaskDescription: taskDescription,
		Steps:           steps,
		Status:          StatusCreated,
		CreatedAt:       time.Now(),
		Metadata:        make(map[string]string),
	}
}

func (p *Plan) StepByID(id string) *Step {
	for _, s := range p.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// NextStep returns the first pending step in declaration order whose
// dependencies have all completed, or nil when nothing is runnable.
func (p *Plan) NextStep() *Step {
	for _, s := range p.Steps {
		if s.Status == StepPending && p.dependenciesCompleted(s) {
			return s
		}
	}
	return nil
}

func (p *Plan) dependenciesCompleted(s *Step) bool {
	for _, id := range s.DependsOn {
		dep := p.StepByID(id)
		if dep == nil || dep.Status != StepCompleted {
			return false
		}
	}
	return true
}

func (p *Plan) CompletedSteps() []*Step {
	var out []*Step
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			out = append(out, s)
		}
	}
	return out
}

func (p *Plan) FailedSteps() []*Step {
	var out []*Step
	for _, s := range p.Steps {
		if s.Status == StepFailed {
			out = append(out, s)
		}
	}
	return out
}

// IsCompleted reports whether every step has completed.
func (p *Plan) IsCompleted() bool {
	for _, s := range p.Steps {
		if s.Status != StepCompleted {
			return false
		}
	}
	return true
}

func (p *Plan) HasFailedSteps() bool {
	for _, s := range p.Steps {
		if s.Status == StepFailed {
			return true
		}
	}
	return false
}

// LastSolveStep returns the last solve step in declaration order, or nil.
// Its result becomes the plan's final answer on completion.
func (p *Plan) LastSolveStep() *Step {
	for i := len(p.Steps) - 1; i >= 0; i-- {
		if p.Steps[i].Kind == StepKindSolve {
			return p.Steps[i]
		}
	}
	return nil
}

// Variables collects the bindings produced by completed steps.
func (p *Plan) Variables() map[string]string {
	vars := make(map[string]string)
	for _, s := range p.Steps {
		if s.Status == StepCompleted && s.Variable != "" {
			vars[s.Variable] = s.Result
		}
	}
	return vars
}
