package executor

import (
	"github.com/karanj/rewoo/internal/plan"
	"github.com/karanj/rewoo/internal/tools"
)

// EventType tags an execution event.
type EventType string

const (
	EventExecutionStarted   EventType = "execution_started"
	EventStepStarted        EventType = "step_started"
	EventStepProgress       EventType = "step_progress"
	EventStepCompleted      EventType = "step_completed"
	EventStepFailed         EventType = "step_failed"
	EventExecutionCompleted EventType = "execution_completed"
)

// Event is one element of the execution event stream. Emission order equals
// execution order.
type Event struct {
	Type        EventType     `json:"type"`
	PlanID      string        `json:"plan_id,omitempty"`
	TotalSteps  int           `json:"total_steps,omitempty"`
	StepID      string        `json:"step_id,omitempty"`
	StepNumber  int           `json:"step_number,omitempty"`
	Description string        `json:"description,omitempty"`
	Result      string        `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	Status      plan.Status   `json:"status,omitempty"`
	FinalAnswer string        `json:"final_answer,omitempty"`
	ToolUpdate  *tools.Update `json:"tool_update,omitempty"`
}

// Progress summarizes how far a plan's execution has advanced.
type Progress struct {
	PlanID         string      `json:"plan_id"`
	Status         plan.Status `json:"status"`
	CompletedSteps int         `json:"completed_steps"`
	FailedSteps    int         `json:"failed_steps"`
	TotalSteps     int         `json:"total_steps"`
	Percentage     float64     `json:"progress_percentage"`
}

// ExecutionStatus builds a progress summary for a plan.
func ExecutionStatus(p *plan.Plan) Progress {
	completed := len(p.CompletedSteps())
	failed := len(p.FailedSteps())
	total := len(p.Steps)

	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	return Progress{
		PlanID:         p.ID,
		Status:         p.Status,
		CompletedSteps: completed,
		FailedSteps:    failed,
		TotalSteps:     total,
		Percentage:     pct,
	}
}
