package task

import (
	"time"

	"github.com/google/uuid"
)

// Type categorizes a task request. It is advisory metadata for the planner.
type Type string

const (
	TypeResearch    Type = "research"
	TypeCalculation Type = "calculation"
	TypeAnalysis    Type = "analysis"
	TypeSearch      Type = "search"
	TypeCustom      Type = "custom"
)

// Priority of a task request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status is the lifecycle status of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPlanning  Status = "planning"
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusFailed:    true,
	StatusCancelled: true,
}

func IsTerminal(s Status) bool {
	return terminalStatuses[s]
}

// Request asks the agent to execute a natural-language task.
type Request struct {
	RequestID   string            `json:"request_id"`
	UserID      string            `json:"user_id,omitempty"`
	Description string            `json:"task_description"`
	Type        Type              `json:"task_type,omitempty"`
	Priority    Priority          `json:"priority"`
	Context     map[string]string `json:"context,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewRequest(description string) *Request {
	return &Request{
		RequestID:   uuid.NewString(),
		Description: description,
		Priority:    PriorityMedium,
		CreatedAt:   time.Now(),
	}
}

// Result is the outcome of one task execution. It always carries a terminal
// status and partial progress counts, regardless of how the task ended.
type Result struct {
	RequestID      string            `json:"request_id"`
	PlanID         string            `json:"plan_id,omitempty"`
	Status         Status            `json:"status"`
	Result         string            `json:"result,omitempty"`
	Error          string            `json:"error,omitempty"`
	StartedAt      *time.Time        `json:"started_at,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	Duration       float64           `json:"duration,omitempty"`
	StepsCompleted int               `json:"steps_completed"`
	TotalSteps     int               `json:"total_steps"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

func NewResult(requestID string) *Result {
	return &Result{
		RequestID: requestID,
		Status:    StatusPending,
	}
}

// CalculateDuration returns the elapsed seconds between start and completion,
// or zero when either timestamp is missing.
func (r *Result) CalculateDuration() float64 {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt).Seconds()
}
