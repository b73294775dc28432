package agent

import (
	"context"
	"fmt"

	"github.com/karanj/rewoo/internal/executor"
	"github.com/karanj/rewoo/internal/planner"
	"github.com/karanj/rewoo/internal/task"
)

// StreamEventType tags a task-level streaming event.
type StreamEventType string

const (
	StreamTaskStarted     StreamEventType = "task_started"
	StreamTaskStatus      StreamEventType = "task_status"
	StreamPlanningUpdate  StreamEventType = "planning_update"
	StreamExecutionUpdate StreamEventType = "execution_update"
	StreamTaskCompleted   StreamEventType = "task_completed"
	StreamTaskFailed      StreamEventType = "task_failed"
)

// StreamEvent is one element of a streaming task execution. Planning and
// execution updates carry the underlying planner/executor event verbatim.
type StreamEvent struct {
	Type        StreamEventType `json:"type"`
	RequestID   string          `json:"request_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Status      task.Status     `json:"status,omitempty"`
	Message     string          `json:"message,omitempty"`
	Result      string          `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	Duration    float64         `json:"duration,omitempty"`
	Planning    *planner.Update `json:"planning,omitempty"`
	Execution   *executor.Event `json:"execution,omitempty"`
}

// ExecuteTaskStreaming runs the request like ExecuteTask, additionally
// delivering every state transition through emit as it happens. The emitted
// event order equals the execution order.
func (o *Orchestrator) ExecuteTaskStreaming(ctx context.Context, req *task.Request, emit func(StreamEvent)) (*task.Result, error) {
	if emit == nil {
		return o.ExecuteTask(ctx, req)
	}

	at, runCtx := o.begin(ctx, req)
	defer o.end(at)

	emit(StreamEvent{Type: StreamTaskStarted, RequestID: req.RequestID, Description: req.Description})
	emit(StreamEvent{Type: StreamTaskStatus, Status: task.StatusPlanning, Message: "Generating execution plan"})

	pl, err := o.planner.CreatePlanStreaming(runCtx, req, func(u planner.Update) {
		v := u
		emit(StreamEvent{Type: StreamPlanningUpdate, RequestID: req.RequestID, Planning: &v})
	})
	if err != nil {
		o.failTask(at, fmt.Errorf("plan generation failed: %w", err))
		emit(StreamEvent{Type: StreamTaskFailed, RequestID: req.RequestID, Error: at.result.Error})
		return at.result, nil
	}
	o.assignPlan(at, pl)

	emit(StreamEvent{Type: StreamTaskStatus, Status: task.StatusExecuting, Message: "Executing plan"})

	executed, _ := o.executor.ExecutePlanStreaming(runCtx, pl, func(e executor.Event) {
		v := e
		emit(StreamEvent{Type: StreamExecutionUpdate, RequestID: req.RequestID, Execution: &v})
	})
	o.finishTask(at, executed)

	if at.result.Status == task.StatusFailed {
		emit(StreamEvent{
			Type:      StreamTaskFailed,
			RequestID: req.RequestID,
			Error:     at.result.Error,
		})
	} else {
		emit(StreamEvent{
			Type:      StreamTaskCompleted,
			RequestID: req.RequestID,
			Status:    at.result.Status,
			Result:    at.result.Result,
			Duration:  at.result.Duration,
		})
	}
	return at.result, nil
}
