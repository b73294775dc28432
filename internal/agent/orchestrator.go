package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/karanj/rewoo/internal/executor"
	"github.com/karanj/rewoo/internal/observability"
	"github.com/karanj/rewoo/internal/plan"
	"github.com/karanj/rewoo/internal/planner"
	"github.com/karanj/rewoo/internal/store"
	"github.com/karanj/rewoo/internal/task"
)

// DefaultSnapshotTTL matches the one-hour retention of the original task
// snapshots.
const DefaultSnapshotTTL = time.Hour

// Orchestrator sequences plan generation and plan execution for a task and
// tracks in-flight tasks for status and cancellation. Each task execution is
// isolated: the only shared state is the injected registry, completer, and
// snapshot store.
type Orchestrator struct {
	planner     *planner.Planner
	executor    *executor.Executor
	store       store.TaskStore
	logger      *observability.Logger
	snapshotTTL time.Duration

	mu     sync.Mutex
	active map[string]*activeTask
}

type activeTask struct {
	request *task.Request
	result  *task.Result
	plan    *plan.Plan
	cancel  context.CancelFunc
}

func NewOrchestrator(p *planner.Planner, e *executor.Executor, s store.TaskStore, logger *observability.Logger, snapshotTTL time.Duration) *Orchestrator {
	if snapshotTTL <= 0 {
		snapshotTTL = DefaultSnapshotTTL
	}
	return &Orchestrator{
		planner:     p,
		executor:    e,
		store:       s,
		logger:      logger,
		snapshotTTL: snapshotTTL,
		active:      make(map[string]*activeTask),
	}
}

// ExecuteTask runs the request to a terminal result: generate a plan, execute
// it, map the plan's terminal status onto the task. The returned result always
// carries a terminal status and step progress counts.
func (o *Orchestrator) ExecuteTask(ctx context.Context, req *task.Request) (*task.Result, error) {
	at, runCtx := o.begin(ctx, req)
	defer o.end(at)

	pl, err := o.planner.CreatePlan(runCtx, req)
	if err != nil {
		o.failTask(at, fmt.Errorf("plan generation failed: %w", err))
		return at.result, nil
	}
	o.assignPlan(at, pl)

	executed, _ := o.executor.ExecutePlan(runCtx, pl)
	o.finishTask(at, executed)
	return at.result, nil
}

func (o *Orchestrator) begin(ctx context.Context, req *task.Request) (*activeTask, context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	result := task.NewResult(req.RequestID)
	result.Status = task.StatusPlanning
	now := time.Now()
	result.StartedAt = &now

	at := &activeTask{request: req, result: result, cancel: cancel}

	o.mu.Lock()
	o.active[req.RequestID] = at
	o.mu.Unlock()

	o.logger.LogTask(req.RequestID, string(result.Status), req.Description)
	o.saveSnapshot(at)
	return at, runCtx
}

func (o *Orchestrator) end(at *activeTask) {
	at.cancel()
	o.mu.Lock()
	delete(o.active, at.request.RequestID)
	o.mu.Unlock()
}

func (o *Orchestrator) assignPlan(at *activeTask, pl *plan.Plan) {
	o.mu.Lock()
	at.plan = pl
	at.result.PlanID = pl.ID
	if at.result.Status == task.StatusPlanning {
		at.result.Status = task.StatusExecuting
	}
	o.mu.Unlock()

	o.logger.LogTask(at.request.RequestID, string(task.StatusExecuting), "plan "+pl.ID)
	o.saveSnapshot(at)
}

func (o *Orchestrator) failTask(at *activeTask, err error) {
	o.mu.Lock()
	if !task.IsTerminal(at.result.Status) {
		at.result.Status = task.StatusFailed
		at.result.Error = err.Error()
	}
	o.stampLocked(at.result)
	o.mu.Unlock()

	o.logger.LogTask(at.request.RequestID, string(at.result.Status), at.result.Error)
	o.saveSnapshot(at)
}

// finishTask maps the executed plan's terminal status onto the task result.
// A cancellation recorded earlier is sticky: the in-flight step's outcome is
// still recorded, but the task stays CANCELLED.
func (o *Orchestrator) finishTask(at *activeTask, executed *plan.Plan) {
	o.mu.Lock()
	if !task.IsTerminal(at.result.Status) {
		switch executed.Status {
		case plan.StatusCompleted:
			at.result.Status = task.StatusCompleted
		case plan.StatusCancelled:
			at.result.Status = task.StatusCancelled
		default:
			at.result.Status = task.StatusFailed
			at.result.Error = executionError(executed)
		}
	}
	at.result.Result = executed.FinalAnswer
	at.result.StepsCompleted = len(executed.CompletedSteps())
	at.result.TotalSteps = len(executed.Steps)
	o.stampLocked(at.result)
	o.mu.Unlock()

	o.logger.LogTask(at.request.RequestID, string(at.result.Status),
		fmt.Sprintf("%d/%d steps completed", at.result.StepsCompleted, at.result.TotalSteps))
	o.saveSnapshot(at)
}

func (o *Orchestrator) stampLocked(result *task.Result) {
	if result.CompletedAt == nil {
		now := time.Now()
		result.CompletedAt = &now
	}
	result.Duration = result.CalculateDuration()
}

func executionError(p *plan.Plan) string {
	for _, s := range p.FailedSteps() {
		return fmt.Sprintf("step %d failed: %s", s.Number, s.Error)
	}
	return "plan execution stopped before completing all steps"
}

func (o *Orchestrator) saveSnapshot(at *activeTask) {
	o.mu.Lock()
	snapshot := &store.Snapshot{Request: at.request, Result: at.result, Plan: at.plan}
	o.mu.Unlock()

	if err := o.store.Put(at.request.RequestID, snapshot, o.snapshotTTL); err != nil {
		o.logger.LogWarning(at.request.RequestID, fmt.Sprintf("failed to store task snapshot: %v", err))
	}
}

// CancelTask marks a tracked task CANCELLED and cancels its context.
// Cancellation is cooperative: an in-flight tool or completion call is not
// interrupted, but no further step is scheduled. Terminal tasks are left
// untouched.
func (o *Orchestrator) CancelTask(id string) bool {
	o.mu.Lock()
	at, ok := o.active[id]
	if !ok || task.IsTerminal(at.result.Status) {
		o.mu.Unlock()
		return false
	}
	at.result.Status = task.StatusCancelled
	o.stampLocked(at.result)
	o.mu.Unlock()

	at.cancel()
	o.logger.LogTask(id, string(task.StatusCancelled), "cancellation requested")
	o.saveSnapshot(at)
	return true
}

// StatusReport describes a task's current progress.
type StatusReport struct {
	RequestID   string             `json:"request_id"`
	Status      task.Status        `json:"status"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Duration    float64            `json:"duration,omitempty"`
	Result      string             `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	Plan        *executor.Progress `json:"plan,omitempty"`
}

// TaskStatus reports on a tracked or recently finished task. The second
// return is false when the task is unknown or its snapshot has expired.
func (o *Orchestrator) TaskStatus(id string) (*StatusReport, bool) {
	o.mu.Lock()
	if at, ok := o.active[id]; ok {
		report := statusReport(at.request, at.result, at.plan)
		o.mu.Unlock()
		return report, true
	}
	o.mu.Unlock()

	snapshot, err := o.store.Get(id)
	if err != nil {
		o.logger.LogWarning(id, fmt.Sprintf("failed to load task snapshot: %v", err))
		return nil, false
	}
	if snapshot == nil {
		return nil, false
	}
	return statusReport(snapshot.Request, snapshot.Result, snapshot.Plan), true
}

// ActiveTasks lists the tasks currently tracked in memory.
func (o *Orchestrator) ActiveTasks() []*StatusReport {
	o.mu.Lock()
	defer o.mu.Unlock()

	reports := make([]*StatusReport, 0, len(o.active))
	for _, at := range o.active {
		reports = append(reports, statusReport(at.request, at.result, at.plan))
	}
	return reports
}

// RemoveTask deletes a finished task's snapshot. A task that is still running
// cannot be removed.
func (o *Orchestrator) RemoveTask(id string) bool {
	o.mu.Lock()
	if at, ok := o.active[id]; ok && !task.IsTerminal(at.result.Status) {
		o.mu.Unlock()
		return false
	}
	o.mu.Unlock()

	if err := o.store.Delete(id); err != nil {
		o.logger.LogWarning(id, fmt.Sprintf("failed to delete task snapshot: %v", err))
		return false
	}
	return true
}

func statusReport(req *task.Request, result *task.Result, pl *plan.Plan) *StatusReport {
	report := &StatusReport{
		RequestID:   req.RequestID,
		Status:      result.Status,
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
		Duration:    result.Duration,
		Result:      result.Result,
		Error:       result.Error,
	}
	if report.Duration == 0 && result.StartedAt != nil && result.CompletedAt == nil {
		report.Duration = time.Since(*result.StartedAt).Seconds()
	}
	if pl != nil {
		progress := executor.ExecutionStatus(pl)
		report.Plan = &progress
	}
	return report
}
