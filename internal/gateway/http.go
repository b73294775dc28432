package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/karanj/rewoo/internal/agent"
	"github.com/karanj/rewoo/internal/observability"
	"github.com/karanj/rewoo/internal/task"
	"github.com/karanj/rewoo/internal/tools"
)

// HTTPGateway exposes the agent over a REST and streaming API.
type HTTPGateway struct {
	orchestrator *agent.Orchestrator
	registry     *tools.Registry
	logger       *observability.Logger
	server       *http.Server
}

func NewHTTPGateway(o *agent.Orchestrator, registry *tools.Registry, logger *observability.Logger, addr string) *HTTPGateway {
	g := &HTTPGateway{
		orchestrator: o,
		registry:     registry,
		logger:       logger,
	}
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

func (g *HTTPGateway) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", g.handleHealth)
	r.Route("/api/v1/agent", func(r chi.Router) {
		r.Get("/tools", g.handleTools)
		r.Get("/tasks", g.handleActiveTasks)
		r.Post("/tasks/execute", g.handleExecute)
		r.Post("/tasks/execute-stream", g.handleExecuteStream)
		r.Get("/tasks/{id}/status", g.handleStatus)
		r.Post("/tasks/{id}/cancel", g.handleCancel)
		r.Delete("/tasks/{id}", g.handleRemove)
		r.Get("/ws", g.handleWebSocket)
	})
	return r
}

// Start serves until the listener closes. It blocks.
func (g *HTTPGateway) Start() error {
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http gateway: %w", err)
	}
	return nil
}

func (g *HTTPGateway) Stop(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

type executeRequest struct {
	Description string            `json:"task_description"`
	Type        task.Type         `json:"task_type,omitempty"`
	Priority    task.Priority     `json:"priority,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
}

func (r executeRequest) toTask() *task.Request {
	req := task.NewRequest(r.Description)
	if r.Type != "" {
		req.Type = r.Type
	}
	if r.Priority != "" {
		req.Priority = r.Priority
	}
	req.Context = r.Context
	return req
}

func (g *HTTPGateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *HTTPGateway) handleTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": g.registry.List()})
}

func (g *HTTPGateway) handleExecute(w http.ResponseWriter, r *http.Request) {
	var body executeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Description == "" {
		writeError(w, http.StatusBadRequest, "task_description is required")
		return
	}

	result, err := g.orchestrator.ExecuteTask(r.Context(), body.toTask())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (g *HTTPGateway) handleExecuteStream(w http.ResponseWriter, r *http.Request) {
	var body executeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Description == "" {
		writeError(w, http.StatusBadRequest, "task_description is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, _ = g.orchestrator.ExecuteTaskStreaming(r.Context(), body.toTask(), func(ev agent.StreamEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	})
}

func (g *HTTPGateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, ok := g.orchestrator.TaskStatus(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (g *HTTPGateway) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !g.orchestrator.CancelTask(id) {
		writeError(w, http.StatusConflict, "task is not running")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"request_id": id,
		"status":     string(task.StatusCancelled),
	})
}

func (g *HTTPGateway) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !g.orchestrator.RemoveTask(id) {
		writeError(w, http.StatusConflict, "task cannot be removed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *HTTPGateway) handleActiveTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": g.orchestrator.ActiveTasks()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
