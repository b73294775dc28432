package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Tool defines the interface for all agent capabilities.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input string) (string, error)
}

// StreamingTool is implemented by tools that can report incremental progress.
// Tools without native streaming are wrapped by the registry.
type StreamingTool interface {
	Tool
	ExecuteStreaming(ctx context.Context, input string) <-chan Update
}

// Info describes a registered tool.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Result is the outcome of one tool execution.
type Result struct {
	Success  bool          `json:"success"`
	Value    string        `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// UpdateType tags a streaming update.
type UpdateType string

const (
	UpdateStatus UpdateType = "status"
	UpdateResult UpdateType = "result"
	UpdateError  UpdateType = "error"
)

// Update is one tagged element of a tool's streaming output.
type Update struct {
	Type    UpdateType `json:"type"`
	Message string     `json:"message,omitempty"`
	Result  *Result    `json:"result,omitempty"`
}

// Registry manages the set of available tools. It is safe for concurrent use
// by multiple task executions.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the catalogue of registered tools.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.tools))
	for _, t := range r.tools {
		infos = append(infos, Info{Name: t.Name(), Description: t.Description()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Execute runs a tool by name. Failures, including "tool not found", are
// reported in the Result rather than as a process error.
func (r *Registry) Execute(ctx context.Context, name, input string) Result {
	tool := r.Get(name)
	if tool == nil {
		return Result{Error: fmt.Sprintf("tool %q not found", name)}
	}

	start := time.Now()
	value, err := tool.Execute(ctx, input)
	duration := time.Since(start)
	if err != nil {
		return Result{Error: fmt.Sprintf("tool execution failed: %v", err), Duration: duration}
	}
	return Result{Success: true, Value: value, Duration: duration}
}

// ExecuteStreaming runs a tool by name, emitting tagged updates. The channel
// is closed after the final result or error update.
func (r *Registry) ExecuteStreaming(ctx context.Context, name, input string) <-chan Update {
	tool := r.Get(name)
	if tool == nil {
		out := make(chan Update, 1)
		out <- Update{Type: UpdateError, Message: fmt.Sprintf("tool %q not found", name)}
		close(out)
		return out
	}

	if st, ok := tool.(StreamingTool); ok {
		return st.ExecuteStreaming(ctx, input)
	}

	out := make(chan Update, 2)
	go func() {
		defer close(out)
		res := r.Execute(ctx, name, input)
		if !res.Success {
			out <- Update{Type: UpdateError, Message: res.Error, Result: &res}
			return
		}
		out <- Update{Type: UpdateResult, Result: &res}
	}()
	return out
}
