package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name  string
	value string
	err   error
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }
func (s *stubTool) Execute(context.Context, string) (string, error) {
	return s.value, s.err
}

type stubStreamingTool struct {
	stubTool
	updates []Update
}

func (s *stubStreamingTool) ExecuteStreaming(context.Context, string) <-chan Update {
	out := make(chan Update, len(s.updates))
	for _, u := range s.updates {
		out <- u
	}
	close(out)
	return out
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "search"})
	r.Register(&stubTool{name: "calculator"})

	assert.True(t, r.Has("search"))
	assert.False(t, r.Has("browser"))
	assert.NotNil(t, r.Get("calculator"))
	assert.Nil(t, r.Get("browser"))
}

func TestRegistryNamesAndListSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "wikipedia"})
	r.Register(&stubTool{name: "calculator"})
	r.Register(&stubTool{name: "search"})

	assert.Equal(t, []string{"calculator", "search", "wikipedia"}, r.Names())

	infos := r.List()
	require.Len(t, infos, 3)
	assert.Equal(t, "calculator", infos[0].Name)
	assert.Equal(t, "stub calculator", infos[0].Description)
	assert.Equal(t, "wikipedia", infos[2].Name)
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "echo", value: "hello"})
	r.Register(&stubTool{name: "broken", err: errors.New("boom")})

	res := r.Execute(context.Background(), "echo", "in")
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Value)

	res = r.Execute(context.Background(), "broken", "in")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")

	res = r.Execute(context.Background(), "missing", "in")
	assert.False(t, res.Success)
	assert.Equal(t, `tool "missing" not found`, res.Error)
}

func TestRegistryExecuteStreamingWrapsPlainTool(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "echo", value: "hello"})

	var updates []Update
	for u := range r.ExecuteStreaming(context.Background(), "echo", "in") {
		updates = append(updates, u)
	}

	require.Len(t, updates, 1)
	assert.Equal(t, UpdateResult, updates[0].Type)
	require.NotNil(t, updates[0].Result)
	assert.Equal(t, "hello", updates[0].Result.Value)
}

func TestRegistryExecuteStreamingErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "broken", err: errors.New("boom")})

	var updates []Update
	for u := range r.ExecuteStreaming(context.Background(), "broken", "in") {
		updates = append(updates, u)
	}
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateError, updates[0].Type)
	assert.Contains(t, updates[0].Message, "boom")

	updates = nil
	for u := range r.ExecuteStreaming(context.Background(), "missing", "in") {
		updates = append(updates, u)
	}
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateError, updates[0].Type)
}

func TestRegistryExecuteStreamingPassthrough(t *testing.T) {
	st := &stubStreamingTool{
		stubTool: stubTool{name: "streamer"},
		updates: []Update{
			{Type: UpdateStatus, Message: "working"},
			{Type: UpdateResult, Result: &Result{Success: true, Value: "done"}},
		},
	}
	r := NewRegistry()
	r.Register(st)

	var updates []Update
	for u := range r.ExecuteStreaming(context.Background(), "streamer", "in") {
		updates = append(updates, u)
	}

	require.Len(t, updates, 2)
	assert.Equal(t, UpdateStatus, updates[0].Type)
	assert.Equal(t, "done", updates[1].Result.Value)
}
