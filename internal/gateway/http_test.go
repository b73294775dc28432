package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanj/rewoo/internal/agent"
	"github.com/karanj/rewoo/internal/executor"
	"github.com/karanj/rewoo/internal/observability"
	"github.com/karanj/rewoo/internal/planner"
	"github.com/karanj/rewoo/internal/prompts"
	"github.com/karanj/rewoo/internal/store"
	"github.com/karanj/rewoo/internal/task"
	"github.com/karanj/rewoo/internal/tools"
)

type fakeCompleter struct {
	response string
}

func (f *fakeCompleter) Complete(context.Context, string, string) (string, error) {
	return f.response, nil
}

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) Execute(_ context.Context, input string) (string, error) {
	return "echo:" + input, nil
}

const planText = `Plan: 1. TOOL echo gather facts -> #facts#
Plan: 2. SOLVE Answer using #facts# -> #answer#`

func newTestGateway() *HTTPGateway {
	registry := tools.NewRegistry()
	registry.Register(echoTool{})

	logger := observability.NewLogger()
	pm := prompts.NewManager("")

	pl := planner.New(&fakeCompleter{response: planText}, registry, pm, logger)
	ex := executor.New(registry, &fakeCompleter{response: "the final answer"}, pm, logger, 0)
	o := agent.NewOrchestrator(pl, ex, store.NewMemoryStore(), logger, time.Minute)

	return NewHTTPGateway(o, registry, logger, "127.0.0.1:0")
}

func TestHandleHealth(t *testing.T) {
	srv := httptest.NewServer(newTestGateway().routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleTools(t *testing.T) {
	srv := httptest.NewServer(newTestGateway().routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/agent/tools")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Tools []tools.Info `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Tools, 1)
	assert.Equal(t, "echo", body.Tools[0].Name)
}

func TestHandleExecute(t *testing.T) {
	srv := httptest.NewServer(newTestGateway().routes())
	defer srv.Close()

	payload := []byte(`{"task_description": "answer a question", "task_type": "research"}`)
	resp, err := http.Post(srv.URL+"/api/v1/agent/tasks/execute", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result task.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, task.StatusCompleted, result.Status)
	assert.Equal(t, "the final answer", result.Result)
	assert.Equal(t, 2, result.TotalSteps)
	assert.NotEmpty(t, result.RequestID)
}

func TestHandleExecuteValidation(t *testing.T) {
	srv := httptest.NewServer(newTestGateway().routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/agent/tasks/execute", "application/json",
		bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/v1/agent/tasks/execute", "application/json",
		bytes.NewReader([]byte(`not json`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleExecuteStream(t *testing.T) {
	srv := httptest.NewServer(newTestGateway().routes())
	defer srv.Close()

	payload := []byte(`{"task_description": "answer a question"}`)
	resp, err := http.Post(srv.URL+"/api/v1/agent/tasks/execute-stream", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"type":"task_started"`)
	assert.Contains(t, out, `"type":"task_completed"`)
	assert.Contains(t, out, "the final answer")
}

func TestHandleStatusAndRemove(t *testing.T) {
	g := newTestGateway()
	srv := httptest.NewServer(g.routes())
	defer srv.Close()

	payload := []byte(`{"task_description": "answer a question"}`)
	resp, err := http.Post(srv.URL+"/api/v1/agent/tasks/execute", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	var result task.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/agent/tasks/" + result.RequestID + "/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report agent.StatusReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()
	assert.Equal(t, task.StatusCompleted, report.Status)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/agent/tasks/"+result.RequestID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/agent/tasks/" + result.RequestID + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestGateway().routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/agent/tasks/no-such-task/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleCancelNotRunning(t *testing.T) {
	srv := httptest.NewServer(newTestGateway().routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/agent/tasks/no-such-task/cancel", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
