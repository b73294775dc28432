package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/karanj/rewoo/internal/agent"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsCommand is a client message on the websocket. Action is "execute" to
// start a task or "cancel" to stop the running one.
type wsCommand struct {
	Action    string         `json:"action"`
	Task      executeRequest `json:"task,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// handleWebSocket runs tasks over a websocket, streaming every event as a
// JSON frame. One task runs at a time per connection.
func (g *HTTPGateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.LogWarning("", fmt.Sprintf("websocket upgrade failed: %v", err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		writeMu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, data)
		writeMu.Unlock()
	}

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.LogWarning("", fmt.Sprintf("websocket read failed: %v", err))
			}
			return
		}

		switch cmd.Action {
		case "execute":
			if cmd.Task.Description == "" {
				send(map[string]string{"error": "task_description is required"})
				continue
			}
			_, _ = g.orchestrator.ExecuteTaskStreaming(r.Context(), cmd.Task.toTask(), func(ev agent.StreamEvent) {
				send(ev)
			})
		case "cancel":
			if cmd.RequestID == "" {
				send(map[string]string{"error": "request_id is required"})
				continue
			}
			if !g.orchestrator.CancelTask(cmd.RequestID) {
				send(map[string]string{"error": "task is not running"})
			}
		default:
			send(map[string]string{"error": fmt.Sprintf("unknown action %q", cmd.Action)})
		}
	}
}
