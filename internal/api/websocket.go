// websocket.go - Live job progress push
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/jobs"
)

// Server -> client message types
const (
	MsgTypeJobProgress = "job:progress"
	MsgTypePong        = "pong"
)

// WSMessage is the envelope for pushed messages
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Same trust model as the HTTP API: CORS is handled at the middleware
		// level and the panel is served from this process.
		return true
	},
}

// WebSocketHandler pushes batch job progress snapshots to connected panels.
type WebSocketHandler struct {
	jobMgr *jobs.Manager
}

// NewWebSocketHandler creates a new websocket handler.
func NewWebSocketHandler(jobMgr *jobs.Manager) *WebSocketHandler {
	return &WebSocketHandler{jobMgr: jobMgr}
}

// HandleJobProgress upgrades the connection and streams job snapshots until
// the client disconnects.
func (h *WebSocketHandler) HandleJobProgress(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return NewBadRequestError("websocket upgrade failed", err)
	}
	defer conn.Close()

	updates, cancel := h.jobMgr.Subscribe()
	defer cancel()

	// Reader goroutine: consume control frames and detect disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeJobProgress(conn, snapshot); err != nil {
				return nil
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}

func writeJobProgress(conn *websocket.Conn, snapshot jobs.Job) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	msg := WSMessage{
		Type:      MsgTypeJobProgress,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}
