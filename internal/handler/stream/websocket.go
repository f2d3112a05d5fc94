package stream

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	simHandler "github.com/zhouzirui/z-counsel/backend/internal/handler/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/service/session"
	simService "github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// WebSocketHandler runs one simulation per connection. The browser sends a
// single "start" message holding the run request and then only listens.
type WebSocketHandler struct {
	svc      *simService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(svc *simService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundMessage struct {
	Type    string             `json:"type"`
	Request simService.Request `json:"request"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var start inboundMessage
	if err := conn.ReadJSON(&start); err != nil {
		log.Printf("[websocket] read start message: %v", err)
		return
	}
	if start.Type != "start" {
		h.sendError(conn, http.StatusBadRequest, "first message must be of type start")
		return
	}

	// The reader keeps pong handling alive and cancels the run when the
	// browser goes away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}
		}
	}()
	go pingLoop(ctx, conn)

	observe := func(e session.Event) {
		h.send(conn, outgoingMessage{
			Type:      string(e.Type),
			SessionID: e.SessionID,
			Data:      e,
			Timestamp: time.Now().Unix(),
		})
	}

	record, err := h.svc.Run(ctx, start.Request, observe)
	if err != nil {
		h.sendError(conn, simHandler.StatusFor(err), err.Error())
		return
	}
	if len(record.Evaluation) > 0 {
		h.send(conn, outgoingMessage{Type: "evaluation", SessionID: record.ID, Data: record.Evaluation, Timestamp: time.Now().Unix()})
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished"),
		time.Now().Add(writeWait))
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outgoingMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msg.Type, err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, status int, message string) {
	h.send(conn, outgoingMessage{
		Type:      "error",
		Data:      map[string]any{"status": status, "message": message},
		Timestamp: time.Now().Unix(),
	})
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
