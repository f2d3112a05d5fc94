// Package stream pushes live session events to browsers over Server-Sent
// Events and WebSocket.
package stream

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	simHandler "github.com/zhouzirui/z-counsel/backend/internal/handler/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/service/session"
	simService "github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
	"github.com/zhouzirui/z-counsel/backend/pkg/utils"
)

// Handler streams simulation runs as they happen.
type Handler struct {
	svc *simService.Service
	ws  *WebSocketHandler
}

// New creates a new stream handler
func New(svc *simService.Service) *Handler {
	return &Handler{svc: svc, ws: NewWebSocketHandler(svc)}
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/simulations/stream", h.handleSSE)
	r.Get("/ws/simulate", h.ws.handleWebSocket)
}

// requestFromQuery reads a run request from query parameters.
func requestFromQuery(r *http.Request) (simService.Request, error) {
	q := r.URL.Query()
	req := simService.Request{
		ClientID:      q.Get("clientId"),
		TherapistID:   q.Get("therapistId"),
		ClientType:    q.Get("clientType"),
		TherapistType: q.Get("therapistType"),
	}
	if raw := q.Get("maxTurns"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.New("maxTurns must be an integer")
		}
		req.MaxTurns = n
	}
	if raw := q.Get("reminderTurnNum"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.New("reminderTurnNum must be an integer")
		}
		req.ReminderTurnNum = &n
	}
	if raw := strings.TrimSpace(q.Get("evaluate")); raw != "" {
		req.Evaluate = strings.Split(raw, ",")
	}
	return req, nil
}

// handleSSE runs one session and emits every controller event as it occurs.
// Validation errors are answered with plain JSON before the stream opens.
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req, err := requestFromQuery(r)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.SetupSSEHeaders(w)
	log.Printf("[sse] opening simulation stream client=%s therapist=%s", req.ClientID, req.TherapistID)

	writeFailed := false
	observe := func(e session.Event) {
		if writeFailed {
			return
		}
		if err := utils.SendSSEEvent(w, flusher, string(e.Type), e); err != nil {
			log.Printf("[sse] %v", err)
			writeFailed = true
		}
	}

	record, err := h.svc.Run(r.Context(), req, observe)
	if err != nil {
		_ = utils.SendSSEEvent(w, flusher, "error", map[string]any{
			"status":  simHandler.StatusFor(err),
			"message": err.Error(),
		})
		return
	}
	if len(record.Evaluation) > 0 {
		_ = utils.SendSSEEvent(w, flusher, "evaluation", record.Evaluation)
	}
	log.Printf("[sse] closing simulation stream session=%s", record.ID)
}
