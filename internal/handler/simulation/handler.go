package simulation

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/evaluation"
	simService "github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
	"github.com/zhouzirui/z-counsel/backend/pkg/utils"
)

// Handler 模拟会话的HTTP处理器
type Handler struct {
	svc *simService.Service
}

// New 创建模拟会话处理器
func New(svc *simService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册模拟会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulations", h.handleRun)
	r.Get("/simulations", h.handleList)
	r.Get("/simulations/{id}", h.handleGet)
	r.Post("/simulations/{id}/evaluate", h.handleEvaluate)
	r.Get("/simulations/{id}/talk", h.handleTalk)
	r.Get("/evaluation/dimensions", h.handleDimensions)
}

// handleRun 同步运行一次完整会话
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req simService.Request
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.svc.Run(r.Context(), req, nil)
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}

// handleEvaluate 对已保存的会话打分
func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Dimensions []string `json:"dimensions"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.svc.Evaluate(r.Context(), chi.URLParam(r, "id"), payload.Dimensions)
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}

// handleTalk 返回来访者改变语句与维持语句的统计
func (h *Handler) handleTalk(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.Talk(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"balance": balance,
		"ratio":   balance.Ratio(),
	})
}

func (h *Handler) handleDimensions(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, evaluation.Dimensions())
}

// RespondServiceError 将服务层错误映射为HTTP状态码
func RespondServiceError(w http.ResponseWriter, err error) {
	utils.RespondError(w, StatusFor(err), err.Error())
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, simService.ErrInvalidRequest),
		errors.Is(err, evaluation.ErrUnknownDimension),
		errors.Is(err, evaluation.ErrEmptyTranscript),
		errors.Is(err, agent.ErrUnknownAgentType):
		return http.StatusBadRequest
	case errors.Is(err, persona.ErrPersonaNotFound),
		errors.Is(err, transcript.ErrTranscriptNotFound):
		return http.StatusNotFound
	case errors.Is(err, simService.ErrEvaluationDisabled):
		return http.StatusServiceUnavailable
	default:
		log.Printf("[http] simulation request failed: %v", err)
		return http.StatusInternalServerError
	}
}
