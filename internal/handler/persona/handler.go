package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas       persona.Store
	clientTypes    []string
	therapistTypes []string
}

// New 创建persona处理器，clientTypes/therapistTypes 为可选的 agent 类型列表
func New(personas persona.Store, clientTypes, therapistTypes []string) *Handler {
	return &Handler{
		personas:       personas,
		clientTypes:    clientTypes,
		therapistTypes: therapistTypes,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/clients/{id}", h.handleGetClient)
}

type listResponse struct {
	Clients        []persona.ClientProfile    `json:"clients"`
	Therapists     []persona.TherapistProfile `json:"therapists"`
	ClientTypes    []string                   `json:"clientTypes,omitempty"`
	TherapistTypes []string                   `json:"therapistTypes,omitempty"`
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, listResponse{
		Clients:        h.personas.Clients(),
		Therapists:     h.personas.Therapists(),
		ClientTypes:    h.clientTypes,
		TherapistTypes: h.therapistTypes,
	})
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindClient(chi.URLParam(r, "id"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, persona.ErrPersonaNotFound.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
