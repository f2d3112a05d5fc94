package topic

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/topic"
	"github.com/zhouzirui/z-counsel/backend/pkg/utils"
)

// Handler exposes the topic graph.
type Handler struct {
	graph *topic.Graph
}

func New(graph *topic.Graph) *Handler {
	if graph == nil {
		graph = topic.DefaultGraph()
	}
	return &Handler{graph: graph}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/topics", h.handleList)
	r.Get("/topics/distance", h.handleDistance)
}

// DistanceResponse carries a nil Distance when no path exists.
type DistanceResponse struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Distance  *float64 `json:"distance"`
	Reachable bool     `json:"reachable"`
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.graph.Topics())
}

func (h *Handler) handleDistance(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		utils.RespondError(w, http.StatusBadRequest, "from and to query parameters are required")
		return
	}

	resp := DistanceResponse{From: from, To: to}
	if d := h.graph.Distance(from, to); !math.IsInf(d, 1) {
		resp.Distance = &d
		resp.Reachable = true
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
