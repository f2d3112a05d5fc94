package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/topic"
	personaHandler "github.com/zhouzirui/z-counsel/backend/internal/handler/persona"
	simHandler "github.com/zhouzirui/z-counsel/backend/internal/handler/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/handler/stream"
	topicHandler "github.com/zhouzirui/z-counsel/backend/internal/handler/topic"
	middlewarePkg "github.com/zhouzirui/z-counsel/backend/internal/middleware"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
	"github.com/zhouzirui/z-counsel/backend/pkg/utils"
)

// Deps are the services the HTTP surface needs. Gatherer defaults to the
// Prometheus default gatherer.
type Deps struct {
	Simulation *simulation.Service
	Agents     *agent.Registry
	Graph      *topic.Graph
	Gatherer   prometheus.Gatherer
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var clientTypes, therapistTypes []string
	if deps.Agents != nil {
		clientTypes = deps.Agents.ClientTypes()
		therapistTypes = deps.Agents.TherapistTypes()
	}

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(deps.Simulation.Personas(), clientTypes, therapistTypes).RegisterRoutes(api)
		topicHandler.New(deps.Graph).RegisterRoutes(api)
		stream.New(deps.Simulation).RegisterRoutes(api)
		simHandler.New(deps.Simulation).RegisterRoutes(api)
	})

	return r
}
