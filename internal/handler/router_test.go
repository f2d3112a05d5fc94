package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/metrics"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/session"
	"github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

func newTestRouter() http.Handler {
	reg := prometheus.NewRegistry()
	m := metrics.NewSimulationMetrics(reg)

	registry := agent.NewRegistry(agent.Dependencies{Metrics: m})
	registry.RegisterClient("scripted", func(_ context.Context, p persona.ClientProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name, "Okay."), nil
	})
	registry.RegisterTherapist("scripted", func(_ context.Context, p persona.TherapistProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name, "END"), nil
	})

	store := transcript.NewMemoryStore()
	svc := simulation.NewService(
		persona.NewMemoryStore(persona.Seed()),
		registry,
		session.NewController(store, session.WithMetrics(m)),
		store,
		nil,
		config.DefaultSimulationConfig(),
	)
	return NewRouter(Deps{Simulation: svc, Agents: registry, Gatherer: reg})
}

func TestRouterServesAPIAndMetrics(t *testing.T) {
	r := newTestRouter()

	body := `{"clientId":"alex-smoking","therapistId":"mi-counselor","clientType":"scripted","therapistType":"scripted"}`
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/simulations", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"termination_reason":"explicit-end"`) {
		t.Fatalf("expected explicit end, got %s", resp.Body.String())
	}

	for _, path := range []string{"/api/personas", "/api/topics", "/api/topics/distance?from=Health&to=Health", "/healthz"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(resp.Body.String(), `zcounsel_session_completed_total{reason="explicit-end"} 1`) {
		t.Fatalf("expected session counter in metrics output:\n%s", resp.Body.String())
	}
}
