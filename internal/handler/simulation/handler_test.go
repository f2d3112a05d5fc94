package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/ai"
	"github.com/zhouzirui/z-counsel/backend/internal/service/evaluation"
	"github.com/zhouzirui/z-counsel/backend/internal/service/session"
	simService "github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	gen := ai.GeneratorFunc(func(_ context.Context, _ []*schema.Message, out ai.Schema) error {
		if scores, ok := out.(*ai.AspectScores); ok {
			scores.Scores = map[string]ai.AspectScore{}
			for _, aspect := range scores.Aspects {
				scores.Scores[aspect] = ai.AspectScore{Score: 3}
			}
		}
		return nil
	})

	registry := agent.NewRegistry(agent.Dependencies{Generator: gen})
	registry.RegisterClient("scripted", func(_ context.Context, p persona.ClientProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name, "Maybe."), nil
	})
	registry.RegisterTherapist("scripted", func(_ context.Context, p persona.TherapistProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name, "Go on."), nil
	})

	bundle, err := ai.DefaultPrompts().Bundle("evaluator")
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	store := transcript.NewMemoryStore()
	svc := simService.NewService(
		persona.NewMemoryStore(persona.Seed()),
		registry,
		session.NewController(store),
		store,
		evaluation.NewEvaluator(gen, bundle, nil),
		config.DefaultSimulationConfig(),
	)

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRunGetAndEvaluate(t *testing.T) {
	r := setupRouter(t)

	resp := do(r, http.MethodPost, "/simulations", map[string]any{
		"clientId":      "jordan-drinking",
		"therapistId":   "cbt-counselor",
		"clientType":    "scripted",
		"therapistType": "scripted",
		"maxTurns":      3,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created chat.Transcript
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.NumTurns != 3 || created.TerminationReason != chat.ReasonTurnLimit {
		t.Fatalf("unexpected transcript: turns=%d reason=%s", created.NumTurns, created.TerminationReason)
	}

	if resp := do(r, http.MethodGet, "/simulations/"+created.ID, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", resp.Code)
	}

	resp = do(r, http.MethodGet, "/simulations", nil)
	var list []transcript.Summary
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("expected one summary, got %v (err %v)", list, err)
	}

	resp = do(r, http.MethodGet, "/simulations/"+created.ID+"/talk", nil)
	if resp.Code != http.StatusOK || !bytes.Contains(resp.Body.Bytes(), []byte(`"neutral":3`)) {
		t.Fatalf("unexpected talk response %d: %s", resp.Code, resp.Body.String())
	}

	resp = do(r, http.MethodPost, "/simulations/"+created.ID+"/evaluate", map[string]any{"dimensions": []string{"active_listening"}})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on evaluate, got %d: %s", resp.Code, resp.Body.String())
	}
	var evaluated chat.Transcript
	if err := json.Unmarshal(resp.Body.Bytes(), &evaluated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := evaluated.Evaluation["active_listening"]; !ok {
		t.Fatalf("missing evaluation: %v", evaluated.Evaluation)
	}
}

func TestErrorStatuses(t *testing.T) {
	r := setupRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing client", http.MethodPost, "/simulations", map[string]any{"therapistId": "mi-counselor"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/simulations", map[string]any{"clientId": "a", "therapistId": "b", "speed": 2}, http.StatusBadRequest},
		{"unknown persona", http.MethodPost, "/simulations", map[string]any{"clientId": "nobody", "therapistId": "mi-counselor"}, http.StatusNotFound},
		{"unknown transcript", http.MethodGet, "/simulations/missing", nil, http.StatusNotFound},
		{"evaluate missing", http.MethodPost, "/simulations/missing/evaluate", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		if resp := do(r, tc.method, tc.path, tc.body); resp.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.want, resp.Code, resp.Body.String())
		}
	}
}

func TestDimensions(t *testing.T) {
	resp := do(setupRouter(t), http.MethodGet, "/evaluation/dimensions", nil)
	var dims []evaluation.Dimension
	if err := json.Unmarshal(resp.Body.Bytes(), &dims); err != nil || len(dims) != 4 {
		t.Fatalf("expected 4 dimensions, got %v (err %v)", dims, err)
	}
}
