package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
)

func setupRouter() *chi.Mux {
	store := persona.NewMemoryStore(persona.Seed())
	r := chi.NewRouter()
	New(store, []string{"basic", "consistentmi"}, []string{"therapist"}).RegisterRoutes(r)
	return r
}

func TestListPersonas(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/personas", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body listResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Clients) != 2 || len(body.Therapists) != 2 {
		t.Fatalf("unexpected personas: %d clients, %d therapists", len(body.Clients), len(body.Therapists))
	}
	if len(body.ClientTypes) != 2 {
		t.Fatalf("expected client types, got %v", body.ClientTypes)
	}
}

func TestGetClient(t *testing.T) {
	r := setupRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/personas/clients/alex-smoking", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/personas/clients/nobody", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
