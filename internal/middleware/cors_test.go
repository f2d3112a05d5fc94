package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/simulations", nil))
	if resp.Code != http.StatusNoContent || called {
		t.Fatalf("expected short-circuited 204, got %d (called=%v)", resp.Code, called)
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/simulations", nil))
	if !called || resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected pass-through with CORS headers")
	}
}
