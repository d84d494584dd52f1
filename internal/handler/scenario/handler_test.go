package scenario

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

func setupRouter() *chi.Mux {
	handler := New(game.NewMemoryScenarioStore(game.Seed()))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestListScenarios(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/scenarios", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var scenarios []game.Scenario
	if err := json.Unmarshal(resp.Body.Bytes(), &scenarios); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if len(scenarios) != 6 {
		t.Fatalf("expected 6 scenarios, got %d", len(scenarios))
	}
}

func TestGetScenarioByID(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/scenarios/elevator-ceo", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var scenario game.Scenario
	if err := json.Unmarshal(resp.Body.Bytes(), &scenario); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if scenario.ID != "elevator-ceo" {
		t.Fatalf("unexpected scenario: %s", scenario.ID)
	}
}

func TestGetScenarioNotFound(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/scenarios/unknown", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
