package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckBasicMode(t *testing.T) {
	t.Parallel()

	// Basic mode reports process liveness without touching dependencies.
	checker := NewHealthChecker(nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	checker.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data HealthResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Status != "healthy" {
		t.Errorf("expected healthy status, got %q", resp.Data.Status)
	}
	if resp.Data.Checks != nil {
		t.Error("expected no dependency checks in basic mode")
	}
	if resp.Data.Timestamp == "" {
		t.Error("expected timestamp to be set")
	}
}
