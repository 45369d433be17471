package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func resetHealth(version string) {
	healthChecker = NewHealthChecker()
	healthChecker.version = version
}

func TestUpdateComponent(t *testing.T) {
	resetHealth("")

	UpdateComponent(ComponentSettings, true, "resolved")
	UpdateComponent(ComponentSettings, false, "control service unreachable")

	if len(healthChecker.components) != 1 {
		t.Errorf("expected 1 component, got %d", len(healthChecker.components))
	}

	comp := healthChecker.components[ComponentSettings]
	if comp.Healthy {
		t.Error("component should be unhealthy after update")
	}
	if comp.Message != "control service unreachable" {
		t.Errorf("unexpected message %q", comp.Message)
	}
}

func TestGetHealth_AllHealthy(t *testing.T) {
	resetHealth("1.0.0")
	SetManager("Pub-10-1")

	UpdateComponent(ComponentSettings, true, "")
	UpdateComponent(ComponentRecovery, true, "")

	health := GetHealth()

	if health.Status != "healthy" {
		t.Errorf("expected status 'healthy', got '%s'", health.Status)
	}
	if len(health.Components) != 2 {
		t.Errorf("expected 2 components, got %d", len(health.Components))
	}
	if health.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got '%s'", health.Version)
	}
	if health.Manager != "Pub-10-1" {
		t.Errorf("expected manager 'Pub-10-1', got '%s'", health.Manager)
	}
}

func TestGetHealth_PluginFailureIsUnhealthy(t *testing.T) {
	resetHealth("")

	UpdateComponent(ComponentSettings, true, "")
	UpdateComponent(ComponentPlugins, false, "ambiguous mapping for MSGFPlus")

	health := GetHealth()
	if health.Status != "unhealthy" {
		t.Errorf("expected status 'unhealthy', got '%s'", health.Status)
	}
	if health.Components[ComponentPlugins] != "unhealthy: ambiguous mapping for MSGFPlus" {
		t.Errorf("unexpected plugins entry %q", health.Components[ComponentPlugins])
	}
}

func TestGetReadiness(t *testing.T) {
	tests := []struct {
		name   string
		setup  func()
		status string
	}{
		{
			name: "settings and recovery ready",
			setup: func() {
				UpdateComponent(ComponentSettings, true, "")
				UpdateComponent(ComponentRecovery, true, "")
			},
			status: "ready",
		},
		{
			name: "recovery not registered",
			setup: func() {
				UpdateComponent(ComponentSettings, true, "")
			},
			status: "not_ready",
		},
		{
			name: "cleanup left files behind",
			setup: func() {
				UpdateComponent(ComponentSettings, true, "")
				UpdateComponent(ComponentRecovery, false, "delete error flag present")
			},
			status: "not_ready",
		},
		{
			name: "plugin failures do not block readiness",
			setup: func() {
				UpdateComponent(ComponentSettings, true, "")
				UpdateComponent(ComponentRecovery, true, "")
				UpdateComponent(ComponentPlugins, false, "missing")
			},
			status: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth("")
			tt.setup()

			readiness := GetReadiness()
			if readiness.Status != tt.status {
				t.Errorf("expected status %q, got %q (%s)", tt.status, readiness.Status, readiness.Message)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	resetHealth("test")
	UpdateComponent(ComponentSettings, true, "")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler()(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var health HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if health.Version != "test" {
		t.Errorf("expected version 'test', got %s", health.Version)
	}
}

func TestReadyHandler_NotReady(t *testing.T) {
	resetHealth("")
	UpdateComponent(ComponentSettings, false, "deactivated")

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	ReadyHandler()(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestMuxRoutes(t *testing.T) {
	resetHealth("")
	mux := Mux()

	for _, path := range []string{"/metrics", "/health", "/live"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
	}
}
