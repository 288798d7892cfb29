package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/mindease/component"
)

func TestOverall(t *testing.T) {
	h := func(s component.HealthStatus) component.Health { return component.Health{Status: s} }
	tests := []struct {
		name string
		in   []component.Health
		want component.HealthStatus
	}{
		{"no components", nil, component.StatusHealthy},
		{"all healthy", []component.Health{h(component.StatusHealthy), h(component.StatusHealthy)}, component.StatusHealthy},
		{"one degraded", []component.Health{h(component.StatusHealthy), h(component.StatusDegraded)}, component.StatusDegraded},
		{"unhealthy wins", []component.Health{h(component.StatusDegraded), h(component.StatusUnhealthy), h(component.StatusHealthy)}, component.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.in); got != tt.want {
				t.Errorf("Overall = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHealthDegradedIsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", Health("mindease", func(context.Context) []component.Health {
		return []component.Health{{Name: "transcription", Status: component.StatusDegraded}}
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != component.StatusDegraded || resp.Service != "mindease" || len(resp.Components) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/info", Info("mindease"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["service"] != "mindease" || body["version"] == nil || body["uptime"] == nil {
		t.Errorf("body = %v", body)
	}
}
