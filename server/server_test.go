package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/mindease/component"
	apperrors "github.com/kbukum/mindease/errors"
	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/server/middleware"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s := New(cfg, logger.Nop())
	s.ApplyMiddleware(nil)
	return s
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 3001 || cfg.MaxBodySize != "25MB" {
		t.Errorf("defaults = %+v", cfg)
	}
	if got := cfg.MaxBodyBytes(); got != 25_000_000 {
		t.Errorf("MaxBodyBytes = %d", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad port", Config{Port: 70000}},
		{"negative timeout", Config{ReadTimeout: -1}},
		{"bad size", Config{MaxBodySize: "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultEndpoints(t *testing.T) {
	s := newTestServer(t, Config{})
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "redis", Status: component.StatusHealthy}}
	}
	s.RegisterDefaultEndpoints("mindease-proxy", checker)

	w := do(s.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
	w = do(s.Handler(), httptest.NewRequest(http.MethodGet, "/info", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "mindease-proxy") {
		t.Errorf("info = %d %s", w.Code, w.Body.String())
	}
}

func TestHealthUnhealthyComponent(t *testing.T) {
	s := newTestServer(t, Config{})
	s.RegisterDefaultEndpoints("svc", func(context.Context) []component.Health {
		return []component.Health{{Name: "redis", Status: component.StatusUnhealthy}}
	})
	w := do(s.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, Config{})
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := do(s.Handler(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	w = do(s.Handler(), req)
	if got := w.Header().Get(middleware.HeaderRequestID); got != "req-42" {
		t.Errorf("request id = %q", got)
	}
}

func TestRecovery(t *testing.T) {
	s := newTestServer(t, Config{})
	s.Engine().GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(s.Handler(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), string(apperrors.ErrCodeInternal)) {
		t.Errorf("recovery = %d %s", w.Code, w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, Config{CORS: middleware.CORSConfig{AllowedOrigins: []string{"https://app.mindease.test"}}})
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.mindease.test")
	w := do(s.Handler(), req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.mindease.test" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = do(s.Handler(), req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}
}

func TestBodySizeLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxBodySize: "10B"})
	s.Engine().POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(s.Handler(), httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NotFound("recording", "r1"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", apperrors.MissingField("audio")), http.StatusBadRequest},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			RespondWithError(c, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	s := New(Config{Host: "127.0.0.1"}, logger.Nop())
	s.httpServer.Addr = "127.0.0.1:0"
	s.RegisterDefaultEndpoints("svc", nil)

	comp := NewComponent(s)
	if err := comp.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if err := comp.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRoutesOrdering(t *testing.T) {
	s := newTestServer(t, Config{})
	s.RegisterDefaultEndpoints("svc", nil)
	s.Engine().DELETE("/companion/:userId/messages", func(*gin.Context) {})
	s.Engine().GET("/companion/:userId/messages", func(*gin.Context) {})

	routes := NewComponent(s).Routes()
	if len(routes) != 4 {
		t.Fatalf("routes = %+v", routes)
	}
	if routes[0].Method != "GET" || routes[1].Method != "DELETE" {
		t.Errorf("method order = %s, %s", routes[0].Method, routes[1].Method)
	}
	if !systemPaths[routes[3].Path] {
		t.Errorf("system routes should sort last: %+v", routes)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"github.com/kbukum/mindease/proxy.(*Handler).Transcribe-fm", "Handler.Transcribe"},
		{"github.com/kbukum/mindease/server/endpoint.Health.func1", "Health"},
		{"main.main", "main"},
	}
	for _, tt := range tests {
		if got := formatHandlerName(tt.in); got != tt.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
