package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/mindease/errors"
	"github.com/kbukum/mindease/resilience"
)

func newTestClient(t *testing.T, h http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := Config{Name: "test", BaseURL: srv.URL}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestDoGetWithQueryAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/transcript/abc" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("fields") != "status" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Default") != "1" || r.Header.Get("X-Req") != "2" {
			t.Errorf("headers = %v", r.Header)
		}
		_, _ = io.WriteString(w, `{"status":"queued"}`)
	}, func(cfg *Config) {
		cfg.BaseURL += "/v2/"
		cfg.Headers = map[string]string{"X-Default": "1"}
	})

	resp, err := c.Do(context.Background(), Request{
		Path:    "/transcript/abc",
		Query:   map[string]string{"fields": "status"},
		Headers: map[string]string{"X-Req": "2"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !resp.IsSuccess() || !strings.Contains(string(resp.Body), "queued") {
		t.Errorf("resp = %d %s", resp.StatusCode, resp.Body)
	}
}

func TestPostJSON(t *testing.T) {
	type created struct {
		ID string `json:"id"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["audio_url"] != "https://cdn/x" {
			t.Errorf("body = %v", in)
		}
		_ = json.NewEncoder(w).Encode(created{ID: "job-1"})
	}, nil)

	got, err := PostJSON[created](context.Background(), c, "/transcript", map[string]string{"audio_url": "https://cdn/x"})
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if got.ID != "job-1" {
		t.Errorf("id = %q", got.ID)
	}
}

func TestRawBytesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("content type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "RIFF" {
			t.Errorf("body = %q", b)
		}
	}, nil)
	if _, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/upload", Body: []byte("RIFF")}); err != nil {
		t.Fatal(err)
	}
}

func TestAuthApplied(t *testing.T) {
	tests := []struct {
		name  string
		auth  *AuthConfig
		check func(*http.Request) bool
	}{
		{"bearer", BearerAuth("tok"), func(r *http.Request) bool { return r.Header.Get("Authorization") == "Bearer tok" }},
		{"api key header", APIKeyHeader("key", "authorization"), func(r *http.Request) bool { return r.Header.Get("Authorization") == "key" }},
		{"api key query", APIKeyQuery("key", "token"), func(r *http.Request) bool { return r.URL.Query().Get("token") == "key" }},
		{"basic", BasicAuth("u", "p"), func(r *http.Request) bool {
			u, p, ok := r.BasicAuth()
			return ok && u == "u" && p == "p"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if !tt.check(r) {
					t.Errorf("auth not applied: %v %s", r.Header, r.URL.RawQuery)
				}
			}, func(cfg *Config) { cfg.Auth = tt.auth })
			if _, err := c.Do(context.Background(), Request{Path: "/"}); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, ErrCodeAuth, false},
		{http.StatusNotFound, ErrCodeNotFound, false},
		{http.StatusTooManyRequests, ErrCodeRateLimit, true},
		{http.StatusBadRequest, ErrCodeValidation, false},
		{http.StatusBadGateway, ErrCodeServer, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}, nil)
			resp, err := c.Do(context.Background(), Request{Path: "/"})
			var he *Error
			if !errors.As(err, &he) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if he.Code != tt.code || he.Retryable != tt.retryable {
				t.Errorf("code = %s retryable = %v", he.Code, he.Retryable)
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("response should accompany status errors: %+v", resp)
			}
			if !strings.Contains(he.Message, "nope") {
				t.Errorf("message = %q", he.Message)
			}
		})
	}
}

func TestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Do(context.Background(), Request{Path: "/"})
	if !IsConnection(err) || !IsRetryable(err) {
		t.Errorf("err = %v, want retryable connection error", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}, func(cfg *Config) {
		r := DefaultRetryConfig()
		r.InitialBackoff = time.Millisecond
		r.MaxBackoff = time.Millisecond
		cfg.Retry = r
	})

	resp, err := c.Do(context.Background(), Request{Path: "/"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(resp.Body) != "ok" || calls.Load() != 3 {
		t.Errorf("body = %q calls = %d", resp.Body, calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, func(cfg *Config) { cfg.Retry = DefaultRetryConfig() })

	if _, err := c.Do(context.Background(), Request{Path: "/"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *Config) {
		cb := DefaultCircuitBreakerConfig("test")
		cb.MaxFailures = 2
		cfg.CircuitBreaker = cb
	})

	for i := 0; i < 2; i++ {
		_, _ = c.Do(context.Background(), Request{Path: "/"})
	}
	if c.Available() {
		t.Error("client should be unavailable with an open breaker")
	}
	_, err := c.Do(context.Background(), Request{Path: "/"})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestMultipartBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse: %v", err)
			return
		}
		if r.FormValue("language") != "en" {
			t.Errorf("field = %q", r.FormValue("language"))
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "webm-bytes" || hdr.Filename != `clip"1.webm` {
			t.Errorf("file = %q name = %q", data, hdr.Filename)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "audio/webm" {
			t.Errorf("part content type = %q", ct)
		}
	}, nil)

	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &MultipartBody{
			Fields: map[string]string{"language": "en"},
			Files: []FileField{{
				FieldName:   "audio",
				FileName:    `clip"1.webm`,
				ContentType: "audio/webm",
				Data:        []byte("webm-bytes"),
			}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestErrorToAppError(t *testing.T) {
	tests := []struct {
		err  *Error
		want apperrors.ErrorCode
	}{
		{&Error{Code: ErrCodeTimeout}, apperrors.ErrCodeTimeout},
		{&Error{Code: ErrCodeConnection}, apperrors.ErrCodeConnectionFailed},
		{&Error{Code: ErrCodeRateLimit}, apperrors.ErrCodeRateLimited},
		{&Error{Code: ErrCodeServer, StatusCode: 500}, apperrors.ErrCodeExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code.String(), func(t *testing.T) {
			if got := apperrors.From(tt.err); got.Code != tt.want {
				t.Errorf("code = %s, want %s", got.Code, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{BaseURL: "not a url"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid base_url error")
	}
	if ErrorCode(42).String() != "unknown" {
		t.Error("unexpected name for unknown code")
	}
}
