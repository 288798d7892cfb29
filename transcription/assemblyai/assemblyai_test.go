package assemblyai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/mindease/httpclient"
	"github.com/kbukum/mindease/transcription"
)

func newTestProvider(t *testing.T, h http.Handler) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := NewProvider(Config{APIKey: "secret", BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateJobUploadsThenCreatesTranscript(t *testing.T) {
	var creates atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") != "secret" {
			t.Errorf("authorization = %q", r.Header.Get("authorization"))
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "RIFF" {
			t.Errorf("body = %q", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/abc"})
	})
	mux.HandleFunc("POST /transcript", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		var req transcriptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if req.AudioURL != "https://cdn.example/abc" || req.LanguageCode != "en" {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "J1", "status": "queued"})
	})
	p := newTestProvider(t, mux)

	id, err := p.CreateJob(context.Background(), transcription.AudioRequest{Audio: []byte("RIFF"), Language: "en"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "J1" {
		t.Errorf("id = %q", id)
	}
	if creates.Load() != 1 {
		t.Errorf("transcript creates = %d", creates.Load())
	}
}

func TestCreateJobDoesNotRetryTranscriptCreation(t *testing.T) {
	var creates atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"upload_url": "u"})
	})
	mux.HandleFunc("POST /transcript", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	p := newTestProvider(t, mux)

	_, err := p.CreateJob(context.Background(), transcription.AudioRequest{Audio: []byte("x")})
	if !httpclient.IsServerError(err) {
		t.Fatalf("err = %v, want server error", err)
	}
	if creates.Load() != 1 {
		t.Errorf("transcript creates = %d, want 1", creates.Load())
	}
}

func TestCreateJobRejectsEmptyAudio(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	if _, err := p.CreateJob(context.Background(), transcription.AudioRequest{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetJob(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcript/J1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "J1", "status": "completed", "text": "hello world"})
	}))
	job, err := p.GetJob(context.Background(), "J1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != transcription.StatusCompleted || job.Text != "hello world" {
		t.Errorf("job = %+v", job)
	}
}

func TestFactoryDecodesSettings(t *testing.T) {
	p, err := Factory()(map[string]any{"api_key": "k", "timeout": "5s", "language_code": "de"})
	if err != nil {
		t.Fatal(err)
	}
	ap := p.(*Provider)
	if ap.cfg.Timeout != 5*time.Second || ap.cfg.LanguageCode != "de" || ap.cfg.BaseURL != defaultBaseURL {
		t.Errorf("cfg = %+v", ap.cfg)
	}
	if _, err := Factory()(map[string]any{}); err == nil {
		t.Error("missing api_key should fail")
	}
}
