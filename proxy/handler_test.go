package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/mindease/companion"
	apperrors "github.com/kbukum/mindease/errors"
	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/transcription"
	"github.com/kbukum/mindease/transcription/relay"
)

type fakeProvider struct {
	mu        sync.Mutex
	createErr error
	getErr    error
	jobs      map[string]*transcription.Job
	created   []transcription.AudioRequest
	gets      int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{jobs: make(map[string]*transcription.Job)}
}

func (f *fakeProvider) Name() string                     { return "fake" }
func (f *fakeProvider) IsAvailable(context.Context) bool { return true }

func (f *fakeProvider) CreateJob(_ context.Context, req transcription.AudioRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, req)
	id := "job-1"
	f.jobs[id] = &transcription.Job{ID: id, Status: transcription.StatusProcessing}
	return id, nil
}

func (f *fakeProvider) GetJob(_ context.Context, id string) (*transcription.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job", id)
	}
	cp := *job
	return &cp, nil
}

func (f *fakeProvider) set(job transcription.Job) {
	f.mu.Lock()
	f.jobs[job.ID] = &job
	f.mu.Unlock()
}

func newRouter(t *testing.T, p transcription.Provider) (*gin.Engine, *provider.MemoryStore[transcription.Job]) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cache := provider.NewMemoryStore[transcription.Job]()
	comp := companion.New(provider.NewMemoryStore[companion.History](), companion.Config{}, companion.WithLogger(logger.Nop()))
	r := gin.New()
	NewHandler(p, cache, comp, Config{Language: "en"}, logger.Nop()).Register(r)
	return r, cache
}

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "recording.webm")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTranscribeAccepted(t *testing.T) {
	p := newFakeProvider()
	r, cache := newRouter(t, p)

	w := serve(r, uploadRequest(t, "audio", []byte("webm-bytes")))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp relay.TranscribeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.TranscriptID != "job-1" {
		t.Fatalf("resp = %+v, %v", resp, err)
	}
	if len(p.created) != 1 || string(p.created[0].Audio) != "webm-bytes" || p.created[0].Language != "en" {
		t.Errorf("created = %+v", p.created)
	}
	if p.created[0].FileName != "recording.webm" {
		t.Errorf("file name = %q", p.created[0].FileName)
	}
	if job, _ := cache.Load(context.Background(), TranscriptKey("job-1")); job == nil || job.Status != transcription.StatusQueued {
		t.Errorf("cached = %+v", job)
	}
}

func TestTranscribeBadRequests(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"missing file", func(t *testing.T) *http.Request { return uploadRequest(t, "other", []byte("x")) }},
		{"empty file", func(t *testing.T) *http.Request { return uploadRequest(t, "audio", nil) }},
		{"not multipart", func(*testing.T) *http.Request {
			return httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader("{}"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			r, _ := newRouter(t, p)
			w := serve(r, tt.req(t))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d", w.Code)
			}
			if len(p.created) != 0 {
				t.Error("provider must not be called")
			}
		})
	}
}

func TestTranscribeProviderFailure(t *testing.T) {
	p := newFakeProvider()
	p.createErr = errors.New("upstream 500")
	r, _ := newRouter(t, p)

	w := serve(r, uploadRequest(t, "audio", []byte("x")))
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(apperrors.ErrCodeExternalService)) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTranscriptionStatus(t *testing.T) {
	p := newFakeProvider()
	p.set(transcription.Job{ID: "job-1", Status: transcription.StatusProcessing})
	r, cache := newRouter(t, p)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/transcription/job-1", nil))
	var resp relay.StatusResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Status != "processing" || resp.Text != "" {
		t.Fatalf("resp = %d %+v", w.Code, resp)
	}

	p.set(transcription.Job{ID: "job-1", Status: transcription.StatusCompleted, Text: "I slept well."})
	w = serve(r, httptest.NewRequest(http.MethodGet, "/transcription/job-1", nil))
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "completed" || resp.Text != "I slept well." {
		t.Fatalf("resp = %+v", resp)
	}
	if job, _ := cache.Load(context.Background(), TranscriptKey("job-1")); job == nil || job.Text != "I slept well." {
		t.Errorf("cached = %+v", job)
	}

	gets := p.gets
	p.getErr = errors.New("provider down")
	w = serve(r, httptest.NewRequest(http.MethodGet, "/transcription/job-1", nil))
	if w.Code != http.StatusOK || p.gets != gets {
		t.Errorf("terminal status should be served from cache: %d gets=%d", w.Code, p.gets)
	}
}

func TestTranscriptionErrors(t *testing.T) {
	p := newFakeProvider()
	r, _ := newRouter(t, p)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/transcription/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", w.Code)
	}

	p.getErr = errors.New("connection refused")
	w = serve(r, httptest.NewRequest(http.MethodGet, "/transcription/job-9", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("provider failure status = %d", w.Code)
	}
}

func TestCompanionEndpoints(t *testing.T) {
	r, _ := newRouter(t, newFakeProvider())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/companion/u1/messages", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "quickPrompts") {
		t.Fatalf("history = %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/companion/u1/messages", strings.NewReader(`{"text":"I feel so anxious today"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("send = %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Data companion.Reply `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Data.Intent != companion.IntentAnxiety {
		t.Errorf("intent = %q", created.Data.Intent)
	}

	var history struct {
		Data struct {
			Messages []companion.Message `json:"messages"`
		} `json:"data"`
	}
	w = serve(r, httptest.NewRequest(http.MethodGet, "/companion/u1/messages", nil))
	_ = json.Unmarshal(w.Body.Bytes(), &history)
	if n := len(history.Data.Messages); n < 2 {
		t.Errorf("history length = %d", n)
	}

	w = serve(r, httptest.NewRequest(http.MethodDelete, "/companion/u1/messages", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("clear = %d", w.Code)
	}
}

func TestCompanionSendValidation(t *testing.T) {
	r, _ := newRouter(t, newFakeProvider())
	for _, body := range []string{`{}`, `{"text":"   "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/companion/u1/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if w := serve(r, req); w.Code != http.StatusBadRequest {
			t.Errorf("body %q status = %d", body, w.Code)
		}
	}
}
