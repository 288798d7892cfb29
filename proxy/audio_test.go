package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/storage/local"
	"github.com/kbukum/mindease/transcription"
)

func newArchiveRouter(t *testing.T, p transcription.Provider) (*gin.Engine, *local.Storage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	NewHandler(p, provider.NewMemoryStore[transcription.Job](), nil, Config{}, logger.Nop(),
		WithAudioArchive(store)).Register(r)
	return r, store
}

func TestTranscribeArchivesAudio(t *testing.T) {
	r, store := newArchiveRouter(t, newFakeProvider())

	if w := serve(r, uploadRequest(t, "audio", []byte("webm-bytes"))); w.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d", w.Code)
	}
	ok, err := store.Exists(context.Background(), AudioKey("job-1", ".webm"))
	if err != nil || !ok {
		t.Fatalf("archived = %v, %v", ok, err)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/transcription/job-1/audio", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "webm-bytes" {
		t.Errorf("body = %q", got)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="job-1.webm"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestAudioNotArchived(t *testing.T) {
	r, _ := newArchiveRouter(t, newFakeProvider())
	w := serve(r, httptest.NewRequest(http.MethodGet, "/transcription/unknown/audio", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAudioRouteNeedsArchive(t *testing.T) {
	r, _ := newRouter(t, newFakeProvider())
	w := serve(r, httptest.NewRequest(http.MethodGet, "/transcription/job-1/audio", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without an archive", w.Code)
	}
}
