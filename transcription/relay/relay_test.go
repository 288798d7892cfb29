package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/mindease/transcription"
)

func TestRelayRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcribe", func(w http.ResponseWriter, r *http.Request) {
		file, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		if string(data) != "webm-bytes" || hdr.Filename != "a.webm" {
			t.Errorf("file %q data %q", hdr.Filename, data)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(TranscribeResponse{TranscriptID: "J1"})
	})
	mux.HandleFunc("GET /transcription/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "J1" {
			t.Errorf("id = %q", r.PathValue("id"))
		}
		_ = json.NewEncoder(w).Encode(StatusResponse{Status: "processing"})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewProvider(Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if !p.IsAvailable(ctx) {
		t.Error("expected relay to be available")
	}
	id, err := p.CreateJob(ctx, transcription.AudioRequest{Audio: []byte("webm-bytes"), FileName: "a.webm", ContentType: "audio/webm"})
	if err != nil || id != "J1" {
		t.Fatalf("CreateJob = %q, %v", id, err)
	}
	job, err := p.GetJob(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status.Phase() != transcription.PhaseInProgress || job.ID != "J1" {
		t.Errorf("job = %+v", job)
	}
}

func TestRelayBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"code":"EXTERNAL_SERVICE_ERROR"}}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.CreateJob(context.Background(), transcription.AudioRequest{Audio: []byte("x")}); err == nil {
		t.Fatal("expected error on 502")
	}
}
