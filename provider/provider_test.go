package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubProvider struct{ name string }

func (s *stubProvider) Name() string                     { return s.name }
func (s *stubProvider) IsAvailable(context.Context) bool { return true }

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*stubProvider]()
	reg.RegisterFactory("b", func(map[string]any) (*stubProvider, error) { return &stubProvider{name: "b"}, nil })
	reg.RegisterFactory("a", func(settings map[string]any) (*stubProvider, error) {
		if settings["fail"] == true {
			return nil, errors.New("bad settings")
		}
		return &stubProvider{name: "a"}, nil
	})

	p, err := reg.Create("a", nil)
	if err != nil || p.Name() != "a" {
		t.Fatalf("Create = %v, %v", p, err)
	}
	if _, err := reg.Create("a", map[string]any{"fail": true}); err == nil {
		t.Error("factory error should propagate")
	}
	_, err = reg.Create("missing", nil)
	if err == nil || !strings.Contains(err.Error(), "[a b]") {
		t.Errorf("err = %v, want list of registered names", err)
	}
	if !reg.Has("b") || reg.Has("c") {
		t.Error("Has mismatch")
	}
}

func TestDecodeSettings(t *testing.T) {
	type settings struct {
		BaseURL  string        `mapstructure:"base_url"`
		Timeout  time.Duration `mapstructure:"timeout"`
		MaxPolls int           `mapstructure:"max_polls"`
	}
	got, err := DecodeSettings[settings](map[string]any{
		"base_url":  "http://localhost:8000",
		"timeout":   "45s",
		"max_polls": "12",
	})
	if err != nil {
		t.Fatalf("DecodeSettings: %v", err)
	}
	if got.BaseURL != "http://localhost:8000" || got.Timeout != 45*time.Second || got.MaxPolls != 12 {
		t.Errorf("got %+v", got)
	}

	if _, err := DecodeSettings[settings](map[string]any{"timeout": "soon"}); err == nil {
		t.Error("expected error for bad duration")
	}
}

type chat struct {
	Messages []string `json:"messages"`
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[chat]()

	got, err := s.Load(ctx, "ai_chat:u1")
	if err != nil || got != nil {
		t.Fatalf("missing key: %v, %v", got, err)
	}

	in := &chat{Messages: []string{"hi"}}
	if err := s.Save(ctx, "ai_chat:u1", in, 0); err != nil {
		t.Fatal(err)
	}
	in.Messages[0] = "mutated"

	got, err = s.Load(ctx, "ai_chat:u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Messages[0] != "hi" {
		t.Errorf("stored value aliased caller's slice: %v", got.Messages)
	}

	if err := s.Delete(ctx, "ai_chat:u1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Load(ctx, "ai_chat:u1"); got != nil {
		t.Error("expected nil after delete")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	s := NewMemoryStore[chat]()
	s.now = func() time.Time { return now }

	_ = s.Save(ctx, "k", &chat{}, time.Minute)
	if got, _ := s.Load(ctx, "k"); got == nil {
		t.Fatal("value should be live before TTL")
	}
	now = now.Add(time.Minute)
	if got, _ := s.Load(ctx, "k"); got != nil {
		t.Error("value should expire at TTL")
	}
	if s.Len() != 0 {
		t.Errorf("expired entry not evicted, len = %d", s.Len())
	}
}
