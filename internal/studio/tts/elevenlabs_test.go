package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"promovoice/internal/config"
	"promovoice/internal/domain/voice"
)

func TestSnapStability(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.0, 0.0},
		{0.2, 0.0},
		{0.3, 0.5},
		{0.5, 0.5},
		{0.7, 0.5},
		{0.8, 1.0},
		{1.0, 1.0},
	}
	for _, tt := range tests {
		if got := snapStability(tt.in); got != tt.want {
			t.Errorf("snapStability(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func elevenLabsTestConfig(baseURL string) *config.Config {
	return &config.Config{
		ElevenLabsAPIKey:       "test-key",
		ElevenLabsBaseURL:      baseURL,
		ElevenLabsModel:        "eleven_multilingual_v2",
		ElevenLabsOutputFormat: "mp3_44100_128",
		QuotaFloorChars:        1000,
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	var gotPath, gotKey string
	var gotBody elevenLabsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	engine := NewElevenLabsEngine(elevenLabsTestConfig(srv.URL))
	audio, err := engine.Synthesize(context.Background(), "Hello there",
		voice.Descriptor{ID: "voice123"},
		voice.Settings{Stability: 0.35, SimilarityBoost: 0.8, Speed: 1.0},
	)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("unexpected audio payload: %q", audio)
	}
	if gotPath != "/v1/text-to-speech/voice123" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotBody.ModelID != "eleven_multilingual_v2" {
		t.Errorf("model = %q", gotBody.ModelID)
	}
	// 0.35 is not an allowed stability on free plans; it must be snapped.
	if gotBody.VoiceSettings.Stability != 0.5 {
		t.Errorf("stability = %v, want 0.5", gotBody.VoiceSettings.Stability)
	}
}

func TestElevenLabsSynthesizeNon2xxIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota_exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	engine := NewElevenLabsEngine(elevenLabsTestConfig(srv.URL))
	_, err := engine.Synthesize(context.Background(), "x",
		voice.Descriptor{ID: "v"}, voice.DefaultSettings())
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestElevenLabsRemainingQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/user/subscription" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(subscriptionInfo{CharacterCount: 4000, CharacterLimit: 10000})
	}))
	defer srv.Close()

	engine := NewElevenLabsEngine(elevenLabsTestConfig(srv.URL))
	remaining, err := engine.RemainingQuota(context.Background())
	if err != nil {
		t.Fatalf("RemainingQuota failed: %v", err)
	}
	if remaining != 6000 {
		t.Errorf("remaining = %d, want 6000", remaining)
	}
}
