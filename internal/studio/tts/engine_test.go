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

func TestPickProviderForcedWithoutCredentialsDowngrades(t *testing.T) {
	cfg := &config.Config{}
	got := pickProvider(context.Background(), cfg, ProviderElevenLabs)
	if got != ProviderESpeak {
		t.Errorf("forced elevenlabs without key should downgrade to espeak, got %s", got)
	}

	got = pickProvider(context.Background(), cfg, ProviderGoogle)
	if got != ProviderESpeak {
		t.Errorf("forced google without credentials should downgrade to espeak, got %s", got)
	}
}

func TestPickProviderPlaceholderKeyIsAbsent(t *testing.T) {
	cfg := &config.Config{ElevenLabsAPIKey: "your-api-key-here"}
	if got := pickProvider(context.Background(), cfg, ""); got != ProviderESpeak {
		t.Errorf("placeholder key should not select elevenlabs, got %s", got)
	}
}

func TestPickProviderPrefersGoogleWhenQuotaCheckFails(t *testing.T) {
	// Unreachable subscription endpoint: quota check must conservatively
	// treat the premium provider as unusable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := &config.Config{
		ElevenLabsAPIKey:      "real-looking-key",
		ElevenLabsBaseURL:     srv.URL,
		GoogleCredentialsFile: "/tmp/creds.json",
		QuotaFloorChars:       1000,
	}
	if got := pickProvider(context.Background(), cfg, ""); got != ProviderGoogle {
		t.Errorf("want google after failed quota check, got %s", got)
	}
}

func TestPickProviderUsesElevenLabsWithQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(subscriptionInfo{CharacterCount: 0, CharacterLimit: 10000})
	}))
	defer srv.Close()

	cfg := &config.Config{
		ElevenLabsAPIKey:  "real-looking-key",
		ElevenLabsBaseURL: srv.URL,
		QuotaFloorChars:   1000,
	}
	if got := pickProvider(context.Background(), cfg, ""); got != ProviderElevenLabs {
		t.Errorf("want elevenlabs with healthy quota, got %s", got)
	}
}

func TestResolveNextSkipsExcludedAndCredentialLess(t *testing.T) {
	cfg := &config.Config{GoogleCredentialsFile: "/tmp/creds.json"}

	ec, err := ResolveNext(context.Background(), cfg, ProviderESpeak, "Kenya", "", voice.DefaultSettings())
	if err != nil {
		t.Fatalf("ResolveNext failed: %v", err)
	}
	if ec.Provider != ProviderGoogle {
		t.Errorf("want google (elevenlabs has no key, espeak excluded), got %s", ec.Provider)
	}
}
