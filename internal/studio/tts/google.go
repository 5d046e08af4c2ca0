package tts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"promovoice/internal/config"
	"promovoice/internal/domain/voice"
)

// GoogleEngine synthesizes speech through Google Cloud Text-to-Speech.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS; the client is
// created lazily so resolution can construct the engine without a network
// round trip.
type GoogleEngine struct {
	mu     sync.Mutex
	client *texttospeech.Client
}

func NewGoogleEngine(cfg *config.Config) (*GoogleEngine, error) {
	if !cfg.HasGoogleCredentials() {
		return nil, ErrNoCredentials
	}
	return &GoogleEngine{}, nil
}

func (g *GoogleEngine) Provider() Provider {
	return ProviderGoogle
}

func (g *GoogleEngine) Capabilities() Capabilities {
	return Capabilities{
		AudioFormat:        "mp3",
		PronunciationHacks: true,
		RequiresNetwork:    true,
		MaxTextLength:      4800, // a little under the 5000-byte API limit
	}
}

func (g *GoogleEngine) getClient(ctx context.Context) (*texttospeech.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *GoogleEngine) Synthesize(ctx context.Context, text string, v voice.Descriptor, s voice.Settings) ([]byte, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	// Chirp voices often don't support speakingRate -- skip it for them.
	if !strings.Contains(strings.ToLower(v.ID), "chirp") && s.Speed > 0 {
		audioCfg.SpeakingRate = s.Speed
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: googleLanguageCode(v),
			Name:         v.ID,
		},
		AudioConfig: audioCfg,
	}

	resp, err := client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequest, err)
	}
	return resp.AudioContent, nil
}

// googleLanguageCode extracts the language code a voice name belongs to,
// e.g. "en-GB-Neural2-A" -> "en-GB". Google rejects requests whose language
// code disagrees with the voice name, so the pool locale is only a fallback.
func googleLanguageCode(v voice.Descriptor) string {
	parts := strings.Split(v.ID, "-")
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return v.Locale
}

// Close releases the underlying gRPC client, if one was created.
func (g *GoogleEngine) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
