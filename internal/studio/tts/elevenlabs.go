package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"promovoice/internal/config"
	"promovoice/internal/domain/voice"
)

// ElevenLabsEngine synthesizes speech through the ElevenLabs REST API.
type ElevenLabsEngine struct {
	apiKey       string
	baseURL      string
	model        string
	outputFormat string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

func NewElevenLabsEngine(cfg *config.Config) *ElevenLabsEngine {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ElevenLabsEngine{
		apiKey:       cfg.ElevenLabsAPIKey,
		baseURL:      cfg.ElevenLabsBaseURL,
		model:        cfg.ElevenLabsModel,
		outputFormat: cfg.ElevenLabsOutputFormat,
		httpClient:   &http.Client{Timeout: timeout},
		// Stay under the concurrent-request limits of entry-level plans.
		limiter: rate.NewLimiter(rate.Limit(4), 2),
	}
}

func (e *ElevenLabsEngine) Provider() Provider {
	return ProviderElevenLabs
}

func (e *ElevenLabsEngine) Capabilities() Capabilities {
	return Capabilities{
		AudioFormat: "mp3",
		// ElevenLabs keeps a pronunciation dictionary server-side; sending
		// spelled-out acronyms makes it read the spaces literally.
		PronunciationHacks: false,
		RequiresNetwork:    true,
		MaxTextLength:      5000,
	}
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

func (e *ElevenLabsEngine) Synthesize(ctx context.Context, text string, v voice.Descriptor, s voice.Settings) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	snapped := snapStability(s.Stability)
	if snapped != s.Stability {
		logrus.WithFields(logrus.Fields{
			"requested": s.Stability,
			"snapped":   snapped,
		}).Debug("elevenlabs stability snapped to allowed value")
	}

	payload := elevenLabsRequest{
		Text:    text,
		ModelID: e.model,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       snapped,
			SimilarityBoost: s.SimilarityBoost,
			Style:           s.Style,
			Speed:           s.Speed,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding tts request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		e.baseURL, url.PathEscape(v.ID), url.QueryEscape(e.outputFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("%w: elevenlabs status %d: %s", ErrProviderRequest, resp.StatusCode, detail)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio stream: %w", err)
	}
	return audio, nil
}

// snapStability clamps a requested stability to the discrete set the model
// accepts on free plans: 0.0, 0.5 or 1.0, whichever is nearest.
func snapStability(v float64) float64 {
	allowed := []float64{0.0, 0.5, 1.0}
	best := allowed[0]
	for _, a := range allowed[1:] {
		if math.Abs(v-a) < math.Abs(v-best) {
			best = a
		}
	}
	return best
}

type subscriptionInfo struct {
	CharacterCount int `json:"character_count"`
	CharacterLimit int `json:"character_limit"`
}

// RemainingQuota queries the account subscription endpoint and returns the
// characters left this billing cycle.
func (e *ElevenLabsEngine) RemainingQuota(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/user/subscription", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: subscription status %d", ErrProviderRequest, resp.StatusCode)
	}

	var sub subscriptionInfo
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return 0, fmt.Errorf("decoding subscription: %w", err)
	}
	return sub.CharacterLimit - sub.CharacterCount, nil
}
