package tts

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"promovoice/internal/config"
	"promovoice/internal/domain/voice"
)

type Provider string

const (
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderGoogle     Provider = "google"
	ProviderESpeak     Provider = "espeak"
	ProviderAuto       Provider = "auto"
)

func (p Provider) String() string {
	return string(p)
}

// fallbackOrder is the fixed priority list used both for auto-selection and
// for whole-batch fallback. There is no health memory across batches; a
// fully failed batch simply moves to the next entry with credentials.
var fallbackOrder = []Provider{ProviderElevenLabs, ProviderGoogle, ProviderESpeak}

// Context is the resolved state for one production phase: the active
// provider, its engine, the 3-voice pool and the caller's voice settings.
// It is read-only after construction and shared by all jobs in a batch.
type Context struct {
	Provider Provider
	Engine   Engine
	Pool     voice.Pool
	Settings voice.Settings
}

// Resolve chooses the provider for a production run and builds its voice
// pool. A forced provider without usable credentials downgrades silently to
// the no-credential fallback; Resolve never fails because of credentials.
func Resolve(ctx context.Context, cfg *config.Config, override Provider, country, language string, settings voice.Settings) (*Context, error) {
	chosen := pickProvider(ctx, cfg, override)
	return newContext(cfg, chosen, country, language, settings)
}

// ResolveNext re-resolves against the next provider in the fallback order,
// excluding the one that just failed and any provider without credentials.
// Used by the scheduler's whole-batch retry.
func ResolveNext(ctx context.Context, cfg *config.Config, exclude Provider, country, language string, settings voice.Settings) (*Context, error) {
	for _, p := range fallbackOrder {
		if p == exclude {
			continue
		}
		if !hasCredentials(cfg, p) {
			continue
		}
		// Premium quota is not re-checked here: the batch just failed and
		// the point is to try a different provider, not a healthier one.
		return newContext(cfg, p, country, language, settings)
	}
	return nil, ErrNoProviderLeft
}

func newContext(cfg *config.Config, p Provider, country, language string, settings voice.Settings) (*Context, error) {
	engine, err := newEngine(cfg, p)
	if err != nil {
		return nil, fmt.Errorf("creating %s engine: %w", p, err)
	}
	return &Context{
		Provider: p,
		Engine:   engine,
		Pool:     PoolFor(p, country, language),
		Settings: settings,
	}, nil
}

func pickProvider(ctx context.Context, cfg *config.Config, override Provider) Provider {
	if override != "" && override != ProviderAuto {
		if hasCredentials(cfg, override) {
			return override
		}
		logrus.WithField("provider", override).
			Warn("forced provider has no usable credentials, downgrading to espeak")
		return ProviderESpeak
	}

	if cfg.HasElevenLabsKey() {
		if quotaUsable(ctx, cfg) {
			return ProviderElevenLabs
		}
		logrus.Warn("elevenlabs quota unusable, trying next provider")
	}
	if cfg.HasGoogleCredentials() {
		return ProviderGoogle
	}
	return ProviderESpeak
}

// quotaUsable asks the ElevenLabs account endpoint for remaining quota.
// Any failure to check is treated as insufficient.
func quotaUsable(ctx context.Context, cfg *config.Config) bool {
	remaining, err := NewElevenLabsEngine(cfg).RemainingQuota(ctx)
	if err != nil {
		logrus.WithError(err).Warn("elevenlabs quota check failed, treating as insufficient")
		return false
	}
	return remaining >= cfg.QuotaFloorChars
}

func hasCredentials(cfg *config.Config, p Provider) bool {
	switch p {
	case ProviderElevenLabs:
		return cfg.HasElevenLabsKey()
	case ProviderGoogle:
		return cfg.HasGoogleCredentials()
	case ProviderESpeak:
		return true
	default:
		return false
	}
}

func newEngine(cfg *config.Config, p Provider) (Engine, error) {
	switch p {
	case ProviderElevenLabs:
		return NewElevenLabsEngine(cfg), nil
	case ProviderGoogle:
		return NewGoogleEngine(cfg)
	case ProviderESpeak:
		return NewESpeakEngine()
	default:
		return nil, fmt.Errorf("unsupported speech provider: %s", p)
	}
}
