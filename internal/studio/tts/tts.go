// Package tts selects and drives the speech-synthesis providers.
package tts

import (
	"context"
	"errors"

	"promovoice/internal/domain/voice"
)

// Engine is the capability every speech provider adapter implements: turn
// normalized text plus a voice descriptor into a raw audio byte stream.
// Adapters own their request shape and constraints and never retry; a batch
// retry is the scheduler's decision.
type Engine interface {
	Synthesize(ctx context.Context, text string, v voice.Descriptor, s voice.Settings) ([]byte, error)
	Provider() Provider
	Capabilities() Capabilities
}

// Capabilities describes what an engine produces and expects.
type Capabilities struct {
	AudioFormat string // container of the returned bytes: "mp3" or "wav"
	// PronunciationHacks is true when the engine wants acronyms spelled out
	// client-side. ElevenLabs keeps its own pronunciation dictionary and
	// must receive the raw acronym.
	PronunciationHacks bool
	RequiresNetwork    bool
	MaxTextLength      int
}

// Common errors for provider resolution and synthesis.
var (
	ErrNoCredentials   = errors.New("provider credentials missing or placeholder")
	ErrQuotaExhausted  = errors.New("provider quota exhausted")
	ErrProviderRequest = errors.New("provider request failed")
	ErrNoProviderLeft  = errors.New("no fallback provider with credentials left")
)
