package tts

import (
	"context"
	"fmt"
	"sync"

	"promovoice/internal/domain/voice"
)

// MockEngine is a deterministic in-memory engine for tests. It can be told
// to fail every request or only requests for specific voice ids.
type MockEngine struct {
	mu        sync.Mutex
	provider  Provider
	failAll   bool
	failErr   error
	failVoice map[string]error
	calls     int
}

func NewMockEngine() *MockEngine {
	return &MockEngine{provider: ProviderESpeak, failVoice: make(map[string]error)}
}

// NewMockEngineAs builds a mock that reports itself as provider p, so tests
// can check which provider a batch was attributed to.
func NewMockEngineAs(p Provider) *MockEngine {
	m := NewMockEngine()
	m.provider = p
	return m
}

// SetFailure makes every synthesis call return err (nil clears it).
func (m *MockEngine) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = err != nil
	m.failErr = err
}

// FailVoice makes synthesis fail only for the given voice id.
func (m *MockEngine) FailVoice(voiceID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failVoice[voiceID] = err
}

// Calls returns how many synthesis requests the mock has served.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockEngine) Provider() Provider {
	return m.provider
}

func (m *MockEngine) Capabilities() Capabilities {
	return Capabilities{
		AudioFormat:        "wav",
		PronunciationHacks: true,
		RequiresNetwork:    false,
	}
}

func (m *MockEngine) Synthesize(_ context.Context, text string, v voice.Descriptor, _ voice.Settings) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.failAll {
		return nil, m.failErr
	}
	if err, ok := m.failVoice[v.ID]; ok {
		return nil, err
	}

	// Deterministic pseudo-audio proportional to the text length.
	out := []byte(fmt.Sprintf("AUDIO:%s:%s", v.ID, text))
	return out, nil
}
