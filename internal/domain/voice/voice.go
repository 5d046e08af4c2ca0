package voice

// Descriptor identifies one provider-specific voice.
type Descriptor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
	Label  string `json:"label"`
}

// PoolSize is the number of voices offered per locale/provider combination.
// Downstream callers rely on exactly three candidates for the user-facing
// voice choice, so pools are padded rather than shortened.
const PoolSize = 3

// Pool is the fixed set of candidate voices for one production run.
type Pool [PoolSize]Descriptor

// Labels returns the user-facing labels in pool order.
func (p Pool) Labels() []string {
	labels := make([]string, 0, PoolSize)
	for _, d := range p {
		labels = append(labels, d.Label)
	}
	return labels
}

// PoolOf builds a pool from up to three descriptors, repeating the first
// entry when fewer distinct voices exist.
func PoolOf(voices ...Descriptor) Pool {
	var p Pool
	if len(voices) == 0 {
		return p
	}
	for i := 0; i < PoolSize; i++ {
		if i < len(voices) {
			p[i] = voices[i]
		} else {
			p[i] = voices[0]
		}
	}
	return p
}

// Settings are the tunable synthesis parameters supplied by the caller's
// voice selection. Providers interpret (or ignore) them individually.
type Settings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	Speed           float64 `json:"speed"`
}

// DefaultSettings mirrors the tuning the voice-selection layer sends when
// the caller provides nothing.
func DefaultSettings() Settings {
	return Settings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.4,
		Speed:           1.0,
	}
}

// Selection is the caller-supplied voice/style object: an advisory selected
// voice plus the settings applied to every synthesis call.
type Selection struct {
	VoiceID  string   `json:"voice_id"`
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}
