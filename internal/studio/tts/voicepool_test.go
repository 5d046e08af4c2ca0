package tts

import "testing"

func TestLocaleFor(t *testing.T) {
	tests := []struct {
		country  string
		language string
		want     string
	}{
		{"Kenya", "", "en-KE"},
		{"kenya", "Swahili", "sw-KE"},
		{"Tanzania", "", "sw-TZ"},
		{"Tanzania", "English", "en-TZ"},
		{"France", "", "fr-FR"},
		{"Atlantis", "", "en-US"},
		{"Atlantis", "French", "fr-US"},
	}
	for _, tt := range tests {
		if got := LocaleFor(tt.country, tt.language); got != tt.want {
			t.Errorf("LocaleFor(%q, %q) = %q, want %q", tt.country, tt.language, got, tt.want)
		}
	}
}

// Every (provider, country, language) combination must yield exactly three
// voices, padding or defaulting as needed.
func TestPoolAlwaysHasThreeVoices(t *testing.T) {
	providers := []Provider{ProviderElevenLabs, ProviderGoogle, ProviderESpeak}
	markets := []struct{ country, language string }{
		{"Kenya", ""},
		{"Nigeria", ""},
		{"Tanzania", "Swahili"},
		{"India", ""},
		{"France", "French"},
		{"Atlantis", ""},
		{"", ""},
		{"Mordor", "Elvish"},
	}

	for _, p := range providers {
		for _, m := range markets {
			pool := PoolFor(p, m.country, m.language)
			for i, d := range pool {
				if d.ID == "" {
					t.Errorf("PoolFor(%s, %q, %q): entry %d has empty voice id", p, m.country, m.language, i)
				}
				if d.Label == "" {
					t.Errorf("PoolFor(%s, %q, %q): entry %d has empty label", p, m.country, m.language, i)
				}
			}
			if len(pool.Labels()) != 3 {
				t.Errorf("PoolFor(%s, %q, %q): %d labels, want 3", p, m.country, m.language, len(pool.Labels()))
			}
		}
	}
}

func TestPoolLanguagePrefixFallback(t *testing.T) {
	// fr-SN has no exact ElevenLabs table entry; it should pick up the
	// fr-FR voices instead of the generic default.
	pool := PoolFor(ProviderElevenLabs, "Senegal", "")
	if pool[0].Name != "Charlotte" {
		t.Errorf("expected fr prefix match to reuse fr-FR voices, got %q", pool[0].Name)
	}
	if pool[0].Locale != "fr-SN" {
		t.Errorf("pool locale = %q, want fr-SN", pool[0].Locale)
	}
}

func TestPoolGenericDefaultRepeats(t *testing.T) {
	// sw-TZ exists only in the espeak table; premium providers fall back to
	// their generic default voice repeated three times.
	pool := PoolFor(ProviderGoogle, "Tanzania", "")
	if pool[0].ID != pool[1].ID || pool[1].ID != pool[2].ID {
		t.Errorf("expected repeated default voice, got %v", pool)
	}
	if pool[0].Label == pool[1].Label {
		t.Errorf("generic entries should carry distinct labels, got %q twice", pool[0].Label)
	}
}
