package tts

import (
	"sort"
	"strings"

	"promovoice/internal/domain/voice"
)

// countryLocales maps campaign target countries to the locale used for
// voice lookup. Markets outside the table fall through to the language
// prefix match or the generic default voice.
var countryLocales = map[string]string{
	"kenya":          "en-KE",
	"nigeria":        "en-NG",
	"ghana":          "en-GH",
	"south africa":   "en-ZA",
	"tanzania":       "sw-TZ",
	"india":          "en-IN",
	"philippines":    "en-PH",
	"usa":            "en-US",
	"united states":  "en-US",
	"uk":             "en-GB",
	"united kingdom": "en-GB",
	"france":         "fr-FR",
	"senegal":        "fr-SN",
}

// languageCodes maps the orchestration layer's language names to ISO codes.
var languageCodes = map[string]string{
	"english": "en",
	"swahili": "sw",
	"french":  "fr",
	"hindi":   "hi",
	"spanish": "es",
}

// LocaleFor resolves (country, optional language) to a synthesis locale.
// An explicit language overrides the country's default language but keeps
// the country region, so ("Tanzania", "English") resolves to en-TZ.
func LocaleFor(country, language string) string {
	locale, ok := countryLocales[strings.ToLower(strings.TrimSpace(country))]
	if !ok {
		locale = "en-US"
	}
	if language == "" {
		return locale
	}
	code, ok := languageCodes[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return locale
	}
	parts := strings.SplitN(locale, "-", 2)
	if len(parts) == 2 {
		return code + "-" + parts[1]
	}
	return code
}

// Curated ElevenLabs premade voices; ids are stable across accounts.
var elevenLabsVoices = map[string][3]voice.Descriptor{
	"en-KE": {
		{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah", Label: "Warm Female"},
		{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George", Label: "Authoritative Male"},
		{ID: "XB0fDUnXU5powFXDhCwa", Name: "Charlotte", Label: "Engaging Female"},
	},
	"en-NG": {
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Label: "Confident Female"},
		{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Label: "Deep Male"},
		{ID: "9BWtsMINqrJLrRacOk9x", Name: "Aria", Label: "Expressive Female"},
	},
	"en-GB": {
		{ID: "pFZP5JQG7iQjIQuC4Bku", Name: "Lily", Label: "Refined Female"},
		{ID: "onwK4e9ZLuTAKqWW03F9", Name: "Daniel", Label: "Trustworthy Male"},
		{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George", Label: "Authoritative Male"},
	},
	"en-US": {
		{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah", Label: "Warm Female"},
		{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Label: "Deep Male"},
		{ID: "jsCqWAovK2LkecY7zXl4", Name: "Freya", Label: "Lively Female"},
	},
	"fr-FR": {
		{ID: "XB0fDUnXU5powFXDhCwa", Name: "Charlotte", Label: "Engaging Female"},
		{ID: "onwK4e9ZLuTAKqWW03F9", Name: "Daniel", Label: "Trustworthy Male"},
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Label: "Confident Female"},
	},
}

var elevenLabsDefault = voice.Descriptor{
	ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Label: "Default Voice",
}

// Google Cloud TTS voice names per locale.
var googleVoices = map[string][3]voice.Descriptor{
	"en-KE": {
		{ID: "en-GB-Neural2-A", Name: "Neural2 A", Label: "Warm Female"},
		{ID: "en-GB-Neural2-B", Name: "Neural2 B", Label: "Calm Male"},
		{ID: "en-GB-Neural2-C", Name: "Neural2 C", Label: "Bright Female"},
	},
	"en-IN": {
		{ID: "en-IN-Neural2-A", Name: "Neural2 A", Label: "Warm Female"},
		{ID: "en-IN-Neural2-B", Name: "Neural2 B", Label: "Calm Male"},
		{ID: "en-IN-Neural2-D", Name: "Neural2 D", Label: "Bright Female"},
	},
	"en-US": {
		{ID: "en-US-Neural2-F", Name: "Neural2 F", Label: "Warm Female"},
		{ID: "en-US-Neural2-D", Name: "Neural2 D", Label: "Calm Male"},
		{ID: "en-US-Neural2-C", Name: "Neural2 C", Label: "Bright Female"},
	},
	"en-GB": {
		{ID: "en-GB-Neural2-A", Name: "Neural2 A", Label: "Warm Female"},
		{ID: "en-GB-Neural2-B", Name: "Neural2 B", Label: "Calm Male"},
		{ID: "en-GB-Neural2-F", Name: "Neural2 F", Label: "Bright Female"},
	},
	"fr-FR": {
		{ID: "fr-FR-Neural2-A", Name: "Neural2 A", Label: "Warm Female"},
		{ID: "fr-FR-Neural2-B", Name: "Neural2 B", Label: "Calm Male"},
		{ID: "fr-FR-Neural2-C", Name: "Neural2 C", Label: "Bright Female"},
	},
}

var googleDefault = voice.Descriptor{
	ID: "en-US-Neural2-C", Name: "Neural2 C", Label: "Default Voice",
}

// eSpeak voice variants: base language voice plus formant variants so the
// three pool entries sound distinct.
var espeakVoices = map[string][3]voice.Descriptor{
	"en-KE": {
		{ID: "en-us+f3", Name: "f3", Label: "Female Variant 3"},
		{ID: "en-us+m2", Name: "m2", Label: "Male Variant 2"},
		{ID: "en-us+f1", Name: "f1", Label: "Female Variant 1"},
	},
	"en-US": {
		{ID: "en-us+f3", Name: "f3", Label: "Female Variant 3"},
		{ID: "en-us+m2", Name: "m2", Label: "Male Variant 2"},
		{ID: "en-us+f1", Name: "f1", Label: "Female Variant 1"},
	},
	"en-GB": {
		{ID: "en+f3", Name: "f3", Label: "Female Variant 3"},
		{ID: "en+m2", Name: "m2", Label: "Male Variant 2"},
		{ID: "en+f1", Name: "f1", Label: "Female Variant 1"},
	},
	"sw-TZ": {
		{ID: "sw+f3", Name: "f3", Label: "Female Variant 3"},
		{ID: "sw+m2", Name: "m2", Label: "Male Variant 2"},
		{ID: "sw+f1", Name: "f1", Label: "Female Variant 1"},
	},
	"fr-FR": {
		{ID: "fr+f3", Name: "f3", Label: "Female Variant 3"},
		{ID: "fr+m2", Name: "m2", Label: "Male Variant 2"},
		{ID: "fr+f1", Name: "f1", Label: "Female Variant 1"},
	},
}

var espeakDefault = voice.Descriptor{
	ID: "en", Name: "en", Label: "Default Voice",
}

func voiceTable(p Provider) (map[string][3]voice.Descriptor, voice.Descriptor) {
	switch p {
	case ProviderElevenLabs:
		return elevenLabsVoices, elevenLabsDefault
	case ProviderGoogle:
		return googleVoices, googleDefault
	default:
		return espeakVoices, espeakDefault
	}
}

// PoolFor builds the 3-voice pool for a provider and market. Lookup order:
// exact locale, then any locale sharing the language prefix, then the
// provider's generic default repeated with generic labels. The pool always
// has exactly three entries.
func PoolFor(p Provider, country, language string) voice.Pool {
	locale := LocaleFor(country, language)
	table, fallback := voiceTable(p)

	entry, ok := table[locale]
	if !ok {
		prefix := strings.SplitN(locale, "-", 2)[0] + "-"
		keys := make([]string, 0, len(table))
		for key := range table {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if strings.HasPrefix(key, prefix) {
				entry, ok = table[key], true
				break
			}
		}
	}
	if !ok {
		fallback.Locale = locale
		return voice.PoolOf(
			withLabel(fallback, "Voice 1"),
			withLabel(fallback, "Voice 2"),
			withLabel(fallback, "Voice 3"),
		)
	}

	for i := range entry {
		entry[i].Locale = locale
	}
	return voice.PoolOf(entry[0], entry[1], entry[2])
}

func withLabel(d voice.Descriptor, label string) voice.Descriptor {
	d.Label = label
	return d
}
