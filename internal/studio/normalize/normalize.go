// Package normalize prepares promotional script text for speech engines.
package normalize

import (
	"regexp"
	"strings"
)

// interjections maps the expressive tags the script writer emits to literal
// text a plain TTS engine can speak. Anything not listed here is stripped by
// the generic bracket pass below.
var interjections = map[string]string{
	"[laughs]":   "ha ha, ",
	"[chuckles]": "heh, ",
	"[sighs]":    "hmm, ",
	"[gasps]":    "oh! ",
	"[pause]":    "... ",
	"[excited]":  "",
	"[whispers]": "",
	"[warmly]":   "",
	"[urgent]":   "",
}

// acronyms the engine should spell out rather than read as words. Tokens
// with digits (4G, 5G) are never re-cased, so they need no entry.
var spellOutAcronyms = map[string]string{
	"SMS":  "S M S",
	"USSD": "U S S D",
	"SIM":  "S I M",
	"PIN":  "P I N",
	"MB":   "M B",
	"GB":   "G B",
	"VIP":  "V I P",
}

var (
	bracketTag   = regexp.MustCompile(`\[[^\]]*\]`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	markdownMark = regexp.MustCompile(`(\*\*|__|\*|_)`)
	allCapsWord  = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	multiSpace   = regexp.MustCompile(`\s+`)
	orphanPunct  = regexp.MustCompile(`\s+([,.!?;:])`)
)

// Clean converts raw script text into engine-safe plain text. When hacks is
// true, known acronyms are replaced with space-separated letters; engines
// that run their own pronunciation dictionary must pass false so they see
// the original acronym. Clean is idempotent: cleaning already-clean text is
// a no-op.
func Clean(text string, hacks bool) string {
	// Expressive tags first, so "[laughs]" becomes speech instead of
	// disappearing with the generic strip.
	for tag, spoken := range interjections {
		text = strings.ReplaceAll(text, tag, spoken)
	}

	text = bracketTag.ReplaceAllString(text, " ")
	text = xmlTag.ReplaceAllString(text, " ")
	text = markdownMark.ReplaceAllString(text, "")

	// Shouting reads badly: HUGE -> Huge. Acronyms the engine should spell
	// out keep their casing.
	text = allCapsWord.ReplaceAllStringFunc(text, func(w string) string {
		if _, ok := spellOutAcronyms[w]; ok {
			return w
		}
		return w[:1] + strings.ToLower(w[1:])
	})

	if hacks {
		for acronym, spaced := range spellOutAcronyms {
			text = replaceWord(text, acronym, spaced)
		}
	}

	text = multiSpace.ReplaceAllString(text, " ")
	text = orphanPunct.ReplaceAllString(text, "$1")
	text = strings.TrimLeft(text, " ,.;:!?")
	return strings.TrimSpace(text)
}

// replaceWord substitutes whole-word occurrences only, so "SIMple" is left
// alone while "SIM card" becomes "S I M card".
func replaceWord(text, word, repl string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.ReplaceAllString(text, repl)
}
