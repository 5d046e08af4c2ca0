package script

import (
	"fmt"
	"strings"
)

// Section identifies one named fragment of a promotional script.
type Section string

const (
	SectionMain        Section = "main"
	SectionFallback1   Section = "fallback1"
	SectionFallback2   Section = "fallback2"
	SectionClosure     Section = "closure"
	SectionHookPreview Section = "hook_preview"
)

func (s Section) String() string {
	return string(s)
}

// Variant holds the script sections for one campaign variant, as delivered
// by the orchestration layer.
type Variant struct {
	VariantID     int    `json:"variant_id"`
	Theme         string `json:"theme"`
	Hook          string `json:"hook"`
	FullScript    string `json:"full_script"`
	Fallback1     string `json:"fallback_1"`
	Fallback2     string `json:"fallback_2"`
	PoliteClosure string `json:"polite_closure"`
}

// hookPreviewMaxChars bounds the preview fragment when a variant has no
// explicit hook and we fall back to the start of the main script.
const hookPreviewMaxChars = 200

// HookText returns the fragment used for voice previews: the explicit hook,
// or the first ~200 characters of the main script.
func (v Variant) HookText() string {
	if strings.TrimSpace(v.Hook) != "" {
		return v.Hook
	}
	runes := []rune(v.FullScript)
	if len(runes) <= hookPreviewMaxChars {
		return v.FullScript
	}
	return string(runes[:hookPreviewMaxChars])
}

// Sections returns the non-empty final-phase sections in a fixed order.
// Empty sections are skipped so no job is scheduled for them.
func (v Variant) Sections() map[Section]string {
	out := make(map[Section]string, 4)
	if strings.TrimSpace(v.FullScript) != "" {
		out[SectionMain] = v.FullScript
	}
	if strings.TrimSpace(v.Fallback1) != "" {
		out[SectionFallback1] = v.Fallback1
	}
	if strings.TrimSpace(v.Fallback2) != "" {
		out[SectionFallback2] = v.Fallback2
	}
	if strings.TrimSpace(v.PoliteClosure) != "" {
		out[SectionClosure] = v.PoliteClosure
	}
	return out
}

// FileStem returns the output file stem for a (variant, section) pair,
// e.g. "variant_3_fallback1".
func FileStem(variantID int, section Section) string {
	return fmt.Sprintf("variant_%d_%s", variantID, section)
}
