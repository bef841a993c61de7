package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizerConfig toggles the normalization passes. The LLM variant keeps
// case and accents; the search variant folds both.
type NormalizerConfig struct {
	Lowercase            bool
	RemoveAccents        bool
	NormalizePunctuation bool
	NormalizeQuotes      bool
	NormalizeDashes      bool
	NormalizeSpaces      bool
	FixEncoding          bool
}

func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		NormalizePunctuation: true,
		NormalizeQuotes:      true,
		NormalizeDashes:      true,
		NormalizeSpaces:      true,
		FixEncoding:          true,
	}
}

// LLMNormalizerConfig preserves case and accents for model input.
func LLMNormalizerConfig() NormalizerConfig {
	return DefaultNormalizerConfig()
}

// SearchNormalizerConfig folds case and accents for matching.
func SearchNormalizerConfig() NormalizerConfig {
	cfg := DefaultNormalizerConfig()
	cfg.Lowercase = true
	cfg.RemoveAccents = true
	return cfg
}

type NormalizeStats struct {
	OriginalLength   int      `json:"original_length"`
	NormalizedLength int      `json:"normalized_length"`
	LengthChange     int      `json:"length_change"`
	Steps            []string `json:"normalization_steps"`
}

type NormalizeResult struct {
	Text  string         `json:"normalized_text"`
	Stats NormalizeStats `json:"normalization_stats"`
}

// encodingFixes repairs the usual UTF-8-decoded-as-Latin-1 sequences.
// Order matters: the bare "Â" cleanup must run after the accented pairs.
var encodingFixes = []struct{ wrong, right string }{
	{"Ã©", "é"}, {"Ã¨", "è"}, {"Ã ", "à"}, {"Ã§", "ç"}, {"Ã´", "ô"},
	{"Ã¢", "â"}, {"Ãª", "ê"}, {"Ã®", "î"}, {"Ã¹", "ù"}, {"Ã»", "û"},
	{"Ã¯", "ï"}, {"Ã«", "ë"},
	{"Â", ""},
}

var (
	singleQuotesRe  = regexp.MustCompile("[`´‘’]")
	doubleQuotesRe  = regexp.MustCompile(`[«»“”]`)
	dashesRe        = regexp.MustCompile(`[–—―]`)
	specialSpacesRe = regexp.MustCompile("[  -​    　]")
	ellipsisRe      = regexp.MustCompile(`…`)

	spaceBeforePunctRe = regexp.MustCompile(`\s+([.!?:;,])`)
	noSpaceAfterRe     = regexp.MustCompile(`([.!?:;,])([A-Za-z])`)

	allWhitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize applies the configured passes in a fixed order. Applying it a
// second time with the same config yields the same text.
func Normalize(text string, cfg NormalizerConfig) NormalizeResult {
	if text == "" {
		return NormalizeResult{Stats: NormalizeStats{Steps: []string{}}}
	}

	originalLength := len([]rune(text))
	normalized := text
	var steps []string

	if cfg.FixEncoding {
		before := normalized
		for _, fix := range encodingFixes {
			normalized = strings.ReplaceAll(normalized, fix.wrong, fix.right)
		}
		if normalized != before {
			steps = append(steps, "encoding issues fixed")
		}
	}

	before := normalized
	normalized = norm.NFKC.String(normalized)
	if normalized != before {
		steps = append(steps, "unicode normalization applied")
	}

	if cfg.NormalizeSpaces {
		before = normalized
		normalized = specialSpacesRe.ReplaceAllString(normalized, " ")
		if normalized != before {
			steps = append(steps, "special spaces normalized")
		}
	}

	if cfg.NormalizeQuotes {
		before = normalized
		normalized = singleQuotesRe.ReplaceAllString(normalized, "'")
		normalized = doubleQuotesRe.ReplaceAllString(normalized, `"`)
		if normalized != before {
			steps = append(steps, "quotes normalized")
		}
	}

	if cfg.NormalizeDashes {
		before = normalized
		normalized = dashesRe.ReplaceAllString(normalized, "-")
		if normalized != before {
			steps = append(steps, "dashes normalized")
		}
	}

	if cfg.NormalizePunctuation {
		before = normalized
		normalized = ellipsisRe.ReplaceAllString(normalized, "...")
		normalized = spaceBeforePunctRe.ReplaceAllString(normalized, "$1")
		normalized = noSpaceAfterRe.ReplaceAllString(normalized, "$1 $2")
		if normalized != before {
			steps = append(steps, "punctuation normalized")
		}
	}

	if cfg.RemoveAccents {
		before = normalized
		normalized = stripAccents(normalized)
		if normalized != before {
			steps = append(steps, "accents removed")
		}
	}

	if cfg.Lowercase {
		before = normalized
		normalized = strings.ToLower(normalized)
		if normalized != before {
			steps = append(steps, "lowercased")
		}
	}

	normalized = strings.TrimSpace(allWhitespaceRe.ReplaceAllString(normalized, " "))

	normalizedLength := len([]rune(normalized))
	stats := NormalizeStats{
		OriginalLength:   originalLength,
		NormalizedLength: normalizedLength,
		LengthChange:     normalizedLength - originalLength,
		Steps:            steps,
	}
	if stats.Steps == nil {
		stats.Steps = []string{}
	}

	return NormalizeResult{Text: normalized, Stats: stats}
}

// stripAccents decomposes and removes combining marks.
func stripAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// NormalizeForLLM keeps case and accents intact.
func NormalizeForLLM(text string) string {
	return Normalize(text, LLMNormalizerConfig()).Text
}

// NormalizeForSearch folds case and accents for lookups.
func NormalizeForSearch(text string) string {
	return Normalize(text, SearchNormalizerConfig()).Text
}
