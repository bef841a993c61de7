package preprocess

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// CleanerConfig toggles the independent cleaning passes. Passing the config
// explicitly keeps Clean a pure function, safe under concurrent requests.
type CleanerConfig struct {
	RemoveExtraWhitespace bool
	RemoveControlChars    bool
	RemovePageBreaks      bool
	RemoveBoilerplate     bool
	PreserveStructure     bool
}

func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{
		RemoveExtraWhitespace: true,
		RemoveControlChars:    true,
		RemovePageBreaks:      true,
		RemoveBoilerplate:     true,
		PreserveStructure:     true,
	}
}

type CleanStats struct {
	OriginalLength    int      `json:"original_length"`
	CleanedLength     int      `json:"cleaned_length"`
	RemovedCharacters int      `json:"removed_characters"`
	ReductionPercent  float64  `json:"reduction_percentage"`
	Steps             []string `json:"cleaning_steps"`
}

type CleanResult struct {
	Text  string     `json:"cleaned_text"`
	Stats CleanStats `json:"cleaning_stats"`
}

var (
	pageBreakRe      = regexp.MustCompile(`\f`)
	multipleSpacesRe = regexp.MustCompile(`[ \t]+`)
	multipleBlankRe  = regexp.MustCompile(`\n\s*\n\s*\n+`)
	controlCharsRe   = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f]`)

	// boilerplate lines commonly baked into PDF extractions
	boilerplateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Page \d+ of \d+`),
		regexp.MustCompile(`\d+/\d+`),
		regexp.MustCompile(`(?i)Printed on .*`),
		regexp.MustCompile(`(?i)Generated on .*`),
		regexp.MustCompile(`(?i)Copyright ©.*`),
		regexp.MustCompile(`(?i)\[Page \d+\]`),
	}

	allCapsTitleRe = regexp.MustCompile(`^[A-Z][A-Z\s]{2,}$`)
	bulletRe       = regexp.MustCompile(`^\s*[•·▪▫◦‣⁃]\s+`)
	numberListRe   = regexp.MustCompile(`^\s*\d+[.):]\s+`)

	tripleNewlineRe = regexp.MustCompile(`\n{3,}`)
	sentenceBreakRe = regexp.MustCompile(`([.!?])([A-Z])`)
)

// Clean runs the configured passes in a fixed order and reports which ones
// fired, so ingestion behavior stays observable in tests and logs.
func Clean(text string, cfg CleanerConfig) CleanResult {
	if text == "" {
		return CleanResult{Stats: CleanStats{Steps: []string{}}}
	}

	originalLength := len([]rune(text))
	cleaned := text
	var steps []string

	if cfg.RemovePageBreaks {
		before := len(cleaned)
		cleaned = pageBreakRe.ReplaceAllString(cleaned, "\n")
		if removed := before - len(cleaned); removed > 0 {
			steps = append(steps, fmt.Sprintf("page breaks removed: %d characters", removed))
		}
	}

	if cfg.RemoveControlChars {
		before := len(cleaned)
		cleaned = controlCharsRe.ReplaceAllString(cleaned, "")
		if removed := before - len(cleaned); removed > 0 {
			steps = append(steps, fmt.Sprintf("control characters removed: %d characters", removed))
		}
	}

	if cfg.RemoveBoilerplate {
		before := len(cleaned)
		for _, re := range boilerplateRes {
			cleaned = re.ReplaceAllString(cleaned, "")
		}
		if removed := before - len(cleaned); removed > 0 {
			steps = append(steps, fmt.Sprintf("boilerplate removed: %d characters", removed))
		}
	}

	if cfg.RemoveExtraWhitespace {
		before := len(cleaned)
		cleaned = multipleSpacesRe.ReplaceAllString(cleaned, " ")
		cleaned = multipleBlankRe.ReplaceAllString(cleaned, "\n\n")
		if removed := before - len(cleaned); removed > 0 {
			steps = append(steps, fmt.Sprintf("whitespace normalized: %d characters", removed))
		}
	}

	cleaned = dropArtifactLines(cleaned)

	if cfg.PreserveStructure {
		cleaned = restoreStructure(cleaned)
		steps = append(steps, "structure preserved")
	}

	cleaned = strings.TrimSpace(cleaned)

	cleanedLength := len([]rune(cleaned))
	stats := CleanStats{
		OriginalLength:    originalLength,
		CleanedLength:     cleanedLength,
		RemovedCharacters: originalLength - cleanedLength,
		Steps:             steps,
	}
	if originalLength > 0 {
		stats.ReductionPercent = float64(originalLength-cleanedLength) / float64(originalLength) * 100
	}
	if stats.Steps == nil {
		stats.Steps = []string{}
	}

	return CleanResult{Text: cleaned, Stats: stats}
}

// dropArtifactLines trims every line and drops near-empty non-alphanumeric
// leftovers (stray punctuation, lone pipes) that PDF extraction produces.
func dropArtifactLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len([]rune(line)) < 2 && !isAlphanumeric(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// restoreStructure re-inserts blank lines around all-caps title lines and
// keeps bullet and numbered list lines verbatim.
func restoreStructure(text string) string {
	lines := strings.Split(text, "\n")
	structured := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			structured = append(structured, line)
			continue
		}

		if allCapsTitleRe.MatchString(line) && len([]rune(line)) > 5 {
			if len(structured) > 0 && strings.TrimSpace(structured[len(structured)-1]) != "" {
				structured = append(structured, "")
			}
			structured = append(structured, line, "")
			continue
		}

		if bulletRe.MatchString(line) || numberListRe.MatchString(line) {
			structured = append(structured, line)
			continue
		}

		structured = append(structured, line)
	}

	return strings.Join(structured, "\n")
}

// CleanForLLM forces every pass on and applies two extra fixes: at most one
// blank line in a row, and a space after sentence punctuation that runs
// straight into a capital letter. Running it on its own output is a no-op.
func CleanForLLM(text string) string {
	cleaned := Clean(text, DefaultCleanerConfig()).Text

	cleaned = tripleNewlineRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = sentenceBreakRe.ReplaceAllString(cleaned, "$1 $2")

	return cleaned
}
