package preprocess

import "testing"

func TestNormalizeEncodingFixes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "repairs mojibake accents",
			input:    "cafÃ© prÃ¨s de lÃ¢me",
			expected: "café près de lâme",
		},
		{
			name:     "drops stray latin-1 artifacts",
			input:    "prixÂ : 10 euros",
			expected: "prix: 10 euros",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, DefaultNormalizerConfig())
			if got.Text != tt.expected {
				t.Errorf("Normalize() = %q, want %q", got.Text, tt.expected)
			}
		})
	}
}

func TestNormalizeQuotesAndDashes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "guillemets become straight quotes",
			input:    `il a dit «bonjour»`,
			expected: `il a dit "bonjour"`,
		},
		{
			name:     "curly apostrophe becomes straight",
			input:    "l’article",
			expected: "l'article",
		},
		{
			name:     "long dashes become hyphens",
			input:    "avant – pendant — après",
			expected: "avant - pendant - après",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, DefaultNormalizerConfig())
			if got.Text != tt.expected {
				t.Errorf("Normalize() = %q, want %q", got.Text, tt.expected)
			}
		})
	}
}

func TestNormalizePunctuationSpacing(t *testing.T) {
	got := Normalize("Bonjour .Monde", DefaultNormalizerConfig())
	if got.Text != "Bonjour. Monde" {
		t.Errorf("Normalize() = %q, want %q", got.Text, "Bonjour. Monde")
	}
}

func TestNormalizeEllipsis(t *testing.T) {
	got := Normalize("et puis…", DefaultNormalizerConfig())
	if got.Text != "et puis..." {
		t.Errorf("Normalize() = %q, want %q", got.Text, "et puis...")
	}
}

func TestNormalizeSpecialSpaces(t *testing.T) {
	got := Normalize("mot\u00A0suivant\u2009fin", DefaultNormalizerConfig())
	if got.Text != "mot suivant fin" {
		t.Errorf("Normalize() = %q, want %q", got.Text, "mot suivant fin")
	}
}

func TestNormalizeForLLMPreservesCaseAndAccents(t *testing.T) {
	got := NormalizeForLLM("Le Café de la Révolution")
	if got != "Le Café de la Révolution" {
		t.Errorf("NormalizeForLLM() = %q, accents or case were altered", got)
	}
}

func TestNormalizeForSearchFolds(t *testing.T) {
	got := NormalizeForSearch("Le Café de la Révolution")
	if got != "le cafe de la revolution" {
		t.Errorf("NormalizeForSearch() = %q, want %q", got, "le cafe de la revolution")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"cafÃ© «près»  de l’entrée…",
		"Texte déjà propre.",
		"MAJUSCULES – et tirets",
	}

	for _, cfg := range []NormalizerConfig{LLMNormalizerConfig(), SearchNormalizerConfig()} {
		for _, input := range inputs {
			once := Normalize(input, cfg).Text
			twice := Normalize(once, cfg).Text
			if once != twice {
				t.Errorf("Normalize not stable for %q:\n first: %q\nsecond: %q", input, once, twice)
			}
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	got := Normalize("", DefaultNormalizerConfig())
	if got.Text != "" {
		t.Errorf("Normalize(\"\") = %q, want empty", got.Text)
	}
	if got.Stats.Steps == nil {
		t.Error("Steps must be an empty slice, not nil")
	}
}

func TestNormalizeStats(t *testing.T) {
	input := "mot   mot"
	got := Normalize(input, DefaultNormalizerConfig())
	if got.Stats.OriginalLength != 9 {
		t.Errorf("OriginalLength = %d, want 9", got.Stats.OriginalLength)
	}
	if got.Stats.NormalizedLength != 7 {
		t.Errorf("NormalizedLength = %d, want 7", got.Stats.NormalizedLength)
	}
	if got.Stats.LengthChange != -2 {
		t.Errorf("LengthChange = %d, want -2", got.Stats.LengthChange)
	}
}
