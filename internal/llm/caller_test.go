package llm

import (
	"context"
	"testing"

	"github.com/docmorph/api/internal/domain/docmodel"
)

type mockProvider struct {
	generateFunc func(ctx context.Context, payload docmodel.PromptPayload, cfg GenerationConfig, userID string) docmodel.GenerationResult
}

func (m *mockProvider) Generate(ctx context.Context, payload docmodel.PromptPayload, cfg GenerationConfig, userID string) docmodel.GenerationResult {
	return m.generateFunc(ctx, payload, cfg, userID)
}

func (m *mockProvider) Model() string { return "mock-model" }

func successResult(content string) docmodel.GenerationResult {
	return docmodel.GenerationResult{
		Success: true,
		Content: content,
		Meta:    docmodel.GenerationMeta{Model: "mock-model"},
	}
}

func TestGenerateDocumentUsesDocumentConfig(t *testing.T) {
	var gotCfg GenerationConfig
	gen := NewGenerator(&mockProvider{
		generateFunc: func(_ context.Context, _ docmodel.PromptPayload, cfg GenerationConfig, _ string) docmodel.GenerationResult {
			gotCfg = cfg
			return successResult("# Titre\n\ncontenu")
		},
	})

	gen.GenerateDocument(context.Background(), docmodel.PromptPayload{SystemPrompt: "s", UserPrompt: "u"}, nil)

	want := DocumentConfig()
	if gotCfg != want {
		t.Errorf("config = %+v, want %+v", gotCfg, want)
	}
}

func TestGenerateDocumentOverride(t *testing.T) {
	var gotCfg GenerationConfig
	gen := NewGenerator(&mockProvider{
		generateFunc: func(_ context.Context, _ docmodel.PromptPayload, cfg GenerationConfig, _ string) docmodel.GenerationResult {
			gotCfg = cfg
			return successResult("# ok")
		},
	})

	override := GenerationConfig{Temperature: 0.7, TopP: 0.5, MaxTokens: 100}
	gen.GenerateDocument(context.Background(), docmodel.PromptPayload{SystemPrompt: "s", UserPrompt: "u"}, &override)

	if gotCfg != override {
		t.Errorf("config = %+v, want the override %+v", gotCfg, override)
	}
}

func TestGenerateDocumentContentStats(t *testing.T) {
	content := "# Rapport\n\nPremier paragraphe ici.\nSeconde ligne."
	gen := NewGenerator(&mockProvider{
		generateFunc: func(_ context.Context, _ docmodel.PromptPayload, _ GenerationConfig, _ string) docmodel.GenerationResult {
			return successResult(content)
		},
	})

	payload := docmodel.PromptPayload{
		SystemPrompt: "s",
		UserPrompt:   "u",
		Meta:         docmodel.PromptMeta{Kind: docmodel.PromptTransformation, TotalLength: 42},
	}
	result := gen.GenerateDocument(context.Background(), payload, nil)

	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Err)
	}
	if result.Meta.DocumentType != "markdown" {
		t.Errorf("DocumentType = %q, want markdown", result.Meta.DocumentType)
	}
	stats := result.Meta.ContentStats
	if stats.CharacterCount != len([]rune(content)) {
		t.Errorf("CharacterCount = %d, want %d", stats.CharacterCount, len([]rune(content)))
	}
	if stats.WordCount != 7 {
		t.Errorf("WordCount = %d, want 7", stats.WordCount)
	}
	if stats.LineCount != 4 {
		t.Errorf("LineCount = %d, want 4", stats.LineCount)
	}
	if result.Meta.Prompt.TotalLength != 42 {
		t.Error("prompt metadata must be carried into the generation metadata")
	}
}

func TestGenerateDocumentFailurePassthrough(t *testing.T) {
	gen := NewGenerator(&mockProvider{
		generateFunc: func(_ context.Context, _ docmodel.PromptPayload, _ GenerationConfig, _ string) docmodel.GenerationResult {
			return docmodel.GenerationResult{
				Success: false,
				Err:     "Timeout lors de l'appel API mock-model",
				Meta:    docmodel.GenerationMeta{ErrorType: docmodel.ErrTypeTimeout},
			}
		},
	})

	result := gen.GenerateDocument(context.Background(), docmodel.PromptPayload{SystemPrompt: "s", UserPrompt: "u"}, nil)

	if result.Success {
		t.Fatal("failure must pass through")
	}
	if result.Meta.DocumentType != "" {
		t.Error("a failed result must not be annotated as markdown")
	}
	if result.Meta.ErrorType != docmodel.ErrTypeTimeout {
		t.Errorf("ErrorType = %q, want timeout", result.Meta.ErrorType)
	}
}

func TestTestConnection(t *testing.T) {
	var gotCfg GenerationConfig
	gen := NewGenerator(&mockProvider{
		generateFunc: func(_ context.Context, _ docmodel.PromptPayload, cfg GenerationConfig, _ string) docmodel.GenerationResult {
			gotCfg = cfg
			return successResult("OK")
		},
	})

	if !gen.TestConnection(context.Background()) {
		t.Error("TestConnection = false on a successful probe")
	}
	if gotCfg.MaxTokens != 10 {
		t.Errorf("probe MaxTokens = %d, want 10", gotCfg.MaxTokens)
	}

	failing := NewGenerator(&mockProvider{
		generateFunc: func(_ context.Context, _ docmodel.PromptPayload, _ GenerationConfig, _ string) docmodel.GenerationResult {
			return docmodel.GenerationResult{Success: false, Err: "down"}
		},
	})
	if failing.TestConnection(context.Background()) {
		t.Error("TestConnection = true on a failed probe")
	}
}

func TestLooksLikeMarkdown(t *testing.T) {
	tests := []struct {
		content  string
		expected bool
	}{
		{"# Titre\ncontenu", true},
		{"paragraphe un\n\nparagraphe deux", true},
		{"- un\n- deux\n- trois", true},
		{"", false},
		{"   \n  ", false},
	}
	for _, tt := range tests {
		if got := looksLikeMarkdown(tt.content); got != tt.expected {
			t.Errorf("looksLikeMarkdown(%q) = %v, want %v", tt.content, got, tt.expected)
		}
	}
}
