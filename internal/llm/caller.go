package llm

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/pkg/logging"
)

var logger = logging.NewLogger("llm")

// Generator wraps a Provider with document-oriented defaults and
// post-processing of the generated Markdown.
type Generator struct {
	provider Provider
	userID   string
}

func NewGenerator(provider Provider) *Generator {
	return &Generator{provider: provider, userID: config.DefaultUserID}
}

func (g *Generator) Model() string { return g.provider.Model() }

// Call performs one raw model call with an explicit config.
func (g *Generator) Call(ctx context.Context, payload docmodel.PromptPayload, cfg GenerationConfig) docmodel.GenerationResult {
	return g.provider.Generate(ctx, payload, cfg, g.userID)
}

// GenerateDocument calls the model with the document generation config and
// annotates a successful result with content statistics. A nil override
// keeps the defaults.
func (g *Generator) GenerateDocument(ctx context.Context, payload docmodel.PromptPayload, override *GenerationConfig) docmodel.GenerationResult {
	cfg := DocumentConfig()
	if override != nil {
		cfg = *override
	}

	result := g.provider.Generate(ctx, payload, cfg, g.userID)
	if !result.Success {
		return result
	}

	if !looksLikeMarkdown(result.Content) {
		logger.Warn("generated content does not look like markdown")
	}

	result.Meta.DocumentType = "markdown"
	result.Meta.ContentStats = docmodel.ContentStats{
		CharacterCount: utf8.RuneCountInString(result.Content),
		WordCount:      len(strings.Fields(result.Content)),
		LineCount:      countLines(result.Content),
	}
	result.Meta.Prompt = payload.Meta
	return result
}

// TestConnection sends a tiny probe request and reports whether it came
// back successfully.
func (g *Generator) TestConnection(ctx context.Context) bool {
	cfg := DefaultConfig()
	cfg.MaxTokens = 10

	probe := docmodel.PromptPayload{
		SystemPrompt: "Vous êtes un assistant de test.",
		UserPrompt:   "Répondez simplement 'OK' pour confirmer que vous fonctionnez.",
	}

	result := g.provider.Generate(ctx, probe, cfg, g.userID)
	if !result.Success {
		logger.Error("connection test failed", "error", result.Err)
	}
	return result.Success
}

// looksLikeMarkdown applies cheap structural heuristics; prose with no
// markup at all fails them.
func looksLikeMarkdown(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	return strings.Count(content, "#") > 0 ||
		strings.Count(content, "*") > 0 ||
		strings.Count(content, "_") > 0 ||
		strings.Count(content, "-") > 2 ||
		strings.Contains(content, "\n\n")
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
