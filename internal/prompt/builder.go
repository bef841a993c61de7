// Package prompt assembles the three-group transformation prompt sent to
// the model: old sources, constructed examples, and the new sources to
// transform. Budgets are counted in characters, not tokens.
package prompt

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/pkg/logging"
)

var logger = logging.NewLogger("prompt")

const systemPrompt = `
Vous êtes un assistant IA spécialisé dans la génération de documents avec l'architecture 3+1. Votre tâche est d'analyser une transformation (Document Ancien → Document Exemple) et d'appliquer cette même transformation sur un nouveau document source.

Méthodologie:
1. **ANALYSER** : Comprenez comment le Document Ancien a été transformé en Document Exemple
2. **IDENTIFIER** : Repérez les patterns de transformation (style, structure, ton, format)
3. **APPLIQUER** : Utilisez ces mêmes patterns pour transformer le Nouveau Document Source
4. **GÉNÉRER** : Créez un document Markdown cohérent suivant la transformation identifiée

Instructions importantes:
- Respectez fidèlement le pattern de transformation observé
- Générez un document au format Markdown bien structuré
- Préservez les éléments de mise en forme appropriés
- Assurez-vous que le résultat soit cohérent et professionnel
- Intégrez les instructions utilisateur si fournies
`

const transformationTemplate = `
## ANALYSE DE TRANSFORMATION

### DOCUMENT SOURCE ANCIEN (Référence originale):
%s

### DOCUMENT EXEMPLE CONSTRUIT (Transformation appliquée):
%s

### NOUVEAU DOCUMENT SOURCE (À transformer):
%s

## INSTRUCTIONS

Analysez comment le Document Source Ancien a été transformé en Document Exemple Construit, puis appliquez cette même transformation au Nouveau Document Source.

%s

## GÉNÉRATION DEMANDÉE:
Générez maintenant un nouveau document au format Markdown en appliquant la même transformation que celle observée entre le Document Source Ancien et le Document Exemple Construit.

Le document généré doit :
- Suivre le même pattern de transformation
- Être cohérent et bien structuré
- Respecter le format Markdown
- Intégrer les instructions utilisateur si fournies
`

const (
	noSourcePlaceholder  = "Aucun document source fourni."
	noExamplePlaceholder = "Aucun document exemple fourni."

	perDocTruncationMark = "\n[...contenu tronqué...]"
	globalTruncationMark = "\n[...tronqué...]"

	// sourceDivisor and exampleDivisor split the context budget across the
	// documents of a group; examples get a smaller share per document.
	sourceDivisor  = 2
	exampleDivisor = 3

	// safetyMargin is withheld from the context on global truncation, and
	// templateReserve additionally covers the fixed template text.
	safetyMargin    = 500
	templateReserve = 1000
)

// Builder assembles prompts under a character budget. The zero value is not
// usable; construct with NewBuilder.
type Builder struct {
	maxContextLength int
	includeMetadata  bool
	language         string
}

type Option func(*Builder)

func WithMaxContextLength(n int) Option { return func(b *Builder) { b.maxContextLength = n } }
func WithMetadata(include bool) Option  { return func(b *Builder) { b.includeMetadata = include } }
func WithLanguage(lang string) Option   { return func(b *Builder) { b.language = lang } }

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		maxContextLength: config.MaxContextLength,
		includeMetadata:  true,
		language:         config.DefaultLanguage,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildTransformationPrompt builds the structured prompt from the three
// document groups. Oversized prompts are truncated proportionally; the
// returned payload is complete and ready to send.
func (b *Builder) BuildTransformationPrompt(oldSources, examples, newSources []docmodel.ProcessedDocument, userDescription string) docmodel.PromptPayload {
	oldContent := b.prepareGroup(oldSources, "Source", noSourcePlaceholder, sourceDivisor)
	exampleContent := b.prepareGroup(examples, "Exemple", noExamplePlaceholder, exampleDivisor)
	newContent := b.prepareGroup(newSources, "Source", noSourcePlaceholder, sourceDivisor)

	userInstructions := ""
	if trimmed := strings.TrimSpace(userDescription); trimmed != "" {
		userInstructions = "### INSTRUCTIONS UTILISATEUR:\n" + trimmed + "\n"
	}

	userPrompt := fmt.Sprintf(transformationTemplate, oldContent, exampleContent, newContent, userInstructions)

	totalLength := charLen(systemPrompt) + charLen(userPrompt)
	truncated := totalLength > b.maxContextLength
	if truncated {
		logger.Warn("prompt over budget, truncating", "length", totalLength, "budget", b.maxContextLength)
		userPrompt = b.truncatePrompt(userPrompt, oldContent, exampleContent, newContent)
	}

	payload := docmodel.PromptPayload{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Meta: docmodel.PromptMeta{
			Kind:               docmodel.PromptTransformation,
			TotalLength:        charLen(systemPrompt) + charLen(userPrompt),
			SystemPromptLength: charLen(systemPrompt),
			UserPromptLength:   charLen(userPrompt),
			OldSourceCount:     len(oldSources),
			ExampleCount:       len(examples),
			NewSourceCount:     len(newSources),
			Truncated:          truncated,
			Language:           b.language,
			UserDescription:    userDescription,
			CreatedAt:          time.Now(),
		},
	}

	logger.Info("prompt built",
		"length", payload.Meta.TotalLength,
		"old_sources", payload.Meta.OldSourceCount,
		"examples", payload.Meta.ExampleCount,
		"new_sources", payload.Meta.NewSourceCount,
		"truncated", payload.Meta.Truncated)
	return payload
}

// prepareGroup formats one document group, capping each document at an
// equal share of the context budget.
func (b *Builder) prepareGroup(docs []docmodel.ProcessedDocument, headerWord, placeholder string, divisor int) string {
	if len(docs) == 0 {
		return placeholder
	}

	maxDocLength := b.maxContextLength / (len(docs) * divisor)
	formatted := make([]string, 0, len(docs))

	for i, doc := range docs {
		header := fmt.Sprintf("### %s %d", headerWord, i+1)
		if b.includeMetadata {
			path := doc.Meta.FilePath
			if path == "" {
				path = "Inconnu"
			}
			header += fmt.Sprintf(" (%s)", path)
		}
		header += ":\n"

		content := doc.Text
		if charLen(content) > maxDocLength {
			content = truncateRunes(content, maxDocLength) + perDocTruncationMark
		}
		formatted = append(formatted, header+content)
	}

	return strings.Join(formatted, "\n\n")
}

// truncatePrompt shrinks the three content blocks proportionally to their
// size and rebuilds the prompt without user instructions.
func (b *Builder) truncatePrompt(userPrompt, oldContent, exampleContent, newContent string) string {
	availableSpace := b.maxContextLength - charLen(systemPrompt) - safetyMargin
	if availableSpace < 0 {
		availableSpace = 0
	}
	if charLen(userPrompt) <= availableSpace {
		return userPrompt
	}

	oldLen := charLen(oldContent)
	exampleLen := charLen(exampleContent)
	newLen := charLen(newContent)
	totalContent := oldLen + exampleLen + newLen
	if totalContent == 0 {
		return truncateRunes(userPrompt, availableSpace)
	}

	contentSpace := availableSpace - templateReserve
	if contentSpace < 0 {
		contentSpace = 0
	}

	truncatedOld := truncateBlock(oldContent, contentSpace*oldLen/totalContent)
	truncatedExample := truncateBlock(exampleContent, contentSpace*exampleLen/totalContent)
	truncatedNew := truncateBlock(newContent, contentSpace*newLen/totalContent)

	rebuilt := fmt.Sprintf(transformationTemplate, truncatedOld, truncatedExample, truncatedNew, "")
	logger.Info("prompt truncated", "from", charLen(userPrompt), "to", charLen(rebuilt))
	return rebuilt
}

func truncateBlock(content string, budget int) string {
	if charLen(content) <= budget {
		return content
	}
	return truncateRunes(content, budget) + globalTruncationMark
}

// BuildSimplePrompt wraps free-form content and a task into a minimal
// prompt, bypassing the three-group structure.
func (b *Builder) BuildSimplePrompt(content, task string) docmodel.PromptPayload {
	system := "Vous êtes un assistant IA spécialisé dans le traitement de documents."
	user := fmt.Sprintf("\nTâche: %s\n\nContenu:\n%s\n\nVeuillez traiter ce contenu selon la tâche demandée.\n", task, content)

	return docmodel.PromptPayload{
		SystemPrompt: system,
		UserPrompt:   user,
		Meta: docmodel.PromptMeta{
			Kind:               docmodel.PromptSimple,
			TotalLength:        charLen(system) + charLen(user),
			SystemPromptLength: charLen(system),
			UserPromptLength:   charLen(user),
			CreatedAt:          time.Now(),
		},
	}
}

// ValidatePrompt checks a payload for the shape the LLM client expects.
func (b *Builder) ValidatePrompt(p docmodel.PromptPayload) bool {
	if p.SystemPrompt == "" || p.UserPrompt == "" {
		logger.Error("prompt payload has an empty system or user prompt")
		return false
	}
	if p.Meta.TotalLength > b.maxContextLength {
		logger.Warn("prompt exceeds the context budget", "length", p.Meta.TotalLength)
	}
	return true
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes cuts at a rune boundary so multi-byte characters are never
// split mid-sequence.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
