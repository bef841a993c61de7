// Package service orchestrates one generation request end to end: persist
// the uploads, extract and preprocess them, build the prompt, call the
// model, and export the result.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/internal/ingest"
	"github.com/docmorph/api/internal/llm"
	"github.com/docmorph/api/internal/llm/azure"
	"github.com/docmorph/api/internal/llm/openaicompat"
	"github.com/docmorph/api/internal/metrics"
	"github.com/docmorph/api/internal/preprocess"
	"github.com/docmorph/api/internal/prompt"
	"github.com/docmorph/api/internal/render"
	"github.com/docmorph/api/pkg/logging"
)

var logger = logging.NewLogger("service")

// UploadedFile is what the HTTP layer hands over: a name to validate and
// the raw bytes to persist. Multipart file headers adapt to it trivially.
type UploadedFile interface {
	Name() string
	Bytes() []byte
}

// DocumentService wires ingestion, preprocessing, prompting, the LLM and
// the renderers together. Safe for concurrent use: all per-request state
// lives in arguments and return values.
type DocumentService struct {
	builder    *prompt.Builder
	generator  *llm.Generator
	uploadDir  string
	exportsDir string
}

func NewDocumentService(settings config.Settings) (*DocumentService, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := newProvider(settings)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{config.UploadDir, config.ExportsDir} {
		if err := EnsureDirectoryExists(dir); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	s := &DocumentService{
		builder:    prompt.NewBuilder(),
		generator:  llm.NewGenerator(provider),
		uploadDir:  config.UploadDir,
		exportsDir: config.ExportsDir,
	}
	logger.Info("document service initialized", "model", s.generator.Model(), "provider", settings.Provider)
	return s, nil
}

// NewDocumentServiceWithProvider wires an explicit provider and working
// directories, bypassing environment configuration.
func NewDocumentServiceWithProvider(provider llm.Provider, uploadDir, exportsDir string) *DocumentService {
	return &DocumentService{
		builder:    prompt.NewBuilder(),
		generator:  llm.NewGenerator(provider),
		uploadDir:  uploadDir,
		exportsDir: exportsDir,
	}
}

func newProvider(settings config.Settings) (llm.Provider, error) {
	switch settings.Provider {
	case config.ProviderOpenAI:
		return openaicompat.NewClient(settings)
	default:
		return azure.NewClient(settings)
	}
}

// ProcessUploadedFiles extracts and preprocesses the uploads of one
// request. Files that fail validation or extraction are skipped, never
// fatal: the caller gets whatever could be processed.
func (s *DocumentService) ProcessUploadedFiles(sourceFiles, exampleFiles []UploadedFile) (sources, examples []docmodel.ProcessedDocument) {
	for _, f := range sourceFiles {
		if doc := s.processSingleFile(f, docmodel.RoleOldSource); doc != nil {
			sources = append(sources, *doc)
		}
	}
	for _, f := range exampleFiles {
		if doc := s.processSingleFile(f, docmodel.RoleExample); doc != nil {
			examples = append(examples, *doc)
		}
	}
	logger.Info("uploads processed", "sources", len(sources), "examples", len(examples))
	return sources, examples
}

// ProcessFilesForRole processes one upload group under an explicit role.
func (s *DocumentService) ProcessFilesForRole(files []UploadedFile, role docmodel.GroupRole) []docmodel.ProcessedDocument {
	var docs []docmodel.ProcessedDocument
	for _, f := range files {
		if doc := s.processSingleFile(f, role); doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs
}

func (s *DocumentService) processSingleFile(file UploadedFile, role docmodel.GroupRole) *docmodel.ProcessedDocument {
	if file == nil {
		return nil
	}
	name := file.Name()

	format, ok := ingest.DetectFormat(name)
	if !ok || !ValidateFileExtension(name, config.SupportedFormats) {
		logger.Warn("unsupported file format", "file", name)
		metrics.CountFileProcessed("unknown", "rejected")
		return nil
	}

	data := file.Bytes()
	if len(data) > config.MaxFileSizeMB*1024*1024 {
		logger.Warn("file too large", "file", name, "size", FormatFileSize(int64(len(data))))
		metrics.CountFileProcessed(string(format), "rejected")
		return nil
	}

	uniqueName := GenerateUniqueFilename(name)
	tempPath := filepath.Join(s.uploadDir, uniqueName)
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		logger.Error("could not persist upload", "file", name, "error", err)
		metrics.CountFileProcessed(string(format), "failed")
		return nil
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			logger.Warn("could not remove temporary upload", "path", tempPath, "error", err)
		}
	}()

	extracted := ingest.ExtractFile(tempPath, format)
	if extracted.Text == "" {
		logger.Warn("no content extracted", "file", name, "error", extracted.Meta.Error)
		metrics.CountFileProcessed(string(format), "failed")
		return nil
	}

	cleaned := preprocess.CleanForLLM(extracted.Text)
	normalized := preprocess.NormalizeForLLM(cleaned)

	doc := &docmodel.ProcessedDocument{
		Text: normalized,
		Meta: docmodel.ProcessedMeta{
			ExtractMeta:      extracted.Meta,
			OriginalFilename: name,
			UniqueFilename:   uniqueName,
			FileType:         role,
			FileSize:         int64(len(data)),
			OriginalLength:   utf8.RuneCountInString(extracted.Text),
			ProcessedLength:  utf8.RuneCountInString(normalized),
			ProcessedAt:      time.Now(),
		},
	}
	metrics.CountFileProcessed(string(format), "ok")
	logger.Info("file processed", "file", name, "characters", doc.Meta.ProcessedLength)
	return doc
}

// ProcessTextInput treats pasted text like an uploaded document, skipping
// the loader stage.
func (s *DocumentService) ProcessTextInput(text, label string, role docmodel.GroupRole) *docmodel.ProcessedDocument {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := preprocess.CleanForLLM(text)
	normalized := preprocess.NormalizeForLLM(cleaned)

	return &docmodel.ProcessedDocument{
		Text: normalized,
		Meta: docmodel.ProcessedMeta{
			ExtractMeta: docmodel.ExtractMeta{
				FilePath:        label,
				Loader:          docmodel.LoaderTextInput,
				TotalCharacters: utf8.RuneCountInString(text),
			},
			OriginalFilename: label,
			FileType:         role,
			OriginalLength:   utf8.RuneCountInString(text),
			ProcessedLength:  utf8.RuneCountInString(normalized),
			ProcessedAt:      time.Now(),
		},
	}
}

// GenerateDocument runs prompt assembly and the model call for one
// request. All failures come back in the result envelope.
func (s *DocumentService) GenerateDocument(ctx context.Context, oldSources, examples, newSources []docmodel.ProcessedDocument, userDescription string, override *llm.GenerationConfig) docmodel.GenerationResult {
	start := time.Now()

	if len(oldSources) == 0 && len(examples) == 0 && len(newSources) == 0 {
		metrics.CountGeneration("rejected")
		return generationFailure("Au moins un document source ou exemple est requis")
	}

	payload := s.builder.BuildTransformationPrompt(oldSources, examples, newSources, userDescription)
	if !s.builder.ValidatePrompt(payload) {
		metrics.CountGeneration("rejected")
		return generationFailure("Prompt généré invalide")
	}

	result := s.generator.GenerateDocument(ctx, payload, override)
	metrics.CaptureDependencyLatency("llm", result.Meta.Latency)

	if !result.Success {
		metrics.CountGeneration("failed")
		metrics.CountLLMFailure(result.Meta.ErrorType)
		metrics.CaptureGenerationMetrics("failed", time.Since(start))
		logger.Error("generation failed", "error_type", result.Meta.ErrorType, "error", result.Err)
		return result
	}

	result.Meta.OldSourceCount = len(oldSources)
	result.Meta.ExampleCount = len(examples)
	result.Meta.NewSourceCount = len(newSources)
	result.Meta.UserDescription = userDescription

	metrics.CountGeneration("ok")
	metrics.CaptureGenerationMetrics("ok", time.Since(start))
	logger.Info("document generated",
		"characters", result.Meta.ContentStats.CharacterCount,
		"duration", time.Since(start))
	return result
}

// SaveGeneratedDocument writes the Markdown to the exports directory and
// returns the full path. An empty filename gets a timestamped default.
func (s *DocumentService) SaveGeneratedDocument(content, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("document_genere_%s.md", time.Now().Format("20060102_150405"))
	}
	if !strings.HasSuffix(filename, ".md") {
		filename += ".md"
	}

	path := filepath.Join(s.exportsDir, CleanFilename(filename))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		logger.Error("could not save document", "path", path, "error", err)
		return "", err
	}

	logger.Info("document saved", "path", path)
	return path, nil
}

// ExportDocument renders the Markdown into the requested format inside the
// exports directory. Supported formats: md, pdf, docx.
func (s *DocumentService) ExportDocument(content, format, filename string, props render.DocProps) render.Result {
	format = strings.ToLower(format)
	if filename == "" {
		filename = fmt.Sprintf("document_genere_%s", time.Now().Format("20060102_150405"))
	}
	filename = CleanFilename(strings.TrimSuffix(filename, filepath.Ext(filename)))

	switch format {
	case "pdf":
		metrics.CountExport("pdf")
		return render.ToPDF(content, filepath.Join(s.exportsDir, filename+".pdf"), props, render.PDFStyle{})
	case "docx":
		metrics.CountExport("docx")
		return render.ToDOCX(content, filepath.Join(s.exportsDir, filename+".docx"), props)
	case "md", "markdown":
		path, err := s.SaveGeneratedDocument(content, filename+".md")
		if err != nil {
			return render.Result{OutputPath: path, Err: err.Error()}
		}
		metrics.CountExport("md")
		return render.Result{
			Success:    true,
			OutputPath: path,
			Meta: render.ConversionMeta{
				ConvertedAt:    time.Now(),
				Converter:      "markdown",
				MarkdownLength: utf8.RuneCountInString(content),
			},
		}
	default:
		return render.Result{Err: fmt.Sprintf("format d'export non supporté: %q", format)}
	}
}

// ServiceStatus reports component health for the status endpoint.
type ServiceStatus struct {
	ServiceInitialized bool            `json:"service_initialized"`
	LLMConnection      bool            `json:"llm_connection"`
	DirectoriesReady   map[string]bool `json:"directories_ready"`
	SupportedFormats   []string        `json:"supported_formats"`
	MaxFileSizeMB      int             `json:"max_file_size_mb"`
	Model              string          `json:"model"`
}

// GetServiceStatus probes the LLM and checks the working directories.
func (s *DocumentService) GetServiceStatus(ctx context.Context) ServiceStatus {
	return ServiceStatus{
		ServiceInitialized: true,
		LLMConnection:      s.generator.TestConnection(ctx),
		DirectoriesReady: map[string]bool{
			"uploads": directoryExists(s.uploadDir),
			"exports": directoryExists(s.exportsDir),
		},
		SupportedFormats: config.SupportedFormats,
		MaxFileSizeMB:    config.MaxFileSizeMB,
		Model:            s.generator.Model(),
	}
}

func directoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func generationFailure(message string) docmodel.GenerationResult {
	return docmodel.GenerationResult{
		Success: false,
		Err:     message,
		Meta: docmodel.GenerationMeta{
			Timestamp: time.Now(),
			ErrorType: docmodel.ErrTypeGeneric,
		},
	}
}
