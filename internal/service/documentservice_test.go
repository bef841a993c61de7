package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/internal/llm"
	"github.com/docmorph/api/internal/prompt"
	"github.com/docmorph/api/internal/render"
)

type fakeUpload struct {
	name string
	data []byte
}

func (f fakeUpload) Name() string  { return f.name }
func (f fakeUpload) Bytes() []byte { return f.data }

type mockProvider struct {
	generateFunc func(ctx context.Context, payload docmodel.PromptPayload, cfg llm.GenerationConfig, userID string) docmodel.GenerationResult
}

func (m *mockProvider) Generate(ctx context.Context, payload docmodel.PromptPayload, cfg llm.GenerationConfig, userID string) docmodel.GenerationResult {
	return m.generateFunc(ctx, payload, cfg, userID)
}

func (m *mockProvider) Model() string { return "mock-model" }

func newTestService(t *testing.T, provider llm.Provider) *DocumentService {
	t.Helper()
	if provider == nil {
		provider = &mockProvider{
			generateFunc: func(_ context.Context, _ docmodel.PromptPayload, _ llm.GenerationConfig, _ string) docmodel.GenerationResult {
				return docmodel.GenerationResult{Success: true, Content: "# Généré\n\nContenu."}
			},
		}
	}
	return &DocumentService{
		builder:    prompt.NewBuilder(),
		generator:  llm.NewGenerator(provider),
		uploadDir:  t.TempDir(),
		exportsDir: t.TempDir(),
	}
}

func TestProcessUploadedFiles(t *testing.T) {
	s := newTestService(t, nil)

	content := "Première ligne détaillée du document.\nDeuxième ligne également très détaillée."
	sources, examples := s.ProcessUploadedFiles(
		[]UploadedFile{fakeUpload{"source.txt", []byte(content)}},
		[]UploadedFile{fakeUpload{"exemple.txt", []byte(content)}},
	)

	if len(sources) != 1 || len(examples) != 1 {
		t.Fatalf("got %d sources and %d examples, want 1 and 1", len(sources), len(examples))
	}

	src := sources[0]
	if src.Meta.FileType != docmodel.RoleOldSource {
		t.Errorf("source FileType = %q", src.Meta.FileType)
	}
	if examples[0].Meta.FileType != docmodel.RoleExample {
		t.Errorf("example FileType = %q", examples[0].Meta.FileType)
	}
	if src.Meta.OriginalFilename != "source.txt" {
		t.Errorf("OriginalFilename = %q", src.Meta.OriginalFilename)
	}
	if src.Meta.UniqueFilename == "" || src.Meta.UniqueFilename == "source.txt" {
		t.Errorf("UniqueFilename = %q, want a uniquified name", src.Meta.UniqueFilename)
	}
	if src.Text == "" {
		t.Error("processed text is empty")
	}
	if src.Meta.OriginalLength == 0 || src.Meta.ProcessedLength == 0 {
		t.Errorf("lengths = %d/%d", src.Meta.OriginalLength, src.Meta.ProcessedLength)
	}
}

func TestProcessUploadedFilesSkipsBadInputs(t *testing.T) {
	s := newTestService(t, nil)

	big := make([]byte, 11*1024*1024)
	sources, examples := s.ProcessUploadedFiles(
		[]UploadedFile{
			fakeUpload{"script.exe", []byte("binaire")},
			fakeUpload{"trop_gros.txt", big},
			nil,
		},
		nil,
	)

	if len(sources) != 0 || len(examples) != 0 {
		t.Errorf("invalid uploads must be skipped, got %d/%d", len(sources), len(examples))
	}
}

func TestProcessUploadedFilesCleansTempDir(t *testing.T) {
	s := newTestService(t, nil)

	s.ProcessUploadedFiles(
		[]UploadedFile{fakeUpload{"source.txt", []byte("contenu du document source")}}, nil)

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		t.Fatalf("reading upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temporary uploads left behind: %v", entries)
	}
}

func TestProcessTextInput(t *testing.T) {
	s := newTestService(t, nil)

	doc := s.ProcessTextInput("Texte collé par l'utilisateur.", "saisie directe", docmodel.RoleNewSource)
	if doc == nil {
		t.Fatal("expected a processed document")
	}
	if doc.Meta.Loader != docmodel.LoaderTextInput {
		t.Errorf("Loader = %q", doc.Meta.Loader)
	}
	if doc.Meta.FileType != docmodel.RoleNewSource {
		t.Errorf("FileType = %q", doc.Meta.FileType)
	}

	if s.ProcessTextInput("   ", "vide", docmodel.RoleNewSource) != nil {
		t.Error("blank input must yield nil")
	}
}

func TestGenerateDocumentRequiresInput(t *testing.T) {
	s := newTestService(t, nil)

	result := s.GenerateDocument(context.Background(), nil, nil, nil, "", nil)

	if result.Success {
		t.Fatal("expected rejection with no documents at all")
	}
	if !strings.Contains(result.Err, "Au moins un document") {
		t.Errorf("Err = %q", result.Err)
	}
}

func TestGenerateDocumentSuccess(t *testing.T) {
	var gotPayload docmodel.PromptPayload
	provider := &mockProvider{
		generateFunc: func(_ context.Context, payload docmodel.PromptPayload, _ llm.GenerationConfig, _ string) docmodel.GenerationResult {
			gotPayload = payload
			return docmodel.GenerationResult{Success: true, Content: "# Résultat\n\nTexte."}
		},
	}
	s := newTestService(t, provider)

	docs := []docmodel.ProcessedDocument{{Text: "contenu source"}}
	result := s.GenerateDocument(context.Background(), docs, docs, docs, "Soigne le style.", nil)

	if !result.Success {
		t.Fatalf("generation failed: %s", result.Err)
	}
	if result.Meta.OldSourceCount != 1 || result.Meta.ExampleCount != 1 || result.Meta.NewSourceCount != 1 {
		t.Errorf("group counts = %d/%d/%d", result.Meta.OldSourceCount, result.Meta.ExampleCount, result.Meta.NewSourceCount)
	}
	if result.Meta.UserDescription != "Soigne le style." {
		t.Errorf("UserDescription = %q", result.Meta.UserDescription)
	}
	if !strings.Contains(gotPayload.UserPrompt, "contenu source") {
		t.Error("prompt does not carry the documents")
	}
	if result.Meta.DocumentType != "markdown" {
		t.Errorf("DocumentType = %q", result.Meta.DocumentType)
	}
}

func TestGenerateDocumentFailureEnvelope(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(_ context.Context, _ docmodel.PromptPayload, _ llm.GenerationConfig, _ string) docmodel.GenerationResult {
			return docmodel.GenerationResult{
				Success: false,
				Err:     "Erreur HTTP API mock-model: 500",
				Meta:    docmodel.GenerationMeta{ErrorType: docmodel.ErrTypeHTTP, StatusCode: 500},
			}
		},
	}
	s := newTestService(t, provider)

	docs := []docmodel.ProcessedDocument{{Text: "contenu"}}
	result := s.GenerateDocument(context.Background(), docs, nil, nil, "", nil)

	if result.Success {
		t.Fatal("failure must propagate")
	}
	if result.Meta.ErrorType != docmodel.ErrTypeHTTP || result.Meta.StatusCode != 500 {
		t.Errorf("meta = %+v", result.Meta)
	}
}

func TestSaveGeneratedDocument(t *testing.T) {
	s := newTestService(t, nil)

	path, err := s.SaveGeneratedDocument("# Document\n\nContenu.", "")
	if err != nil {
		t.Fatalf("SaveGeneratedDocument: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("default filename missing .md: %q", path)
	}

	path, err = s.SaveGeneratedDocument("contenu", "mon_rapport")
	if err != nil {
		t.Fatalf("SaveGeneratedDocument: %v", err)
	}
	if !strings.HasSuffix(path, "mon_rapport.md") {
		t.Errorf("extension not enforced: %q", path)
	}
}

func TestExportDocument(t *testing.T) {
	s := newTestService(t, nil)
	markdown := "# Export\n\nParagraphe."

	for _, format := range []string{"md", "pdf", "docx"} {
		result := s.ExportDocument(markdown, format, "sortie", render.DocProps{Title: "Export"})
		if !result.Success {
			t.Errorf("ExportDocument(%q) failed: %s", format, result.Err)
		}
		if result.OutputPath == "" {
			t.Errorf("ExportDocument(%q) returned no path", format)
		}
	}

	if result := s.ExportDocument(markdown, "odt", "sortie", render.DocProps{}); result.Success {
		t.Error("unsupported format must fail")
	}
}

func TestGetServiceStatus(t *testing.T) {
	s := newTestService(t, nil)

	status := s.GetServiceStatus(context.Background())

	if !status.ServiceInitialized {
		t.Error("ServiceInitialized = false")
	}
	if !status.LLMConnection {
		t.Error("LLMConnection = false with a healthy mock provider")
	}
	if !status.DirectoriesReady["uploads"] || !status.DirectoriesReady["exports"] {
		t.Errorf("DirectoriesReady = %v", status.DirectoriesReady)
	}
	if status.Model != "mock-model" {
		t.Errorf("Model = %q", status.Model)
	}
	if len(status.SupportedFormats) != 3 {
		t.Errorf("SupportedFormats = %v", status.SupportedFormats)
	}
}
