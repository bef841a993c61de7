package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/docmorph/api/internal/adapter"
	"github.com/docmorph/api/internal/api"
	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/internal/llm"
	"github.com/docmorph/api/internal/render"
	"github.com/docmorph/api/internal/service"
	"github.com/docmorph/api/pkg/logging"
)

var (
	documentService *service.DocumentService //private singleton
	once            sync.Once
	logRH           *logging.Logger
)

func InitHandlers(svc *service.DocumentService) {
	once.Do(func() {
		documentService = svc
		logRH = logging.NewLogger("RequestHandler")
		logRH.Info("Starting request handlers")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GenerateHandler runs one synchronous transformation: multipart uploads
// and pasted text in, generated Markdown out. The three form groups are
// old_sources, examples and new_sources; each also accepts a *_text field
// for pasted content.
func GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}
	log := logRH.WithTrace(r.Context())

	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		log.Warn("Bad generate request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, docmodel.ErrTypeGeneric, "Requête multipart invalide ou trop volumineuse")
		return
	}

	oldSources := documentService.ProcessFilesForRole(collectGroupFiles(r, "old_sources"), docmodel.RoleOldSource)
	examples := documentService.ProcessFilesForRole(collectGroupFiles(r, "examples"), docmodel.RoleExample)
	newSources := documentService.ProcessFilesForRole(collectGroupFiles(r, "new_sources"), docmodel.RoleNewSource)

	oldSources = appendTextInput(oldSources, r.FormValue("old_sources_text"), docmodel.RoleOldSource)
	examples = appendTextInput(examples, r.FormValue("examples_text"), docmodel.RoleExample)
	newSources = appendTextInput(newSources, r.FormValue("new_sources_text"), docmodel.RoleNewSource)

	override, err := parseGenerationConfig(r.FormValue("config"))
	if err != nil {
		log.Warn("Bad generation config", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, docmodel.ErrTypeGeneric, "Configuration de génération invalide")
		return
	}

	result := documentService.GenerateDocument(r.Context(), oldSources, examples, newSources, r.FormValue("user_description"), override)

	savedAs := ""
	if result.Success {
		if path, err := documentService.SaveGeneratedDocument(result.Content, r.FormValue("filename")); err == nil {
			savedAs = path
		}
	}

	writeJsonResponse(w, statusForResult(result), adapter.ToGenerateResponse(result, savedAs))
}

// ExportHandler renders previously generated Markdown into pdf, docx or md.
func ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}
	log := logRH.WithTrace(r.Context())

	var requestData api.ExportRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Error("Couldn't close the export request reader :", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Content == "" {
		log.Warn("Bad export request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, docmodel.ErrTypeGeneric, "Contenu ou format manquant")
		return
	}

	format := strings.ToLower(requestData.Format)
	switch format {
	case "pdf", "docx", "md", "markdown":
	default:
		WriteErrorResponse(w, http.StatusBadRequest, docmodel.ErrTypeGeneric, "Format d'export non supporté: "+requestData.Format)
		return
	}

	result := documentService.ExportDocument(requestData.Content, format, requestData.Filename, render.DocProps{
		Title:   requestData.Title,
		Author:  requestData.Author,
		Subject: requestData.Subject,
	})

	code := http.StatusOK
	if !result.Success {
		code = http.StatusInternalServerError
	}
	writeJsonResponse(w, code, adapter.ToExportResponse(result, format))
}

// GetStatusHandler reports component health, including a live LLM probe.
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	status := documentService.GetServiceStatus(r.Context())
	writeJsonResponse(w, http.StatusOK, adapter.ToStatusResponse(status))
}

func appendTextInput(docs []docmodel.ProcessedDocument, text string, role docmodel.GroupRole) []docmodel.ProcessedDocument {
	if doc := documentService.ProcessTextInput(text, "texte collé", role); doc != nil {
		docs = append(docs, *doc)
	}
	return docs
}

func parseGenerationConfig(raw string) (*llm.GenerationConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	cfg := llm.DocumentConfig()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// statusForResult maps the error taxonomy to HTTP codes. Validation
// failures never reach the provider and carry no model name.
func statusForResult(result docmodel.GenerationResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Meta.ErrorType {
	case docmodel.ErrTypeTimeout:
		return http.StatusGatewayTimeout
	case docmodel.ErrTypeHTTP:
		return http.StatusBadGateway
	default:
		if result.Meta.Model == "" {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}
