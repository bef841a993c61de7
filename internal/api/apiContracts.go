package api

import (
	"time"

	"github.com/docmorph/api/internal/domain/docmodel"
)

// GenerateResponse is the synchronous answer to a generation request:
// the Markdown content on success, a classified error otherwise.
type GenerateResponse struct {
	Success  bool           `json:"success"`
	Content  string         `json:"content,omitempty"`
	SavedAs  string         `json:"saved_as,omitempty"`
	Error    *OutgoingError `json:"error,omitempty"`
	Metadata GenerateMeta   `json:"metadata"`
}

type GenerateMeta struct {
	Model           string                `json:"model,omitempty"`
	GeneratedAt     time.Time             `json:"generated_at"`
	DurationSeconds float64               `json:"duration_seconds"`
	PromptLength    int                   `json:"prompt_length,omitempty"`
	PromptTruncated bool                  `json:"prompt_truncated"`
	OldSourceCount  int                   `json:"old_source_count"`
	ExampleCount    int                   `json:"example_count"`
	NewSourceCount  int                   `json:"new_source_count"`
	FinishReason    string                `json:"finish_reason,omitempty"`
	Usage           docmodel.Usage        `json:"usage,omitempty"`
	ContentStats    docmodel.ContentStats `json:"content_stats,omitempty"`
}

type OutgoingError struct {
	Code    int    `json:"code,omitempty" example:"502"`
	Type    string `json:"type" example:"http_error"`
	Message string `json:"message" example:"Erreur HTTP API gpt-4o: 429"`
}

// ExportResponse reports where the rendered file landed.
type ExportResponse struct {
	Success    bool           `json:"success"`
	OutputPath string         `json:"output_path,omitempty"`
	Format     string         `json:"format"`
	Error      *OutgoingError `json:"error,omitempty"`
}

// StatusResponse mirrors service.ServiceStatus for the status endpoint.
type StatusResponse struct {
	ServiceInitialized bool            `json:"service_initialized"`
	LLMConnection      bool            `json:"llm_connection"`
	DirectoriesReady   map[string]bool `json:"directories_ready"`
	SupportedFormats   []string        `json:"supported_formats"`
	MaxFileSizeMB      int             `json:"max_file_size_mb"`
	Model              string          `json:"model"`
}

// requests---------------------

type ExportRequest struct {
	Content  string `json:"content" validate:"required"`
	Format   string `json:"format" validate:"required"`
	Filename string `json:"filename,omitempty"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
}
