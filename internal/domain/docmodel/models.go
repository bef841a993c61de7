package docmodel

import "time"

// GroupRole tags which of the three prompt groups a document belongs to,
// or marks pasted text that never went through a loader.
type GroupRole string

const (
	RoleOldSource GroupRole = "old_source"
	RoleExample   GroupRole = "example"
	RoleNewSource GroupRole = "new_source"
)

// Loader tags recorded in ExtractMeta.
const (
	LoaderPDF       = "pdf"
	LoaderTXT       = "txt"
	LoaderDOCX      = "docx"
	LoaderFallback  = "cat"
	LoaderTextInput = "text_input"
)

// ExtractMeta describes how a document was read. Format-specific counters
// stay zero for the formats they do not apply to. A non-empty Error together
// with empty text marks an ingestion failure; loaders never return errors
// across this boundary.
type ExtractMeta struct {
	FilePath string `json:"file_path"`
	Loader   string `json:"loader"`
	Error    string `json:"error,omitempty"`

	Pages           int   `json:"pages,omitempty"`
	TotalCharacters int   `json:"total_characters"`
	TotalLines      int   `json:"total_lines,omitempty"`
	TotalParagraphs int   `json:"total_paragraphs,omitempty"`
	TotalTables     int   `json:"total_tables,omitempty"`
	FileSizeBytes   int64 `json:"file_size_bytes,omitempty"`

	Encoding       string `json:"encoding,omitempty"`
	ForcedEncoding bool   `json:"forced_encoding,omitempty"`

	HasHeaders bool   `json:"has_headers,omitempty"`
	HasFooters bool   `json:"has_footers,omitempty"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Created    string `json:"created,omitempty"`
	Modified   string `json:"modified,omitempty"`
}

// ExtractedDocument is the immutable output of one loader run.
type ExtractedDocument struct {
	Text string      `json:"text"`
	Meta ExtractMeta `json:"metadata"`
}

// Failed reports whether extraction degraded to the empty-text envelope.
func (d ExtractedDocument) Failed() bool {
	return d.Text == "" && d.Meta.Error != ""
}

// ProcessedMeta is the loader metadata merged with processing fields.
type ProcessedMeta struct {
	ExtractMeta

	OriginalFilename string    `json:"original_filename"`
	UniqueFilename   string    `json:"unique_filename,omitempty"`
	FileType         GroupRole `json:"file_type"`
	FileSize         int64     `json:"file_size,omitempty"`
	OriginalLength   int       `json:"original_length"`
	ProcessedLength  int       `json:"processed_length"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// ProcessedDocument is an ExtractedDocument after cleaning and
// normalization, ready for prompt assembly. Created per upload or pasted
// text during one generation request; never persisted.
type ProcessedDocument struct {
	Text string        `json:"text"`
	Meta ProcessedMeta `json:"metadata"`
}

// PromptKind distinguishes the structured three-group prompt from the
// ad hoc escape hatch.
type PromptKind string

const (
	PromptTransformation PromptKind = "transformation"
	PromptSimple         PromptKind = "simple"
)

type PromptMeta struct {
	Kind               PromptKind `json:"type"`
	TotalLength        int        `json:"total_length"`
	SystemPromptLength int        `json:"system_prompt_length"`
	UserPromptLength   int        `json:"user_prompt_length"`
	OldSourceCount     int        `json:"old_source_documents_count"`
	ExampleCount       int        `json:"example_documents_count"`
	NewSourceCount     int        `json:"new_source_documents_count"`
	Truncated          bool       `json:"truncated"`
	Language           string     `json:"language,omitempty"`
	UserDescription    string     `json:"user_description,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// PromptPayload is built fresh per generation call and never mutated after
// construction; truncation produces a new payload.
type PromptPayload struct {
	SystemPrompt string     `json:"system_prompt"`
	UserPrompt   string     `json:"user_prompt"`
	Meta         PromptMeta `json:"metadata"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error types recorded in GenerationMeta.ErrorType.
const (
	ErrTypeHTTP    = "http_error"
	ErrTypeTimeout = "timeout"
	ErrTypeGeneric = "general_exception"
)

type ContentStats struct {
	CharacterCount int `json:"character_count"`
	WordCount      int `json:"word_count"`
	LineCount      int `json:"line_count"`
}

// GenerationMeta is filled by the LLM client with call facts and enriched
// by the document service with request-level facts.
type GenerationMeta struct {
	Timestamp      time.Time     `json:"timestamp"`
	Model          string        `json:"model"`
	PromptLength   int           `json:"prompt_length"`
	ResponseLength int           `json:"response_length,omitempty"`
	Usage          Usage         `json:"usage,omitempty"`
	FinishReason   string        `json:"finish_reason,omitempty"`
	Latency        time.Duration `json:"response_time"`

	ErrorType  string `json:"error_type,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`

	DocumentType string       `json:"document_type,omitempty"`
	ContentStats ContentStats `json:"content_stats,omitempty"`

	OldSourceCount  int        `json:"old_source_count,omitempty"`
	ExampleCount    int        `json:"example_count,omitempty"`
	NewSourceCount  int        `json:"new_source_count,omitempty"`
	UserDescription string     `json:"user_description,omitempty"`
	Prompt          PromptMeta `json:"prompt_metadata,omitempty"`
}

// GenerationResult is the uniform envelope for one LLM call: either
// success with content, or failure with a classified error. Immutable.
type GenerationResult struct {
	Success bool           `json:"success"`
	Content string         `json:"content"`
	Err     string         `json:"error,omitempty"`
	Meta    GenerationMeta `json:"metadata"`
}
