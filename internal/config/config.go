package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	IsProd       = false
	LogLevelProd = slog.LevelInfo
	TraceIDKey   = "traceId"

	RateLimitPerSecond      = 2
	BurstRateLimitPerSecond = 5

	// server timeouts
	// WriteTimeout must cover a full synchronous generation, which is
	// dominated by the LLM round trip.
	ReadTimeout            = 10 * time.Second
	WriteTimeout           = 90 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	// server listening port
	ServerListenAddr = ":3000"

	// ingestion
	MaxFileSizeMB               = 10
	MaxUploadBytes              = 32 << 20
	EncodingSampleSize          = 10000
	EncodingConfidenceThreshold = 70 // chardet reports confidence on a 0-100 scale
	DefaultTextEncoding         = "utf-8"
	PageExtractTimeout          = 10 * time.Second

	UploadDir  = "data/uploads"
	ExportsDir = "data/exports"

	// prompt budget
	MaxContextLength = 8000
	DefaultLanguage  = "français"

	// llm
	LLMRequestTimeout = 60 * time.Second
	APIVersion        = "2024-06-01"
	DefaultModelName  = "gpt-4o"
	DefaultUserID     = "docmorph-user"

	// outbound connection pool
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
)

// SupportedFormats lists the upload extensions the loaders can handle.
var SupportedFormats = []string{"pdf", "txt", "docx"}

// ProviderAzure targets an APIM-fronted chat-completions deployment;
// ProviderOpenAI targets any OpenAI-compatible endpoint.
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

// Settings carries the environment-provided configuration. API key and
// endpoint are required; everything else has defaults.
type Settings struct {
	APIKey   string
	Endpoint string
	Model    string
	Provider string
}

func LoadSettings() Settings {
	// a missing .env file is fine, the process env still applies
	_ = godotenv.Load()

	s := Settings{
		APIKey:   os.Getenv("DOCMORPH_API_KEY"),
		Endpoint: os.Getenv("DOCMORPH_ENDPOINT"),
		Model:    os.Getenv("DOCMORPH_MODEL"),
		Provider: os.Getenv("DOCMORPH_PROVIDER"),
	}
	if s.Model == "" {
		s.Model = DefaultModelName
	}
	if s.Provider == "" {
		s.Provider = ProviderAzure
	}
	return s
}

func (s Settings) Validate() error {
	if s.APIKey == "" || s.Endpoint == "" {
		return errors.New("DOCMORPH_API_KEY and DOCMORPH_ENDPOINT must be set")
	}
	if s.Provider != ProviderAzure && s.Provider != ProviderOpenAI {
		return errors.New("DOCMORPH_PROVIDER must be \"azure\" or \"openai\"")
	}
	return nil
}
