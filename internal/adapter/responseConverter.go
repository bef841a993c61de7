// Package adapter converts internal result envelopes into the wire types
// of the public API.
package adapter

import (
	"github.com/docmorph/api/internal/api"
	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/internal/render"
	"github.com/docmorph/api/internal/service"
)

func ToGenerateResponse(result docmodel.GenerationResult, savedAs string) api.GenerateResponse {
	meta := api.GenerateMeta{
		Model:           result.Meta.Model,
		GeneratedAt:     result.Meta.Timestamp,
		DurationSeconds: result.Meta.Latency.Seconds(),
		PromptLength:    result.Meta.PromptLength,
		PromptTruncated: result.Meta.Prompt.Truncated,
		OldSourceCount:  result.Meta.OldSourceCount,
		ExampleCount:    result.Meta.ExampleCount,
		NewSourceCount:  result.Meta.NewSourceCount,
		FinishReason:    result.Meta.FinishReason,
		Usage:           result.Meta.Usage,
		ContentStats:    result.Meta.ContentStats,
	}

	if !result.Success {
		return api.GenerateResponse{
			Success: false,
			Error: &api.OutgoingError{
				Code:    result.Meta.StatusCode,
				Type:    result.Meta.ErrorType,
				Message: result.Err,
			},
			Metadata: meta,
		}
	}

	return api.GenerateResponse{
		Success:  true,
		Content:  result.Content,
		SavedAs:  savedAs,
		Metadata: meta,
	}
}

func ToExportResponse(result render.Result, format string) api.ExportResponse {
	if !result.Success {
		return api.ExportResponse{
			Format: format,
			Error: &api.OutgoingError{
				Type:    docmodel.ErrTypeGeneric,
				Message: result.Err,
			},
		}
	}
	return api.ExportResponse{
		Success:    true,
		OutputPath: result.OutputPath,
		Format:     format,
	}
}

func ToStatusResponse(status service.ServiceStatus) api.StatusResponse {
	return api.StatusResponse{
		ServiceInitialized: status.ServiceInitialized,
		LLMConnection:      status.LLMConnection,
		DirectoriesReady:   status.DirectoriesReady,
		SupportedFormats:   status.SupportedFormats,
		MaxFileSizeMB:      status.MaxFileSizeMB,
		Model:              status.Model,
	}
}

func BadRequest(errorType string, message string, code int) api.GenerateResponse {
	return api.GenerateResponse{
		Success: false,
		Error: &api.OutgoingError{
			Code:    code,
			Type:    errorType,
			Message: message,
		},
	}
}
