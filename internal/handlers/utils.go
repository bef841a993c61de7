package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/docmorph/api/internal/adapter"
	"github.com/docmorph/api/internal/service"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, errorType string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(errorType, message, httpCode))
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true
	}
}

// multipartUpload adapts one multipart file header to service.UploadedFile.
// The bytes are read once, on first use.
type multipartUpload struct {
	header *multipart.FileHeader
	data   []byte
	read   bool
}

func (m *multipartUpload) Name() string {
	return m.header.Filename
}

func (m *multipartUpload) Bytes() []byte {
	if !m.read {
		m.read = true
		f, err := m.header.Open()
		if err != nil {
			logRH.Error("could not open uploaded part", "file", m.header.Filename, "error", err)
			return nil
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			logRH.Error("could not read uploaded part", "file", m.header.Filename, "error", err)
			return nil
		}
		m.data = data
	}
	return m.data
}

// collectGroupFiles gathers the multipart files of one form field into
// uploads the document service can consume.
func collectGroupFiles(r *http.Request, field string) []service.UploadedFile {
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]service.UploadedFile, 0, len(headers))
	for _, h := range headers {
		uploads = append(uploads, &multipartUpload{header: h})
	}
	return uploads
}
