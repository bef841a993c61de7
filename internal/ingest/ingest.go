// Package ingest turns uploaded files into extracted documents. Extraction
// never returns an error across the package boundary: a failed read yields
// an empty-text document whose metadata carries the error string, so one bad
// upload cannot abort a whole generation request.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/pkg/logging"
)

var logger = logging.NewLogger("ingest")

// Format is a supported upload format, detected from the file extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatTXT  Format = "txt"
	FormatDOCX Format = "docx"
)

// DetectFormat maps a filename to its loader format.
func DetectFormat(filename string) (Format, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "pdf":
		return FormatPDF, true
	case "txt":
		return FormatTXT, true
	case "docx":
		return FormatDOCX, true
	}
	return "", false
}

// ExtractFile dispatches to the loader for the given format.
func ExtractFile(path string, format Format) docmodel.ExtractedDocument {
	switch format {
	case FormatPDF:
		return ExtractPDF(path)
	case FormatTXT:
		return ExtractTXT(path)
	case FormatDOCX:
		return ExtractDOCX(path)
	}
	return failure(path, "", fmt.Errorf("unsupported format: %q", format))
}

// Extract detects the format from the path and extracts.
func Extract(path string) docmodel.ExtractedDocument {
	format, ok := DetectFormat(path)
	if !ok {
		return failure(path, "", fmt.Errorf("unsupported file extension: %q", filepath.Ext(path)))
	}
	return ExtractFile(path, format)
}

// IsValidPDF checks the magic header without parsing the whole file.
func IsValidPDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := f.Read(header); err != nil {
		return false
	}
	return string(header) == "%PDF"
}

func failure(path, loader string, err error) docmodel.ExtractedDocument {
	logger.Error("extraction failed", "path", path, "loader", loader, "error", err)
	return docmodel.ExtractedDocument{
		Meta: docmodel.ExtractMeta{
			FilePath: path,
			Loader:   loader,
			Error:    err.Error(),
		},
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func runeCount(s string) int {
	return len([]rune(s))
}
