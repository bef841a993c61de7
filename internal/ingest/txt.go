package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/domain/docmodel"
)

// ExtractTXT reads a plain text file, sniffing the character encoding from
// the first few kilobytes and falling back to UTF-8 on low confidence.
func ExtractTXT(path string) docmodel.ExtractedDocument {
	data, err := os.ReadFile(path)
	if err != nil {
		return failure(path, docmodel.LoaderTXT, err)
	}

	encoding := detectEncoding(data)
	content, err := decodeText(data, encoding)
	if err != nil {
		return failure(path, docmodel.LoaderTXT, err)
	}

	doc := docmodel.ExtractedDocument{
		Text: content,
		Meta: docmodel.ExtractMeta{
			FilePath:        path,
			Loader:          docmodel.LoaderTXT,
			Encoding:        encoding,
			FileSizeBytes:   int64(len(data)),
			TotalCharacters: runeCount(content),
			TotalLines:      lineCount(content),
		},
	}
	logger.Info("txt extracted", "path", path, "lines", doc.Meta.TotalLines, "characters", doc.Meta.TotalCharacters)
	return doc
}

// ExtractTXTWithEncoding skips detection and decodes with the given charset.
func ExtractTXTWithEncoding(path, encoding string) docmodel.ExtractedDocument {
	data, err := os.ReadFile(path)
	if err != nil {
		return failure(path, docmodel.LoaderTXT, err)
	}

	content, err := decodeText(data, encoding)
	if err != nil {
		return failure(path, docmodel.LoaderTXT, err)
	}

	return docmodel.ExtractedDocument{
		Text: content,
		Meta: docmodel.ExtractMeta{
			FilePath:        path,
			Loader:          docmodel.LoaderTXT,
			Encoding:        encoding,
			ForcedEncoding:  true,
			FileSizeBytes:   int64(len(data)),
			TotalCharacters: runeCount(content),
			TotalLines:      lineCount(content),
		},
	}
}

// detectEncoding sniffs a sample of the raw bytes. Low-confidence guesses
// are discarded in favor of the default so that ordinary UTF-8 uploads are
// never mangled by an exotic misdetection.
func detectEncoding(data []byte) string {
	sample := data
	if len(sample) > config.EncodingSampleSize {
		sample = sample[:config.EncodingSampleSize]
	}
	if len(sample) == 0 {
		return config.DefaultTextEncoding
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result.Charset == "" {
		return config.DefaultTextEncoding
	}
	logger.Debug("encoding detected", "charset", result.Charset, "confidence", result.Confidence)
	if result.Confidence < config.EncodingConfidenceThreshold {
		logger.Warn("low confidence encoding detection, using default", "charset", result.Charset, "confidence", result.Confidence)
		return config.DefaultTextEncoding
	}
	return strings.ToLower(result.Charset)
}

func decodeText(data []byte, charset string) (string, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "ascii", "us-ascii", "":
		return string(data), nil
	}

	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unknown charset %q", charset)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", charset, err)
	}
	return string(decoded), nil
}

// lineCount counts lines the way a text editor would: a trailing newline
// does not start an extra empty line.
func lineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
