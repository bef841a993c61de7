package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dslipak/pdf"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/domain/docmodel"
)

// ExtractPDF extracts page text from a PDF. A page that hangs or panics is
// skipped so the rest of the document still comes through.
func ExtractPDF(path string) (doc docmodel.ExtractedDocument) {
	// the pdf library panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			doc = failure(path, docmodel.LoaderPDF, fmt.Errorf("pdf parsing panic: %v", r))
		}
	}()

	if !IsValidPDF(path) {
		return failure(path, docmodel.LoaderPDF, errors.New("not a valid pdf file"))
	}

	f, err := pdf.Open(path)
	if err != nil {
		return failure(path, docmodel.LoaderPDF, fmt.Errorf("failed to open pdf: %w", err))
	}

	numPages := f.NumPage()
	logger.Debug("pdf opened", "path", path, "pages", numPages)

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Warn("page extraction failed, skipping", "path", path, "page", i, "error", err)
			continue
		}
		if content != "" {
			pages = append(pages, content)
			logger.Debug("page extracted", "page", i, "characters", runeCount(content))
		}
	}

	fullText := strings.Join(pages, "\n\n")
	if fullText == "" && numPages > 0 {
		fullText = wholeDocumentText(f)
	}
	doc = docmodel.ExtractedDocument{
		Text: fullText,
		Meta: docmodel.ExtractMeta{
			FilePath:        path,
			Loader:          docmodel.LoaderPDF,
			Pages:           numPages,
			TotalCharacters: runeCount(fullText),
			FileSizeBytes:   fileSize(path),
		},
	}
	logger.Info("pdf extracted", "path", path, "pages", numPages, "characters", doc.Meta.TotalCharacters)
	return doc
}

// wholeDocumentText is the fallback when page-wise extraction came back
// empty: some files only expose their text through the reader-level API.
func wholeDocumentText(f *pdf.Reader) string {
	reader, err := f.GetPlainText()
	if err != nil {
		logger.Warn("whole-document text fallback failed", "error", err)
		return ""
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		logger.Warn("whole-document text fallback failed", "error", err)
		return ""
	}
	return sb.String()
}

// protectExtract runs GetPlainText in its own goroutine. Some PDFs make the
// parser spin or panic on a single page; a timeout bounds the damage.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("page panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageExtractTimeout):
		return "", errors.New("page extraction timeout")
	}
}
