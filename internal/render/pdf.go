package render

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

// PDFStyle carries the typography of the PDF export. Zero fields fall back
// to the defaults.
type PDFStyle struct {
	BodyFont   string
	BodySize   float64
	LineHeight float64
	H1Size     float64
	H2Size     float64
	H3Size     float64
	CodeFont   string
	CodeSize   float64
	MarginMM   float64
}

func DefaultPDFStyle() PDFStyle {
	return PDFStyle{
		BodyFont:   "Arial",
		BodySize:   11,
		LineHeight: 6,
		H1Size:     24,
		H2Size:     20,
		H3Size:     16,
		CodeFont:   "Courier",
		CodeSize:   10,
		MarginMM:   20,
	}
}

func (s PDFStyle) withDefaults() PDFStyle {
	d := DefaultPDFStyle()
	if s.BodyFont == "" {
		s.BodyFont = d.BodyFont
	}
	if s.BodySize == 0 {
		s.BodySize = d.BodySize
	}
	if s.LineHeight == 0 {
		s.LineHeight = d.LineHeight
	}
	if s.H1Size == 0 {
		s.H1Size = d.H1Size
	}
	if s.H2Size == 0 {
		s.H2Size = d.H2Size
	}
	if s.H3Size == 0 {
		s.H3Size = d.H3Size
	}
	if s.CodeFont == "" {
		s.CodeFont = d.CodeFont
	}
	if s.CodeSize == 0 {
		s.CodeSize = d.CodeSize
	}
	if s.MarginMM == 0 {
		s.MarginMM = d.MarginMM
	}
	return s
}

func (s PDFStyle) headingSize(level int) float64 {
	switch level {
	case 1:
		return s.H1Size
	case 2:
		return s.H2Size
	default:
		return s.H3Size
	}
}

// ToPDF renders Markdown to an A4 PDF at outputPath.
func ToPDF(markdown, outputPath string, props DocProps, style PDFStyle) Result {
	style = style.withDefaults()
	blocks := parseMarkdown(markdown)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(style.MarginMM, style.MarginMM, style.MarginMM)
	pdf.SetAutoPageBreak(true, style.MarginMM)
	pdf.SetTitle(props.Title, true)
	pdf.SetAuthor(props.Author, true)
	pdf.SetSubject(props.Subject, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*style.MarginMM

	listNumber := 0
	for _, b := range blocks {
		if b.kind != blockNumbered {
			listNumber = 0
		}

		switch b.kind {
		case blockHeading:
			pdf.SetFont(style.BodyFont, "B", style.headingSize(b.level))
			pdf.MultiCell(contentWidth, style.LineHeight+2, tr(plainText(b.text)), "", "L", false)
			pdf.Ln(2)

		case blockParagraph:
			writeSpans(pdf, tr, b.text, style)
			pdf.Ln(style.LineHeight)

		case blockBullet:
			pdf.SetFont(style.BodyFont, "", style.BodySize)
			pdf.SetX(style.MarginMM + 5)
			pdf.Write(style.LineHeight, tr("• "))
			writeSpans(pdf, tr, b.text, style)
			pdf.Ln(style.LineHeight)

		case blockNumbered:
			listNumber++
			pdf.SetFont(style.BodyFont, "", style.BodySize)
			pdf.SetX(style.MarginMM + 5)
			pdf.Write(style.LineHeight, tr(fmt.Sprintf("%d. ", listNumber)))
			writeSpans(pdf, tr, b.text, style)
			pdf.Ln(style.LineHeight)

		case blockQuote:
			pdf.SetFont(style.BodyFont, "I", style.BodySize)
			pdf.SetLeftMargin(style.MarginMM + 8)
			pdf.MultiCell(contentWidth-8, style.LineHeight, tr(plainText(b.text)), "", "L", false)
			pdf.SetLeftMargin(style.MarginMM)
			pdf.Ln(2)

		case blockCode:
			pdf.SetFont(style.CodeFont, "", style.CodeSize)
			pdf.SetFillColor(241, 242, 246)
			pdf.MultiCell(contentWidth, style.LineHeight-1, tr(b.text), "", "L", true)
			pdf.SetFillColor(255, 255, 255)
			pdf.Ln(2)

		case blockTable:
			writeTable(pdf, tr, b.rows, contentWidth, style)
			pdf.Ln(2)

		case blockBlank:
			pdf.Ln(style.LineHeight / 2)
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		logger.Error("pdf rendering failed", "path", outputPath, "error", err)
		return Result{
			OutputPath: outputPath,
			Err:        fmt.Sprintf("Erreur lors de la conversion PDF: %v", err),
		}
	}

	result := Result{
		Success:    true,
		OutputPath: outputPath,
		Meta: ConversionMeta{
			ConvertedAt:    time.Now(),
			Converter:      "fpdf",
			FileSizeBytes:  outputFileSize(outputPath),
			MarkdownLength: utf8.RuneCountInString(markdown),
			BlockCount:     len(blocks),
		},
	}
	logger.Info("pdf generated", "path", outputPath, "bytes", result.Meta.FileSizeBytes)
	return result
}

func writeSpans(pdf *fpdf.Fpdf, tr func(string) string, text string, style PDFStyle) {
	for _, s := range parseInline(text) {
		switch s.style {
		case spanBold:
			pdf.SetFont(style.BodyFont, "B", style.BodySize)
		case spanItalic:
			pdf.SetFont(style.BodyFont, "I", style.BodySize)
		case spanCode:
			pdf.SetFont(style.CodeFont, "", style.CodeSize)
		default:
			pdf.SetFont(style.BodyFont, "", style.BodySize)
		}
		pdf.Write(style.LineHeight, tr(s.text))
	}
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, rows [][]string, contentWidth float64, style PDFStyle) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	colWidth := contentWidth / float64(cols)

	for rowIdx, row := range rows {
		if rowIdx == 0 {
			pdf.SetFont(style.BodyFont, "B", style.BodySize)
			pdf.SetFillColor(242, 242, 242)
		} else {
			pdf.SetFont(style.BodyFont, "", style.BodySize)
			pdf.SetFillColor(255, 255, 255)
		}
		for colIdx := 0; colIdx < cols; colIdx++ {
			cell := ""
			if colIdx < len(row) {
				cell = row[colIdx]
			}
			pdf.CellFormat(colWidth, style.LineHeight+2, tr(plainText(cell)), "1", 0, "L", rowIdx == 0, 0, "")
		}
		pdf.Ln(-1)
	}
}

func outputFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
