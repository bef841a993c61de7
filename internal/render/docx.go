package render

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// ToDOCX renders Markdown to a Word document at outputPath. The archive is
// written directly: content types, relationships, styles, core properties
// and the document body.
func ToDOCX(markdown, outputPath string, props DocProps) Result {
	blocks := parseMarkdown(markdown)

	f, err := os.Create(outputPath)
	if err != nil {
		return docxFailure(outputPath, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml":          docxContentTypes,
		"_rels/.rels":                  docxRootRels,
		"word/_rels/document.xml.rels": docxDocumentRels,
		"word/styles.xml":              docxStyles,
		"docProps/core.xml":            buildCoreProps(props),
		"word/document.xml":            buildDocumentXML(blocks),
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return docxFailure(outputPath, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			zw.Close()
			return docxFailure(outputPath, err)
		}
	}
	if err := zw.Close(); err != nil {
		return docxFailure(outputPath, err)
	}

	result := Result{
		Success:    true,
		OutputPath: outputPath,
		Meta: ConversionMeta{
			ConvertedAt:    time.Now(),
			Converter:      "docx",
			FileSizeBytes:  outputFileSize(outputPath),
			MarkdownLength: utf8.RuneCountInString(markdown),
			BlockCount:     len(blocks),
		},
	}
	logger.Info("docx generated", "path", outputPath, "bytes", result.Meta.FileSizeBytes)
	return result
}

func docxFailure(outputPath string, err error) Result {
	logger.Error("docx rendering failed", "path", outputPath, "error", err)
	return Result{
		OutputPath: outputPath,
		Err:        fmt.Sprintf("Erreur lors de la conversion DOCX: %v", err),
	}
}

func buildDocumentXML(blocks []block) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	listNumber := 0
	for _, blk := range blocks {
		if blk.kind != blockNumbered {
			listNumber = 0
		}

		switch blk.kind {
		case blockHeading:
			b.WriteString(styledParagraph(fmt.Sprintf("Heading%d", blk.level), runsXML(parseInline(blk.text))))
		case blockParagraph:
			b.WriteString(paragraph(runsXML(parseInline(blk.text))))
		case blockBullet:
			b.WriteString(styledParagraph("ListParagraph", run("", "• ")+runsXML(parseInline(blk.text))))
		case blockNumbered:
			listNumber++
			b.WriteString(styledParagraph("ListParagraph",
				run("", fmt.Sprintf("%d. ", listNumber))+runsXML(parseInline(blk.text))))
		case blockQuote:
			b.WriteString(styledParagraph("Quote", runsXML(parseInline(blk.text))))
		case blockCode:
			b.WriteString(paragraph(codeRuns(blk.text)))
		case blockTable:
			b.WriteString(tableXML(blk.rows))
		case blockBlank:
			b.WriteString("<w:p/>")
		}
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func paragraph(runs string) string {
	return "<w:p>" + runs + "</w:p>"
}

func styledParagraph(style, runs string) string {
	return `<w:p><w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>` + runs + "</w:p>"
}

// run emits one run; rpr is the raw run-properties XML, empty for plain.
func run(rpr, text string) string {
	return "<w:r>" + rpr + `<w:t xml:space="preserve">` + escapeXML(text) + "</w:t></w:r>"
}

func runsXML(spans []span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.style {
		case spanBold:
			b.WriteString(run("<w:rPr><w:b/></w:rPr>", s.text))
		case spanItalic:
			b.WriteString(run("<w:rPr><w:i/></w:rPr>", s.text))
		case spanCode:
			b.WriteString(run(codeRunProps, s.text))
		default:
			b.WriteString(run("", s.text))
		}
	}
	return b.String()
}

const codeRunProps = `<w:rPr><w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/><w:sz w:val="20"/></w:rPr>`

func codeRuns(text string) string {
	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("<w:r><w:br/></w:r>")
		}
		b.WriteString(run(codeRunProps, line))
	}
	return b.String()
}

func tableXML(rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4"/><w:bottom w:val="single" w:sz="4"/>` +
		`<w:left w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/>` +
		`<w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/>` +
		`</w:tblBorders></w:tblPr>`)

	for rowIdx, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			rpr := ""
			if rowIdx == 0 {
				rpr = "<w:rPr><w:b/></w:rPr>"
			}
			b.WriteString("<w:tc><w:p>" + run(rpr, plainText(cell)) + "</w:p></w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

func buildCoreProps(props DocProps) string {
	now := time.Now().UTC().Format(time.RFC3339)
	return xmlHeader + `<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		"<dc:title>" + escapeXML(props.Title) + "</dc:title>" +
		"<dc:creator>" + escapeXML(props.Author) + "</dc:creator>" +
		"<dc:subject>" + escapeXML(props.Subject) + "</dc:subject>" +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + now + "</dcterms:created>" +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + now + "</dcterms:modified>" +
		"</cp:coreProperties>"
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

const docxContentTypes = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const docxRootRels = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

const docxDocumentRels = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const docxStyles = xmlHeader +
	`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:rPr><w:b/><w:sz w:val="36"/><w:color w:val="2C3E50"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:rPr><w:b/><w:sz w:val="32"/><w:color w:val="34495E"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:rPr><w:b/><w:sz w:val="28"/><w:color w:val="34495E"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/><w:rPr><w:i/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/><w:pPr><w:ind w:left="720"/></w:pPr></w:style>` +
	`</w:styles>`
