package ingest

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lu4p/cat"

	"github.com/docmorph/api/internal/domain/docmodel"
)

// ExtractDOCX reads a .docx archive directly: body paragraphs, tables,
// section headers and footers, and the core document properties. If the
// archive cannot be walked it falls back to a plain text extraction.
func ExtractDOCX(path string) docmodel.ExtractedDocument {
	doc, err := extractDocxStructured(path)
	if err == nil {
		logger.Info("docx extracted", "path", path,
			"paragraphs", doc.Meta.TotalParagraphs, "tables", doc.Meta.TotalTables)
		return doc
	}

	logger.Warn("structured docx extraction failed, trying fallback", "path", path, "error", err)
	text, catErr := cat.File(path)
	if catErr != nil {
		return failure(path, docmodel.LoaderDOCX, err)
	}

	return docmodel.ExtractedDocument{
		Text: text,
		Meta: docmodel.ExtractMeta{
			FilePath:        path,
			Loader:          docmodel.LoaderFallback,
			TotalCharacters: runeCount(text),
			FileSizeBytes:   fileSize(path),
		},
	}
}

func extractDocxStructured(path string) (docmodel.ExtractedDocument, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return docmodel.ExtractedDocument{}, fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer archive.Close()

	var bodyFile *zip.File
	var headerFiles, footerFiles []*zip.File
	var coreFile *zip.File

	for _, f := range archive.File {
		switch {
		case f.Name == "word/document.xml":
			bodyFile = f
		case strings.HasPrefix(f.Name, "word/header") && strings.HasSuffix(f.Name, ".xml"):
			headerFiles = append(headerFiles, f)
		case strings.HasPrefix(f.Name, "word/footer") && strings.HasSuffix(f.Name, ".xml"):
			footerFiles = append(footerFiles, f)
		case f.Name == "docProps/core.xml":
			coreFile = f
		}
	}
	if bodyFile == nil {
		return docmodel.ExtractedDocument{}, errors.New("word/document.xml missing from archive")
	}
	sortZipFiles(headerFiles)
	sortZipFiles(footerFiles)

	paragraphs, tables, err := parseBody(bodyFile)
	if err != nil {
		return docmodel.ExtractedDocument{}, err
	}
	headers := collectMarginalia(headerFiles, "[EN-TÊTE]")
	footers := collectMarginalia(footerFiles, "[PIED DE PAGE]")

	var parts []string
	if len(headers) > 0 {
		parts = append(parts, headers...)
		parts = append(parts, banner("CONTENU PRINCIPAL"))
	}
	parts = append(parts, paragraphs...)
	if len(tables) > 0 {
		parts = append(parts, banner("TABLEAUX"))
		parts = append(parts, tables...)
	}
	if len(footers) > 0 {
		parts = append(parts, banner("PIEDS DE PAGE"))
		parts = append(parts, footers...)
	}
	fullText := strings.Join(parts, "\n")

	meta := docmodel.ExtractMeta{
		FilePath:        path,
		Loader:          docmodel.LoaderDOCX,
		TotalCharacters: runeCount(fullText),
		TotalParagraphs: len(paragraphs),
		TotalTables:     len(tables),
		HasHeaders:      len(headers) > 0,
		HasFooters:      len(footers) > 0,
		FileSizeBytes:   fileSize(path),
	}
	if coreFile != nil {
		if props, err := parseCoreProps(coreFile); err == nil {
			meta.Title = props.Title
			meta.Author = props.Creator
			meta.Subject = props.Subject
			meta.Created = props.Created
			meta.Modified = props.Modified
		} else {
			logger.Warn("could not read document properties", "path", path, "error", err)
		}
	}

	return docmodel.ExtractedDocument{Text: fullText, Meta: meta}, nil
}

func banner(title string) string {
	rule := strings.Repeat("=", 50)
	return "\n" + rule + " " + title + " " + rule + "\n"
}

func sortZipFiles(files []*zip.File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
}

// parseBody walks word/document.xml and splits its content into body
// paragraphs and formatted table blocks. Paragraphs inside table cells
// belong to the table, not the body.
func parseBody(f *zip.File) (paragraphs, tables []string, err error) {
	r, err := f.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer r.Close()

	decoder := xml.NewDecoder(r)

	var (
		tableDepth int
		inText     bool
		para       strings.Builder
		inPara     bool

		tableRows []string
		rowCells  []string
		cell      strings.Builder
		inCell    bool
	)

	flushTable := func() {
		if len(tableRows) == 0 {
			return
		}
		block := []string{fmt.Sprintf("\n--- Tableau %d ---", len(tables)+1)}
		block = append(block, tableRows...)
		tables = append(tables, strings.Join(block, "\n"))
		tableRows = nil
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("malformed %s: %w", f.Name, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					rowCells = nil
				}
			case "tc":
				if tableDepth == 1 {
					inCell = true
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					para.Reset()
				} else if inCell && cell.Len() > 0 {
					cell.WriteString("\n")
				}
			case "t":
				inText = true
			case "br", "cr":
				if inPara {
					para.WriteString("\n")
				} else if inCell {
					cell.WriteString("\n")
				}
			case "tab":
				if inPara {
					para.WriteString("\t")
				} else if inCell {
					cell.WriteString("\t")
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 1 {
					flushTable()
				}
				tableDepth--
			case "tr":
				if tableDepth == 1 {
					row := strings.Join(rowCells, " | ")
					if strings.TrimSpace(row) != "" {
						tableRows = append(tableRows, row)
					}
				}
			case "tc":
				if tableDepth == 1 && inCell {
					text := strings.ReplaceAll(strings.TrimSpace(cell.String()), "\n", " ")
					rowCells = append(rowCells, text)
					inCell = false
				}
			case "p":
				if tableDepth == 0 && inPara {
					if text := strings.TrimSpace(para.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
					inPara = false
				}
			case "t":
				inText = false
			}

		case xml.CharData:
			if !inText {
				continue
			}
			if inPara {
				para.Write(t)
			} else if inCell {
				cell.Write(t)
			}
		}
	}

	return paragraphs, tables, nil
}

// collectMarginalia extracts non-empty paragraphs from header or footer
// parts and tags each line.
func collectMarginalia(files []*zip.File, tag string) []string {
	var lines []string
	for _, f := range files {
		paragraphs, _, err := parseBody(f)
		if err != nil {
			logger.Warn("failed to parse docx part", "part", f.Name, "error", err)
			continue
		}
		for _, p := range paragraphs {
			lines = append(lines, tag+" "+p)
		}
	}
	return lines
}

type coreProps struct {
	Title    string `xml:"title"`
	Subject  string `xml:"subject"`
	Creator  string `xml:"creator"`
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

func parseCoreProps(f *zip.File) (coreProps, error) {
	var props coreProps
	r, err := f.Open()
	if err != nil {
		return props, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return props, err
	}
	if err := xml.Unmarshal(data, &props); err != nil {
		return props, err
	}
	return props, nil
}
