// Package render turns generated Markdown into export formats. Rendering
// never returns an error across the package boundary; failures come back in
// the result envelope.
package render

import (
	"regexp"
	"strings"
	"time"

	"github.com/docmorph/api/pkg/logging"
)

var logger = logging.NewLogger("render")

// Result is the uniform envelope of one conversion.
type Result struct {
	Success    bool           `json:"success"`
	OutputPath string         `json:"output_path"`
	Err        string         `json:"error,omitempty"`
	Meta       ConversionMeta `json:"metadata"`
}

type ConversionMeta struct {
	ConvertedAt    time.Time `json:"converted_at"`
	Converter      string    `json:"converter_used"`
	FileSizeBytes  int64     `json:"file_size"`
	MarkdownLength int       `json:"markdown_length"`
	BlockCount     int       `json:"block_count"`
}

// DocProps feed the output document properties.
type DocProps struct {
	Title   string
	Author  string
	Subject string
}

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockBullet
	blockNumbered
	blockCode
	blockQuote
	blockTable
	blockBlank
)

type block struct {
	kind  blockKind
	level int        // heading level, capped at 3
	text  string     // heading, paragraph, list item, quote or code text
	rows  [][]string // table rows, separator line removed
}

var numberedItemRe = regexp.MustCompile(`^\s*\d+\.\s*`)

// parseMarkdown does a line-oriented pass over the content. It covers what
// the model actually emits: headings, paragraphs, both list kinds, fenced
// code, quotes and pipe tables.
func parseMarkdown(content string) []block {
	lines := strings.Split(content, "\n")
	var blocks []block

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "#"):
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			text := strings.TrimSpace(line[level:])
			if level > 3 {
				level = 3
			}
			blocks = append(blocks, block{kind: blockHeading, level: level, text: text})

		case strings.HasPrefix(trimmed, "```"):
			var code []string
			for i++; i < len(lines); i++ {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
					break
				}
				code = append(code, lines[i])
			}
			blocks = append(blocks, block{kind: blockCode, text: strings.Join(code, "\n")})

		case isBulletItem(trimmed):
			blocks = append(blocks, block{kind: blockBullet, text: strings.TrimSpace(trimmed[1:])})

		case numberedItemRe.MatchString(line):
			blocks = append(blocks, block{kind: blockNumbered, text: numberedItemRe.ReplaceAllString(line, "")})

		case strings.HasPrefix(trimmed, ">"):
			var quote []string
			for ; i < len(lines); i++ {
				t := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(t, ">") {
					i--
					break
				}
				quote = append(quote, strings.TrimSpace(strings.TrimPrefix(t, ">")))
			}
			blocks = append(blocks, block{kind: blockQuote, text: strings.Join(quote, " ")})

		case strings.Contains(line, "|") && trimmed != "":
			var rows [][]string
			for ; i < len(lines); i++ {
				t := strings.TrimSpace(lines[i])
				if !strings.Contains(lines[i], "|") || t == "" {
					i--
					break
				}
				if strings.Contains(t, "---") {
					continue
				}
				if cells := splitTableRow(t); len(cells) > 0 {
					rows = append(rows, cells)
				}
			}
			if len(rows) > 0 {
				blocks = append(blocks, block{kind: blockTable, rows: rows})
			}

		case trimmed == "":
			if len(blocks) > 0 && blocks[len(blocks)-1].kind != blockBlank {
				blocks = append(blocks, block{kind: blockBlank})
			}

		default:
			blocks = append(blocks, block{kind: blockParagraph, text: line})
		}
	}

	return blocks
}

func isBulletItem(trimmed string) bool {
	if len(trimmed) < 2 {
		return false
	}
	if trimmed[0] != '-' && trimmed[0] != '*' && trimmed[0] != '+' {
		return false
	}
	return trimmed[1] == ' ' || trimmed[1] == '\t'
}

func splitTableRow(line string) []string {
	parts := strings.Split(line, "|")
	// drop the empty leading and trailing fields of "| a | b |"
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

type spanStyle int

const (
	spanPlain spanStyle = iota
	spanBold
	spanItalic
	spanCode
)

type span struct {
	style spanStyle
	text  string
}

var inlinePatterns = []struct {
	re    *regexp.Regexp
	style spanStyle
}{
	{regexp.MustCompile(`\*\*(.+?)\*\*`), spanBold},
	{regexp.MustCompile(`\*(.+?)\*`), spanItalic},
	{regexp.MustCompile("`(.+?)`"), spanCode},
	{regexp.MustCompile(`_(.+?)_`), spanItalic},
}

// parseInline splits a line into styled spans, always consuming the
// earliest marker first so nested-looking input degrades predictably.
func parseInline(text string) []span {
	var spans []span
	remaining := text

	for remaining != "" {
		bestPos := len(remaining)
		bestIdx := -1
		var bestLoc []int

		for idx, p := range inlinePatterns {
			loc := p.re.FindStringSubmatchIndex(remaining)
			if loc != nil && loc[0] < bestPos {
				bestPos = loc[0]
				bestIdx = idx
				bestLoc = loc
			}
		}

		if bestIdx == -1 {
			spans = append(spans, span{style: spanPlain, text: remaining})
			break
		}

		if bestLoc[0] > 0 {
			spans = append(spans, span{style: spanPlain, text: remaining[:bestLoc[0]]})
		}
		spans = append(spans, span{
			style: inlinePatterns[bestIdx].style,
			text:  remaining[bestLoc[2]:bestLoc[3]],
		})
		remaining = remaining[bestLoc[1]:]
	}

	return spans
}

// plainText flattens a line, dropping the inline markers.
func plainText(text string) string {
	var b strings.Builder
	for _, s := range parseInline(text) {
		b.WriteString(s.text)
	}
	return b.String()
}
