package render

import (
	"reflect"
	"testing"
)

func TestParseMarkdownHeadings(t *testing.T) {
	blocks := parseMarkdown("# Titre\n## Sous-titre\n#### Profond")

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if blocks[0].kind != blockHeading || blocks[0].level != 1 || blocks[0].text != "Titre" {
		t.Errorf("blocks[0] = %+v", blocks[0])
	}
	if blocks[1].level != 2 {
		t.Errorf("blocks[1].level = %d, want 2", blocks[1].level)
	}
	// deeper levels are capped at 3
	if blocks[2].level != 3 {
		t.Errorf("blocks[2].level = %d, want 3", blocks[2].level)
	}
}

func TestParseMarkdownLists(t *testing.T) {
	blocks := parseMarkdown("- premier\n- deuxième\n1. un\n2. deux")

	kinds := []blockKind{blockBullet, blockBullet, blockNumbered, blockNumbered}
	texts := []string{"premier", "deuxième", "un", "deux"}
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}
	for i := range blocks {
		if blocks[i].kind != kinds[i] || blocks[i].text != texts[i] {
			t.Errorf("blocks[%d] = %+v", i, blocks[i])
		}
	}
}

func TestParseMarkdownCodeFence(t *testing.T) {
	blocks := parseMarkdown("```\nfunc main() {}\nfmt.Println(1)\n```\napres")

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].kind != blockCode || blocks[0].text != "func main() {}\nfmt.Println(1)" {
		t.Errorf("blocks[0] = %+v", blocks[0])
	}
	if blocks[1].kind != blockParagraph {
		t.Errorf("content after the fence not parsed: %+v", blocks[1])
	}
}

func TestParseMarkdownQuote(t *testing.T) {
	blocks := parseMarkdown("> première partie\n> seconde partie")

	if len(blocks) != 1 || blocks[0].kind != blockQuote {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[0].text != "première partie seconde partie" {
		t.Errorf("quote text = %q", blocks[0].text)
	}
}

func TestParseMarkdownTableSkipsSeparator(t *testing.T) {
	blocks := parseMarkdown("| Nom | Valeur |\n| --- | --- |\n| Alpha | 1 |")

	if len(blocks) != 1 || blocks[0].kind != blockTable {
		t.Fatalf("blocks = %+v", blocks)
	}
	want := [][]string{{"Nom", "Valeur"}, {"Alpha", "1"}}
	if !reflect.DeepEqual(blocks[0].rows, want) {
		t.Errorf("rows = %v, want %v", blocks[0].rows, want)
	}
}

func TestParseMarkdownBlankCollapse(t *testing.T) {
	blocks := parseMarkdown("un\n\n\n\ndeux")

	kinds := make([]blockKind, 0, len(blocks))
	for _, b := range blocks {
		kinds = append(kinds, b.kind)
	}
	want := []blockKind{blockParagraph, blockBlank, blockParagraph}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestParseInline(t *testing.T) {
	spans := parseInline("texte **gras** puis *italique* et `code` fin")

	want := []span{
		{spanPlain, "texte "},
		{spanBold, "gras"},
		{spanPlain, " puis "},
		{spanItalic, "italique"},
		{spanPlain, " et "},
		{spanCode, "code"},
		{spanPlain, " fin"},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("spans = %v, want %v", spans, want)
	}
}

func TestParseInlineUnderscoreItalic(t *testing.T) {
	spans := parseInline("mot _souligné_ fin")
	if len(spans) != 3 || spans[1].style != spanItalic || spans[1].text != "souligné" {
		t.Errorf("spans = %v", spans)
	}
}

func TestPlainText(t *testing.T) {
	if got := plainText("**Nom** et `code`"); got != "Nom et code" {
		t.Errorf("plainText() = %q", got)
	}
}
