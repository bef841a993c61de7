package service

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateUniqueFilename(t *testing.T) {
	got := GenerateUniqueFilename("rapport final.pdf")

	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("extension lost: %q", got)
	}
	if !strings.HasPrefix(got, "rapport_final_") {
		t.Errorf("base name mangled: %q", got)
	}
	pattern := regexp.MustCompile(`^rapport_final_\d{8}_\d{6}_[0-9a-f]{8}\.pdf$`)
	if !pattern.MatchString(got) {
		t.Errorf("unexpected shape: %q", got)
	}

	if other := GenerateUniqueFilename("rapport final.pdf"); other == got {
		t.Error("two calls produced the same name")
	}
}

func TestValidateFileExtension(t *testing.T) {
	allowed := []string{"pdf", "txt", "docx"}
	tests := []struct {
		filename string
		expected bool
	}{
		{"doc.pdf", true},
		{"doc.PDF", true},
		{"notes.txt", true},
		{"archive.zip", false},
		{"", false},
		{"sans_extension", false},
	}
	for _, tt := range tests {
		if got := ValidateFileExtension(tt.filename, allowed); got != tt.expected {
			t.Errorf("ValidateFileExtension(%q) = %v, want %v", tt.filename, got, tt.expected)
		}
	}
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"rapport final.pdf", "rapport_final.pdf"},
		{`fichier<>:"|?*.txt`, "fichier_______.txt"},
		{"plusieurs   espaces", "plusieurs_espaces"},
	}
	for _, tt := range tests {
		if got := CleanFilename(tt.input); got != tt.expected {
			t.Errorf("CleanFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{512, "512.0 B"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.size); got != tt.expected {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, got, tt.expected)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("court", 100, "..."); got != "court" {
		t.Errorf("short text altered: %q", got)
	}
	got := TruncateText(strings.Repeat("a", 200), 10, "...")
	if got != strings.Repeat("a", 7)+"..." {
		t.Errorf("TruncateText() = %q", got)
	}
}
