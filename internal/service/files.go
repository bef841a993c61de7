package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateUniqueFilename derives a collision-free name from the original:
// base, timestamp, then the first uuid segment, keeping the extension.
func GenerateUniqueFilename(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := CleanFilename(strings.TrimSuffix(originalFilename, ext))
	timestamp := time.Now().Format("20060102_150405")
	uniqueID := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s%s", name, timestamp, uniqueID, ext)
}

// ValidateFileExtension reports whether the filename carries one of the
// allowed extensions.
func ValidateFileExtension(filename string, allowed []string) bool {
	if filename == "" {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

func EnsureDirectoryExists(path string) error {
	return os.MkdirAll(path, 0o755)
}

// CleanFilename replaces filesystem-hostile characters and collapses
// whitespace runs into single underscores.
func CleanFilename(filename string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, filename)
	return strings.Join(strings.Fields(replaced), "_")
}

// FormatFileSize renders a byte count as "1.5 MB" style text.
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}

// FileHash returns the md5 of a file, used for trace logging of uploads.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// TruncateText shortens text for log lines and previews.
func TruncateText(text string, maxLength int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	keep := maxLength - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + suffix
}
