// Package fileutil has small helpers for upload handling and download naming.
package fileutil

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// DecodeBase64 decodes base64-encoded text content.
func DecodeBase64(content string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return "", fmt.Errorf("decoding base64 content: %w", err)
	}
	return string(decoded), nil
}

// EncodeBase64 encodes raw bytes as a base64 string.
func EncodeBase64(content []byte) string {
	return base64.StdEncoding.EncodeToString(content)
}

// IsText reports whether the bytes look like text an upload handler should
// accept. NUL bytes or invalid UTF-8 mark the content as binary.
func IsText(content []byte) bool {
	if !utf8.Valid(content) {
		return false
	}
	for _, b := range content {
		if b == 0 {
			return false
		}
	}
	return true
}

// TimestampedFilename builds "<prefix>_<YYYYMMDD_HHMMSS><ext>".
// Extension defaults to ".md" when empty.
func TimestampedFilename(prefix, ext string) string {
	if ext == "" {
		ext = ".md"
	}
	return fmt.Sprintf("%s_%s%s", prefix, time.Now().Format("20060102_150405"), ext)
}

// SafeFilename replaces characters unsafe in filenames with underscores and
// collapses the runs they leave behind.
func SafeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return strings.Trim(name, "_")
}

// CreateTempFile writes content to a new temp file and returns its path.
// The caller owns the file and removes it when done.
func CreateTempFile(content, suffix string) (string, error) {
	f, err := os.CreateTemp("", "docugen-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// FormatSize renders a byte count in human readable form, one decimal.
func FormatSize(size int64) string {
	if size == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	v := float64(size)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}

var extLanguages = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript (React)",
	".ts":    "TypeScript",
	".tsx":   "TypeScript (React)",
	".java":  "Java",
	".cpp":   "C++",
	".c":     "C",
	".h":     "C/C++ Header",
	".cs":    "C#",
	".php":   "PHP",
	".rb":    "Ruby",
	".go":    "Go",
	".rs":    "Rust",
	".kt":    "Kotlin",
	".scala": "Scala",
	".swift": "Swift",
	".dart":  "Dart",
	".r":     "R",
	".sql":   "SQL",
	".md":    "Markdown",
	".txt":   "Text",
}

// LanguageFor maps a filename to its programming language, or "Unknown".
func LanguageFor(filename string) string {
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(filename))]; ok {
		return lang
	}
	return "Unknown"
}

// TruncateForLog shortens content for log output.
func TruncateForLog(content string, max int) string {
	if max <= 0 || len(content) <= max {
		return content
	}
	return content[:max] + "... (truncated)"
}
