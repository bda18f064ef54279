package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lawref/internal/doctree"
)

// ErrUnsupportedFormat is returned by ForFile for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Parser converts raw document bytes into a parsed statute.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".docx":     true,
	".doc":      true,
	".wps":      true,
	".pdf":      true,
	".html":     true,
	".htm":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{Options: opts}, nil
	case ".txt":
		return &TextParser{Options: opts}, nil
	case ".docx":
		return &DOCXParser{Options: opts}, nil
	case ".doc", ".wps":
		return &DOCParser{Options: opts}, nil
	case ".pdf":
		return &PDFParser{Options: opts}, nil
	case ".html", ".htm":
		return &HTMLParser{Options: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Format returns the lower-case extension of filename without the dot.
func Format(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// TitleFromFilename strips directories and the extension.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newDocument(filename string, res *doctree.ParseResult) *doctree.Document {
	return &doctree.Document{
		Title:       TitleFromFilename(filename),
		Format:      Format(filename),
		ParseResult: *res,
	}
}

// splitLines breaks extracted text into lines on newlines and form feeds.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\f'
	})
}
