// Package source produces mdast trees from uploaded documents.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdblocks/internal/mdast"
)

// Document is a parsed upload.
type Document struct {
	Title string
	Root  *mdast.Document
	Meta  map[string]any // front matter, Markdown only
}

// Parser converts raw document bytes into an mdast tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Options tune the parsers returned by ForFile.
type Options struct {
	// FallbackPdftotext shells out to pdftotext when the Go PDF reader fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle strips the directory and extension from filename.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// inlineText splits s on newlines, joining the pieces with LineBreak nodes.
func inlineText(s string) []mdast.Node {
	var out []mdast.Node
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out = append(out, &mdast.LineBreak{})
		}
		if line != "" {
			out = append(out, mdast.Raw(line))
		}
	}
	return out
}
