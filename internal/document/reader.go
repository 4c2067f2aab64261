// Package document loads review input and derives the metadata the
// review pipeline needs: title, authors, abstract and section list.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encodings reported by Load.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var (
	// ErrEmptyDocument is returned when a file holds no text.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrUnsupportedFormat is returned for binary formats with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Source is a decoded document.
type Source struct {
	Path     string
	Text     string
	Encoding string
}

// Load reads path as text. Valid UTF-8 is used as is; anything else is
// decoded as Windows-1252, which accepts every byte. PDF files are
// rejected.
func Load(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") || bytes.HasPrefix(content, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: %s is a PDF; convert it to plain text first", ErrUnsupportedFormat, filepath.Base(path))
	}

	text, encoding, err := Decode(content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyDocument)
	}

	return &Source{Path: path, Text: text, Encoding: encoding}, nil
}

// Decode converts raw bytes to text and names the encoding used.
func Decode(content []byte) (string, string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), EncodingUTF8, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return "", "", err
	}
	return string(decoded), EncodingWindows1252, nil
}

// Excerpt returns at most n characters of text.
func Excerpt(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
