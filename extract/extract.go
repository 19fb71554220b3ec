package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// File reads a document and returns its plain text. The format is
// chosen by file extension. Text files that are not valid UTF-8 are
// decoded as Latin-1, which accepts any byte sequence, so a stray
// legacy encoding degrades to mojibake instead of a failed analysis.
func File(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return Text(raw), nil
	case ".pdf":
		return PDF(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Text decodes raw bytes as UTF-8, falling back to Latin-1.
func Text(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	// Latin-1: every byte maps directly to the code point of the same value.
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}

// PDF extracts the plain text of every page. Pages that cannot be read
// are skipped; a PDF with no extractable text at all is an error.
func PDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", ErrNoText
	}
	return b.String(), nil
}
