package extract

import (
	"fmt"
	"os"

	"SkillForge/internal/reader"
)

// PlainReader decodes plain-text document formats as-is.
type PlainReader struct{}

var _ reader.Reader = (*PlainReader)(nil)

// NewPlainReader builds the strategy for .md/.txt/.rst files.
func NewPlainReader() *PlainReader {
	return &PlainReader{}
}

// Extensions lists the formats this reader claims.
func (p *PlainReader) Extensions() []string {
	return []string{".md", ".txt", ".rst"}
}

// Read returns the file content verbatim.
func (p *PlainReader) Read(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(raw), nil
}
