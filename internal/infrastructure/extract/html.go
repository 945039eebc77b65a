package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SkillForge/internal/reader"
)

// HTMLReader extracts the visible text of an HTML document.
type HTMLReader struct{}

var _ reader.Reader = (*HTMLReader)(nil)

// NewHTMLReader builds the strategy for .html/.htm files.
func NewHTMLReader() *HTMLReader {
	return &HTMLReader{}
}

// Extensions lists the formats this reader claims.
func (h *HTMLReader) Extensions() []string {
	return []string{".html", ".htm"}
}

// Read parses the markup and returns body text with scripts and styles removed.
func (h *HTMLReader) Read(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return "", fmt.Errorf("parse html %s: %w", path, err)
	}

	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	return collapseWhitespace(text), nil
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.Join(strings.Fields(line), " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
