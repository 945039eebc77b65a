// Package prompts holds the fixed prompt templates as versioned configuration
// data, loaded once at startup so the prompt content stays auditable
// independently of the orchestration code.
package prompts

import (
	"embed"
	"strings"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.md
var templateFS embed.FS

// TruncationMarker is appended whenever Clip cuts content.
const TruncationMarker = "\n\n[content truncated]"

var (
	level1Text    = mustRead("templates/level1.md")
	level2Text    = mustRead("templates/level2.md")
	reviewTmpl    = mustParse("templates/review.md")
	aggregateTmpl = mustParse("templates/aggregate.md")
	skillTmpl     = mustParse("templates/skill.md")
)

func mustRead(name string) string {
	raw, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

func mustParse(name string) *template.Template {
	return template.Must(template.New(name).Parse(mustRead(name)))
}

// Clip truncates s to at most limit bytes and appends the truncation marker
// when content was dropped. A multi-byte rune split by the ceiling is trimmed
// whole; invalid bytes inside the window are kept as read. A non-positive
// limit disables clipping.
func Clip(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if !utf8.RuneStart(s[limit]) {
		start := limit - 1
		for start > 0 && limit-start < utf8.UTFMax && !utf8.RuneStart(s[start]) {
			start--
		}
		if _, size := utf8.DecodeRuneInString(s[start:]); size > 1 && start+size > limit {
			cut = s[:start]
		}
	}
	return cut + TruncationMarker
}

// Level1 builds the first-stage prompt around embedded document content.
func Level1(content string) string {
	return level1Text + "\n\n---\nDocument content:\n" + content
}

// Level1Attachment builds the first-stage prompt for a binary attachment.
func Level1Attachment() string {
	return level1Text + "\n\nAnalyze the attached document."
}

// Level2 builds the second-stage prompt around embedded document content.
func Level2(content string) string {
	return level2Text + "\n\n---\nDocument content:\n" + content
}

// Level2Attachment builds the second-stage prompt for a binary attachment.
func Level2Attachment() string {
	return level2Text + "\n\nAnalyze the attached document."
}

// AttachmentNote replaces the source block of the review prompt when the
// source document travels as an attachment instead of inline text.
func AttachmentNote() string {
	return "[The source document is a binary attachment supplied with this request; review it directly.]"
}

// Review builds the third-stage prompt from the (already clipped) source
// text or attachment note plus both sub-analyses.
func Review(source, level1, level2 string) string {
	return render(reviewTmpl, map[string]string{
		"Source": source,
		"Level1": level1,
		"Level2": level2,
	})
}

// Aggregate builds the cross-document summary prompt.
func Aggregate(level1Texts, level2Texts, scoreSummary string) string {
	return render(aggregateTmpl, map[string]string{
		"Level1Texts":  level1Texts,
		"Level2Texts":  level2Texts,
		"ScoreSummary": scoreSummary,
	})
}

// Skill builds the final compilation prompt from the aggregate summary.
func Skill(summary string) string {
	return render(skillTmpl, map[string]string{"Summary": summary})
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	// Templates are compile-time constants rendering plain string fields;
	// execution cannot fail at runtime.
	if err := t.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}
