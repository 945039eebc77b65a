package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"SkillForge/internal/domain"
	"SkillForge/internal/ports"
	"SkillForge/internal/reader"
)

// Declared media types for formats the model consumes directly as binary
// attachments; no local text extraction happens for these.
var mediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// DirectorySource enumerates eligible documents in one directory,
// lexicographically by filename, using registered reader strategies for the
// text formats.
type DirectorySource struct {
	dir      string
	registry *reader.Registry
	logger   *slog.Logger
}

var _ ports.DocumentSource = (*DirectorySource)(nil)

// NewDirectorySource wires the reader registry with the target directory.
func NewDirectorySource(dir string, registry *reader.Registry, logger *slog.Logger) *DirectorySource {
	return &DirectorySource{dir: dir, registry: registry, logger: logger}
}

// Load walks the directory once and returns all eligible documents in
// deterministic order. A text document that cannot be read or decodes to
// nothing is still returned, marked unreadable, so the pipeline can record it
// as skipped.
func (s *DirectorySource) Load(ctx context.Context) ([]domain.Document, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("reader registry is not configured")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := mediaTypes[ext]; !ok && !s.registry.Supports(ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]domain.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs = append(docs, s.loadOne(name))
	}

	s.debug("documents loaded", "dir", s.dir, "count", len(docs))
	return docs, nil
}

func (s *DirectorySource) loadOne(name string) domain.Document {
	ext := strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.dir, name)
	doc := domain.Document{
		Stem: strings.TrimSuffix(name, filepath.Ext(name)),
		Name: name,
		Path: path,
	}

	if mediaType, ok := mediaTypes[ext]; ok {
		doc.Kind = domain.KindMultimodal
		doc.MediaType = mediaType
		return doc
	}

	doc.Kind = domain.KindText
	strategy, err := s.registry.Resolve(ext)
	if err != nil {
		doc.Unreadable = true
		return doc
	}

	content, err := strategy.Read(path)
	if err != nil || strings.TrimSpace(content) == "" {
		s.debug("document unreadable or empty", "doc", name, "error", err)
		doc.Unreadable = true
		return doc
	}

	doc.Content = content
	return doc
}

func (s *DirectorySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
