package reader

import "fmt"

// Reader captures a single text-extraction strategy for one or more file
// formats (plain text, HTML, docx, ...).
type Reader interface {
	Extensions() []string
	Read(path string) (string, error)
}

// Registry keeps a mapping from lowercase file extensions to their readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: map[string]Reader{}}
}

// Register adds or replaces a reader for each extension it declares.
func (r *Registry) Register(reader Reader) {
	if r.readers == nil {
		r.readers = map[string]Reader{}
	}
	for _, ext := range reader.Extensions() {
		r.readers[ext] = reader
	}
}

// Resolve returns the reader for an extension or an error if it is absent.
func (r *Registry) Resolve(ext string) (Reader, error) {
	if reader, ok := r.readers[ext]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("no reader registered for %s", ext)
}

// Supports reports whether any reader handles the extension.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.readers[ext]
	return ok
}
