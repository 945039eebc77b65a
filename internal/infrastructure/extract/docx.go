package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"SkillForge/internal/reader"
)

// DocxReader pulls paragraph text out of the OOXML container; a .docx file is
// a zip archive whose body lives in word/document.xml.
type DocxReader struct{}

var _ reader.Reader = (*DocxReader)(nil)

// NewDocxReader builds the strategy for .docx files.
func NewDocxReader() *DocxReader {
	return &DocxReader{}
}

// Extensions lists the formats this reader claims.
func (d *DocxReader) Extensions() []string {
	return []string{".docx"}
}

// Read opens the archive and decodes the document body.
func (d *DocxReader) Read(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer archive.Close()

	for _, entry := range archive.File {
		if entry.Name != "word/document.xml" {
			continue
		}
		body, err := entry.Open()
		if err != nil {
			return "", fmt.Errorf("open document body %s: %w", path, err)
		}
		text, err := decodeDocumentXML(body)
		closeErr := body.Close()
		if err != nil {
			return "", fmt.Errorf("decode docx %s: %w", path, err)
		}
		if closeErr != nil {
			return "", fmt.Errorf("close document body %s: %w", path, closeErr)
		}
		return text, nil
	}

	return "", fmt.Errorf("docx %s: word/document.xml missing", path)
}

func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		b      strings.Builder
		inText bool
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
