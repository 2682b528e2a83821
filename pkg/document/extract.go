// Package document extracts plain text from source documents (PDF, DOCX,
// TXT) for summarization and narration.
package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document holds the text extracted from a source file.
type Document struct {
	Text   string
	Pages  int
	Format string // "pdf", "docx", "txt"
}

// SupportedExtensions lists the file extensions Extract understands.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt"}
}

// ExtractFile reads the file at path and extracts its text. The format is
// chosen by file extension.
func ExtractFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	return Extract(f, info.Size(), filepath.Ext(path))
}

// Extract extracts text from the reader. ext selects the format (".pdf",
// ".docx" or ".txt", case insensitive).
func Extract(data io.ReaderAt, size int64, ext string) (*Document, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(data, size)
	case ".docx":
		return extractDOCX(data, size)
	case ".txt":
		return extractTXT(data, size)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func extractPDF(data io.ReaderAt, size int64) (*Document, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Scanned or malformed pages yield no text but should not
			// abort the whole document.
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &Document{
		Text:   strings.TrimSpace(buf.String()),
		Pages:  numPages,
		Format: "pdf",
	}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*Document, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		content, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read document.xml: %w", readErr)
		}

		text := docxToText(string(content))
		return &Document{
			Text:   text,
			Pages:  1,
			Format: "docx",
		}, nil
	}

	return nil, fmt.Errorf("open DOCX: word/document.xml not found")
}

func extractTXT(data io.ReaderAt, size int64) (*Document, error) {
	buf := make([]byte, size)
	_, err := data.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read TXT: %w", err)
	}

	return &Document{
		Text:   string(bytes.TrimSpace(buf)),
		Pages:  1,
		Format: "txt",
	}, nil
}

// docxToText strips WordprocessingML markup, keeping paragraph breaks so
// downstream chunking sees sentence structure.
func docxToText(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")

	var result strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	// Collapse whitespace within paragraphs but keep the breaks
	var paragraphs []string
	for _, line := range strings.Split(result.String(), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		paragraphs = append(paragraphs, strings.Join(fields, " "))
	}
	return strings.Join(paragraphs, "\n")
}
