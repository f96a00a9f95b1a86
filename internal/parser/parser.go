package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Page is one logical unit of a parsed document. PDF documents produce one
// Page per physical page; plain-text and DOCX sources produce a single page.
type Page struct {
	Text           string
	Number         int
	SourceFilename string
}

// Parse extracts page-ordered text from the document at path. The HTTP
// upload surface only ever hands this a PDF; the CLI may also ingest
// .txt and .docx files.
func Parse(path string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return parsePDF(path)
	case ".txt":
		return parseText(path)
	case ".docx":
		return parseDOCX(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parsePDF(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	name := filepath.Base(path)
	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i, err)
		}
		pages = append(pages, Page{
			Text:           text,
			Number:         i,
			SourceFilename: name,
		})
	}
	return pages, nil
}

func parseText(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []Page{{
		Text:           string(data),
		Number:         1,
		SourceFilename: filepath.Base(path),
	}}, nil
}

func parseDOCX(path string) ([]Page, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading docx: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return []Page{{
		Text:           content,
		Number:         1,
		SourceFilename: filepath.Base(path),
	}}, nil
}
