// Package extract loads documents into page-level plain text.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for files with no extractable text layer, such as images.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is the text of one page. Number starts at 1. For formats without pages
// (plain text, docx) the whole document is page 1; spreadsheets give one page per sheet
// and presentations one page per slide.
type Page struct {
	Number int
	Text   string
}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

type loader func(content []byte) ([]Page, error)

var loaders = map[string]loader{
	".pdf":  extractPDF,
	".docx": func(b []byte) ([]Page, error) { return single(extractDOCX(b)) },
	".xlsx": extractExcel,
	".pptx": extractPPTX,
	".odt":  func(b []byte) ([]Page, error) { return single(extractOpenDocument(b)) },
	".odp":  func(b []byte) ([]Page, error) { return single(extractOpenDocument(b)) },
	".ods":  func(b []byte) ([]Page, error) { return single(extractOpenDocument(b)) },
	".html": func(b []byte) ([]Page, error) { return single(extractHTML(b)) },
	".htm":  func(b []byte) ([]Page, error) { return single(extractHTML(b)) },
}

// plainExtensions are read as UTF-8 text. "" covers files without an extension.
var plainExtensions = []string{"", ".txt", ".md", ".rst", ".csv", ".log", ".json", ".yaml", ".yml", ".xml"}

// imageExtensions are accepted as uploads but have no text layer.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true, ".tiff": true,
}

func init() {
	for _, ext := range plainExtensions {
		loaders[ext] = func(b []byte) ([]Page, error) { return single(extractPlain(b), nil) }
	}
}

// PagesBytes extracts pages from content based on ext, which includes the leading dot.
func (e *Extractor) PagesBytes(content []byte, ext string) ([]Page, error) {
	ext = strings.ToLower(ext)
	load, ok := loaders[ext]
	if !ok {
		if imageExtensions[ext] {
			return nil, fmt.Errorf("%w: %s has no text layer", ErrUnsupportedFormat, ext)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return load(content)
}

// Supported reports whether PagesBytes can extract ext.
func Supported(ext string) bool {
	_, ok := loaders[strings.ToLower(ext)]
	return ok
}

func single(text string, err error) ([]Page, error) {
	if err != nil {
		return nil, err
	}
	return []Page{{Number: 1, Text: text}}, nil
}
