package doctext

import (
	"context"
	"path/filepath"
	"strings"
)

// Reader extracts plain text from a document file.
type Reader interface {
	Text(ctx context.Context, path string) (string, error)
}

// Dispatcher routes a document to the reader for its file type. PDFs go
// through pdftotext, everything else is read as plain text.
type Dispatcher struct {
	plain *PlainText
	pdf   *PdfToText
}

// New creates a Dispatcher. encoding names the charset of legacy text files
// ("" means UTF-8 as-is); pdftotextPath locates the pdftotext binary.
func New(encoding, pdftotextPath string) *Dispatcher {
	return &Dispatcher{
		plain: NewPlainText(encoding),
		pdf:   NewPdfToText(pdftotextPath),
	}
}

// ForFile returns the reader for a document based on its extension.
func (d *Dispatcher) ForFile(path string) Reader {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return d.pdf
	}
	return d.plain
}

// Text reads the document with the reader ForFile selects.
func (d *Dispatcher) Text(ctx context.Context, path string) (string, error) {
	return d.ForFile(path).Text(ctx, path)
}
