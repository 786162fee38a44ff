package docsrc

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Document is a single input file discovered for processing.
type Document struct {
	Name string
	Path string
}

// List returns the documents in dir whose extension matches exts,
// sorted by name. Extension matching is case-insensitive, so scanned
// invoices named INVOICE.PDF are picked up alongside invoice.pdf.
// Subdirectories and non-regular files are skipped.
func List(dir string, exts []string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "docsrc: read dir %s", dir)
	}

	var docs []Document
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !matchesExtension(entry.Name(), exts) {
			continue
		}
		docs = append(docs, Document{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

func matchesExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
