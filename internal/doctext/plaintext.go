package doctext

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// PlainText reads text documents. Scanned-invoice drops from older systems
// arrive in single-byte encodings like windows-1252, so reads optionally
// transcode to UTF-8.
type PlainText struct {
	encoding string
}

// NewPlainText creates a PlainText reader. If encoding is empty, file bytes
// are returned as-is.
func NewPlainText(encoding string) *PlainText {
	return &PlainText{encoding: encoding}
}

// Text reads the whole file, transcoding when an encoding is configured.
func (p *PlainText) Text(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "doctext: context cancelled")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "doctext: open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if p.encoding != "" {
		enc, err := htmlindex.Get(p.encoding)
		if err != nil {
			return "", eris.Wrapf(err, "doctext: unsupported charset %q", p.encoding)
		}
		r = enc.NewDecoder().Reader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrapf(err, "doctext: read %s", path)
	}
	return string(data), nil
}

// Preview returns the first limit runes of a text document, for diagnostic
// display.
func (p *PlainText) Preview(ctx context.Context, path string, limit int) (string, error) {
	text, err := p.Text(ctx, path)
	if err != nil {
		return "", err
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, nil
	}
	return string(runes[:limit]), nil
}
