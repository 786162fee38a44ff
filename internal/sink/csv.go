package sink

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

// Sink receives one output row per processed document.
type Sink interface {
	Append(row model.OutputRow) error
	Close() error
}

// CSVSink writes rows to a CSV file and forces each one to disk before
// returning, so a crash mid-batch leaves a header plus every completed row.
type CSVSink struct {
	f    *os.File
	w    *csv.Writer
	cols int
}

// NewCSV creates (or truncates) the file at path and writes the header row.
// The header is durable before NewCSV returns.
func NewCSV(path string, headers []string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sink: create %s", path)
	}

	s := &CSVSink{f: f, w: csv.NewWriter(f), cols: len(headers)}
	if err := s.writeRecord(headers); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Append writes one row. Debug headers are a prefix of the batch headers,
// so the header width chosen at construction picks how many columns each
// row contributes.
func (s *CSVSink) Append(row model.OutputRow) error {
	values := row.Values()
	if s.cols < len(values) {
		values = values[:s.cols]
	}
	return s.writeRecord(values)
}

func (s *CSVSink) writeRecord(record []string) error {
	if err := s.w.Write(record); err != nil {
		return eris.Wrap(err, "sink: write row")
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return eris.Wrap(err, "sink: flush row")
	}
	if err := s.f.Sync(); err != nil {
		return eris.Wrap(err, "sink: sync")
	}
	return nil
}

// Close flushes any buffered output and closes the file.
func (s *CSVSink) Close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.f.Close()
	if flushErr != nil {
		return eris.Wrap(flushErr, "sink: flush")
	}
	if closeErr != nil {
		return eris.Wrap(closeErr, "sink: close")
	}
	return nil
}

var _ Sink = (*CSVSink)(nil)
