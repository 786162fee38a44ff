package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

func sampleRow(filename string) model.OutputRow {
	return model.OutputRow{
		Filename:             filename,
		Date:                 "03/15/24",
		TailNumber:           "N433SP",
		EventType:            "100-HR INSPECTION",
		ComponentDescription: "oil filter",
		Reason:               model.RemovalScheduled,
	}
}

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNewCSV_WritesHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := NewCSV(path, model.OutputHeaders())
	require.NoError(t, err)

	// Header is on disk before any row arrives.
	records := readBack(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, model.OutputHeaders(), records[0])

	require.NoError(t, s.Close())
}

func TestCSVSink_AppendDurability(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := NewCSV(path, model.OutputHeaders())
	require.NoError(t, err)

	require.NoError(t, s.Append(sampleRow("a.pdf")))
	require.NoError(t, s.Append(sampleRow("b.pdf")))

	// Read back without closing: both rows must already be on disk.
	records := readBack(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "a.pdf", records[1][0])
	assert.Equal(t, "b.pdf", records[2][0])
	assert.Equal(t, "Scheduled", records[1][5])

	require.NoError(t, s.Close())
}

func TestCSVSink_DebugWidth(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.csv")
	s, err := NewCSV(path, model.DebugHeaders())
	require.NoError(t, err)

	row := sampleRow("single.txt")
	row.ConflictFlag = model.ConflictFlagged
	row.ConflictDetails = "Dates: [01/01/24, 02/02/24]"
	require.NoError(t, s.Append(row))
	require.NoError(t, s.Close())

	records := readBack(t, path)
	require.Len(t, records, 2)
	assert.Len(t, records[0], 6)
	assert.Len(t, records[1], 6)
	assert.Equal(t, "single.txt", records[1][0])
}

func TestNewCSV_BadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv"), model.OutputHeaders())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink: create")
}

func TestCSVSink_QuotesEmbeddedCommas(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := NewCSV(path, model.OutputHeaders())
	require.NoError(t, err)

	row := sampleRow("c.pdf")
	row.ConflictFlag = model.ConflictFlagged
	row.ConflictDetails = "Dates: [01/01/24, 02/02/24]; Tails: [N1, N2]"
	require.NoError(t, s.Append(row))
	require.NoError(t, s.Close())

	records := readBack(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "Dates: [01/01/24, 02/02/24]; Tails: [N1, N2]", records[1][7])
}
