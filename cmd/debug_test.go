package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

func TestWriteDebugCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.csv")
	row := model.OutputRow{
		Filename:             "inv1.txt",
		Date:                 "03/15/24",
		TailNumber:           "N12345",
		EventType:            "100-HR",
		ComponentDescription: "oil filter",
		Reason:               model.RemovalScheduled,
	}

	require.NoError(t, writeDebugCSV(path, row))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, model.DebugHeaders(), records[0])
	assert.Equal(t, []string{"inv1.txt", "03/15/24", "N12345", "100-HR", "oil filter", "Scheduled"}, records[1])
}
