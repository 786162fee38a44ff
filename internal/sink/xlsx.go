package sink

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ExportXLSX converts a results CSV into an XLSX workbook with a single
// "Invoices" sheet, one row per CSV record including the header.
func ExportXLSX(csvPath, xlsxPath string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return eris.Wrapf(err, "sink: open %s", csvPath)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Conflict details make row widths uneven in hand-edited files.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return eris.Wrap(err, "sink: read csv")
	}

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Invoices")
	if err != nil {
		return eris.Wrap(err, "sink: add sheet")
	}

	for _, record := range records {
		row := sheet.AddRow()
		for _, value := range record {
			row.AddCell().SetString(value)
		}
	}

	if err := wb.Save(xlsxPath); err != nil {
		return eris.Wrapf(err, "sink: save %s", xlsxPath)
	}
	return nil
}
