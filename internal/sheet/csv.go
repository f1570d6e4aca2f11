package sheet

import (
	"bytes"
	"encoding/csv"

	"github.com/cockroachdb/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	grid, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	return grid, nil
}

// writeCSV prefixes a BOM so spreadsheet programs detect UTF-8.
func writeCSV(grid [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.WriteAll(grid); err != nil {
		return nil, errors.Wrap(err, "write csv")
	}
	return buf.Bytes(), nil
}
