// Package sheet reads and writes the tabular files the fulfillment team
// edits by hand: CSV (optionally with a UTF-8 BOM) and Excel workbooks.
package sheet

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// headerScanRows bounds how far down a sheet the header row is looked for.
const headerScanRows = 10

var ErrUnsupportedFormat = errors.New("unsupported sheet format")

// Table is a decoded sheet. Rows are keyed by trimmed header text.
type Table struct {
	Header []string
	Rows   []map[string]string
}

type Format int

const (
	CSV Format = iota
	XLSX
)

// FormatOf picks the codec from the file extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", "":
		return CSV, nil
	case ".xlsx", ".xlsm":
		return XLSX, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedFormat, "%s", name)
	}
}

// Decode parses data according to the file extension of name. marker is a
// header cell used to locate the header row; empty means the first row.
func Decode(name string, data []byte, marker string) (Table, error) {
	format, err := FormatOf(name)
	if err != nil {
		return Table{}, err
	}
	var grid [][]string
	switch format {
	case XLSX:
		grid, err = readXLSX(data)
	default:
		grid, err = readCSV(data)
	}
	if err != nil {
		return Table{}, errors.Wrapf(err, "decode %s", name)
	}
	return tableFrom(grid, marker), nil
}

// Encode renders rows under a fixed header in the format chosen by name.
// Missing keys become empty cells.
func Encode(name string, columns []string, rows []map[string]string) ([]byte, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, columns)
	for _, r := range rows {
		line := make([]string, len(columns))
		for i, c := range columns {
			line[i] = r[c]
		}
		grid = append(grid, line)
	}
	switch format {
	case XLSX:
		return writeXLSX(grid)
	default:
		return writeCSV(grid)
	}
}

func tableFrom(grid [][]string, marker string) Table {
	start := headerRow(grid, marker)
	if start < 0 {
		return Table{}
	}

	header := make([]string, len(grid[start]))
	for i, h := range grid[start] {
		header[i] = strings.TrimSpace(h)
	}

	t := Table{Header: header}
	for _, line := range grid[start+1:] {
		if blank(line) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if _, dup := row[h]; dup {
				continue
			}
			if i < len(line) {
				row[h] = strings.TrimSpace(line[i])
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// headerRow returns the index of the first of the leading rows that holds
// marker, or of the first non-blank row when marker is empty or absent.
func headerRow(grid [][]string, marker string) int {
	marker = strings.TrimSpace(marker)
	if marker != "" {
		for i := 0; i < len(grid) && i < headerScanRows; i++ {
			for _, cell := range grid[i] {
				if strings.Contains(strings.TrimSpace(cell), marker) {
					return i
				}
			}
		}
	}
	for i, line := range grid {
		if !blank(line) {
			return i
		}
	}
	return -1
}

func blank(line []string) bool {
	for _, c := range line {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
