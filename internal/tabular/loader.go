package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SupportedExtensions lists the file types the loader accepts.
var SupportedExtensions = []string{".csv", ".xlsx", ".xls"}

// Supported reports whether the file name has a loadable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Read loads a table from r, dispatching on the file extension of name.
func Read(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(name, r)
	case ".xlsx", ".xls":
		return ReadWorkbook(name, r)
	default:
		return nil, fmt.Errorf("unsupported file format %q: use CSV or Excel", filepath.Ext(name))
	}
}

// ReadFile loads a table from a file on disk.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f)
}

// ReadCSV parses CSV content into a Table. A UTF-8 BOM, if present, is
// stripped before parsing so the first header cell matches cleanly.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no data rows", name)
	}

	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}
	return &Table{
		Source:  name,
		Columns: columns,
		Rows:    normalizeRows(columns, records[1:]),
	}, nil
}

// ReadWorkbook parses the first populated sheet of an Excel workbook.
// The header is the first row that has at least two non-empty cells;
// leading title or banner rows above it are skipped.
func ReadWorkbook(name string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer f.Close()

	var rows [][]string
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(sheetRows) >= 2 {
			rows = sheetRows
			break
		}
	}
	if rows == nil {
		return nil, fmt.Errorf("%s has no populated sheet", name)
	}

	headerIdx := -1
	for i, row := range rows {
		filled := 0
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				filled++
			}
		}
		if filled >= 2 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 || headerIdx == len(rows)-1 {
		return nil, fmt.Errorf("%s has no data rows", name)
	}

	columns := make([]string, len(rows[headerIdx]))
	for i, c := range rows[headerIdx] {
		columns[i] = strings.TrimSpace(c)
	}
	return &Table{
		Source:  name,
		Columns: columns,
		Rows:    normalizeRows(columns, rows[headerIdx+1:]),
	}, nil
}
