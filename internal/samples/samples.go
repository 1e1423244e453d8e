// Package samples serves example datasets and blank import templates
// for each business domain. Samples are embedded CSV files; templates
// are Excel workbooks generated from the schema field definitions, so
// they can never drift from what the detector accepts.
package samples

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/xuri/excelize/v2"

	"erpinsight/internal/schema"
	"erpinsight/pkg/contracts/domain"
)

//go:embed data/*.csv
var sampleData embed.FS

// CSV returns the embedded sample dataset for a domain.
func CSV(d domain.Domain) ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown domain: %s", d)
	}
	data, err := sampleData.ReadFile("data/" + d.String() + ".csv")
	if err != nil {
		return nil, fmt.Errorf("read sample for %s: %w", d, err)
	}
	return data, nil
}

// Template builds a blank Excel import template for a domain. Required
// columns come first with a bold header; optional columns follow.
func Template(d domain.Domain) ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown domain: %s", d)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	required := make([]schema.FieldSpec, 0)
	optional := make([]schema.FieldSpec, 0)
	for _, spec := range schema.Fields(d) {
		if spec.Required {
			required = append(required, spec)
		} else {
			optional = append(optional, spec)
		}
	}

	boldID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	col := 0
	writeHeader := func(spec schema.FieldSpec, bold bool) error {
		col++
		cell, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, spec.Name); err != nil {
			return err
		}
		if bold {
			if err := f.SetCellStyle(sheet, cell, cell, boldID); err != nil {
				return err
			}
		}
		// A type hint in row 2 shows the expected content.
		hintCell, err := excelize.CoordinatesToCellName(col, 2)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, hintCell, typeHint(spec.Type))
	}
	for _, spec := range required {
		if err := writeHeader(spec, true); err != nil {
			return nil, fmt.Errorf("write template header: %w", err)
		}
	}
	for _, spec := range optional {
		if err := writeHeader(spec, false); err != nil {
			return nil, fmt.Errorf("write template header: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func typeHint(t schema.FieldType) string {
	switch t {
	case schema.FieldNumber:
		return "number"
	case schema.FieldDate:
		return "date (YYYY-MM-DD)"
	default:
		return "text"
	}
}
