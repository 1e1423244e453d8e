package tabular

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain", "42", 42, true},
		{"decimal", "3.14", 3.14, true},
		{"thousands", "1,234,567.89", 1234567.89, true},
		{"currency", "$1,500", 1500, true},
		{"percent", "12.5%", 12.5, true},
		{"accounting negative", "(2,500)", -2500, true},
		{"negative", "-17", -17, true},
		{"whitespace", "  99  ", 99, true},
		{"empty", "", 0, false},
		{"dash placeholder", "-", 0, false},
		{"na", "N/A", 0, false},
		{"text", "pending", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"iso", "2025-06-30", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), true},
		{"slash", "2025/06/30", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), true},
		{"month period", "2025-06", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"named month", "Jan-2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"quarter suffix", "2025Q2", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"quarter prefix", "Q3 2025", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"excel serial", "45838", time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"text", "next week", time.Time{}, false},
		{"bad quarter", "2025Q7", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("export.csv"))
	assert.True(t, Supported("EXPORT.XLSX"))
	assert.True(t, Supported("legacy.xls"))
	assert.False(t, Supported("report.pdf"))
	assert.False(t, Supported("noext"))
}

func TestReadCSV(t *testing.T) {
	input := "\xef\xbb\xbfsku,quantity,unit_cost\nSKU-1,10,2.50\nSKU-2,5,\nSKU-3,8,1.00,extra\n"

	table, err := ReadCSV("stock.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "stock.csv", table.Source)
	assert.Equal(t, []string{"sku", "quantity", "unit_cost"}, table.Columns)
	require.Equal(t, 3, table.RowCount())
	// Short rows pad, long rows truncate to the header width.
	assert.Equal(t, "", table.Cell(1, 2))
	assert.Len(t, table.Rows[2], 3)
}

func TestReadCSV_NoDataRows(t *testing.T) {
	_, err := ReadCSV("empty.csv", strings.NewReader("sku,quantity\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read("report.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestReadWorkbook_SkipsBannerRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Quarterly Stock Report"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "sku"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "quantity"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "SKU-1"))
	require.NoError(t, f.SetCellValue(sheet, "B4", 12))

	var buf strings.Builder
	require.NoError(t, f.Write(&buf))

	table, err := ReadWorkbook("stock.xlsx", strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"sku", "quantity"}, table.Columns)
	require.Equal(t, 1, table.RowCount())
	assert.Equal(t, "SKU-1", table.Cell(0, 0))
	assert.Equal(t, "12", table.Cell(0, 1))
}
