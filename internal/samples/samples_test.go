package samples

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"erpinsight/internal/schema"
	"erpinsight/internal/tabular"
	"erpinsight/pkg/contracts/domain"
)

func TestEverySampleDetectsAsItsOwnDomain(t *testing.T) {
	detector := schema.NewDetector(nil)
	for _, d := range domain.AllDomains() {
		t.Run(d.String(), func(t *testing.T) {
			data, err := CSV(d)
			require.NoError(t, err)

			table, err := tabular.ReadCSV(d.String()+".csv", bytes.NewReader(data))
			require.NoError(t, err)
			require.NotZero(t, table.RowCount())

			match := detector.Detect(table)
			assert.Equal(t, d, match.Domain)
			assert.InDelta(t, 1.0, match.Confidence, 0.001)
		})
	}
}

func TestCSVUnknownDomain(t *testing.T) {
	_, err := CSV(domain.DomainUnknown)
	assert.Error(t, err)
}

func TestTemplateContainsRequiredColumnsFirst(t *testing.T) {
	for _, d := range domain.AllDomains() {
		t.Run(d.String(), func(t *testing.T) {
			data, err := Template(d)
			require.NoError(t, err)

			f, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer f.Close()

			rows, err := f.GetRows("Sheet1")
			require.NoError(t, err)
			require.NotEmpty(t, rows)

			required := schema.RequiredFields(d)
			require.GreaterOrEqual(t, len(rows[0]), len(required))
			assert.Equal(t, required, rows[0][:len(required)])
		})
	}
}

func TestTemplateUnknownDomain(t *testing.T) {
	_, err := Template(domain.Domain("warehouse"))
	assert.Error(t, err)
}
