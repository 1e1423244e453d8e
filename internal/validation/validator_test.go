package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpinsight/internal/schema"
	"erpinsight/internal/tabular"
	"erpinsight/pkg/contracts/domain"
)

func detect(t *testing.T, columns []string, rows [][]string) (*tabular.Table, domain.SchemaMatch) {
	t.Helper()
	tbl := &tabular.Table{Source: "upload.csv", Columns: columns, Rows: rows}
	return tbl, schema.NewDetector(nil).Detect(tbl)
}

func TestValidateAcceptsCompleteSalesTable(t *testing.T) {
	tbl, m := detect(t,
		[]string{"order_id", "product_id", "quantity", "total_amount", "order_date"},
		[][]string{
			{"SO-1", "P-1", "2", "$1,200.00", "2025-01-15"},
			{"SO-2", "P-2", "1", "450", "2025-02-03"},
		})

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	require.Nil(t, skipped)
	require.NotNil(t, vt)
	assert.Equal(t, domain.DomainSales, vt.Domain)
	assert.Equal(t, 2, vt.RowCount)
	assert.True(t, vt.Quality.IsUsable)

	amounts, valid := vt.Numbers("total_amount")
	require.Len(t, amounts, 2)
	assert.True(t, valid[0] && valid[1])
	assert.Equal(t, 1200.0, amounts[0])
	assert.Equal(t, 450.0, amounts[1])

	dates, dateValid := vt.Dates("order_date")
	assert.True(t, dateValid[0])
	assert.Equal(t, 2025, dates[0].Year())
}

func TestValidateRejectsPurchaseMissingTwoRequired(t *testing.T) {
	tbl, m := detect(t,
		[]string{"po_number", "unit_price", "order_date"},
		[][]string{{"PO-1", "10.5", "2025-03-01"}})

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	assert.Nil(t, vt)
	require.NotNil(t, skipped)
	assert.Equal(t, domain.DomainPurchase, skipped.Domain)
	assert.Equal(t, domain.ReasonRequiredFieldsMissing, skipped.Reason)
	assert.ElementsMatch(t, []string{"supplier_id", "quantity_ordered"}, skipped.MissingFields)
	assert.Contains(t, skipped.Detail, "supplier_id")
	assert.Contains(t, skipped.Detail, "quantity_ordered")
}

func TestValidateAcceptsFinancialMissingOneOfTwo(t *testing.T) {
	// Confidence 0.5 with a single missing required field still enters
	// analysis; the affected KPIs degrade instead.
	tbl := &tabular.Table{
		Source:  "pnl.csv",
		Columns: []string{"revenue", "net_income"},
		Rows:    [][]string{{"1000", "100"}, {"1200", "90"}},
	}
	m := schema.NewDetector(nil).Match(tbl, domain.DomainFinancial)
	require.Equal(t, 0.5, m.Confidence)

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	require.Nil(t, skipped)
	require.NotNil(t, vt)
	assert.False(t, vt.HasField("period"))
}

func TestValidateRejectsUnknownSchema(t *testing.T) {
	tbl, m := detect(t,
		[]string{"alpha", "beta"},
		[][]string{{"1", "2"}})

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	assert.Nil(t, vt)
	require.NotNil(t, skipped)
	assert.Equal(t, domain.ReasonSchemaAmbiguous, skipped.Reason)
}

func TestValidateRejectsTableWithNoUsableRows(t *testing.T) {
	tbl, m := detect(t,
		[]string{"order_id", "product_id", "quantity", "total_amount"},
		[][]string{
			{"SO-1", "P-1", "n/a", "-"},
			{"SO-2", "P-2", "bad", "??"},
		})

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	assert.Nil(t, vt)
	require.NotNil(t, skipped)
	assert.Equal(t, domain.ReasonNoUsableRows, skipped.Reason)
}

func TestQualityFlagsMissingValues(t *testing.T) {
	tbl, m := detect(t,
		[]string{"sku", "quantity", "unit_cost"},
		[][]string{
			{"A", "10", "1.5"},
			{"B", "", "2.0"},
			{"C", "5", ""},
			{"D", "7", "3.1"},
		})

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	require.Nil(t, skipped)
	var missingCols []string
	for _, issue := range vt.Quality.Issues {
		if issue.Type == domain.IssueMissing {
			missingCols = append(missingCols, issue.Column)
			assert.Equal(t, domain.SeverityHigh, issue.Severity, issue.Column)
			assert.Equal(t, 1, issue.AffectedRows)
		}
	}
	assert.ElementsMatch(t, []string{"quantity", "unit_cost"}, missingCols)
	assert.True(t, vt.Quality.IsUsable)
}

func TestQualityFlagsNegativeQuantities(t *testing.T) {
	tbl, m := detect(t,
		[]string{"sku", "quantity", "unit_cost"},
		[][]string{
			{"A", "10", "1.5"},
			{"B", "-4", "2.0"},
		})

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	require.Nil(t, skipped)
	found := false
	for _, issue := range vt.Quality.Issues {
		if issue.Type == domain.IssueInvalidValue && issue.Column == "quantity" {
			found = true
			assert.Equal(t, domain.SeverityHigh, issue.Severity)
			assert.Equal(t, 1, issue.AffectedRows)
		}
	}
	assert.True(t, found, "negative quantity should be flagged")
}

func TestQualityCountsDuplicateRows(t *testing.T) {
	tbl, m := detect(t,
		[]string{"sku", "quantity", "unit_cost"},
		[][]string{
			{"A", "10", "1.5"},
			{"A", "10", "1.5"},
			{"B", "3", "2.0"},
		})

	vt, skipped := NewValidator(nil).Validate(tbl, m)

	require.Nil(t, skipped)
	assert.Equal(t, 1, vt.Quality.DuplicateRows)
}

func TestCountIQROutliers(t *testing.T) {
	values := []float64{10, 11, 9, 10, 12, 11, 10, 500}
	assert.Equal(t, 1, countIQROutliers(values))

	assert.Zero(t, countIQROutliers([]float64{1, 2, 3}))
	assert.Zero(t, countIQROutliers([]float64{5, 5, 5, 5, 5}))
}
