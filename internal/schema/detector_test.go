package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpinsight/internal/tabular"
	"erpinsight/pkg/contracts/domain"
)

func testTable(columns ...string) *tabular.Table {
	return &tabular.Table{
		Source:  "test.csv",
		Columns: columns,
		Rows:    [][]string{make([]string, len(columns))},
	}
}

func TestDetectSalesExactHeaders(t *testing.T) {
	d := NewDetector(nil)
	tbl := testTable("order_id", "customer_id", "product_id", "quantity", "total_amount", "order_date")

	m := d.Detect(tbl)

	assert.Equal(t, domain.DomainSales, m.Domain)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, []string{"order_id", "product_id", "quantity", "total_amount"}, m.MatchedFields)
	assert.Empty(t, m.MissingFields)
	assert.Equal(t, "order_date", m.ColumnMapping["order_date"])
	assert.Equal(t, "customer_id", m.ColumnMapping["customer_id"])
}

func TestDetectMapsAliases(t *testing.T) {
	d := NewDetector(nil)
	tbl := testTable("SO Number", "SKU", "Units", "Net Amount", "Transaction Date")

	m := d.Detect(tbl)

	require.Equal(t, domain.DomainSales, m.Domain)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, "SO Number", m.ColumnMapping["order_id"])
	assert.Equal(t, "SKU", m.ColumnMapping["product_id"])
	assert.Equal(t, "Units", m.ColumnMapping["quantity"])
	assert.Equal(t, "Net Amount", m.ColumnMapping["total_amount"])
	assert.Equal(t, "Transaction Date", m.ColumnMapping["order_date"])
}

func TestDetectInventory(t *testing.T) {
	d := NewDetector(nil)
	tbl := testTable("sku", "quantity", "unit_cost", "receipt_date", "warehouse")

	m := d.Detect(tbl)

	assert.Equal(t, domain.DomainInventory, m.Domain)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestDetectPartialPurchase(t *testing.T) {
	d := NewDetector(nil)
	tbl := testTable("po_number", "unit_price", "quantity", "order_date")

	m := d.Detect(tbl)

	assert.Equal(t, domain.DomainPurchase, m.Domain)
	assert.Equal(t, 0.5, m.Confidence)
	assert.Equal(t, []string{"supplier_id", "quantity_ordered"}, m.MissingFields)
}

func TestDetectUnknown(t *testing.T) {
	d := NewDetector(nil)
	tbl := testTable("alpha", "beta", "gamma")

	m := d.Detect(tbl)

	assert.Equal(t, domain.DomainUnknown, m.Domain)
	assert.Less(t, m.Confidence, MinConfidence)
}

func TestDetectUnknownKeepsBestScore(t *testing.T) {
	d := NewDetector(nil)
	// Only one of sales' four required fields is present.
	tbl := testTable("order_id", "notes")

	m := d.Detect(tbl)

	assert.Equal(t, domain.DomainUnknown, m.Domain)
	assert.InDelta(t, 0.25, m.Confidence, 1e-9)
}

func TestDetectTieBreakPrefersOptionalOverlap(t *testing.T) {
	d := NewDetector(nil)
	// Required coverage ties at 1.0 only for inventory; add sales-ish
	// optional columns and the required set still decides.
	tbl := testTable("sku", "quantity", "unit_cost", "unit_price", "category")

	m := d.Detect(tbl)

	assert.Equal(t, domain.DomainInventory, m.Domain)
}

func TestDetectIsDeterministic(t *testing.T) {
	d := NewDetector(nil)
	tbl := testTable("order_id", "product_id", "quantity", "total_amount")

	first := d.Detect(tbl)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, d.Detect(tbl))
	}
}

func TestMatchClaimsEachColumnOnce(t *testing.T) {
	d := NewDetector(nil)
	// "amount" is an alias for total_amount; once claimed it must not
	// also satisfy another numeric field.
	tbl := testTable("order_id", "product_id", "qty", "amount")

	m := d.Match(tbl, domain.DomainSales)

	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, "amount", m.ColumnMapping["total_amount"])
	assert.NotContains(t, m.ColumnMapping, "discount")
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Order ID":       "order_id",
		"  Unit-Cost  ":  "unit_cost",
		"Total Amount $": "total_amount",
		"PO  Number":     "po_number",
		"quantity":       "quantity",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestRequiredFields(t *testing.T) {
	assert.Equal(t, []string{"revenue", "period"}, RequiredFields(domain.DomainFinancial))
	assert.Equal(t, []string{"order_id", "product_id", "quantity", "total_amount"}, RequiredFields(domain.DomainSales))
	assert.Equal(t, []string{"sku", "quantity", "unit_cost"}, RequiredFields(domain.DomainInventory))
	assert.Equal(t, []string{"product_id", "planned_quantity", "actual_quantity"}, RequiredFields(domain.DomainManufacturing))
	assert.Equal(t, []string{"po_number", "supplier_id", "quantity_ordered", "unit_price"}, RequiredFields(domain.DomainPurchase))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, FieldNumber, TypeOf(domain.DomainSales, "total_amount"))
	assert.Equal(t, FieldDate, TypeOf(domain.DomainSales, "order_date"))
	assert.Equal(t, FieldString, TypeOf(domain.DomainSales, "customer_name"))
	assert.Equal(t, FieldString, TypeOf(domain.DomainSales, "no_such_field"))
}
