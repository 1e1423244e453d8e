// Package schema classifies uploaded tables against the canonical ERP
// domain schemas and maps loosely-named source columns onto canonical
// field names.
package schema

import (
	"erpinsight/pkg/contracts/domain"
)

// FieldType drives cell coercion during validation.
type FieldType int

const (
	FieldString FieldType = iota
	FieldNumber
	FieldDate
)

// FieldSpec describes one canonical field of a domain schema. The field
// name itself always matches; Aliases list the column-name variations
// seen in real ERP exports.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
	Aliases  []string
}

// domainFields holds the canonical schema per domain. Order matters
// twice: earlier fields win column-mapping collisions, and required
// coverage is reported in this order.
var domainFields = map[domain.Domain][]FieldSpec{
	domain.DomainFinancial: {
		{Name: "revenue", Type: FieldNumber, Required: true, Aliases: []string{"sales", "total_revenue", "gross_sales", "turnover"}},
		{Name: "period", Type: FieldDate, Required: true, Aliases: []string{"date", "month", "year", "quarter", "fiscal_period", "posting_date"}},
		{Name: "cost_of_goods_sold", Type: FieldNumber, Aliases: []string{"cogs", "cost_of_goods", "cost_of_sales", "direct_costs"}},
		{Name: "gross_profit", Type: FieldNumber, Aliases: []string{"gross_margin", "gross_earnings"}},
		{Name: "operating_expenses", Type: FieldNumber, Aliases: []string{"opex", "operating_costs", "operating_overhead"}},
		{Name: "operating_income", Type: FieldNumber, Aliases: []string{"operating_profit", "ebit"}},
		{Name: "net_income", Type: FieldNumber, Aliases: []string{"net_profit", "net_earnings", "bottom_line", "profit_after_tax"}},
		{Name: "budget", Type: FieldNumber, Aliases: []string{"budgeted", "planned", "forecast"}},
		{Name: "actual", Type: FieldNumber, Aliases: []string{"actuals"}},
		{Name: "customer_id", Type: FieldString, Aliases: []string{"customer_code", "client_id", "account"}},
		{Name: "category", Type: FieldString, Aliases: []string{"expense_category", "cost_center"}},
		{Name: "amount", Type: FieldNumber},
	},
	domain.DomainManufacturing: {
		{Name: "product_id", Type: FieldString, Required: true, Aliases: []string{"product_code", "item_code", "material_code", "sku"}},
		{Name: "planned_quantity", Type: FieldNumber, Required: true, Aliases: []string{"planned_output", "target_quantity", "planned"}},
		{Name: "actual_quantity", Type: FieldNumber, Required: true, Aliases: []string{"actual_output", "produced", "actual"}},
		{Name: "product_name", Type: FieldString, Aliases: []string{"item_name", "description", "material_description"}},
		{Name: "good_quantity", Type: FieldNumber, Aliases: []string{"good_units", "conforming", "first_pass"}},
		{Name: "rejected_quantity", Type: FieldNumber, Aliases: []string{"rejections", "scrap", "non_conforming"}},
		{Name: "wastage_quantity", Type: FieldNumber, Aliases: []string{"wastage", "waste"}},
		{Name: "production_line", Type: FieldString, Aliases: []string{"line", "work_center", "machine", "equipment"}},
		{Name: "production_date", Type: FieldDate, Aliases: []string{"date", "shift_date"}},
		{Name: "efficiency", Type: FieldNumber, Aliases: []string{"efficiency_rate", "oee", "utilization"}},
		{Name: "unit_cost", Type: FieldNumber, Aliases: []string{"cost_per_unit", "standard_cost"}},
	},
	domain.DomainInventory: {
		{Name: "sku", Type: FieldString, Required: true, Aliases: []string{"product_code", "item_code", "material_code", "product_id"}},
		{Name: "quantity", Type: FieldNumber, Required: true, Aliases: []string{"qty", "on_hand", "stock", "inventory_qty"}},
		{Name: "unit_cost", Type: FieldNumber, Required: true, Aliases: []string{"cost_per_unit", "standard_cost", "avg_cost"}},
		{Name: "unit_price", Type: FieldNumber, Aliases: []string{"selling_price", "price", "retail_price"}},
		{Name: "receipt_date", Type: FieldDate, Aliases: []string{"received_date", "doc_date", "posting_date"}},
		{Name: "last_movement_date", Type: FieldDate, Aliases: []string{"last_movement", "last_issue", "last_sale", "last_activity"}},
		{Name: "warehouse", Type: FieldString, Aliases: []string{"warehouse_id", "location", "site", "plant"}},
		{Name: "category", Type: FieldString, Aliases: []string{"product_category", "item_group"}},
		{Name: "average_daily_usage", Type: FieldNumber, Aliases: []string{"avg_daily_usage", "daily_usage"}},
		{Name: "days_of_stock", Type: FieldNumber, Aliases: []string{"days_coverage", "coverage_days"}},
		{Name: "cost_of_goods_sold", Type: FieldNumber, Aliases: []string{"cogs"}},
		{Name: "quantity_sold", Type: FieldNumber, Aliases: []string{"sold_qty", "units_sold"}},
	},
	domain.DomainSales: {
		{Name: "order_id", Type: FieldString, Required: true, Aliases: []string{"order_number", "order_no", "sales_order", "so_number"}},
		{Name: "product_id", Type: FieldString, Required: true, Aliases: []string{"product_code", "item_code", "sku"}},
		{Name: "quantity", Type: FieldNumber, Required: true, Aliases: []string{"qty", "units", "order_qty"}},
		{Name: "total_amount", Type: FieldNumber, Required: true, Aliases: []string{"amount", "total", "order_total", "line_total", "net_amount"}},
		{Name: "customer_id", Type: FieldString, Aliases: []string{"customer_code", "client_id", "account"}},
		{Name: "customer_name", Type: FieldString, Aliases: []string{"customer", "client", "account_name", "company"}},
		{Name: "product_name", Type: FieldString, Aliases: []string{"item_name", "description"}},
		{Name: "order_date", Type: FieldDate, Aliases: []string{"order_dt", "sales_date", "transaction_date", "date"}},
		{Name: "unit_price", Type: FieldNumber, Aliases: []string{"selling_price", "price"}},
		{Name: "discount", Type: FieldNumber, Aliases: []string{"discount_amount", "disc", "allowance"}},
		{Name: "cost_of_goods", Type: FieldNumber, Aliases: []string{"cogs", "cost"}},
		{Name: "region", Type: FieldString, Aliases: []string{"territory", "area"}},
		{Name: "channel", Type: FieldString, Aliases: []string{"sales_channel"}},
	},
	domain.DomainPurchase: {
		{Name: "po_number", Type: FieldString, Required: true, Aliases: []string{"purchase_order", "po_no", "purchase_order_no"}},
		{Name: "supplier_id", Type: FieldString, Required: true, Aliases: []string{"vendor_id", "supplier_code", "vendor_code"}},
		{Name: "quantity_ordered", Type: FieldNumber, Required: true, Aliases: []string{"ordered_qty", "po_quantity"}},
		{Name: "unit_price", Type: FieldNumber, Required: true, Aliases: []string{"price_per_unit", "po_price"}},
		{Name: "supplier_name", Type: FieldString, Aliases: []string{"vendor", "supplier", "vendor_name"}},
		{Name: "product_id", Type: FieldString, Aliases: []string{"product_code", "item_code", "material_code"}},
		{Name: "quantity_received", Type: FieldNumber, Aliases: []string{"received_qty", "receipt_qty"}},
		{Name: "total_amount", Type: FieldNumber, Aliases: []string{"amount", "po_amount", "total"}},
		{Name: "order_date", Type: FieldDate, Aliases: []string{"po_date", "date"}},
		{Name: "expected_delivery_date", Type: FieldDate, Aliases: []string{"expected_delivery", "delivery_date", "promised_date"}},
		{Name: "actual_delivery_date", Type: FieldDate, Aliases: []string{"actual_delivery", "delivery_received", "received_date"}},
		{Name: "lead_time_days", Type: FieldNumber, Aliases: []string{"lead_time"}},
		{Name: "delivery_status", Type: FieldString, Aliases: []string{"status"}},
	},
}

// Fields returns the canonical field specs for d in schema order.
func Fields(d domain.Domain) []FieldSpec {
	return domainFields[d]
}

// RequiredFields returns the required canonical field names for d.
func RequiredFields(d domain.Domain) []string {
	var out []string
	for _, f := range domainFields[d] {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// TypeOf returns the coercion type for a canonical field of d.
// Unknown fields coerce as strings.
func TypeOf(d domain.Domain, field string) FieldType {
	for _, f := range domainFields[d] {
		if f.Name == field {
			return f.Type
		}
	}
	return FieldString
}
