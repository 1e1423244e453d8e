package analysis

import (
	"strings"

	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// PurchaseAnalyzer covers spend, supplier concentration, lead times,
// delivery performance and purchase price trend.
type PurchaseAnalyzer struct {
	cfg Config
}

func (a *PurchaseAnalyzer) Domain() domain.Domain { return domain.DomainPurchase }

func (a *PurchaseAnalyzer) Analyze(t *validation.ValidatedTable) *domain.DomainResult {
	r := newResult(domain.DomainPurchase)

	spend, spendOK := a.spendColumn(t)
	totalSpend := sum(spend, spendOK)
	orderCount := uniqueCount(t.Strings("po_number"))
	if orderCount == 0 {
		orderCount = t.RowCount
	}
	supplierCount := uniqueCount(t.Strings("supplier_id"))

	r.kpi("total_spend", round2(totalSpend), domain.FormatCurrency)
	r.kpi("order_count", float64(orderCount), domain.FormatNumber)
	r.kpi("supplier_count", float64(supplierCount), domain.FormatNumber)
	if aov, ok := Ratio(totalSpend, float64(orderCount)); ok {
		r.kpi("average_order_value", round2(aov), domain.FormatCurrency)
	}
	r.find("total_spend", totalSpend)
	r.find("order_count", float64(orderCount))
	r.find("supplier_count", float64(supplierCount))

	a.analyzeSuppliers(t, r, spend, spendOK)
	a.analyzeLeadTimes(t, r)
	a.analyzeDelivery(t, r)
	a.analyzePriceTrend(t, r)

	return r.done()
}

// spendColumn prefers an explicit total_amount column and falls back to
// quantity_ordered x unit_price.
func (a *PurchaseAnalyzer) spendColumn(t *validation.ValidatedTable) ([]float64, []bool) {
	if amounts, ok := t.Numbers("total_amount"); amounts != nil {
		return amounts, ok
	}
	qty, qtyOK := t.Numbers("quantity_ordered")
	price, priceOK := t.Numbers("unit_price")
	return rowProduct(qty, qtyOK, price, priceOK)
}

func (a *PurchaseAnalyzer) analyzeSuppliers(t *validation.ValidatedTable, r *result, spend []float64, spendOK []bool) {
	suppliers := t.Strings("supplier_id")
	if suppliers == nil {
		return
	}
	names := t.Strings("supplier_name")

	entries := Pareto(suppliers, spend, spendOK)
	if len(entries) == 0 {
		return
	}
	r.find("top_supplier_pct", entries[0].ContribPct)
	r.find("top_supplier_spend", entries[0].Value)
	r.label("top_supplier", displayName(suppliers, names, entries[0].Category))
	if len(entries) >= 3 {
		r.find("top3_supplier_pct", TopShare(entries, 3))
	}
}

func (a *PurchaseAnalyzer) analyzeLeadTimes(t *validation.ValidatedTable, r *result) {
	leads, leadOK := t.Numbers("lead_time_days")
	if leads == nil {
		leads, leadOK = a.derivedLeadTimes(t)
	}
	if leads == nil {
		return
	}

	clean := make([]float64, 0, len(leads))
	for i, v := range leads {
		if i < len(leadOK) && leadOK[i] && v >= 0 {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return
	}

	avg := mean(clean)
	sd := stddev(clean)
	r.kpi("average_lead_time_days", round1(avg), domain.FormatNumber)
	r.find("avg_lead_time_days", avg)
	r.find("lead_time_std_days", sd)

	long := 0
	for _, v := range clean {
		if v > avg*1.5 {
			long++
		}
	}
	r.find("long_lead_pct", float64(long)/float64(len(clean))*100)
}

func (a *PurchaseAnalyzer) derivedLeadTimes(t *validation.ValidatedTable) ([]float64, []bool) {
	ordered, orderedOK := t.Dates("order_date")
	expected, expectedOK := t.Dates("expected_delivery_date")
	if ordered == nil || expected == nil {
		return nil, nil
	}
	n := len(ordered)
	if len(expected) < n {
		n = len(expected)
	}
	leads := make([]float64, n)
	ok := make([]bool, n)
	for i := 0; i < n; i++ {
		if orderedOK[i] && expectedOK[i] {
			leads[i] = daysSince(expected[i], ordered[i])
			ok[i] = true
		}
	}
	return leads, ok
}

// analyzeDelivery derives on-time rate from expected vs actual delivery
// dates, or from a delivery status column when dates are absent.
func (a *PurchaseAnalyzer) analyzeDelivery(t *validation.ValidatedTable, r *result) {
	var onTime, total int

	expected, expectedOK := t.Dates("expected_delivery_date")
	actual, actualOK := t.Dates("actual_delivery_date")
	if expected != nil && actual != nil {
		n := len(expected)
		if len(actual) < n {
			n = len(actual)
		}
		for i := 0; i < n; i++ {
			if !expectedOK[i] || !actualOK[i] {
				continue
			}
			total++
			if !actual[i].After(expected[i]) {
				onTime++
			}
		}
	} else if statuses := t.Strings("delivery_status"); statuses != nil {
		for _, s := range statuses {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			total++
			if strings.Contains(s, "on time") || strings.Contains(s, "on_time") || s == "delivered" {
				onTime++
			}
		}
	}
	if total == 0 {
		return
	}

	rate := float64(onTime) / float64(total) * 100
	r.kpi("on_time_delivery_pct", round2(rate), domain.FormatPercentage)
	r.find("on_time_pct", rate)
	r.find("late_orders", float64(total-onTime))
}

func (a *PurchaseAnalyzer) analyzePriceTrend(t *validation.ValidatedTable, r *result) {
	prices, priceOK := t.Numbers("unit_price")
	dates, dateOK := t.Dates("order_date")
	trend, ok := TrendOfMeans(dates, dateOK, prices, priceOK)
	if !ok {
		return
	}
	r.find("price_change_pct", trend.ChangePct)
	r.find("price_current", trend.Current)
	r.find("price_prior", trend.Prior)
}
