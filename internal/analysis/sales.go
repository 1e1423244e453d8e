package analysis

import (
	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// SalesAnalyzer covers revenue, order economics, customer and product
// concentration, discount discipline and revenue trend.
type SalesAnalyzer struct {
	cfg Config
}

func (a *SalesAnalyzer) Domain() domain.Domain { return domain.DomainSales }

func (a *SalesAnalyzer) Analyze(t *validation.ValidatedTable) *domain.DomainResult {
	r := newResult(domain.DomainSales)

	amounts, amountOK := t.Numbers("total_amount")
	qty, qtyOK := t.Numbers("quantity")

	totalRevenue := sum(amounts, amountOK)
	orderCount := uniqueCount(t.Strings("order_id"))
	if orderCount == 0 {
		orderCount = t.RowCount
	}
	totalUnits := sum(qty, qtyOK)

	r.kpi("total_revenue", round2(totalRevenue), domain.FormatCurrency)
	r.kpi("order_count", float64(orderCount), domain.FormatNumber)
	if aov, ok := Ratio(totalRevenue, float64(orderCount)); ok {
		r.kpi("average_order_value", round2(aov), domain.FormatCurrency)
		r.find("average_order_value", aov)
	}
	r.kpi("unique_customers", float64(uniqueCount(t.Strings("customer_id"))), domain.FormatNumber)
	r.kpi("unique_products", float64(uniqueCount(t.Strings("product_id"))), domain.FormatNumber)
	r.kpi("total_units_sold", totalUnits, domain.FormatNumber)
	if asp, ok := Ratio(totalRevenue, totalUnits); ok {
		r.kpi("average_selling_price", round2(asp), domain.FormatCurrency)
	}

	r.find("total_revenue", totalRevenue)
	r.find("order_count", float64(orderCount))

	if cogs, cogsOK := t.Numbers("cost_of_goods"); cogs != nil {
		margin := totalRevenue - sum(cogs, cogsOK)
		r.kpi("gross_margin", round2(margin), domain.FormatCurrency)
		if pct, ok := Ratio(margin, totalRevenue); ok {
			r.kpi("average_margin_pct", round2(pct*100), domain.FormatPercentage)
			r.find("average_margin_pct", pct*100)
		}
	}

	a.analyzeTrend(t, r, amounts, amountOK)
	a.analyzeCustomers(t, r, amounts, amountOK)
	a.analyzeProducts(t, r, amounts, amountOK)
	a.analyzeDiscounts(t, r, amounts, amountOK, totalRevenue)

	return r.done()
}

func (a *SalesAnalyzer) analyzeTrend(t *validation.ValidatedTable, r *result, amounts []float64, amountOK []bool) {
	dates, dateOK := t.Dates("order_date")
	trend, ok := Trend(dates, dateOK, amounts, amountOK)
	if !ok {
		// Fewer than two periods: growth is N/A, not zero.
		r.kpi("revenue_growth_pct", 0, domain.FormatPercentage)
		return
	}
	r.kpiChange("revenue_growth_pct", round2(trend.ChangePct), domain.FormatPercentage, round2(trend.ChangePct))
	r.find("revenue_mom_pct", trend.ChangePct)
	r.find("revenue_current", trend.Current)
	r.find("revenue_prior", trend.Prior)
	if trend.Periods >= 4 {
		r.find("revenue_volatility_pct", trend.VolatilityPct)
	}
}

func (a *SalesAnalyzer) analyzeCustomers(t *validation.ValidatedTable, r *result, amounts []float64, amountOK []bool) {
	customers := t.Strings("customer_id")
	if customers == nil {
		return
	}
	names := t.Strings("customer_name")

	entries := Pareto(customers, amounts, amountOK)
	if len(entries) == 0 {
		return
	}
	top := entries[0]
	r.find("top_customer_pct", top.ContribPct)
	r.find("top_customer_revenue", top.Value)
	r.label("top_customer", displayName(customers, names, top.Category))

	if len(entries) >= 5 {
		r.find("top5_customer_pct", TopShare(entries, 5))
	}
}

func (a *SalesAnalyzer) analyzeProducts(t *validation.ValidatedTable, r *result, amounts []float64, amountOK []bool) {
	products := t.Strings("product_id")
	if products == nil {
		return
	}

	entries := Pareto(products, amounts, amountOK)
	if len(entries) == 0 {
		return
	}
	r.find("product_count", float64(len(entries)))
	r.find("top5_product_pct", TopShare(entries, 5))
	r.find("pareto_items_for_80", float64(ItemsFor80(entries)))

	if len(entries) > 20 {
		var bottomValue, bottomPct float64
		for _, e := range entries[len(entries)-10:] {
			bottomValue += e.Value
			bottomPct += e.ContribPct
		}
		r.find("bottom10_product_pct", bottomPct)
		r.find("bottom10_product_value", bottomValue)
	}
}

func (a *SalesAnalyzer) analyzeDiscounts(t *validation.ValidatedTable, r *result, amounts []float64, amountOK []bool, totalRevenue float64) {
	discounts, discountOK := t.Numbers("discount")
	if discounts == nil {
		return
	}

	var rateSum float64
	var rated, deep int
	for i := range discounts {
		if i >= len(amountOK) || !discountOK[i] || !amountOK[i] || amounts[i] == 0 {
			continue
		}
		rate := discounts[i] / amounts[i] * 100
		rateSum += rate
		rated++
		if rate > 20 {
			deep++
		}
	}
	if rated == 0 {
		return
	}
	avg := rateSum / float64(rated)
	r.find("avg_discount_pct", avg)
	r.find("discount_revenue_at_stake", totalRevenue*avg/100)
	r.find("high_discount_orders", float64(deep))
}

// displayName swaps an ID for the first non-empty name seen alongside
// it, falling back to the ID itself.
func displayName(ids, names []string, id string) string {
	if names == nil {
		return id
	}
	for i, v := range ids {
		if v == id && i < len(names) && names[i] != "" {
			return names[i]
		}
	}
	return id
}
