package analysis

import (
	"sort"
	"time"

	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// FinancialAnalyzer covers revenue, margins, expense structure, budget
// variance and customer concentration from P&L-style exports.
type FinancialAnalyzer struct {
	cfg Config
}

func (a *FinancialAnalyzer) Domain() domain.Domain { return domain.DomainFinancial }

func (a *FinancialAnalyzer) Analyze(t *validation.ValidatedTable) *domain.DomainResult {
	r := newResult(domain.DomainFinancial)

	revenue, revenueOK := t.Numbers("revenue")
	totalRevenue := sum(revenue, revenueOK)
	r.kpi("total_revenue", round2(totalRevenue), domain.FormatCurrency)
	r.find("total_revenue", totalRevenue)

	var grossProfit float64
	cogs, cogsOK := t.Numbers("cost_of_goods_sold")
	if cogs != nil {
		grossProfit = totalRevenue - sum(cogs, cogsOK)
		r.kpi("gross_profit", round2(grossProfit), domain.FormatCurrency)
		if pct, ok := Ratio(grossProfit, totalRevenue); ok {
			r.kpi("gross_margin_pct", round2(pct*100), domain.FormatPercentage)
			r.find("gross_margin_pct", pct*100)
		}
	}

	var totalExpenses float64
	opex, opexOK := t.Numbers("operating_expenses")
	if opex != nil {
		totalExpenses = sum(opex, opexOK)
		operatingIncome := grossProfit - totalExpenses
		r.kpi("operating_income", round2(operatingIncome), domain.FormatCurrency)
		if pct, ok := Ratio(operatingIncome, totalRevenue); ok {
			r.kpi("operating_margin_pct", round2(pct*100), domain.FormatPercentage)
		}
		r.kpi("total_expenses", round2(totalExpenses), domain.FormatCurrency)
		if pct, ok := Ratio(totalExpenses, totalRevenue); ok {
			r.kpi("expense_ratio", round2(pct*100), domain.FormatPercentage)
		}
	}

	if netCol, netOK := t.Numbers("net_income"); netCol != nil {
		netIncome := sum(netCol, netOK)
		r.kpi("net_income", round2(netIncome), domain.FormatCurrency)
		if pct, ok := Ratio(netIncome, totalRevenue); ok {
			r.kpi("net_margin_pct", round2(pct*100), domain.FormatPercentage)
			r.find("net_margin_pct", pct*100)
		}
	}

	a.analyzeRevenueTrend(t, r, revenue, revenueOK)
	a.analyzeMarginTrend(t, r, revenue, revenueOK, cogs, cogsOK)
	a.analyzeBudget(t, r)
	a.analyzeExpenseConcentration(t, r)
	a.analyzeCustomerConcentration(t, r, revenue, revenueOK)

	return r.done()
}

func (a *FinancialAnalyzer) analyzeRevenueTrend(t *validation.ValidatedTable, r *result, revenue []float64, revenueOK []bool) {
	periods, periodOK := t.Dates("period")
	trend, ok := Trend(periods, periodOK, revenue, revenueOK)
	if !ok {
		r.kpi("revenue_growth", 0, domain.FormatPercentage)
		return
	}
	r.kpiChange("revenue_growth", round2(trend.ChangePct), domain.FormatPercentage, round2(trend.ChangePct))
	r.find("revenue_mom_pct", trend.ChangePct)
	r.find("revenue_current", trend.Current)
	r.find("revenue_prior", trend.Prior)
}

// analyzeMarginTrend compares the latest period's gross margin with the
// margin three periods back.
func (a *FinancialAnalyzer) analyzeMarginTrend(t *validation.ValidatedTable, r *result, revenue []float64, revenueOK []bool, cogs []float64, cogsOK []bool) {
	periods, periodOK := t.Dates("period")
	if periods == nil || cogs == nil {
		return
	}

	type row struct {
		period time.Time
		margin float64
	}
	var rows []row
	for i := range periods {
		if !periodOK[i] || i >= len(revenueOK) || i >= len(cogsOK) || !revenueOK[i] || !cogsOK[i] || revenue[i] == 0 {
			continue
		}
		rows = append(rows, row{periods[i], (revenue[i] - cogs[i]) / revenue[i] * 100})
	}
	if len(rows) < 3 {
		return
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].period.Before(rows[j].period) })

	current := rows[len(rows)-1].margin
	prior := rows[len(rows)-3].margin
	r.find("current_margin_pct", current)
	r.find("prior_margin_pct", prior)
	r.find("margin_change_pct", current-prior)
}

func (a *FinancialAnalyzer) analyzeBudget(t *validation.ValidatedTable, r *result) {
	actual, actualOK := t.Numbers("actual")
	budget, budgetOK := t.Numbers("budget")
	if actual == nil || budget == nil {
		return
	}
	totalActual := sum(actual, actualOK)
	totalBudget := sum(budget, budgetOK)
	variancePct, ok := Variance(totalActual, totalBudget)
	if !ok {
		return
	}
	r.find("budget_variance_pct", variancePct)
	r.find("budget_variance_amount", totalActual-totalBudget)
	r.find("budget_total_planned", totalBudget)
}

func (a *FinancialAnalyzer) analyzeExpenseConcentration(t *validation.ValidatedTable, r *result) {
	categories := t.Strings("category")
	amounts, amountOK := t.Numbers("amount")
	if categories == nil || amounts == nil {
		return
	}
	entries := Pareto(categories, amounts, amountOK)
	if len(entries) == 0 {
		return
	}
	r.find("top_expense_pct", entries[0].ContribPct)
	r.find("top_expense_amount", entries[0].Value)
	r.label("top_expense_category", entries[0].Category)
}

func (a *FinancialAnalyzer) analyzeCustomerConcentration(t *validation.ValidatedTable, r *result, revenue []float64, revenueOK []bool) {
	customers := t.Strings("customer_id")
	if customers == nil {
		return
	}
	entries := Pareto(customers, revenue, revenueOK)
	if len(entries) == 0 {
		return
	}
	r.find("top_customer_pct", entries[0].ContribPct)
	r.find("top_customer_revenue", entries[0].Value)
	r.label("top_customer", entries[0].Category)
	if len(entries) >= 3 {
		r.find("top3_customer_pct", TopShare(entries, 3))
	}
}
