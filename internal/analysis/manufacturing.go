package analysis

import (
	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// ManufacturingAnalyzer covers production efficiency, yield, wastage and
// output trend.
type ManufacturingAnalyzer struct {
	cfg Config
}

func (a *ManufacturingAnalyzer) Domain() domain.Domain { return domain.DomainManufacturing }

func (a *ManufacturingAnalyzer) Analyze(t *validation.ValidatedTable) *domain.DomainResult {
	r := newResult(domain.DomainManufacturing)

	planned, plannedOK := t.Numbers("planned_quantity")
	actual, actualOK := t.Numbers("actual_quantity")
	totalPlanned := sum(planned, plannedOK)
	totalActual := sum(actual, actualOK)

	r.kpi("total_planned_quantity", totalPlanned, domain.FormatNumber)
	r.kpi("total_actual_quantity", totalActual, domain.FormatNumber)

	if efficiency, ok := Ratio(totalActual, totalPlanned); ok {
		r.kpi("production_efficiency_pct", round2(efficiency*100), domain.FormatPercentage)
		r.find("efficiency_pct", efficiency*100)
		if totalPlanned > totalActual {
			r.find("shortfall_units", totalPlanned-totalActual)
		}
	}

	totalGood := totalActual
	if good, goodOK := t.Numbers("good_quantity"); good != nil {
		totalGood = sum(good, goodOK)
		if yield, ok := Ratio(totalGood, totalActual); ok {
			r.kpi("yield_rate_pct", round2(yield*100), domain.FormatPercentage)
			r.find("yield_pct", yield*100)
			r.find("yield_lost_units", totalActual-totalGood)
		}
	}

	var totalWaste float64
	if rejected, rejectedOK := t.Numbers("rejected_quantity"); rejected != nil {
		rej := sum(rejected, rejectedOK)
		totalWaste += rej
		if rate, ok := Ratio(rej, totalActual); ok {
			r.kpi("rejection_rate_pct", round2(rate*100), domain.FormatPercentage)
			r.find("rejection_rate_pct", rate*100)
		}
	}
	if wastage, wastageOK := t.Numbers("wastage_quantity"); wastage != nil {
		totalWaste += sum(wastage, wastageOK)
	}
	if totalWaste > 0 {
		if rate, ok := Ratio(totalWaste, totalActual); ok {
			r.kpi("wastage_rate_pct", round2(rate*100), domain.FormatPercentage)
			r.find("wastage_rate_pct", rate*100)
			r.find("waste_units", totalWaste)
		}
	}

	if cost, costOK := t.Numbers("unit_cost"); cost != nil {
		production, prodOK := rowProduct(cost, costOK, actual, actualOK)
		totalCost := sum(production, prodOK)
		r.kpi("total_production_cost", round2(totalCost), domain.FormatCurrency)
		if cpu, ok := Ratio(totalCost, totalActual); ok {
			r.kpi("cost_per_unit", round2(cpu), domain.FormatCurrency)
			r.find("cost_per_unit", cpu)
		}
	}

	a.analyzeLines(t, r, planned, plannedOK, actual, actualOK)
	a.analyzeOutputTrend(t, r, actual, actualOK)

	return r.done()
}

// analyzeLines finds the worst-performing production line by summed
// efficiency.
func (a *ManufacturingAnalyzer) analyzeLines(t *validation.ValidatedTable, r *result, planned []float64, plannedOK []bool, actual []float64, actualOK []bool) {
	lines := t.Strings("production_line")
	if lines == nil {
		return
	}

	plannedByLine := Pareto(lines, planned, plannedOK)
	actualByLine := make(map[string]float64)
	for _, e := range Pareto(lines, actual, actualOK) {
		actualByLine[e.Category] = e.Value
	}

	worstLine, worstEff := "", 0.0
	for _, e := range plannedByLine {
		eff, ok := Ratio(actualByLine[e.Category], e.Value)
		if !ok {
			continue
		}
		if worstLine == "" || eff*100 < worstEff {
			worstLine, worstEff = e.Category, eff*100
		}
	}
	if worstLine == "" || worstEff >= 80 {
		return
	}
	r.find("worst_line_efficiency_pct", worstEff)
	r.label("worst_line", worstLine)
}

func (a *ManufacturingAnalyzer) analyzeOutputTrend(t *validation.ValidatedTable, r *result, actual []float64, actualOK []bool) {
	dates, dateOK := t.Dates("production_date")
	trend, ok := Trend(dates, dateOK, actual, actualOK)
	if !ok {
		return
	}
	r.find("output_mom_pct", trend.ChangePct)
	r.find("output_current", trend.Current)
	r.find("output_prior", trend.Prior)
}
