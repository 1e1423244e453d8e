package analysis

import (
	"sort"

	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// InventoryAnalyzer covers stock value, aging, dead stock, overstock
// and turnover.
type InventoryAnalyzer struct {
	cfg Config
}

func (a *InventoryAnalyzer) Domain() domain.Domain { return domain.DomainInventory }

func (a *InventoryAnalyzer) Analyze(t *validation.ValidatedTable) *domain.DomainResult {
	r := newResult(domain.DomainInventory)

	qty, qtyOK := t.Numbers("quantity")
	cost, costOK := t.Numbers("unit_cost")
	stockValue, stockOK := rowProduct(qty, qtyOK, cost, costOK)
	totalValue := sum(stockValue, stockOK)

	skus := t.Strings("sku")
	totalSKUs := uniqueCount(skus)
	if totalSKUs == 0 {
		totalSKUs = t.RowCount
	}

	r.kpi("total_stock_value", round2(totalValue), domain.FormatCurrency)
	r.kpi("total_skus", float64(totalSKUs), domain.FormatNumber)
	r.find("total_stock_value", totalValue)
	r.find("total_skus", float64(totalSKUs))

	// Turnover needs cost of goods sold; without it the KPI is omitted
	// rather than reported as zero.
	if cogs, cogsOK := t.Numbers("cost_of_goods_sold"); cogs != nil {
		if turnover, ok := Ratio(sum(cogs, cogsOK), totalValue); ok {
			r.kpi("inventory_turnover", round2(turnover), domain.FormatNumber)
			r.find("inventory_turnover", turnover)
			if dio, ok := Ratio(365, turnover); ok {
				r.kpi("days_inventory_outstanding", round1(dio), domain.FormatNumber)
				r.find("days_inventory_outstanding", dio)
			}
		}
	}

	a.analyzeAging(t, r, stockValue, stockOK, totalValue)
	a.analyzeDeadStock(t, r, stockValue, stockOK)
	a.analyzeOverstock(t, r, qty, qtyOK, stockValue, stockOK)
	a.analyzeCategoryTurnover(t, r, stockValue, stockOK)
	a.analyzeStagnantStock(t, r, qty, qtyOK, stockValue, stockOK)

	return r.done()
}

// analyzeAging buckets stock value by age and reports the share beyond
// the aged threshold. The aged percentage is value-weighted when stock
// value is computable, row-weighted otherwise.
func (a *InventoryAnalyzer) analyzeAging(t *validation.ValidatedTable, r *result, stockValue []float64, stockOK []bool, totalValue float64) {
	receipts, receiptOK := t.Dates("receipt_date")
	if receipts == nil {
		return
	}

	var ageSum float64
	var aged, counted int
	var agedValue float64
	for i := range receipts {
		if !receiptOK[i] {
			continue
		}
		age := daysSince(a.cfg.AsOf, receipts[i])
		ageSum += age
		counted++
		if age > float64(a.cfg.AgedStockDays) {
			aged++
			if i < len(stockOK) && stockOK[i] {
				agedValue += stockValue[i]
			}
		}
	}
	if counted == 0 {
		return
	}

	avgAge := ageSum / float64(counted)
	r.kpi("average_stock_age_days", round1(avgAge), domain.FormatNumber)
	r.find("average_stock_age_days", avgAge)

	var agedPct float64
	if totalValue > 0 {
		agedPct = agedValue / totalValue * 100
	} else {
		agedPct = float64(aged) / float64(counted) * 100
	}
	r.find("aged_percentage", agedPct)
	r.find("aged_value", agedValue)
	r.find("aged_sku_count", float64(aged))
}

func (a *InventoryAnalyzer) analyzeDeadStock(t *validation.ValidatedTable, r *result, stockValue []float64, stockOK []bool) {
	movements, moveOK := t.Dates("last_movement_date")
	if movements == nil {
		return
	}

	var deadValue float64
	var deadCount int
	topSKU, topValue := "", -1.0
	skus := t.Strings("sku")
	for i := range movements {
		if !moveOK[i] {
			continue
		}
		if daysSince(a.cfg.AsOf, movements[i]) <= float64(a.cfg.DeadStockDays) {
			continue
		}
		deadCount++
		if i < len(stockOK) && stockOK[i] {
			deadValue += stockValue[i]
			if stockValue[i] > topValue && i < len(skus) {
				topSKU, topValue = skus[i], stockValue[i]
			}
		}
	}
	if deadCount == 0 {
		return
	}
	r.find("dead_sku_count", float64(deadCount))
	r.find("dead_value", deadValue)
	r.label("top_dead_sku", topSKU)
}

func (a *InventoryAnalyzer) analyzeOverstock(t *validation.ValidatedTable, r *result, qty []float64, qtyOK []bool, stockValue []float64, stockOK []bool) {
	coverage, coverageOK := t.Numbers("days_of_stock")
	if coverage == nil {
		usage, usageOK := t.Numbers("average_daily_usage")
		if usage == nil {
			return
		}
		coverage = make([]float64, len(qty))
		coverageOK = make([]bool, len(qty))
		for i := range qty {
			if i < len(qtyOK) && i < len(usageOK) && qtyOK[i] && usageOK[i] && usage[i] > 0 {
				coverage[i] = qty[i] / usage[i]
				coverageOK[i] = true
			}
		}
	}

	var excessValue float64
	var overCount int
	for i := range coverage {
		if !coverageOK[i] || coverage[i] <= float64(a.cfg.OverstockDays) {
			continue
		}
		overCount++
		if i < len(stockOK) && stockOK[i] {
			excessValue += stockValue[i]
		}
	}
	if overCount == 0 {
		return
	}
	r.find("overstock_sku_count", float64(overCount))
	r.find("excess_value", excessValue)
}

func (a *InventoryAnalyzer) analyzeCategoryTurnover(t *validation.ValidatedTable, r *result, stockValue []float64, stockOK []bool) {
	categories := t.Strings("category")
	cogs, cogsOK := t.Numbers("cost_of_goods_sold")
	if categories == nil || cogs == nil {
		return
	}

	cogsByCat := make(map[string]float64)
	valueByCat := make(map[string]float64)
	for i := range categories {
		if categories[i] == "" {
			continue
		}
		if i < len(cogsOK) && cogsOK[i] {
			cogsByCat[categories[i]] += cogs[i]
		}
		if i < len(stockOK) && stockOK[i] {
			valueByCat[categories[i]] += stockValue[i]
		}
	}

	cats := make([]string, 0, len(cogsByCat))
	for cat := range cogsByCat {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	worstCat, worstTurnover, worstValue := "", -1.0, 0.0
	for _, cat := range cats {
		turnover, ok := Ratio(cogsByCat[cat], valueByCat[cat])
		if !ok || turnover >= 4 {
			continue
		}
		if worstCat == "" || turnover < worstTurnover {
			worstCat, worstTurnover, worstValue = cat, turnover, valueByCat[cat]
		}
	}
	if worstCat == "" {
		return
	}
	r.find("worst_category_turnover", worstTurnover)
	r.find("worst_category_stock_value", worstValue)
	r.label("worst_category", worstCat)
}

// analyzeStagnantStock flags SKUs holding above-median quantity with no
// movement for a quarter.
func (a *InventoryAnalyzer) analyzeStagnantStock(t *validation.ValidatedTable, r *result, qty []float64, qtyOK []bool, stockValue []float64, stockOK []bool) {
	movements, moveOK := t.Dates("last_movement_date")
	if movements == nil || qty == nil {
		return
	}

	clean := make([]float64, 0, len(qty))
	for i := range qty {
		if i < len(qtyOK) && qtyOK[i] {
			clean = append(clean, qty[i])
		}
	}
	if len(clean) == 0 {
		return
	}
	sort.Float64s(clean)
	median := clean[len(clean)/2]

	var count int
	var value float64
	for i := range movements {
		if !moveOK[i] || i >= len(qtyOK) || !qtyOK[i] {
			continue
		}
		if daysSince(a.cfg.AsOf, movements[i]) > 90 && qty[i] > median {
			count++
			if i < len(stockOK) && stockOK[i] {
				value += stockValue[i]
			}
		}
	}
	if count <= 10 {
		return
	}
	r.find("stagnant_sku_count", float64(count))
	r.find("stagnant_value", value)
}
