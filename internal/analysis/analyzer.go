package analysis

import (
	"time"

	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// Analyzer computes a DomainResult from one validated table. Given
// identical input and config, the output is identical: no randomness,
// no wall clock beyond the configured reference time.
type Analyzer interface {
	Domain() domain.Domain
	Analyze(t *validation.ValidatedTable) *domain.DomainResult
}

// Config carries the analysis thresholds and the reference time used
// for age calculations. AsOf is fixed per run so repeated runs over the
// same snapshot agree.
type Config struct {
	AsOf          time.Time
	DeadStockDays int // no movement beyond this is dead stock
	OverstockDays int // days of coverage beyond this is overstock
	AgedStockDays int // age beyond this counts toward the aged bucket
}

// DefaultConfig returns the stock thresholds used when the caller does
// not override them.
func DefaultConfig(asOf time.Time) Config {
	return Config{
		AsOf:          asOf,
		DeadStockDays: 180,
		OverstockDays: 90,
		AgedStockDays: 90,
	}
}

// ForDomain returns the analyzer for d, or nil for unknown domains.
func ForDomain(d domain.Domain, cfg Config) Analyzer {
	switch d {
	case domain.DomainFinancial:
		return &FinancialAnalyzer{cfg: cfg}
	case domain.DomainManufacturing:
		return &ManufacturingAnalyzer{cfg: cfg}
	case domain.DomainInventory:
		return &InventoryAnalyzer{cfg: cfg}
	case domain.DomainSales:
		return &SalesAnalyzer{cfg: cfg}
	case domain.DomainPurchase:
		return &PurchaseAnalyzer{cfg: cfg}
	}
	return nil
}

// result bundles the common construction of a DomainResult.
type result struct {
	domain.DomainResult
}

func newResult(d domain.Domain) *result {
	return &result{DomainResult: domain.DomainResult{
		Domain:   d,
		Findings: make(map[string]float64),
		Labels:   make(map[string]string),
	}}
}

func (r *result) kpi(label string, value float64, format string) {
	r.KPIs = append(r.KPIs, domain.KPI{Label: label, Value: value, Format: format})
}

func (r *result) kpiChange(label string, value float64, format string, changePct float64) {
	c := changePct
	r.KPIs = append(r.KPIs, domain.KPI{Label: label, Value: value, Format: format, ChangePct: &c})
}

func (r *result) find(key string, value float64) {
	r.Findings[key] = value
}

func (r *result) label(key, value string) {
	if value != "" {
		r.Labels[key] = value
	}
}

func (r *result) done() *domain.DomainResult {
	out := r.DomainResult
	if len(out.Labels) == 0 {
		out.Labels = nil
	}
	return &out
}

// rowProduct multiplies two numeric columns row-wise, returning the
// product column and combined validity mask.
func rowProduct(a []float64, aOK []bool, b []float64, bOK []bool) ([]float64, []bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	ok := make([]bool, n)
	for i := 0; i < n; i++ {
		if i < len(aOK) && i < len(bOK) && aOK[i] && bOK[i] {
			out[i] = a[i] * b[i]
			ok[i] = true
		}
	}
	return out, ok
}

// daysSince returns whole days between then and asOf.
func daysSince(asOf, then time.Time) float64 {
	return asOf.Sub(then).Hours() / 24
}
