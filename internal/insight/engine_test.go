package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpinsight/pkg/contracts/domain"
)

func findByRule(t *testing.T, insights []domain.Insight, id string) domain.Insight {
	t.Helper()
	for _, ins := range insights {
		if ins.Metrics["rule"] == id {
			return ins
		}
	}
	t.Fatalf("no insight fired for rule %s", id)
	return domain.Insight{}
}

func TestDeriveAgedStockCritical(t *testing.T) {
	res := &domain.DomainResult{
		Domain: domain.DomainInventory,
		Findings: map[string]float64{
			"aged_percentage":   23,
			"total_stock_value": 1_200_000,
		},
	}

	insights := NewEngine(nil).Derive(res)

	ins := findByRule(t, insights, "inventory.aged_stock")
	assert.Equal(t, domain.SeverityCritical, ins.Severity)
	assert.Equal(t, "inventory", ins.Category)
	assert.InDelta(t, 23.0, ins.Metrics["aged_percentage"], 0.001)
	assert.InDelta(t, 276_000.0, ins.Metrics["tied_up_capital"], 0.5)
	assert.Contains(t, ins.Finding, "23.0%")
}

func TestDeriveBelowThresholdIsSilent(t *testing.T) {
	res := &domain.DomainResult{
		Domain: domain.DomainInventory,
		Findings: map[string]float64{
			"aged_percentage":   12,
			"total_stock_value": 500_000,
		},
	}

	insights := NewEngine(nil).Derive(res)

	for _, ins := range insights {
		assert.NotEqual(t, "inventory.aged_stock", ins.Metrics["rule"])
	}
}

func TestDeriveEscalatingBands(t *testing.T) {
	engine := NewEngine(nil)

	high := &domain.DomainResult{
		Domain:   domain.DomainInventory,
		Findings: map[string]float64{"dead_value": 40_000, "dead_sku_count": 3},
	}
	critical := &domain.DomainResult{
		Domain:   domain.DomainInventory,
		Findings: map[string]float64{"dead_value": 150_000, "dead_sku_count": 9},
	}

	assert.Equal(t, domain.SeverityHigh, findByRule(t, engine.Derive(high), "inventory.dead_stock").Severity)
	assert.Equal(t, domain.SeverityCritical, findByRule(t, engine.Derive(critical), "inventory.dead_stock").Severity)
}

func TestDeriveSortsBySeverity(t *testing.T) {
	res := &domain.DomainResult{
		Domain: domain.DomainFinancial,
		Findings: map[string]float64{
			"revenue_mom_pct": 25, // low severity surge
			"net_margin_pct":  3,  // high severity
			"total_revenue":   900_000,
		},
	}

	insights := NewEngine(nil).Derive(res)

	require.GreaterOrEqual(t, len(insights), 2)
	for i := 1; i < len(insights); i++ {
		assert.LessOrEqual(t, insights[i-1].Severity.Rank(), insights[i].Severity.Rank())
	}
	assert.Equal(t, domain.SeverityHigh, insights[0].Severity)
}

func TestDeriveCustomerConcentrationUsesLabel(t *testing.T) {
	res := &domain.DomainResult{
		Domain: domain.DomainSales,
		Findings: map[string]float64{
			"top_customer_pct":     70,
			"top_customer_revenue": 2_940,
		},
		Labels: map[string]string{"top_customer": "BIGCO"},
	}

	ins := findByRule(t, NewEngine(nil).Derive(res), "sales.customer_concentration")
	assert.Equal(t, domain.SeverityCritical, ins.Severity)
	assert.Contains(t, ins.Finding, "BIGCO")
}

func TestDeriveIsDeterministic(t *testing.T) {
	res := &domain.DomainResult{
		Domain: domain.DomainPurchase,
		Findings: map[string]float64{
			"top_supplier_pct":   45,
			"top_supplier_spend": 9_000,
			"on_time_pct":        60,
			"late_orders":        8,
			"price_change_pct":   14,
			"price_current":      11.4,
			"price_prior":        10,
		},
		Labels: map[string]string{"top_supplier": "ACME"},
	}

	engine := NewEngine(nil)
	first := engine.Derive(res)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Derive(res))
	}
}

func TestDeriveCrossDomain(t *testing.T) {
	results := map[domain.Domain]*domain.DomainResult{
		domain.DomainSales: {
			Domain: domain.DomainSales,
			Findings: map[string]float64{
				"top_customer_pct": 35,
				"revenue_mom_pct":  -12,
			},
		},
		domain.DomainPurchase: {
			Domain: domain.DomainPurchase,
			Findings: map[string]float64{
				"top_supplier_pct": 40,
			},
		},
	}

	insights := NewEngine(nil).DeriveCrossDomain(results)

	require.NotEmpty(t, insights)
	ins := findByRule(t, insights, "cross.concentration_exposure")
	assert.Equal(t, domain.CategoryCrossDomain, ins.Category)
	assert.Equal(t, domain.SeverityHigh, ins.Severity)
}

func TestDeriveCrossDomainNeedsBothSides(t *testing.T) {
	results := map[domain.Domain]*domain.DomainResult{
		domain.DomainSales: {
			Domain:   domain.DomainSales,
			Findings: map[string]float64{"top_customer_pct": 35, "revenue_mom_pct": -12},
		},
	}

	assert.Empty(t, NewEngine(nil).DeriveCrossDomain(results))
}

func TestBuildExecutiveSummary(t *testing.T) {
	results := map[domain.Domain]*domain.DomainResult{
		domain.DomainSales: {
			Domain: domain.DomainSales,
			Findings: map[string]float64{
				"total_revenue": 420_000,
				"order_count":   310,
			},
		},
	}
	insights := []domain.Insight{
		{
			Category: "sales",
			Severity: domain.SeverityCritical,
			Finding:  "Customer \"BIGCO\" represents 70.0% of revenue ($294K)",
			Action:   "Assign an executive sponsor to the account",
		},
		{
			Category: "sales",
			Severity: domain.SeverityMedium,
			Finding:  "Sales volatility at 34.0% across periods",
		},
	}

	bullets := BuildExecutiveSummary(results, insights)

	require.GreaterOrEqual(t, len(bullets), summaryMinBullets-1)
	assert.LessOrEqual(t, len(bullets), summaryMaxBullets)
	assert.Contains(t, bullets[0], "[CRITICAL]")
	assert.Contains(t, bullets[len(bullets)-1], "Immediate priority:")

	joined := ""
	for _, b := range bullets {
		joined += b + "\n"
	}
	assert.Contains(t, joined, "$420K")
}

func TestBuildExecutiveSummaryNoInsights(t *testing.T) {
	bullets := BuildExecutiveSummary(map[domain.Domain]*domain.DomainResult{}, nil)

	require.NotEmpty(t, bullets)
	assert.Contains(t, bullets[len(bullets)-1], "No critical issues detected")
}
