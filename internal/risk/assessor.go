// Package risk promotes the most severe insights into forward-looking
// risk records and derives additional risks from KPI thresholds that
// the insight rules do not cover.
package risk

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"erpinsight/pkg/contracts/domain"
)

// Assessor builds the risk section of a report.
type Assessor struct {
	logger *slog.Logger
}

func NewAssessor(logger *slog.Logger) *Assessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assessor{logger: logger}
}

// Assess promotes critical and high insights into risks and appends
// KPI-derived risks. Output is ordered most severe first, stable so
// repeated runs over the same inputs produce the same list aside from
// the generated IDs.
func (a *Assessor) Assess(results map[domain.Domain]*domain.DomainResult, insights []domain.Insight) []domain.Risk {
	var risks []domain.Risk
	for _, ins := range insights {
		if r, ok := fromInsight(ins); ok {
			risks = append(risks, r)
		}
	}
	risks = append(risks, kpiRisks(results)...)

	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].Severity.Rank() < risks[j].Severity.Rank()
	})
	a.logger.Debug("risks assessed", "count", len(risks))
	return risks
}

// fromInsight promotes an insight when its severity warrants treating
// it as a forward-looking risk. Medium and low findings stay insights.
func fromInsight(ins domain.Insight) (domain.Risk, bool) {
	var prob domain.Probability
	switch ins.Severity {
	case domain.SeverityCritical:
		prob = domain.ProbabilityHigh
	case domain.SeverityHigh:
		prob = domain.ProbabilityMedium
	default:
		return domain.Risk{}, false
	}
	return domain.Risk{
		ID:                  uuid.NewString(),
		Title:               riskTitle(ins),
		Category:            ins.Category,
		Description:         ins.Finding,
		Probability:         prob,
		FinancialImpact:     financialImpact(ins),
		TimeToImpact:        timeToImpact(ins.Severity),
		Severity:            ins.Severity,
		Mitigation:          ins.Action,
		EarlyWarningSignals: warningSignals(ins),
	}, true
}

// riskTitle turns the rule identifier into a short headline, falling
// back to the first clause of the finding.
func riskTitle(ins domain.Insight) string {
	if id, ok := ins.Metrics["rule"].(string); ok {
		if _, name, found := strings.Cut(id, "."); found {
			return titleWords(name)
		}
	}
	if i := strings.IndexAny(ins.Finding, ",("); i > 0 {
		return strings.TrimSpace(ins.Finding[:i])
	}
	return ins.Finding
}

func titleWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Risk"
}

// financialImpact prefers a dollar figure already computed by the
// insight rule; otherwise it stays qualitative.
func financialImpact(ins domain.Insight) string {
	for _, key := range []string{
		"tied_up_capital", "dead_value", "excess_value", "variance_amount",
		"top_customer_revenue", "top_supplier_spend", "revenue_at_stake", "buffer_value",
	} {
		if v, ok := ins.Metrics[key].(float64); ok && v > 0 {
			return moneyString(v) + " exposed"
		}
	}
	if ins.Severity == domain.SeverityCritical {
		return "Material impact on earnings if unaddressed"
	}
	return "Moderate impact on earnings if unaddressed"
}

func timeToImpact(sev domain.Severity) string {
	if sev == domain.SeverityCritical {
		return "0-3 months"
	}
	return "3-6 months"
}

// warningSignals lists the observable signs that the risk is starting
// to materialize, keyed by the broad category of the finding.
func warningSignals(ins domain.Insight) []string {
	rule, _ := ins.Metrics["rule"].(string)
	switch {
	case strings.Contains(rule, "concentration"):
		return []string{
			"Payment terms stretching on the dominant account",
			"Declining order frequency from the counterparty",
			"Counterparty undergoing leadership or ownership change",
		}
	case strings.Contains(rule, "margin") || strings.Contains(rule, "budget") || strings.Contains(rule, "expense"):
		return []string{
			"Input costs rising faster than selling prices",
			"Discounting increasing quarter over quarter",
			"Operating expenses outpacing revenue growth",
		}
	case strings.Contains(rule, "stock") || strings.Contains(rule, "dio") || strings.Contains(rule, "turnover"):
		return []string{
			"Warehouse utilization climbing without matching sales",
			"Weeks of cover increasing on slow categories",
			"Write-down provisions growing at period close",
		}
	case strings.Contains(rule, "delivery") || strings.Contains(rule, "lead") || strings.Contains(rule, "supplier"):
		return []string{
			"Expedited freight spend increasing",
			"Production schedule changes driven by material shortages",
			"Supplier quoting longer lead times on new orders",
		}
	case strings.Contains(rule, "revenue") || strings.Contains(rule, "output") || strings.Contains(rule, "efficiency"):
		return []string{
			"Pipeline conversion rates declining",
			"Backlog shrinking for two consecutive periods",
			"Unplanned downtime trending up",
		}
	default:
		return nil
	}
}

// kpiRisks covers exposures visible in the KPI layer that no insight
// rule reports on directly.
func kpiRisks(results map[domain.Domain]*domain.DomainResult) []domain.Risk {
	var risks []domain.Risk

	if fin := results[domain.DomainFinancial]; fin != nil {
		if v, ok := fin.Finding("net_margin_pct"); ok && v < 5 {
			risks = append(risks, domain.Risk{
				ID:              uuid.NewString(),
				Title:           "Margin Erosion Risk",
				Category:        domain.DomainFinancial.String(),
				Description:     fmt.Sprintf("Net margin of %.1f%% leaves no buffer against cost shocks or demand softness", v),
				Probability:     domain.ProbabilityHigh,
				FinancialImpact: "Losses within two quarters under a 5% cost increase",
				TimeToImpact:    "0-3 months",
				Severity:        domain.SeverityCritical,
				Mitigation:      "Run a structural cost review and reprice loss-making products before the next cycle",
				EarlyWarningSignals: []string{
					"Monthly net income turning negative",
					"Cash conversion cycle lengthening",
				},
			})
		}
	}
	if inv := results[domain.DomainInventory]; inv != nil {
		if v, ok := inv.Finding("days_inventory_outstanding"); ok && v > 90 {
			risks = append(risks, domain.Risk{
				ID:              uuid.NewString(),
				Title:           "Obsolescence Risk",
				Category:        domain.DomainInventory.String(),
				Description:     fmt.Sprintf("Inventory turns once every %.0f days, well past the point where obsolescence and markdowns accumulate", v),
				Probability:     domain.ProbabilityMedium,
				FinancialImpact: "Write-downs on the slowest third of stock",
				TimeToImpact:    "3-6 months",
				Severity:        domain.SeverityHigh,
				Mitigation:      "Tighten reorder points and clear slow movers while they still hold resale value",
				EarlyWarningSignals: []string{
					"Aged share of stock value increasing each period",
					"Gross margin on clearance sales declining",
				},
			})
		}
	}
	return risks
}

func moneyString(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
