package insight

import (
	"fmt"
	"sort"
	"strings"

	"erpinsight/pkg/contracts/domain"
)

const (
	summaryMinBullets = 5
	summaryMaxBullets = 7
)

// BuildExecutiveSummary condenses the analysis into a short list of
// bullets ordered by urgency. Critical and high findings lead, a KPI
// context line follows, and the closing bullet names the first action.
func BuildExecutiveSummary(results map[domain.Domain]*domain.DomainResult, insights []domain.Insight) []string {
	bullets := make([]string, 0, summaryMaxBullets)

	urgent := make([]domain.Insight, 0, len(insights))
	for _, ins := range insights {
		if ins.Severity == domain.SeverityCritical || ins.Severity == domain.SeverityHigh {
			urgent = append(urgent, ins)
		}
	}
	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].Severity.Rank() < urgent[j].Severity.Rank()
	})
	for _, ins := range urgent {
		if len(bullets) >= summaryMaxBullets-2 {
			break
		}
		bullets = append(bullets, fmt.Sprintf("[%s] %s", strings.ToUpper(string(ins.Severity)), ins.Finding))
	}

	if line := kpiContextLine(results); line != "" {
		bullets = append(bullets, line)
	}

	if len(bullets) < summaryMinBullets-1 {
		for _, ins := range insights {
			if len(bullets) >= summaryMinBullets-1 {
				break
			}
			if ins.Severity == domain.SeverityCritical || ins.Severity == domain.SeverityHigh {
				continue
			}
			bullets = append(bullets, ins.Finding)
		}
	}
	if len(bullets) < summaryMinBullets-1 {
		bullets = append(bullets, fmt.Sprintf("Analyzed %d business domain(s) with no further findings above reporting thresholds", len(results)))
	}

	bullets = append(bullets, closingAction(urgent))
	return dedupBullets(bullets)
}

// kpiContextLine gives the reader scale: one line of headline figures
// across whichever domains were analyzed.
func kpiContextLine(results map[domain.Domain]*domain.DomainResult) string {
	parts := make([]string, 0, 4)
	for _, d := range domain.AllDomains() {
		res := results[d]
		if res == nil {
			continue
		}
		switch d {
		case domain.DomainFinancial:
			if v, ok := res.Finding("total_revenue"); ok {
				part := fmt.Sprintf("revenue %s", money(v))
				if m, ok := res.Finding("net_margin_pct"); ok {
					part += fmt.Sprintf(" at %s net margin", pct(m))
				}
				parts = append(parts, part)
			}
		case domain.DomainSales:
			if v, ok := res.Finding("total_revenue"); ok {
				orders, _ := res.Finding("order_count")
				parts = append(parts, fmt.Sprintf("sales %s across %.0f orders", money(v), orders))
			}
		case domain.DomainInventory:
			if v, ok := res.Finding("total_stock_value"); ok {
				parts = append(parts, fmt.Sprintf("inventory valued at %s", money(v)))
			}
		case domain.DomainManufacturing:
			if v, ok := res.Finding("efficiency_pct"); ok {
				parts = append(parts, fmt.Sprintf("production efficiency %s", pct(v)))
			}
		case domain.DomainPurchase:
			if v, ok := res.Finding("total_spend"); ok {
				parts = append(parts, fmt.Sprintf("purchase spend %s", money(v)))
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Headline figures: " + strings.Join(parts, ", ")
}

func closingAction(urgent []domain.Insight) string {
	if len(urgent) == 0 {
		return "No critical issues detected; maintain current operating cadence and re-run the analysis next period"
	}
	return fmt.Sprintf("Immediate priority: %s", lowerFirst(urgent[0].Action))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func dedupBullets(bullets []string) []string {
	seen := make(map[string]struct{}, len(bullets))
	out := bullets[:0]
	for _, b := range bullets {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
