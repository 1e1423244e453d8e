// Package insight turns raw analyzer findings into structured
// (finding, impact, action) records. Every threshold lives in a rule
// table: severity is decided by numeric breakpoints, never ad hoc, and
// supporting a new domain means adding rules, not control flow.
package insight

import (
	"fmt"
	"log/slog"
	"sort"

	"erpinsight/pkg/contracts/domain"
)

// rule is one row of a domain's rule table. value extracts the driving
// metric from the findings (false when the rule does not apply),
// severity maps the metric onto a band, and render produces the insight
// text plus the metrics payload.
type rule struct {
	id       string
	value    func(res *domain.DomainResult) (float64, bool)
	severity func(v float64) domain.Severity
	render   func(res *domain.DomainResult, v float64) (finding, impact, action string, metrics map[string]interface{})
}

// Engine applies the rule tables to per-domain results.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Derive applies the domain's rule table in declaration order and
// returns insights sorted most severe first. A rule fires at most once.
func (e *Engine) Derive(res *domain.DomainResult) []domain.Insight {
	table := ruleTables[res.Domain]
	var out []domain.Insight
	for _, r := range table {
		v, ok := r.value(res)
		if !ok {
			continue
		}
		sev := r.severity(v)
		if sev == "" {
			continue
		}
		finding, impact, action, metrics := r.render(res, v)
		if metrics == nil {
			metrics = make(map[string]interface{})
		}
		metrics["rule"] = r.id
		out = append(out, domain.Insight{
			Category: res.Domain.String(),
			Severity: sev,
			Finding:  finding,
			Impact:   impact,
			Action:   action,
			Metrics:  metrics,
		})
	}
	sortBySeverity(out)
	e.logger.Debug("insights derived", "domain", res.Domain, "count", len(out))
	return out
}

// DeriveCrossDomain applies the pairwise cross-domain rules. Callers
// must only invoke it when two or more domains are enabled.
func (e *Engine) DeriveCrossDomain(results map[domain.Domain]*domain.DomainResult) []domain.Insight {
	var out []domain.Insight
	for _, r := range crossDomainRules {
		if ins, ok := r(results); ok {
			out = append(out, ins)
		}
	}
	sortBySeverity(out)
	return out
}

// sortBySeverity orders most severe first, stable within a band so the
// rule-table declaration order is preserved.
func sortBySeverity(insights []domain.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Severity.Rank() < insights[j].Severity.Rank()
	})
}

// metric returns a findings accessor for a single key.
func metric(key string) func(res *domain.DomainResult) (float64, bool) {
	return func(res *domain.DomainResult) (float64, bool) {
		return res.Finding(key)
	}
}

// bandAbove fires when the value exceeds the lowest threshold and
// escalates through the ordered (threshold, severity) pairs.
type band struct {
	threshold float64
	severity  domain.Severity
}

func above(bands ...band) func(v float64) domain.Severity {
	return func(v float64) domain.Severity {
		var sev domain.Severity
		for _, b := range bands {
			if v > b.threshold {
				sev = b.severity
			}
		}
		return sev
	}
}

func below(bands ...band) func(v float64) domain.Severity {
	return func(v float64) domain.Severity {
		var sev domain.Severity
		for _, b := range bands {
			if v < b.threshold {
				sev = b.severity
			}
		}
		return sev
	}
}

func always(sev domain.Severity) func(float64) domain.Severity {
	return func(float64) domain.Severity { return sev }
}

func money(v float64) string {
	switch {
	case v >= 1_000_000 || v <= -1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000 || v <= -1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
