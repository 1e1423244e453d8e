// Package recommend turns insights into an executable action plan:
// each recommendation states what to do, why, and how, carries a
// priority and timeline derived from the insight's severity, and where
// the metrics allow it an estimated dollar effect.
package recommend

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"erpinsight/pkg/contracts/domain"
)

// savingsFactors estimate the recoverable share of the dollar amounts
// certain insight rules report. Dead stock recovers roughly half its
// book value through clearance, excess stock avoids a fifth of its
// value in carrying cost, budget overruns are typically half
// addressable, and stagnant stock recovers about a third.
var savingsFactors = []struct {
	metric string
	factor float64
}{
	{"dead_value", 0.5},
	{"excess_value", 0.2},
	{"variance_amount", 0.5},
	{"stagnant_value", 0.3},
}

// Planner builds the recommendation list and the grouped action plan.
type Planner struct {
	logger *slog.Logger
}

func NewPlanner(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{logger: logger}
}

// Recommend converts insights into recommendations, deduplicated by
// originating rule with the highest-priority instance kept. Output is
// ordered by priority then declaration order.
func (p *Planner) Recommend(insights []domain.Insight) []domain.Recommendation {
	type keyed struct {
		rec  domain.Recommendation
		rank int
		pos  int
	}
	best := make(map[string]keyed)
	order := 0
	for _, ins := range insights {
		rec, ok := fromInsight(ins)
		if !ok {
			continue
		}
		key, _ := ins.Metrics["rule"].(string)
		if key == "" {
			key = ins.Category + "|" + ins.Finding
		}
		entry := keyed{rec: rec, rank: priorityRank(rec.Priority), pos: order}
		order++
		if prev, seen := best[key]; seen && prev.rank <= entry.rank {
			continue
		}
		best[key] = entry
	}

	out := make([]keyed, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].rank != out[j].rank {
			return out[i].rank < out[j].rank
		}
		return out[i].pos < out[j].pos
	})

	recs := make([]domain.Recommendation, len(out))
	for i, e := range out {
		recs[i] = e.rec
	}
	p.logger.Debug("recommendations built", "count", len(recs))
	return recs
}

// Plan groups recommendations into the priority buckets and totals the
// estimated dollar effect.
func (p *Planner) Plan(recs []domain.Recommendation) domain.ActionPlan {
	plan := domain.ActionPlan{TotalCount: len(recs)}
	for _, r := range recs {
		switch r.Priority {
		case domain.PriorityImmediate:
			plan.Immediate = append(plan.Immediate, r)
		case domain.PriorityShortTerm:
			plan.ShortTerm = append(plan.ShortTerm, r)
		default:
			plan.MediumTerm = append(plan.MediumTerm, r)
		}
		if r.EstimatedSavings != nil {
			plan.TotalEstimatedImpact += *r.EstimatedSavings
		}
		if r.EstimatedRevenueImpact != nil {
			plan.TotalEstimatedImpact += *r.EstimatedRevenueImpact
		}
	}
	plan.ImmediateCount = len(plan.Immediate)
	return plan
}

func fromInsight(ins domain.Insight) (domain.Recommendation, bool) {
	if ins.Action == "" {
		return domain.Recommendation{}, false
	}
	rec := domain.Recommendation{
		ID:       uuid.NewString(),
		Title:    title(ins),
		What:     ins.Action,
		Why:      ins.Finding,
		How:      howSteps(ins),
		Impact:   ins.Impact,
		Priority: priorityFor(ins.Severity),
		Timeline: timelineFor(ins.Severity),
	}
	if v, ok := estimatedSavings(ins); ok {
		rec.EstimatedSavings = &v
	}
	if v, ok := ins.Metrics["revenue_at_stake"].(float64); ok && v > 0 {
		recovered := v * 0.5
		rec.EstimatedRevenueImpact = &recovered
	}
	return rec, true
}

func priorityFor(sev domain.Severity) domain.Priority {
	switch sev {
	case domain.SeverityCritical:
		return domain.PriorityImmediate
	case domain.SeverityHigh, domain.SeverityMedium:
		return domain.PriorityShortTerm
	default:
		return domain.PriorityMediumTerm
	}
}

func timelineFor(sev domain.Severity) domain.TimeHorizon {
	switch sev {
	case domain.SeverityCritical, domain.SeverityHigh:
		return domain.HorizonImmediate
	case domain.SeverityMedium:
		return domain.HorizonShortTerm
	default:
		return domain.HorizonMediumTerm
	}
}

func priorityRank(p domain.Priority) int {
	switch p {
	case domain.PriorityImmediate:
		return 0
	case domain.PriorityShortTerm:
		return 1
	default:
		return 2
	}
}

func estimatedSavings(ins domain.Insight) (float64, bool) {
	for _, f := range savingsFactors {
		v, ok := ins.Metrics[f.metric].(float64)
		if !ok || v == 0 {
			continue
		}
		if v < 0 {
			v = -v
		}
		return v * f.factor, true
	}
	return 0, false
}

// title derives a short headline from the rule identifier, falling
// back to the leading clause of the action.
func title(ins domain.Insight) string {
	if id, ok := ins.Metrics["rule"].(string); ok {
		if _, name, found := strings.Cut(id, "."); found {
			return "Address " + strings.ReplaceAll(name, "_", " ")
		}
	}
	if i := strings.IndexAny(ins.Action, ",.;"); i > 0 {
		return strings.TrimSpace(ins.Action[:i])
	}
	return ins.Action
}

// howSteps expands the single-sentence action into numbered steps by
// splitting on its clauses.
func howSteps(ins domain.Insight) string {
	clauses := splitClauses(ins.Action)
	if len(clauses) <= 1 {
		return ins.Action
	}
	var b strings.Builder
	for i, c := range clauses {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d) %s.", i+1, strings.TrimSpace(c))
	}
	return b.String()
}

func splitClauses(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == ';' || r == ':'
	})
	out := raw[:0]
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
