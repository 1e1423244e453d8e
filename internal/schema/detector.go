package schema

import (
	"log/slog"
	"regexp"
	"strings"

	"erpinsight/internal/tabular"
	"erpinsight/pkg/contracts/domain"
)

// MinConfidence is the floor below which a table stays unclassified.
const MinConfidence = 0.5

// Detector classifies tables into ERP domains by matching normalized
// column headers against the canonical field specs.
type Detector struct {
	logger *slog.Logger
}

func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// Detect scores the table against every domain schema and returns the
// best match. Confidence is the fraction of the winning domain's
// required fields present after column mapping; below MinConfidence the
// match carries DomainUnknown but keeps the best candidate's score and
// mapping so callers can explain the rejection.
func (d *Detector) Detect(t *tabular.Table) domain.SchemaMatch {
	best := domain.SchemaMatch{Domain: domain.DomainUnknown}
	bestOptional := -1
	for _, dom := range domain.AllDomains() {
		m := d.Match(t, dom)
		optional := len(m.ColumnMapping) - len(m.MatchedFields)
		// Strictly-greater comparisons keep the fixed domain priority
		// order as the final tie-break.
		if m.Confidence > best.Confidence ||
			(m.Confidence == best.Confidence && optional > bestOptional) {
			best = m
			bestOptional = optional
		}
	}
	if best.Confidence < MinConfidence {
		d.logger.Debug("table left unclassified",
			"source", t.Source,
			"best_domain", best.Domain,
			"confidence", best.Confidence)
		best.Domain = domain.DomainUnknown
		return best
	}
	d.logger.Debug("table classified",
		"source", t.Source,
		"domain", best.Domain,
		"confidence", best.Confidence,
		"mapped_columns", len(best.ColumnMapping))
	return best
}

// Match scores the table against a single domain schema. Each source
// column resolves to at most one canonical field and each canonical
// field claims at most one source column; earlier schema fields win
// collisions.
func (d *Detector) Match(t *tabular.Table, dom domain.Domain) domain.SchemaMatch {
	specs := domainFields[dom]
	m := domain.SchemaMatch{
		Domain:        dom,
		ColumnMapping: make(map[string]string),
	}

	normalized := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		normalized[i] = NormalizeHeader(col)
	}

	claimed := make(map[int]bool)
	for _, spec := range specs {
		idx := matchColumn(spec, normalized, claimed)
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		m.ColumnMapping[spec.Name] = t.Columns[idx]
	}

	var matched, required int
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		required++
		if _, ok := m.ColumnMapping[spec.Name]; ok {
			matched++
			m.MatchedFields = append(m.MatchedFields, spec.Name)
		} else {
			m.MissingFields = append(m.MissingFields, spec.Name)
		}
	}
	if required > 0 {
		m.Confidence = float64(matched) / float64(required)
	}
	return m
}

// matchColumn finds the first unclaimed column matching the spec,
// preferring exact matches over word-boundary and affix matches.
func matchColumn(spec FieldSpec, normalized []string, claimed map[int]bool) int {
	candidates := append([]string{spec.Name}, spec.Aliases...)
	for pass := 0; pass < 3; pass++ {
		for _, cand := range candidates {
			for i, col := range normalized {
				if claimed[i] || col == "" {
					continue
				}
				var ok bool
				switch pass {
				case 0:
					ok = col == cand
				case 1:
					ok = wordMatch(col, cand)
				case 2:
					ok = affixMatch(col, cand)
				}
				if ok {
					return i
				}
			}
		}
	}
	return -1
}

// wordMatch reports whether cand appears as a whole word inside col.
// Underscores join words, so "order_date" does not word-match "date".
func wordMatch(col, cand string) bool {
	if len(cand) < 3 {
		return false
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(cand) + `\b`)
	return re.MatchString(col)
}

// affixMatch handles short conventional prefixes and suffixes such as
// "qty" in "po_qty". Only patterns up to four characters qualify so
// longer aliases cannot swallow unrelated columns.
func affixMatch(col, cand string) bool {
	if len(cand) > 4 {
		return false
	}
	return strings.HasPrefix(col, cand+"_") || strings.HasSuffix(col, "_"+cand)
}

var headerJunk = regexp.MustCompile(`[^a-z0-9_]+`)

// NormalizeHeader lowercases a source column name and collapses
// spaces, hyphens and punctuation into single underscores.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = headerJunk.ReplaceAllString(s, "")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}
