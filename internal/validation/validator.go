package validation

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"erpinsight/internal/schema"
	"erpinsight/internal/tabular"
	"erpinsight/pkg/contracts/domain"
)

// maxMissingRequired caps how many required fields a table may lack and
// still enter analysis. With one field missing the analyzer degrades
// the affected KPIs to N/A; with more the section would be hollow.
const maxMissingRequired = 1

// positiveOnly lists canonical fields where negative values are data
// errors rather than business facts.
var positiveOnly = map[string]bool{
	"quantity":            true,
	"unit_cost":           true,
	"unit_price":          true,
	"planned_quantity":    true,
	"actual_quantity":     true,
	"good_quantity":       true,
	"rejected_quantity":   true,
	"wastage_quantity":    true,
	"quantity_ordered":    true,
	"quantity_received":   true,
	"lead_time_days":      true,
	"average_daily_usage": true,
	"days_of_stock":       true,
	"quantity_sold":       true,
}

// Validator turns classified raw tables into ValidatedTables, or into
// SkippedTable records explaining the rejection.
type Validator struct {
	logger *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate applies the acceptance gate and, when the table passes,
// coerces every mapped column into its canonical type. Exactly one of
// the return values is non-nil.
func (v *Validator) Validate(t *tabular.Table, m domain.SchemaMatch) (*ValidatedTable, *domain.SkippedTable) {
	if !m.Domain.Valid() || m.Confidence < schema.MinConfidence {
		return nil, &domain.SkippedTable{
			Source: t.Source,
			Domain: m.Domain,
			Reason: domain.ReasonSchemaAmbiguous,
			Detail: fmt.Sprintf("no domain schema matched with sufficient confidence (best %.2f)", m.Confidence),
		}
	}

	required := schema.RequiredFields(m.Domain)
	coverage := m.RequiredCoverage(required)
	if coverage < 0.5 || len(m.MissingFields) > maxMissingRequired {
		return nil, &domain.SkippedTable{
			Source:        t.Source,
			Domain:        m.Domain,
			Reason:        domain.ReasonRequiredFieldsMissing,
			Detail:        fmt.Sprintf("required columns not found: %s", strings.Join(m.MissingFields, ", ")),
			MissingFields: m.MissingFields,
		}
	}

	vt := v.coerce(t, m)
	vt.Quality = v.assess(t, m, vt)
	if !vt.Quality.IsUsable {
		return nil, &domain.SkippedTable{
			Source: t.Source,
			Domain: m.Domain,
			Reason: domain.ReasonNoUsableRows,
			Detail: "no row has usable values for the required columns",
		}
	}

	v.logger.Debug("table validated",
		"source", t.Source,
		"domain", m.Domain,
		"rows", vt.RowCount,
		"quality_issues", len(vt.Quality.Issues))
	return vt, nil
}

// coerce builds the typed column vectors from the schema mapping.
func (v *Validator) coerce(t *tabular.Table, m domain.SchemaMatch) *ValidatedTable {
	vt := &ValidatedTable{
		Source:   t.Source,
		Domain:   m.Domain,
		Match:    m,
		RowCount: t.RowCount(),
		numbers:  make(map[string][]float64),
		numberOK: make(map[string][]bool),
		dates:    make(map[string][]time.Time),
		dateOK:   make(map[string][]bool),
		text:     make(map[string][]string),
	}
	for _, spec := range schema.Fields(m.Domain) {
		source, ok := m.ColumnMapping[spec.Name]
		if !ok {
			continue
		}
		idx := t.ColumnIndex(source)
		if idx < 0 {
			continue
		}
		raw := t.Column(idx)
		switch spec.Type {
		case schema.FieldNumber:
			values := make([]float64, len(raw))
			valid := make([]bool, len(raw))
			for i, cell := range raw {
				values[i], valid[i] = tabular.ParseNumber(cell)
			}
			vt.numbers[spec.Name] = values
			vt.numberOK[spec.Name] = valid
		case schema.FieldDate:
			values := make([]time.Time, len(raw))
			valid := make([]bool, len(raw))
			for i, cell := range raw {
				values[i], valid[i] = tabular.ParseDate(cell)
			}
			vt.dates[spec.Name] = values
			vt.dateOK[spec.Name] = valid
		default:
			vt.text[spec.Name] = raw
		}
	}
	return vt
}

// assess builds the quality report for an accepted table.
func (v *Validator) assess(t *tabular.Table, m domain.SchemaMatch, vt *ValidatedTable) domain.DataQualityReport {
	report := domain.DataQualityReport{
		TotalRows:    t.RowCount(),
		TotalColumns: len(t.Columns),
	}
	for _, spec := range schema.Fields(m.Domain) {
		if _, ok := m.ColumnMapping[spec.Name]; ok {
			report.Columns = append(report.Columns, spec.Name)
		}
	}

	var totalCells, missingCells int
	for _, spec := range schema.Fields(m.Domain) {
		source, ok := m.ColumnMapping[spec.Name]
		if !ok {
			continue
		}
		idx := t.ColumnIndex(source)
		if idx < 0 {
			continue
		}
		raw := t.Column(idx)
		totalCells += len(raw)

		missing := 0
		for _, cell := range raw {
			if strings.TrimSpace(cell) == "" {
				missing++
			}
		}
		missingCells += missing
		if missing > 0 && len(raw) > 0 {
			pct := 100 * float64(missing) / float64(len(raw))
			report.Issues = append(report.Issues, domain.QualityIssue{
				Column:         spec.Name,
				Type:           domain.IssueMissing,
				AffectedRows:   missing,
				Severity:       missingSeverity(pct),
				Description:    fmt.Sprintf("%.1f%% of values in %q are missing", pct, spec.Name),
				Recommendation: "fill the gaps at the source system or exclude the incomplete rows",
			})
		}

		switch spec.Type {
		case schema.FieldNumber:
			report.Issues = append(report.Issues, v.numericIssues(spec.Name, raw, vt, missing)...)
		case schema.FieldDate:
			if issue := coercionIssue(spec.Name, "date", len(raw), missing, countValid(vt.dateOK[spec.Name])); issue != nil {
				report.Issues = append(report.Issues, *issue)
			}
		}
	}

	if totalCells > 0 {
		report.MissingPct = 100 * float64(missingCells) / float64(totalCells)
	}

	report.DuplicateRows = countDuplicateRows(t)
	if report.DuplicateRows > 0 {
		pct := 100 * float64(report.DuplicateRows) / float64(t.RowCount())
		sev := domain.SeverityMedium
		if pct > 5 {
			sev = domain.SeverityHigh
		}
		report.Issues = append(report.Issues, domain.QualityIssue{
			Type:           domain.IssueDuplicate,
			AffectedRows:   report.DuplicateRows,
			Severity:       sev,
			Description:    fmt.Sprintf("%d duplicate rows (%.1f%%)", report.DuplicateRows, pct),
			Recommendation: "deduplicate the export before upload; duplicates inflate totals",
		})
	}

	report.IsUsable = v.usableRows(m.Domain, vt) > 0
	return report
}

// numericIssues checks one numeric column for unparseable cells,
// negative values in positive-only fields, and IQR outliers.
func (v *Validator) numericIssues(field string, raw []string, vt *ValidatedTable, missing int) []domain.QualityIssue {
	values, valid := vt.Numbers(field)
	var issues []domain.QualityIssue

	if issue := coercionIssue(field, "number", len(raw), missing, countValid(valid)); issue != nil {
		issues = append(issues, *issue)
	}

	if positiveOnly[field] {
		negatives := 0
		for i, ok := range valid {
			if ok && values[i] < 0 {
				negatives++
			}
		}
		if negatives > 0 {
			issues = append(issues, domain.QualityIssue{
				Column:         field,
				Type:           domain.IssueInvalidValue,
				AffectedRows:   negatives,
				Severity:       domain.SeverityHigh,
				Description:    fmt.Sprintf("%d negative values in %q, which should never be negative", negatives, field),
				Recommendation: "check for sign errors or reversed transactions in the export",
			})
		}
	}

	clean := make([]float64, 0, len(values))
	for i, ok := range valid {
		if ok {
			clean = append(clean, values[i])
		}
	}
	if outliers := countIQROutliers(clean); len(clean) >= 4 && outliers > 0 {
		pct := 100 * float64(outliers) / float64(len(clean))
		if pct > 5 {
			issues = append(issues, domain.QualityIssue{
				Column:         field,
				Type:           domain.IssueOutlier,
				AffectedRows:   outliers,
				Severity:       domain.SeverityMedium,
				Description:    fmt.Sprintf("%.1f%% of %q values fall far outside the typical range", pct, field),
				Recommendation: "verify extreme values; they may be unit or entry errors",
			})
		}
	}
	return issues
}

// usableRows counts rows where every mapped required field holds a
// usable value.
func (v *Validator) usableRows(d domain.Domain, vt *ValidatedTable) int {
	if vt.RowCount == 0 {
		return 0
	}
	usable := 0
	for row := 0; row < vt.RowCount; row++ {
		ok := true
		for _, spec := range schema.Fields(d) {
			if !spec.Required || !vt.HasField(spec.Name) {
				continue
			}
			switch spec.Type {
			case schema.FieldNumber:
				_, valid := vt.Numbers(spec.Name)
				ok = ok && valid[row]
			case schema.FieldDate:
				_, valid := vt.Dates(spec.Name)
				ok = ok && valid[row]
			default:
				ok = ok && vt.Strings(spec.Name)[row] != ""
			}
			if !ok {
				break
			}
		}
		if ok {
			usable++
		}
	}
	return usable
}

func coercionIssue(field, kind string, total, missing, valid int) *domain.QualityIssue {
	bad := total - missing - valid
	if bad <= 0 {
		return nil
	}
	pct := 100 * float64(bad) / float64(total)
	sev := domain.SeverityLow
	if pct > 10 {
		sev = domain.SeverityMedium
	}
	return &domain.QualityIssue{
		Column:         field,
		Type:           domain.IssueCoercion,
		AffectedRows:   bad,
		Severity:       sev,
		Description:    fmt.Sprintf("%d values in %q could not be read as a %s", bad, field, kind),
		Recommendation: "export the column in a consistent format",
	}
}

func missingSeverity(pct float64) domain.Severity {
	switch {
	case pct > 50:
		return domain.SeverityCritical
	case pct > 20:
		return domain.SeverityHigh
	case pct > 10:
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}

func countValid(mask []bool) int {
	n := 0
	for _, ok := range mask {
		if ok {
			n++
		}
	}
	return n
}

func countDuplicateRows(t *tabular.Table) int {
	seen := make(map[string]bool, len(t.Rows))
	dups := 0
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	return dups
}

// countIQROutliers counts values beyond 1.5 interquartile ranges from
// the quartiles.
func countIQROutliers(values []float64) int {
	if len(values) < 4 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	n := 0
	for _, v := range values {
		if v < lo || v > hi {
			n++
		}
	}
	return n
}

// quantile interpolates linearly between the two nearest ranks of an
// already-sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
