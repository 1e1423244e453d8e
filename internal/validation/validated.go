// Package validation gates classified tables into the analysis stage.
// It renames source columns to canonical names, coerces cells into
// typed column vectors and produces a data quality report per table.
package validation

import (
	"sort"
	"time"

	"erpinsight/pkg/contracts/domain"
)

// ValidatedTable is a typed, canonical-name view of one accepted table.
// Columns are stored as parallel value/valid slices indexed by row, so
// analyzers can skip unparseable cells without losing row alignment.
type ValidatedTable struct {
	Source   string
	Domain   domain.Domain
	Match    domain.SchemaMatch
	RowCount int
	Quality  domain.DataQualityReport

	numbers  map[string][]float64
	numberOK map[string][]bool
	dates    map[string][]time.Time
	dateOK   map[string][]bool
	text     map[string][]string
}

// HasField reports whether the canonical field was mapped from a source
// column.
func (v *ValidatedTable) HasField(name string) bool {
	if _, ok := v.numbers[name]; ok {
		return true
	}
	if _, ok := v.dates[name]; ok {
		return true
	}
	_, ok := v.text[name]
	return ok
}

// Numbers returns the numeric column and its validity mask. Both slices
// are nil when the field was not mapped or is not numeric.
func (v *ValidatedTable) Numbers(name string) ([]float64, []bool) {
	return v.numbers[name], v.numberOK[name]
}

// Dates returns the date column and its validity mask.
func (v *ValidatedTable) Dates(name string) ([]time.Time, []bool) {
	return v.dates[name], v.dateOK[name]
}

// Strings returns the text column, with cells trimmed as loaded.
func (v *ValidatedTable) Strings(name string) []string {
	return v.text[name]
}

// Fields returns the mapped canonical field names in sorted order.
func (v *ValidatedTable) Fields() []string {
	out := make([]string, 0, len(v.numbers)+len(v.dates)+len(v.text))
	for name := range v.numbers {
		out = append(out, name)
	}
	for name := range v.dates {
		out = append(out, name)
	}
	for name := range v.text {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
