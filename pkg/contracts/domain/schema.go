package domain

// SchemaMatch is the outcome of classifying one table against a domain
// schema. ColumnMapping maps canonical field names to the source column
// that supplies them.
type SchemaMatch struct {
	Domain        Domain            `json:"domain"`
	Confidence    float64           `json:"confidence"`
	MatchedFields []string          `json:"matched_fields,omitempty"`
	MissingFields []string          `json:"missing_fields,omitempty"`
	ColumnMapping map[string]string `json:"column_mapping,omitempty"`
}

// RequiredCoverage is the fraction of required fields present in the
// mapping.
func (m *SchemaMatch) RequiredCoverage(required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	var matched int
	for _, f := range required {
		if _, ok := m.ColumnMapping[f]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// Quality issue types.
const (
	IssueMissing       = "missing_values"
	IssueMissingColumn = "missing_column"
	IssueDuplicate     = "duplicate_rows"
	IssueInvalidValue  = "invalid_values"
	IssueCoercion      = "unparseable_values"
	IssueOutlier       = "outliers"
)

// QualityIssue is one detected data quality problem in a table.
type QualityIssue struct {
	Column         string   `json:"column,omitempty"`
	Type           string   `json:"type"`
	AffectedRows   int      `json:"affected_rows"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// DataQualityReport summarizes validation of one table. IsUsable is
// false only when no row survives coercion; quality issues otherwise
// annotate rather than block the analysis.
type DataQualityReport struct {
	TotalRows     int            `json:"total_rows"`
	TotalColumns  int            `json:"total_columns"`
	Columns       []string       `json:"columns"`
	MissingPct    float64        `json:"missing_pct"`
	DuplicateRows int            `json:"duplicate_rows"`
	Issues        []QualityIssue `json:"issues,omitempty"`
	IsUsable      bool           `json:"is_usable"`
}

// Reasons a table is excluded from analysis.
const (
	ReasonSchemaAmbiguous       = "schema_ambiguous"
	ReasonRequiredFieldsMissing = "required_fields_missing"
	ReasonNoUsableRows          = "no_usable_rows"
)

// SkippedTable records a table excluded from analysis and why, so the
// report can state the exclusion instead of silently dropping data.
type SkippedTable struct {
	Source        string   `json:"source"`
	Domain        Domain   `json:"domain"`
	Reason        string   `json:"reason"`
	Detail        string   `json:"detail"`
	MissingFields []string `json:"missing_fields,omitempty"`
}
