package domain

import (
	"time"
)

// KPI is a single display-ready indicator. Order matters: analyzers emit
// KPIs in a fixed sequence so identical input produces identical output.
type KPI struct {
	Label     string   `json:"label"`
	Value     float64  `json:"value"`
	Format    string   `json:"format"` // number|currency|percentage
	ChangePct *float64 `json:"change_pct,omitempty"`
}

// KPI display formats.
const (
	FormatNumber     = "number"
	FormatCurrency   = "currency"
	FormatPercentage = "percentage"
)

// DomainResult is the output of one domain analyzer for one validated
// table: ordered KPIs plus the raw findings that drive the insight rules.
type DomainResult struct {
	Domain   Domain             `json:"domain"`
	KPIs     []KPI              `json:"kpis"`
	Findings map[string]float64 `json:"findings,omitempty"`
	Labels   map[string]string  `json:"labels,omitempty"` // categorical findings (top customer id, worst line, ...)
}

// Finding returns a numeric finding and whether it was computed.
func (r *DomainResult) Finding(key string) (float64, bool) {
	v, ok := r.Findings[key]
	return v, ok
}

// Label returns a categorical finding, or the empty string.
func (r *DomainResult) Label(key string) string {
	return r.Labels[key]
}

// Insight is a structured (finding, impact, action) record. Every insight
// states what is wrong, why it matters and the exact action to take.
type Insight struct {
	Category string                 `json:"category"` // a domain name or cross_domain
	Severity Severity               `json:"severity"`
	Finding  string                 `json:"finding"`
	Impact   string                 `json:"impact"`
	Action   string                 `json:"action"`
	Metrics  map[string]interface{} `json:"metrics,omitempty"`
}

// Risk is a forward-looking exposure derived from insights and KPIs.
type Risk struct {
	ID                  string      `json:"id"`
	Title               string      `json:"title"`
	Category            string      `json:"category"`
	Description         string      `json:"description"`
	Probability         Probability `json:"probability"`
	FinancialImpact     string      `json:"financial_impact"`
	TimeToImpact        string      `json:"time_to_impact"`
	Severity            Severity    `json:"severity"`
	Mitigation          string      `json:"mitigation"`
	EarlyWarningSignals []string    `json:"early_warning_signals,omitempty"`
}

// Recommendation is one prioritized, timelined action item.
type Recommendation struct {
	ID                     string      `json:"id"`
	Title                  string      `json:"title"`
	What                   string      `json:"what"`
	Why                    string      `json:"why"`
	How                    string      `json:"how"`
	Impact                 string      `json:"impact"`
	Priority               Priority    `json:"priority"`
	Timeline               TimeHorizon `json:"timeline"`
	EstimatedSavings       *float64    `json:"estimated_savings,omitempty"`
	EstimatedRevenueImpact *float64    `json:"estimated_revenue_impact,omitempty"`
}

// ActionPlan groups recommendations by priority bucket.
type ActionPlan struct {
	Immediate            []Recommendation `json:"immediate_actions"`
	ShortTerm            []Recommendation `json:"short_term_actions"`
	MediumTerm           []Recommendation `json:"medium_term_actions"`
	TotalEstimatedImpact float64          `json:"total_estimated_impact"`
	ImmediateCount       int              `json:"immediate_count"`
	TotalCount           int              `json:"total_count"`
}

// DomainReport is the per-domain section of the final report.
type DomainReport struct {
	KPIs     []KPI              `json:"kpis"`
	Findings map[string]float64 `json:"findings,omitempty"`
	Insights []Insight          `json:"insights"`
}

// QualitySummary aggregates validation outcomes across all uploaded tables.
type QualitySummary struct {
	PerDomain map[string]DataQualityReport `json:"per_domain,omitempty"`
	Skipped   []SkippedTable               `json:"skipped,omitempty"`
}

// AnalysisReport is the root aggregate handed to the caller. One typed
// optional field per domain keeps the no-fabrication invariant structural:
// a disabled domain simply has no section to render.
type AnalysisReport struct {
	GeneratedAt      time.Time      `json:"generated_at"`
	DataSource       string         `json:"data_source"`
	DataTypes        []string       `json:"data_types"`
	EnabledDomains   []string       `json:"enabled_domains"`
	DataQuality      QualitySummary `json:"data_quality"`
	ExecutiveSummary []string       `json:"executive_summary"`

	Financial     *DomainReport `json:"financial,omitempty"`
	Manufacturing *DomainReport `json:"manufacturing,omitempty"`
	Inventory     *DomainReport `json:"inventory,omitempty"`
	Sales         *DomainReport `json:"sales,omitempty"`
	Purchase      *DomainReport `json:"purchase,omitempty"`

	CrossDomainInsights []Insight  `json:"cross_domain_insights,omitempty"`
	CriticalRisks       []Risk     `json:"critical_risks"`
	ActionPlan          ActionPlan `json:"action_plan"`
}

// Section returns the report section for d, or nil when d is disabled.
func (r *AnalysisReport) Section(d Domain) *DomainReport {
	switch d {
	case DomainFinancial:
		return r.Financial
	case DomainManufacturing:
		return r.Manufacturing
	case DomainInventory:
		return r.Inventory
	case DomainSales:
		return r.Sales
	case DomainPurchase:
		return r.Purchase
	}
	return nil
}

// SetSection attaches a section for d. Unknown domains are ignored.
func (r *AnalysisReport) SetSection(d Domain, section *DomainReport) {
	switch d {
	case DomainFinancial:
		r.Financial = section
	case DomainManufacturing:
		r.Manufacturing = section
	case DomainInventory:
		r.Inventory = section
	case DomainSales:
		r.Sales = section
	case DomainPurchase:
		r.Purchase = section
	}
}

// UploadResult is the intake response for a single uploaded file.
type UploadResult struct {
	FileID                 string         `json:"file_id"`
	FileName               string         `json:"file_name"`
	DetectedDomain         Domain         `json:"detected_domain"`
	Rows                   int            `json:"rows"`
	Columns                []string       `json:"columns"`
	SchemaConfidence       float64        `json:"schema_confidence"`
	RequiredColumnsPresent bool           `json:"required_columns_present"`
	QualityIssues          []QualityIssue `json:"quality_issues"`
}
