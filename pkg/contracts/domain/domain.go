// Package domain holds the shared value types exchanged between the
// pipeline stages: domains, severities, schema matches, quality reports
// and the final analysis report. It has no dependencies besides the
// standard library so every layer can import it.
package domain

// Domain identifies one ERP business area a table can belong to.
type Domain string

const (
	DomainFinancial     Domain = "financial"
	DomainManufacturing Domain = "manufacturing"
	DomainInventory     Domain = "inventory"
	DomainSales         Domain = "sales"
	DomainPurchase      Domain = "purchase"
	DomainUnknown       Domain = "unknown"
)

// CategoryCrossDomain tags insights produced by combining results from
// two or more domains, as opposed to a single analyzer.
const CategoryCrossDomain = "cross_domain"

// AllDomains lists the analyzable domains in detection priority order.
// Ties in schema confidence resolve toward the earlier entry.
func AllDomains() []Domain {
	return []Domain{
		DomainFinancial,
		DomainSales,
		DomainInventory,
		DomainManufacturing,
		DomainPurchase,
	}
}

// Valid reports whether d is one of the analyzable domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainFinancial, DomainManufacturing, DomainInventory, DomainSales, DomainPurchase:
		return true
	}
	return false
}

func (d Domain) String() string { return string(d) }

// Severity ranks findings, insights and risks.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities for sorting, most urgent first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// Priority buckets recommendations into the action plan.
type Priority string

const (
	PriorityImmediate  Priority = "immediate"
	PriorityShortTerm  Priority = "short_term"
	PriorityMediumTerm Priority = "medium_term"
)

// TimeHorizon is the expected execution window of a recommendation.
type TimeHorizon string

const (
	HorizonImmediate  TimeHorizon = "0-30 days"
	HorizonShortTerm  TimeHorizon = "1-3 months"
	HorizonMediumTerm TimeHorizon = "3-6 months"
)

// Probability expresses risk likelihood in business language.
type Probability string

const (
	ProbabilityHigh   Probability = "high"
	ProbabilityMedium Probability = "medium"
	ProbabilityLow    Probability = "low"
)
