package insight

import (
	"fmt"

	"erpinsight/pkg/contracts/domain"
)

// Concentration thresholds shared between the sales rules and the
// cross-domain exposure rule.
const (
	customerConcentrationWarnPct     = 20
	customerConcentrationCriticalPct = 30
	supplierConcentrationCriticalPct = 30
	agedStockCriticalPct             = 20
)

var ruleTables = map[domain.Domain][]rule{
	domain.DomainFinancial:     financialRules,
	domain.DomainManufacturing: manufacturingRules,
	domain.DomainInventory:     inventoryRules,
	domain.DomainSales:         salesRules,
	domain.DomainPurchase:      purchaseRules,
}

var financialRules = []rule{
	{
		id:       "financial.margin_decline",
		value:    metric("margin_change_pct"),
		severity: below(band{-5, domain.SeverityCritical}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			current, _ := res.Finding("current_margin_pct")
			prior, _ := res.Finding("prior_margin_pct")
			return fmt.Sprintf("Gross margin dropped from %s to %s over the last three periods", pct(prior), pct(current)),
				"Continued erosion at this rate threatens profitability within two quarters",
				"Renegotiate the top supplier contracts and reprice the lowest-margin products within 30 days",
				map[string]interface{}{"current_margin_pct": current, "prior_margin_pct": prior, "change_pct": v}
		},
	},
	{
		id:       "financial.low_gross_margin",
		value:    metric("gross_margin_pct"),
		severity: below(band{20, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Gross margin is critically low at %s", pct(v)),
				fmt.Sprintf("Every dollar of revenue yields only $%.2f of gross profit, leaving little room for operating costs", v/100),
				"Identify products with margin under 15%, raise their prices 8-12% and resource lower-cost suppliers for the top volume items",
				map[string]interface{}{"gross_margin_pct": v}
		},
	},
	{
		id:       "financial.low_net_margin",
		value:    metric("net_margin_pct"),
		severity: below(band{5, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Net margin at %s barely covers the cost of capital", pct(v)),
				"Any cost increase or sales dip pushes the business into losses",
				"Cut fixed costs 10% within 60 days: renegotiate leases, consolidate vendors, automate manual work",
				map[string]interface{}{"net_margin_pct": v}
		},
	},
	{
		id:       "financial.revenue_drop",
		value:    metric("revenue_mom_pct"),
		severity: below(band{-10, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			current, _ := res.Finding("revenue_current")
			prior, _ := res.Finding("revenue_prior")
			return fmt.Sprintf("Revenue dropped %s period over period (%s to %s)", pct(-v), money(prior), money(current)),
				fmt.Sprintf("If the decline continues, the quarter lands %s below run rate", money((prior-current)*3)),
				"Contact the top 20 accounts this week, review lost deals and launch a retention push for at-risk customers",
				map[string]interface{}{"revenue_mom_pct": v, "revenue_current": current, "revenue_prior": prior}
		},
	},
	{
		id:       "financial.revenue_surge",
		value:    metric("revenue_mom_pct"),
		severity: above(band{15, domain.SeverityLow}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Revenue growing strongly at %s period over period", pct(v)),
				"Momentum worth capitalizing on before competitors react",
				"Increase marketing spend on winning channels, stock up on top SKUs and expedite sales hiring",
				map[string]interface{}{"revenue_mom_pct": v}
		},
	},
	{
		id:       "financial.budget_overrun",
		value:    metric("budget_variance_pct"),
		severity: above(band{10, domain.SeverityHigh}, band{20, domain.SeverityCritical}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			amount, _ := res.Finding("budget_variance_amount")
			return fmt.Sprintf("Spending is %s over budget (%s overspend)", pct(v), money(amount)),
				fmt.Sprintf("Annualized, the overspend grows to %s", money(amount*12)),
				"Freeze discretionary spending now and run a line-item review within two weeks",
				map[string]interface{}{"budget_variance_pct": v, "variance_amount": amount}
		},
	},
	{
		id:       "financial.expense_concentration",
		value:    metric("top_expense_pct"),
		severity: above(band{40, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			amount, _ := res.Finding("top_expense_amount")
			category := res.Label("top_expense_category")
			return fmt.Sprintf("%s accounts for %s of total expenses (%s)", category, pct(v), money(amount)),
				"Cost structure is exposed to a single category; any price increase there lands directly on margin",
				fmt.Sprintf("Qualify alternative suppliers for %s and negotiate volume discounts with the incumbent", category),
				map[string]interface{}{"top_expense_pct": v, "top_expense_amount": amount}
		},
	},
	{
		id:       "financial.customer_concentration",
		value:    metric("top_customer_pct"),
		severity: above(band{25, domain.SeverityCritical}),
		render:   renderCustomerConcentration,
	},
	{
		id:       "financial.top3_customer_concentration",
		value:    metric("top3_customer_pct"),
		severity: above(band{60, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Top 3 customers represent %s of revenue", pct(v)),
				"Revenue base lacks diversification; losing any top account severely impacts the business",
				"Launch a diversification program targeting ten new mid-tier accounts over the next six months",
				map[string]interface{}{"top3_customer_pct": v}
		},
	},
}

var manufacturingRules = []rule{
	{
		id:       "manufacturing.low_efficiency",
		value:    metric("efficiency_pct"),
		severity: below(band{85, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			shortfall, _ := res.Finding("shortfall_units")
			return fmt.Sprintf("Production efficiency at %s against a 95%% target, %.0f units short of plan", pct(v), shortfall),
				"Lost production is lost revenue and worsens fixed cost absorption",
				"Run root-cause analysis on the worst products this week: equipment downtime, material supply, staffing. Set a 90% target for next month",
				map[string]interface{}{"efficiency_pct": v, "shortfall_units": shortfall}
		},
	},
	{
		id:       "manufacturing.line_underperformance",
		value:    metric("worst_line_efficiency_pct"),
		severity: always(domain.SeverityMedium),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			line := res.Label("worst_line")
			return fmt.Sprintf("Production line %q operating at only %s efficiency", line, pct(v)),
				"Capacity is wasted on the line while demand goes unmet",
				fmt.Sprintf("Audit line %q: equipment OEE, operator training and material flow. Target a 15%% improvement within 30 days", line),
				map[string]interface{}{"worst_line_efficiency_pct": v}
		},
	},
	{
		id:       "manufacturing.high_wastage",
		value:    metric("wastage_rate_pct"),
		severity: above(band{5, domain.SeverityMedium}, band{10, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			units, _ := res.Finding("waste_units")
			return fmt.Sprintf("Wastage rate at %s (%.0f units lost)", pct(v), units),
				"Waste lands directly on gross margin; every point of reduction is recurring savings",
				"Audit quality control on high-wastage products, check incoming material quality and set weekly wastage targets. Aim below 3% within 90 days",
				map[string]interface{}{"wastage_rate_pct": v, "waste_units": units}
		},
	},
	{
		id:       "manufacturing.low_yield",
		value:    metric("yield_pct"),
		severity: below(band{90, domain.SeverityMedium}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			lost, _ := res.Finding("yield_lost_units")
			return fmt.Sprintf("Yield rate at %s with %.0f units lost to non-conformance", pct(v), lost),
				"Yield improvement carries the highest return of any manufacturing fix",
				"Track first-pass yield by product, root-cause the bottom five and standardize work instructions. Target 95% within six months",
				map[string]interface{}{"yield_pct": v, "yield_lost_units": lost}
		},
	},
	{
		id:       "manufacturing.output_drop",
		value:    metric("output_mom_pct"),
		severity: below(band{-15, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Production output dropped %s period over period", pct(-v)),
				"Capacity underutilization hurts fixed cost absorption and delivery commitments",
				"Identify the bottleneck behind the drop, schedule catch-up overtime and review workforce availability. Restore baseline within four weeks",
				map[string]interface{}{"output_mom_pct": v}
		},
	},
	{
		id:       "manufacturing.output_surge",
		value:    metric("output_mom_pct"),
		severity: above(band{20, domain.SeverityLow}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Production ramping up %s period over period", pct(v)),
				"Strong demand signal, provided operations can sustain the level",
				"Verify raw material availability, assess workforce capacity and plan for 25% additional volume",
				map[string]interface{}{"output_mom_pct": v}
		},
	},
}

var inventoryRules = []rule{
	{
		id:       "inventory.aged_stock",
		value:    metric("aged_percentage"),
		severity: above(band{agedStockCriticalPct, domain.SeverityCritical}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			totalValue, _ := res.Finding("total_stock_value")
			tiedUp := v / 100 * totalValue
			return fmt.Sprintf("%s of inventory value is older than the aging threshold, tying up %s", pct(v), money(tiedUp)),
				fmt.Sprintf("%s of working capital sits in aging stock with rising obsolescence and markdown pressure", money(tiedUp)),
				"Enforce FIFO strictly, review demand planning accuracy and bundle old stock into current promotions. Target the aged share below 15%",
				map[string]interface{}{"aged_percentage": v, "tied_up_capital": tiedUp, "total_stock_value": totalValue}
		},
	},
	{
		id:       "inventory.dead_stock",
		value:    metric("dead_value"),
		severity: above(band{0, domain.SeverityHigh}, band{100_000, domain.SeverityCritical}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			count, _ := res.Finding("dead_sku_count")
			return fmt.Sprintf("%.0f SKUs show no movement past the dead-stock threshold, worth %s", count, money(v)),
				fmt.Sprintf("%s of capital is frozen with an annual carrying cost near %s", money(v), money(v*0.25)),
				"Run a clearance sale on the top dead SKUs this month, liquidate the remainder through bulk buyers and stop reordering them immediately",
				map[string]interface{}{"dead_sku_count": count, "dead_value": v}
		},
	},
	{
		id:       "inventory.overstock",
		value:    metric("excess_value"),
		severity: above(band{0, domain.SeverityMedium}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			count, _ := res.Finding("overstock_sku_count")
			return fmt.Sprintf("%.0f SKUs carry excess coverage, roughly %s of overstock", count, money(v)),
				fmt.Sprintf("Excess capital tied up; holding cost near %s per year", money(v*0.25)),
				"Cut reorder quantities 40% on these SKUs, push slow movers through bundles and lower safety stock 30%",
				map[string]interface{}{"overstock_sku_count": count, "excess_value": v}
		},
	},
	{
		id:       "inventory.high_dio",
		value:    metric("days_inventory_outstanding"),
		severity: above(band{90, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			turnover, _ := res.Finding("inventory_turnover")
			return fmt.Sprintf("Days inventory outstanding at %.0f days (turnover %.1fx per year)", v, turnover),
				"Stock converts to cash too slowly, straining working capital",
				"Rationalize the slowest SKUs, tighten reorder points and move purchasing to smaller, more frequent orders",
				map[string]interface{}{"days_inventory_outstanding": v, "inventory_turnover": turnover}
		},
	},
	{
		id:       "inventory.category_turnover",
		value:    metric("worst_category_turnover"),
		severity: always(domain.SeverityMedium),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			category := res.Label("worst_category")
			value, _ := res.Finding("worst_category_stock_value")
			return fmt.Sprintf("Category %q turns only %.1fx annually against a 6-8x benchmark", category, v),
				"Working capital sits in slow-moving products without justifying their storage and handling cost",
				fmt.Sprintf("Rationalize %q: cut the bottom performers, lower safety stock 30%% and reprice to improve margin", category),
				map[string]interface{}{"worst_category_turnover": v, "worst_category_stock_value": value}
		},
	},
	{
		id:       "inventory.stagnant_stock",
		value:    metric("stagnant_value"),
		severity: always(domain.SeverityMedium),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			count, _ := res.Finding("stagnant_sku_count")
			return fmt.Sprintf("%.0f SKUs hold above-median stock with no sales for a quarter (%s)", count, money(v)),
				"Stagnant inventory ties up capital without generating returns",
				"Investigate pricing and competition on these items, promote them for 30 days and liquidate what remains",
				map[string]interface{}{"stagnant_sku_count": count, "stagnant_value": v}
		},
	},
}

var salesRules = []rule{
	{
		id:       "sales.revenue_drop",
		value:    metric("revenue_mom_pct"),
		severity: below(band{-10, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			current, _ := res.Finding("revenue_current")
			prior, _ := res.Finding("revenue_prior")
			return fmt.Sprintf("Sales dropped %s period over period (%s to %s)", pct(-v), money(prior), money(current)),
				fmt.Sprintf("A continued decline puts the quarter %s short of run rate", money((prior-current)*3)),
				"Check the top 10 accounts for churn signals, analyze lost deals and launch a retention campaign within two weeks",
				map[string]interface{}{"revenue_mom_pct": v, "revenue_current": current, "revenue_prior": prior}
		},
	},
	{
		id:       "sales.strong_growth",
		value:    metric("revenue_mom_pct"),
		severity: above(band{20, domain.SeverityLow}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Sales growing strongly at %s period over period", pct(v)),
				"Growth will hit capacity constraints unless operations scale ahead of it",
				"Review inventory on the top 20 SKUs, assess production capacity and plan for 25% additional volume",
				map[string]interface{}{"revenue_mom_pct": v}
		},
	},
	{
		id:       "sales.volatility",
		value:    metric("revenue_volatility_pct"),
		severity: above(band{30, domain.SeverityMedium}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Sales volatility at %s across periods", pct(v)),
				"Inconsistent performance makes demand planning and staffing unreliable",
				"Identify the volatility driver, build a rolling three-month forecast and add lead indicators for slow months",
				map[string]interface{}{"revenue_volatility_pct": v}
		},
	},
	{
		id:       "sales.customer_concentration",
		value:    metric("top_customer_pct"),
		severity: above(band{customerConcentrationWarnPct, domain.SeverityHigh}, band{customerConcentrationCriticalPct, domain.SeverityCritical}),
		render:   renderCustomerConcentration,
	},
	{
		id:       "sales.top5_customer_concentration",
		value:    metric("top5_customer_pct"),
		severity: above(band{70, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Top 5 customers represent %s of revenue", pct(v)),
				"The customer base is dangerously concentrated; two departures would be catastrophic",
				"Launch a mid-market acquisition program and set a target of top-5 concentration below 50%",
				map[string]interface{}{"top5_customer_pct": v}
		},
	},
	{
		id:       "sales.product_concentration",
		value:    metric("top5_product_pct"),
		severity: above(band{60, domain.SeverityMedium}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Top 5 products generate %s of revenue", pct(v)),
				"Any supply, quality or competitive issue on these products hits revenue hard",
				"Analyze what makes the leaders win and develop the next product tier; target concentration below 50% within a year",
				map[string]interface{}{"top5_product_pct": v}
		},
	},
	{
		id:       "sales.sku_tail",
		value:    metric("bottom10_product_pct"),
		severity: below(band{5, domain.SeverityMedium}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			value, _ := res.Finding("bottom10_product_value")
			return fmt.Sprintf("The bottom 10 products contribute only %s of revenue (%s)", pct(v), money(value)),
				"Tail SKUs consume inventory, warehouse space and attention without meaningful return",
				"Discontinue the bottom five, run margin analysis on the next five and reallocate resources to the leaders",
				map[string]interface{}{"bottom10_product_pct": v, "bottom10_product_value": value}
		},
	},
	{
		id:       "sales.discount_erosion",
		value:    metric("avg_discount_pct"),
		severity: above(band{15, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			atStake, _ := res.Finding("discount_revenue_at_stake")
			return fmt.Sprintf("Average discount rate at %s is eroding margin", pct(v)),
				fmt.Sprintf("Roughly %s of potential margin is being given away", money(atStake)),
				"Set maximum discounts by category, require manager approval above 15% and retrain sales on value-based selling",
				map[string]interface{}{"avg_discount_pct": v, "revenue_at_stake": atStake}
		},
	},
	{
		id:       "sales.deep_discounts",
		value:    metric("high_discount_orders"),
		severity: above(band{10, domain.SeverityMedium}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("%.0f orders carry discounts above 20%%", v),
				"Deep discounting on this many orders signals weak controls and revenue leakage",
				"Audit the largest high-discount orders for approvals and patterns by rep, then tighten the controls",
				map[string]interface{}{"high_discount_orders": v}
		},
	},
}

var purchaseRules = []rule{
	{
		id:       "purchase.supplier_concentration",
		value:    metric("top_supplier_pct"),
		severity: above(band{supplierConcentrationCriticalPct, domain.SeverityCritical}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			spend, _ := res.Finding("top_supplier_spend")
			supplier := res.Label("top_supplier")
			return fmt.Sprintf("Supplier %q represents %s of spend (%s)", supplier, pct(v), money(spend)),
				"A single supplier failure stops the operation, and the dependency removes price leverage",
				"Qualify two alternative suppliers within 60 days and shift at least 30% of volume within 90",
				map[string]interface{}{"top_supplier_pct": v, "top_supplier_spend": spend}
		},
	},
	{
		id:       "purchase.top3_supplier_concentration",
		value:    metric("top3_supplier_pct"),
		severity: above(band{70, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Top 3 suppliers represent %s of spend", pct(v)),
				"Any disruption among the leading suppliers severely impacts operations",
				"Build a diversification roadmap and onboard secondary suppliers; target top-3 share below 50% within 18 months",
				map[string]interface{}{"top3_supplier_pct": v}
		},
	},
	{
		id: "purchase.lead_time_variability",
		value: func(res *domain.DomainResult) (float64, bool) {
			sd, ok1 := res.Finding("lead_time_std_days")
			avg, ok2 := res.Finding("avg_lead_time_days")
			if !ok1 || !ok2 || avg <= 0 || sd <= avg*0.5 {
				return 0, false
			}
			return sd, true
		},
		severity: always(domain.SeverityMedium),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			avg, _ := res.Finding("avg_lead_time_days")
			return fmt.Sprintf("Lead time variability at %.1f days against a %.1f-day average", v, avg),
				"Unpredictable supply forces stockouts on one side and excess inventory on the other",
				"Find the suppliers with the highest variability, work on consistent scheduling and build safety stock for the volatile items",
				map[string]interface{}{"lead_time_std_days": v, "avg_lead_time_days": avg}
		},
	},
	{
		id:       "purchase.long_lead_orders",
		value:    metric("long_lead_pct"),
		severity: above(band{20, domain.SeverityMedium}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("%s of orders run lead times more than 50%% above average", pct(v)),
				"Delays on this share of orders ripple into production schedules and customer deliveries",
				"Map the order-to-delivery process, find the delay points and halve the long-lead share within 90 days",
				map[string]interface{}{"long_lead_pct": v}
		},
	},
	{
		id:       "purchase.poor_delivery",
		value:    metric("on_time_pct"),
		severity: below(band{85, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			late, _ := res.Finding("late_orders")
			return fmt.Sprintf("On-time delivery rate at %s, below the 85%% threshold (%.0f late orders)", pct(v), late),
				"Late inbound deliveries cause production delays, stockouts and missed customer commitments",
				"Introduce supplier scorecards with consequences, focus on the worst performers and buffer the critical items. Target 95% within six months",
				map[string]interface{}{"on_time_pct": v, "late_orders": late}
		},
	},
	{
		id:       "purchase.price_increase",
		value:    metric("price_change_pct"),
		severity: above(band{10, domain.SeverityHigh}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			current, _ := res.Finding("price_current")
			prior, _ := res.Finding("price_prior")
			return fmt.Sprintf("Purchase prices increased %s ($%.2f to $%.2f average)", pct(v), prior, current),
				"Input cost inflation lands directly on margin unless it is recovered",
				"Negotiate price freezes with current suppliers, source alternatives and evaluate passing the increase to customers",
				map[string]interface{}{"price_change_pct": v}
		},
	},
	{
		id:       "purchase.price_decrease",
		value:    metric("price_change_pct"),
		severity: below(band{-10, domain.SeverityLow}),
		render: func(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
			return fmt.Sprintf("Purchase prices decreased %s", pct(-v)),
				"A cost tailwind worth locking in before it reverses",
				"Lock the lower prices into contracts and review price-protection clauses",
				map[string]interface{}{"price_change_pct": v}
		},
	},
}

func renderCustomerConcentration(res *domain.DomainResult, v float64) (string, string, string, map[string]interface{}) {
	revenue, _ := res.Finding("top_customer_revenue")
	customer := res.Label("top_customer")
	return fmt.Sprintf("Customer %q represents %s of revenue (%s)", customer, pct(v), money(revenue)),
		fmt.Sprintf("Losing this customer removes %s of revenue at a stroke; business continuity is exposed", money(revenue)),
		"Assign an executive sponsor to the account, run quarterly business reviews and develop three comparable customers to bring dependency below 20%",
		map[string]interface{}{"top_customer_pct": v, "top_customer_revenue": revenue}
}

// crossDomainRules fire only when both referenced domains produced
// results. Each returns at most one insight.
var crossDomainRules = []func(map[domain.Domain]*domain.DomainResult) (domain.Insight, bool){
	workingCapitalMismatch,
	costQualityCorrelation,
	supplierDrivenStockRisk,
	combinedConcentrationExposure,
}

func crossInsight(sev domain.Severity, finding, impact, action string, metrics map[string]interface{}) domain.Insight {
	return domain.Insight{
		Category: domain.CategoryCrossDomain,
		Severity: sev,
		Finding:  finding,
		Impact:   impact,
		Action:   action,
		Metrics:  metrics,
	}
}

// workingCapitalMismatch: inventory aging while sales decline.
func workingCapitalMismatch(results map[domain.Domain]*domain.DomainResult) (domain.Insight, bool) {
	inv := results[domain.DomainInventory]
	sales := results[domain.DomainSales]
	if inv == nil || sales == nil {
		return domain.Insight{}, false
	}
	aged, ok1 := inv.Finding("aged_percentage")
	mom, ok2 := sales.Finding("revenue_mom_pct")
	if !ok1 || !ok2 || aged <= agedStockCriticalPct || mom >= 0 {
		return domain.Insight{}, false
	}
	return crossInsight(domain.SeverityHigh,
		fmt.Sprintf("Inventory is aging (%s past threshold) while sales decline %s period over period", pct(aged), pct(-mom)),
		"Working capital is flowing into stock that demand no longer supports, compounding the cash squeeze from falling revenue",
		"Align purchasing to the sales forecast immediately: cut reorders on aging categories and clear old stock through the active channels",
		map[string]interface{}{"rule": "cross.working_capital_mismatch", "aged_percentage": aged, "revenue_mom_pct": mom}), true
}

// costQualityCorrelation: margins compressing while production wastes.
func costQualityCorrelation(results map[domain.Domain]*domain.DomainResult) (domain.Insight, bool) {
	fin := results[domain.DomainFinancial]
	mfg := results[domain.DomainManufacturing]
	if fin == nil || mfg == nil {
		return domain.Insight{}, false
	}
	change, ok1 := fin.Finding("margin_change_pct")
	wastage, ok2 := mfg.Finding("wastage_rate_pct")
	if !ok1 || !ok2 || change >= 0 || wastage <= 5 {
		return domain.Insight{}, false
	}
	return crossInsight(domain.SeverityHigh,
		fmt.Sprintf("Gross margin declined %s while production wastage runs at %s", pct(-change), pct(wastage)),
		"Production waste is a likely driver of the margin compression; fixing it addresses both at once",
		"Prioritize the wastage reduction program and track its effect on gross margin monthly",
		map[string]interface{}{"rule": "cross.cost_quality_correlation", "margin_change_pct": change, "wastage_rate_pct": wastage}), true
}

// supplierDrivenStockRisk: unreliable inbound supply alongside stock
// imbalances.
func supplierDrivenStockRisk(results map[domain.Domain]*domain.DomainResult) (domain.Insight, bool) {
	pur := results[domain.DomainPurchase]
	inv := results[domain.DomainInventory]
	if pur == nil || inv == nil {
		return domain.Insight{}, false
	}
	onTime, ok := pur.Finding("on_time_pct")
	if !ok || onTime >= 85 {
		return domain.Insight{}, false
	}
	excess, hasExcess := inv.Finding("excess_value")
	dead, hasDead := inv.Finding("dead_value")
	if !hasExcess && !hasDead {
		return domain.Insight{}, false
	}
	buffered := excess + dead
	return crossInsight(domain.SeverityMedium,
		fmt.Sprintf("On-time delivery at %s coincides with %s of excess and dead stock", pct(onTime), money(buffered)),
		"Unreliable supply is likely driving over-ordering as informal safety stock, inflating inventory instead of fixing the root cause",
		"Fix supplier delivery performance first, then unwind the compensating stock buffers rather than institutionalizing them",
		map[string]interface{}{"rule": "cross.supplier_driven_stock", "on_time_pct": onTime, "buffer_value": buffered}), true
}

// combinedConcentrationExposure: concentrated on both the demand and
// supply side.
func combinedConcentrationExposure(results map[domain.Domain]*domain.DomainResult) (domain.Insight, bool) {
	sales := results[domain.DomainSales]
	pur := results[domain.DomainPurchase]
	if sales == nil || pur == nil {
		return domain.Insight{}, false
	}
	customer, ok1 := sales.Finding("top_customer_pct")
	supplier, ok2 := pur.Finding("top_supplier_pct")
	if !ok1 || !ok2 || customer <= customerConcentrationWarnPct || supplier <= supplierConcentrationCriticalPct {
		return domain.Insight{}, false
	}
	return crossInsight(domain.SeverityHigh,
		fmt.Sprintf("Revenue depends %s on one customer while %s of spend sits with one supplier", pct(customer), pct(supplier)),
		"The business is squeezed from both ends of the chain: one account loss or one supplier failure halts cash flow",
		"Run the customer and supplier diversification programs in parallel and review combined exposure quarterly at the executive level",
		map[string]interface{}{"rule": "cross.concentration_exposure", "top_customer_pct": customer, "top_supplier_pct": supplier}), true
}
