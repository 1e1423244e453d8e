// Package analysis computes per-domain KPIs and raw findings from
// validated tables. Analyzers share a small library of pure analytical
// primitives (trend, variance, pareto, ratio) and never fail on
// malformed rows: cells that did not coerce are simply excluded.
package analysis

import (
	"math"
	"sort"
	"time"
)

// TrendResult summarizes a period-over-period comparison of a value
// series bucketed by calendar period.
type TrendResult struct {
	Current       float64 // latest period total
	Prior         float64 // previous period total
	ChangePct     float64 // (current-prior)/prior*100
	Periods       int
	VolatilityPct float64 // stddev/mean*100 across periods
}

// Trend buckets (date, value) pairs by the coarsest period with at
// least two buckets: month first, then ISO week, then day. Returns
// false when fewer than two periods exist or the prior period is zero.
func Trend(dates []time.Time, dateOK []bool, values []float64, valueOK []bool) (TrendResult, bool) {
	return trend(dates, dateOK, values, valueOK, false)
}

// TrendOfMeans is Trend with per-period averages instead of sums, for
// series like unit prices where summing would distort the comparison.
func TrendOfMeans(dates []time.Time, dateOK []bool, values []float64, valueOK []bool) (TrendResult, bool) {
	return trend(dates, dateOK, values, valueOK, true)
}

func trend(dates []time.Time, dateOK []bool, values []float64, valueOK []bool, averaged bool) (TrendResult, bool) {
	type keyer func(time.Time) string
	byMonth := func(t time.Time) string { return t.Format("2006-01") }
	byWeek := func(t time.Time) string {
		y, w := t.ISOWeek()
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (w-1)*7).Format("2006-01-02")
	}
	byDay := func(t time.Time) string { return t.Format("2006-01-02") }

	for _, key := range []keyer{byMonth, byWeek, byDay} {
		totals := make(map[string]float64)
		counts := make(map[string]int)
		for i := range dates {
			if i >= len(dateOK) || i >= len(values) || i >= len(valueOK) {
				break
			}
			if !dateOK[i] || !valueOK[i] {
				continue
			}
			k := key(dates[i])
			totals[k] += values[i]
			counts[k]++
		}
		if len(totals) < 2 {
			continue
		}
		keys := make([]string, 0, len(totals))
		for k := range totals {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		series := make([]float64, len(keys))
		for i, k := range keys {
			series[i] = totals[k]
			if averaged {
				series[i] /= float64(counts[k])
			}
		}
		current := series[len(series)-1]
		prior := series[len(series)-2]
		if prior == 0 {
			return TrendResult{}, false
		}
		return TrendResult{
			Current:       current,
			Prior:         prior,
			ChangePct:     (current - prior) / prior * 100,
			Periods:       len(series),
			VolatilityPct: volatility(series),
		}, true
	}
	return TrendResult{}, false
}

func volatility(series []float64) float64 {
	m := mean(series)
	if m == 0 {
		return 0
	}
	return stddev(series) / math.Abs(m) * 100
}

// Variance computes (actual - planned) / planned * 100. Returns false
// when planned is zero.
func Variance(actual, planned float64) (float64, bool) {
	if planned == 0 {
		return 0, false
	}
	return (actual - planned) / planned * 100, true
}

// Ratio divides with a zero-guard on the denominator.
func Ratio(numerator, denominator float64) (float64, bool) {
	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

// ParetoEntry is one category in a concentration analysis, sorted
// descending by value.
type ParetoEntry struct {
	Category      string
	Value         float64
	ContribPct    float64
	CumulativePct float64
}

// Pareto aggregates values by category and returns entries sorted by
// descending value. Equal values order by category name so the result
// is deterministic. Rows with an invalid value or empty category are
// skipped. Returns nil when the total is zero or negative.
func Pareto(categories []string, values []float64, valueOK []bool) []ParetoEntry {
	totals := make(map[string]float64)
	for i := range categories {
		if i >= len(values) || i >= len(valueOK) || !valueOK[i] || categories[i] == "" {
			continue
		}
		totals[categories[i]] += values[i]
	}
	var total float64
	entries := make([]ParetoEntry, 0, len(totals))
	for cat, v := range totals {
		entries = append(entries, ParetoEntry{Category: cat, Value: v})
		total += v
	}
	if total <= 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Category < entries[j].Category
	})
	var cum float64
	for i := range entries {
		entries[i].ContribPct = entries[i].Value / total * 100
		cum += entries[i].ContribPct
		entries[i].CumulativePct = cum
	}
	return entries
}

// TopShare returns the combined contribution of the first n entries.
func TopShare(entries []ParetoEntry, n int) float64 {
	if n > len(entries) {
		n = len(entries)
	}
	var pct float64
	for _, e := range entries[:n] {
		pct += e.ContribPct
	}
	return pct
}

// ItemsFor80 reports how many leading entries it takes to cover 80% of
// the total.
func ItemsFor80(entries []ParetoEntry) int {
	for i, e := range entries {
		if e.CumulativePct >= 80 {
			return i + 1
		}
	}
	return len(entries)
}

func sum(values []float64, valid []bool) float64 {
	var s float64
	for i, v := range values {
		if i < len(valid) && valid[i] {
			s += v
		}
	}
	return s
}

func validMean(values []float64, valid []bool) (float64, bool) {
	var s float64
	var n int
	for i, v := range values {
		if i < len(valid) && valid[i] {
			s += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return s / float64(n), true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var s float64
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func uniqueCount(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
