package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(layout string, values ...string) ([]time.Time, []bool) {
	out := make([]time.Time, len(values))
	ok := make([]bool, len(values))
	for i, v := range values {
		t, err := time.Parse(layout, v)
		out[i] = t
		ok[i] = err == nil
	}
	return out, ok
}

func allValid(values ...float64) ([]float64, []bool) {
	ok := make([]bool, len(values))
	for i := range ok {
		ok[i] = true
	}
	return values, ok
}

func TestTrendMonthly(t *testing.T) {
	ds, dok := dates("2006-01-02", "2025-01-10", "2025-01-20", "2025-02-05", "2025-02-15")
	vs, vok := allValid(100, 50, 120, 60)

	trend, ok := Trend(ds, dok, vs, vok)

	require.True(t, ok)
	assert.Equal(t, 180.0, trend.Current)
	assert.Equal(t, 150.0, trend.Prior)
	assert.InDelta(t, 20.0, trend.ChangePct, 1e-9)
	assert.Equal(t, 2, trend.Periods)
}

func TestTrendFallsBackToDaily(t *testing.T) {
	// Single month forces the day-level bucketing.
	ds, dok := dates("2006-01-02", "2025-03-03", "2025-03-04")
	vs, vok := allValid(100, 90)

	trend, ok := Trend(ds, dok, vs, vok)

	require.True(t, ok)
	assert.InDelta(t, -10.0, trend.ChangePct, 1e-9)
}

func TestTrendInsufficientPeriods(t *testing.T) {
	ds, dok := dates("2006-01-02", "2025-03-03", "2025-03-03")
	vs, vok := allValid(100, 90)

	_, ok := Trend(ds, dok, vs, vok)

	assert.False(t, ok)
}

func TestTrendSkipsInvalidCells(t *testing.T) {
	ds, dok := dates("2006-01-02", "2025-01-10", "not-a-date", "2025-02-05")
	vs, vok := allValid(100, 999, 120)

	trend, ok := Trend(ds, dok, vs, vok)

	require.True(t, ok)
	assert.Equal(t, 100.0, trend.Prior)
	assert.Equal(t, 120.0, trend.Current)
}

func TestTrendOfMeans(t *testing.T) {
	ds, dok := dates("2006-01-02", "2025-01-10", "2025-01-20", "2025-02-05")
	vs, vok := allValid(10, 20, 18)

	trend, ok := TrendOfMeans(ds, dok, vs, vok)

	require.True(t, ok)
	assert.Equal(t, 15.0, trend.Prior)
	assert.Equal(t, 18.0, trend.Current)
	assert.InDelta(t, 20.0, trend.ChangePct, 1e-9)
}

func TestVarianceZeroGuard(t *testing.T) {
	pct, ok := Variance(110, 100)
	require.True(t, ok)
	assert.InDelta(t, 10.0, pct, 1e-9)

	_, ok = Variance(110, 0)
	assert.False(t, ok)
}

func TestRatioZeroGuard(t *testing.T) {
	v, ok := Ratio(1, 4)
	require.True(t, ok)
	assert.Equal(t, 0.25, v)

	_, ok = Ratio(1, 0)
	assert.False(t, ok)
}

func TestParetoOrdersAndAccumulates(t *testing.T) {
	cats := []string{"b", "a", "b", "c"}
	vals, ok := allValid(30, 50, 10, 10)

	entries := Pareto(cats, vals, ok)

	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Category)
	assert.Equal(t, 50.0, entries[0].Value)
	assert.Equal(t, "b", entries[1].Category)
	assert.InDelta(t, 50.0, entries[0].ContribPct, 1e-9)
	assert.InDelta(t, 90.0, entries[1].CumulativePct, 1e-9)
	assert.Equal(t, 2, ItemsFor80(entries))
	assert.InDelta(t, 90.0, TopShare(entries, 2), 1e-9)
}

func TestParetoTiesBreakByName(t *testing.T) {
	cats := []string{"x", "y"}
	vals, ok := allValid(10, 10)

	entries := Pareto(cats, vals, ok)

	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].Category)
	assert.Equal(t, "y", entries[1].Category)
}

func TestParetoZeroTotal(t *testing.T) {
	cats := []string{"x"}
	vals, ok := allValid(0)
	assert.Nil(t, Pareto(cats, vals, ok))
}
