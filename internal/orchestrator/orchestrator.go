// Package orchestrator drives the analysis pipeline end to end:
// schema detection, validation, concurrent per-domain analysis and
// report synthesis. Analyzers never see rejected tables, sections are
// only attached for domains that actually ran, and the report is
// deterministic for identical input aside from generated_at and
// generated identifiers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"erpinsight/internal/analysis"
	"erpinsight/internal/insight"
	"erpinsight/internal/recommend"
	"erpinsight/internal/risk"
	"erpinsight/internal/schema"
	"erpinsight/internal/tabular"
	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// ErrNoAnalyzableData is returned when every uploaded table was
// rejected by the validation gate.
var ErrNoAnalyzableData = errors.New("no analyzable data: all tables were rejected during validation")

// Broadcaster receives run progress for live status consumers. A nil
// Broadcaster is valid.
type Broadcaster interface {
	RunPhase(runID string, phase Phase)
	TableSkipped(runID string, skipped domain.SkippedTable)
}

// Options tune a run. The zero value is usable: AsOf defaults to the
// current time and Config to the standard aging windows.
type Options struct {
	// DataSource labels the report with where the tables came from.
	DataSource string
	// AsOf anchors all age calculations. Fixing it makes runs over the
	// same data reproducible.
	AsOf time.Time
	// Aging windows in days. Zero keeps the analyzer default.
	DeadStockDays int
	OverstockDays int
	AgedStockDays int
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	detector  *schema.Detector
	validator *validation.Validator
	insights  *insight.Engine
	risks     *risk.Assessor
	planner   *recommend.Planner
	logger    *slog.Logger
	metrics   *Metrics
	bcast     Broadcaster
}

func New(logger *slog.Logger, metrics *Metrics, bcast Broadcaster) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		detector:  schema.NewDetector(logger),
		validator: validation.NewValidator(logger),
		insights:  insight.NewEngine(logger),
		risks:     risk.NewAssessor(logger),
		planner:   recommend.NewPlanner(logger),
		logger:    logger,
		metrics:   metrics,
		bcast:     bcast,
	}
}

// Run executes the full pipeline over the uploaded tables.
func (o *Orchestrator) Run(ctx context.Context, tables []*tabular.Table, opts Options) (*domain.AnalysisReport, error) {
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}
	state := NewRunState(uuid.NewString())
	logger := o.logger.With("run_id", state.ID())

	report, err := o.run(ctx, state, logger, tables, opts)
	if err != nil {
		state.Fail(err)
		o.phase(state, PhaseFailed)
		o.metrics.runFinished("failed", state.Duration().Seconds())
		logger.Error("analysis run failed", "error", err, "duration", state.Duration())
		return nil, err
	}
	o.phase(state, PhaseComplete)
	o.metrics.runFinished("complete", state.Duration().Seconds())
	logger.Info("analysis run complete",
		"domains", report.EnabledDomains,
		"skipped", len(report.DataQuality.Skipped),
		"duration", state.Duration())
	return report, nil
}

func (o *Orchestrator) run(ctx context.Context, state *RunState, logger *slog.Logger, tables []*tabular.Table, opts Options) (*domain.AnalysisReport, error) {
	if len(tables) == 0 {
		return nil, ErrNoAnalyzableData
	}

	// Phase 1: schema detection.
	o.phase(state, PhaseSchemaDetecting)
	matches := make([]domain.SchemaMatch, len(tables))
	for i, t := range tables {
		matches[i] = o.detector.Detect(t)
		logger.Debug("schema detected",
			"source", t.Source,
			"domain", matches[i].Domain,
			"confidence", matches[i].Confidence)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 2: validation gate. One table per domain; when several
	// tables claim the same domain the first accepted one wins and the
	// rest are reported as skipped.
	o.phase(state, PhaseValidating)
	validated := make(map[domain.Domain]*validation.ValidatedTable)
	quality := domain.QualitySummary{PerDomain: make(map[string]domain.DataQualityReport)}
	for i, t := range tables {
		vt, skipped := o.validator.Validate(t, matches[i])
		if skipped != nil {
			o.skip(state, &quality, *skipped)
			continue
		}
		if _, taken := validated[vt.Domain]; taken {
			o.skip(state, &quality, domain.SkippedTable{
				Source: t.Source,
				Domain: vt.Domain,
				Reason: domain.ReasonSchemaAmbiguous,
				Detail: fmt.Sprintf("domain %s already covered by an earlier table", vt.Domain),
			})
			continue
		}
		validated[vt.Domain] = vt
		quality.PerDomain[vt.Domain.String()] = vt.Quality
	}
	if len(validated) == 0 {
		return nil, ErrNoAnalyzableData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 3: concurrent per-domain analysis. Analyzers are pure, so
	// only the shared results map needs guarding.
	o.phase(state, PhaseAnalyzing)
	cfg := analysis.DefaultConfig(opts.AsOf)
	if opts.DeadStockDays > 0 {
		cfg.DeadStockDays = opts.DeadStockDays
	}
	if opts.OverstockDays > 0 {
		cfg.OverstockDays = opts.OverstockDays
	}
	if opts.AgedStockDays > 0 {
		cfg.AgedStockDays = opts.AgedStockDays
	}
	var (
		mu      sync.Mutex
		results = make(map[domain.Domain]*domain.DomainResult, len(validated))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for d, vt := range validated {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := analysis.ForDomain(d, cfg).Analyze(vt)
			o.metrics.domainAnalyzed(d.String())
			mu.Lock()
			results[d] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Phase 4: synthesis.
	o.phase(state, PhaseSynthesizing)
	return o.synthesize(results, quality, opts), nil
}

// synthesize assembles the final report from the domain results.
func (o *Orchestrator) synthesize(results map[domain.Domain]*domain.DomainResult, quality domain.QualitySummary, opts Options) *domain.AnalysisReport {
	report := &domain.AnalysisReport{
		GeneratedAt: time.Now().UTC(),
		DataSource:  opts.DataSource,
		DataQuality: quality,
	}

	var all []domain.Insight
	for _, d := range domain.AllDomains() {
		res := results[d]
		if res == nil {
			continue
		}
		insights := o.insights.Derive(res)
		report.SetSection(d, &domain.DomainReport{
			KPIs:     res.KPIs,
			Findings: res.Findings,
			Insights: insights,
		})
		all = append(all, insights...)
	}

	// Cross-domain correlation needs at least two perspectives.
	if len(results) >= 2 {
		cross := o.insights.DeriveCrossDomain(results)
		report.CrossDomainInsights = cross
		all = append(all, cross...)
	}

	report.CriticalRisks = o.risks.Assess(results, all)
	recs := o.planner.Recommend(all)
	report.ActionPlan = o.planner.Plan(recs)
	report.ExecutiveSummary = insight.BuildExecutiveSummary(results, all)

	names := make([]string, 0, len(results))
	for d := range results {
		names = append(names, d.String())
	}
	sort.Strings(names)
	report.DataTypes = names
	report.EnabledDomains = names
	return report
}

func (o *Orchestrator) phase(state *RunState, p Phase) {
	if p != PhaseFailed {
		if prev, elapsed, ok := state.advance(p); ok && prev != PhaseIdle {
			o.metrics.stageFinished(string(prev), elapsed.Seconds())
		}
	}
	if o.bcast != nil {
		o.bcast.RunPhase(state.ID(), state.Phase())
	}
}

func (o *Orchestrator) skip(state *RunState, quality *domain.QualitySummary, skipped domain.SkippedTable) {
	quality.Skipped = append(quality.Skipped, skipped)
	o.metrics.tableSkipped(skipped.Reason)
	if o.bcast != nil {
		o.bcast.TableSkipped(state.ID(), skipped)
	}
	o.logger.Warn("table skipped",
		"source", skipped.Source,
		"reason", skipped.Reason,
		"detail", skipped.Detail)
}
