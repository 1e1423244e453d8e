package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"erpinsight/internal/config"
	"erpinsight/internal/enrich"
	"erpinsight/internal/orchestrator"
	"erpinsight/internal/tabular"
	"erpinsight/pkg/contracts/domain"
)

// ErrNoFiles is returned when an analysis is requested before any
// upload.
var (
	ErrNoFiles      = fmt.Errorf("no uploaded files to analyze")
	ErrFileNotFound = fmt.Errorf("file not found")
)

// Enricher polishes the executive summary. *enrich.Client satisfies
// it; tests substitute a stub.
type Enricher interface {
	Enabled() bool
	Polish(ctx context.Context, summary []string, insights []domain.Insight) ([]string, error)
}

var _ Enricher = (*enrich.Client)(nil)

// AnalysisService runs the pipeline over stored uploads.
type AnalysisService struct {
	store    *FileStore
	orch     *orchestrator.Orchestrator
	enricher Enricher
	logger   *slog.Logger

	// StockWindows overrides the analyzer aging windows when set.
	StockWindows config.AnalysisConfig
}

func NewAnalysisService(store *FileStore, orch *orchestrator.Orchestrator, enricher Enricher, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		store:    store,
		orch:     orch,
		enricher: enricher,
		logger:   logger,
	}
}

// Analyze runs the pipeline over the named uploads, or over every
// stored upload when fileIDs is empty.
func (s *AnalysisService) Analyze(ctx context.Context, fileIDs []string) (*domain.AnalysisReport, error) {
	files, err := s.resolve(fileIDs)
	if err != nil {
		return nil, err
	}

	tables := make([]*tabular.Table, len(files))
	names := make([]string, len(files))
	for i, f := range files {
		tables[i] = f.Table
		names[i] = f.Name
	}

	report, err := s.orch.Run(ctx, tables, orchestrator.Options{
		DataSource:    dataSourceLabel(names),
		AsOf:          time.Now().UTC(),
		DeadStockDays: s.StockWindows.DeadStockDays,
		OverstockDays: s.StockWindows.OverstockDays,
		AgedStockDays: s.StockWindows.AgedStockDays,
	})
	if err != nil {
		return nil, err
	}

	s.polish(ctx, report)
	return report, nil
}

func (s *AnalysisService) resolve(fileIDs []string) ([]*StoredFile, error) {
	if len(fileIDs) == 0 {
		files := s.store.List()
		if len(files) == 0 {
			return nil, ErrNoFiles
		}
		return files, nil
	}
	files := make([]*StoredFile, 0, len(fileIDs))
	for _, id := range fileIDs {
		f := s.store.Get(id)
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		files = append(files, f)
	}
	return files, nil
}

// polish rewrites the executive summary through the LLM endpoint when
// configured. Failures keep the computed summary; enrichment can never
// fail a run.
func (s *AnalysisService) polish(ctx context.Context, report *domain.AnalysisReport) {
	if s.enricher == nil || !s.enricher.Enabled() {
		return
	}
	var insights []domain.Insight
	for _, d := range domain.AllDomains() {
		if section := report.Section(d); section != nil {
			insights = append(insights, section.Insights...)
		}
	}
	polished, err := s.enricher.Polish(ctx, report.ExecutiveSummary, insights)
	if err != nil {
		s.logger.WarnContext(ctx, "summary enrichment failed, keeping computed summary", "error", err)
		return
	}
	report.ExecutiveSummary = polished
}

func dataSourceLabel(names []string) string {
	switch len(names) {
	case 0:
		return "upload"
	case 1:
		return names[0]
	default:
		return fmt.Sprintf("%s and %d more", names[0], len(names)-1)
	}
}
