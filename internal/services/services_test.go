package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpinsight/internal/config"
	"erpinsight/internal/orchestrator"
	"erpinsight/pkg/contracts/domain"
)

const salesCSV = `Order ID,Product ID,Quantity,Total Amount,Customer ID,Order Date
SO-001,P-1,2,150.00,C-1,2025-05-10
SO-002,P-2,1,75.00,C-2,2025-05-12
SO-003,P-1,3,225.00,C-1,2025-06-05
SO-004,P-3,1,80.00,C-3,2025-06-20
`

func uploadCfg() config.UploadConfig {
	return config.UploadConfig{MaxFileBytes: 1 << 20, MaxFiles: 5, MaxRows: 1000}
}

func TestUploadDetectsSchemaAndStores(t *testing.T) {
	store := NewFileStore(5)
	svc := NewUploadService(store, uploadCfg(), nil)

	result, err := svc.Upload(context.Background(), "sales.csv", int64(len(salesCSV)), strings.NewReader(salesCSV))

	require.NoError(t, err)
	assert.Equal(t, domain.DomainSales, result.DetectedDomain)
	assert.InDelta(t, 1.0, result.SchemaConfidence, 0.001)
	assert.True(t, result.RequiredColumnsPresent)
	assert.Equal(t, 4, result.Rows)
	assert.NotEmpty(t, result.FileID)
	assert.NotNil(t, result.QualityIssues)

	stored := store.Get(result.FileID)
	require.NotNil(t, stored)
	assert.Equal(t, "sales.csv", stored.Name)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	svc := NewUploadService(NewFileStore(5), uploadCfg(), nil)

	_, err := svc.Upload(context.Background(), "report.pdf", 100, strings.NewReader("x"))

	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	cfg := uploadCfg()
	cfg.MaxFileBytes = 10
	svc := NewUploadService(NewFileStore(5), cfg, nil)

	_, err := svc.Upload(context.Background(), "sales.csv", 100, strings.NewReader(salesCSV))

	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc := NewUploadService(NewFileStore(5), uploadCfg(), nil)

	_, err := svc.Upload(context.Background(), "empty.csv", 20, strings.NewReader("a,b,c\n"))

	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestFileStoreEvictsOldest(t *testing.T) {
	store := NewFileStore(2)
	now := time.Now()
	store.Put(&StoredFile{ID: "a", UploadedAt: now.Add(-2 * time.Hour)})
	store.Put(&StoredFile{ID: "b", UploadedAt: now.Add(-time.Hour)})
	store.Put(&StoredFile{ID: "c", UploadedAt: now})

	assert.Nil(t, store.Get("a"))
	assert.NotNil(t, store.Get("b"))
	assert.NotNil(t, store.Get("c"))
	assert.Equal(t, 2, store.Len())
}

func TestFileStoreListOrdered(t *testing.T) {
	store := NewFileStore(5)
	now := time.Now()
	store.Put(&StoredFile{ID: "new", UploadedAt: now})
	store.Put(&StoredFile{ID: "old", UploadedAt: now.Add(-time.Hour)})

	files := store.List()
	require.Len(t, files, 2)
	assert.Equal(t, "old", files[0].ID)
	assert.Equal(t, "new", files[1].ID)
}

type stubEnricher struct {
	polished []string
	err      error
	called   bool
}

func (s *stubEnricher) Enabled() bool { return true }

func (s *stubEnricher) Polish(ctx context.Context, summary []string, insights []domain.Insight) ([]string, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.polished, nil
}

func storeWithSalesFile(t *testing.T) *FileStore {
	t.Helper()
	store := NewFileStore(5)
	svc := NewUploadService(store, uploadCfg(), nil)
	_, err := svc.Upload(context.Background(), "sales.csv", int64(len(salesCSV)), strings.NewReader(salesCSV))
	require.NoError(t, err)
	return store
}

func TestAnalyzeAllStoredFiles(t *testing.T) {
	store := storeWithSalesFile(t)
	svc := NewAnalysisService(store, orchestrator.New(nil, nil, nil), nil, nil)

	report, err := svc.Analyze(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"sales"}, report.EnabledDomains)
	assert.Equal(t, "sales.csv", report.DataSource)
}

func TestAnalyzeNamedFileOnly(t *testing.T) {
	store := storeWithSalesFile(t)
	id := store.List()[0].ID
	svc := NewAnalysisService(store, orchestrator.New(nil, nil, nil), nil, nil)

	report, err := svc.Analyze(context.Background(), []string{id})

	require.NoError(t, err)
	assert.NotNil(t, report.Sales)
}

func TestAnalyzeUnknownFileID(t *testing.T) {
	svc := NewAnalysisService(storeWithSalesFile(t), orchestrator.New(nil, nil, nil), nil, nil)

	_, err := svc.Analyze(context.Background(), []string{"missing-id"})

	assert.ErrorContains(t, err, "not found")
}

func TestAnalyzeWithoutUploads(t *testing.T) {
	svc := NewAnalysisService(NewFileStore(5), orchestrator.New(nil, nil, nil), nil, nil)

	_, err := svc.Analyze(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestAnalyzeAppliesEnrichment(t *testing.T) {
	enricher := &stubEnricher{polished: []string{"polished line"}}
	svc := NewAnalysisService(storeWithSalesFile(t), orchestrator.New(nil, nil, nil), enricher, nil)

	report, err := svc.Analyze(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, enricher.called)
	assert.Equal(t, []string{"polished line"}, report.ExecutiveSummary)
}

func TestAnalyzeKeepsSummaryWhenEnrichmentFails(t *testing.T) {
	enricher := &stubEnricher{err: assert.AnError}
	svc := NewAnalysisService(storeWithSalesFile(t), orchestrator.New(nil, nil, nil), enricher, nil)

	report, err := svc.Analyze(context.Background(), nil)

	require.NoError(t, err)
	assert.NotEmpty(t, report.ExecutiveSummary)
	assert.NotEqual(t, []string{"polished line"}, report.ExecutiveSummary)
}

func TestUploadPreviewSurvivesUnusableTable(t *testing.T) {
	// Numbers never parse, so validation rejects the table, but the
	// upload itself succeeds and reports the detected schema.
	csv := "sku,quantity,unit_cost\nA,-,n/a\nB,??,bad\n"
	store := NewFileStore(5)
	svc := NewUploadService(store, uploadCfg(), nil)

	result, err := svc.Upload(context.Background(), "inv.csv", int64(len(csv)), strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, domain.DomainInventory, result.DetectedDomain)
	assert.Equal(t, 1, store.Len())
}

func TestDataSourceLabel(t *testing.T) {
	assert.Equal(t, "upload", dataSourceLabel(nil))
	assert.Equal(t, "a.csv", dataSourceLabel([]string{"a.csv"}))
	assert.Equal(t, "a.csv and 2 more", dataSourceLabel([]string{"a.csv", "b.csv", "c.csv"}))
}
