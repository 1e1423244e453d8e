package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"erpinsight/internal/config"
	"erpinsight/internal/schema"
	"erpinsight/internal/tabular"
	"erpinsight/internal/validation"
	"erpinsight/pkg/contracts/domain"
)

// Upload errors the transport maps onto API error codes.
var (
	ErrUnsupportedFile = fmt.Errorf("unsupported file type")
	ErrFileTooLarge    = fmt.Errorf("file exceeds the size limit")
	ErrTooManyRows     = fmt.Errorf("file exceeds the row limit")
	ErrEmptyFile       = fmt.Errorf("file contains no data rows")
)

// UploadService parses uploaded files, previews their schema and
// stores them for analysis.
type UploadService struct {
	store     *FileStore
	detector  *schema.Detector
	validator *validation.Validator
	cfg       config.UploadConfig
	logger    *slog.Logger
}

func NewUploadService(store *FileStore, cfg config.UploadConfig, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		store:     store,
		detector:  schema.NewDetector(logger),
		validator: validation.NewValidator(logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// Upload parses one file and returns the schema preview. The file is
// stored even when the preview shows problems; the analysis gate makes
// the final accept or reject decision.
func (s *UploadService) Upload(ctx context.Context, name string, size int64, r io.Reader) (*domain.UploadResult, error) {
	if !tabular.Supported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
	if size > s.cfg.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, s.cfg.MaxFileBytes)
	}

	table, err := tabular.Read(name, io.LimitReader(r, s.cfg.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if table.RowCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if s.cfg.MaxRows > 0 && table.RowCount() > s.cfg.MaxRows {
		return nil, fmt.Errorf("%w: %d rows (limit %d)", ErrTooManyRows, table.RowCount(), s.cfg.MaxRows)
	}

	match := s.detector.Detect(table)

	// Preview quality by running the full gate; a rejection here is
	// informational, the file stays available for a later run.
	var issues []domain.QualityIssue
	if vt, _ := s.validator.Validate(table, match); vt != nil {
		issues = vt.Quality.Issues
	}
	if issues == nil {
		issues = []domain.QualityIssue{}
	}

	stored := &StoredFile{
		ID:         uuid.NewString(),
		Name:       name,
		Table:      table,
		Match:      match,
		UploadedAt: time.Now().UTC(),
	}
	s.store.Put(stored)

	s.logger.InfoContext(ctx, "file uploaded",
		"file_id", stored.ID,
		"name", name,
		"rows", table.RowCount(),
		"domain", match.Domain,
		"confidence", match.Confidence,
	)

	return &domain.UploadResult{
		FileID:                 stored.ID,
		FileName:               name,
		DetectedDomain:         match.Domain,
		Rows:                   table.RowCount(),
		Columns:                table.Columns,
		SchemaConfidence:       match.Confidence,
		RequiredColumnsPresent: len(match.MissingFields) == 0,
		QualityIssues:          issues,
	}, nil
}
