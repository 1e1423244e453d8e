package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "erpinsight/internal/errors"
	"erpinsight/internal/orchestrator"
	"erpinsight/internal/services"
)

// AnalyzeRequest selects the staged files to run. An empty file list
// means every staged file. The config block tunes the run; unknown
// analysis types are rejected up front rather than silently ignored.
type AnalyzeRequest struct {
	Files  []AnalyzeFileRef `json:"files" validate:"dive"`
	Config *AnalyzeConfig   `json:"config,omitempty" validate:"omitempty"`
}

type AnalyzeFileRef struct {
	ID string `json:"id" validate:"required"`
}

type AnalyzeConfig struct {
	AnalysisTypes           []string `json:"analysis_types" validate:"dive,oneof=financial manufacturing inventory sales purchase"`
	AnalysisDepth           string   `json:"analysis_depth" validate:"omitempty,oneof=summary detailed comprehensive"`
	EnableCrossFileAnalysis *bool    `json:"enable_cross_file_analysis"`
}

func (a *AnalyzeRequest) Bind(r *http.Request) error {
	return nil
}

// AnalysisHandler runs the pipeline over staged uploads.
type AnalysisHandler struct {
	analysis *services.AnalysisService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAnalysisHandler(analysis *services.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		analysis: analysis,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Analyze)
	return r
}

// Analyze handles POST /api/analyze.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if r.ContentLength > 0 {
		if err := render.Bind(r, &req); err != nil {
			respondError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, r, validationError(err))
		return
	}

	fileIDs := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		fileIDs = append(fileIDs, f.ID)
	}

	report, err := h.analysis.Analyze(r.Context(), fileIDs)
	if err != nil {
		respondError(w, r, analyzeError(err))
		return
	}
	respondData(w, r, report)
}

func analyzeError(err error) *apierrors.APIError {
	switch {
	case errors.Is(err, orchestrator.ErrNoAnalyzableData):
		return apierrors.NoAnalyzableDataError(err.Error())
	case errors.Is(err, services.ErrFileNotFound):
		return apierrors.NewWithDetails(http.StatusNotFound, "FILE_NOT_FOUND", "Uploaded file not found", err.Error())
	case errors.Is(err, services.ErrNoFiles):
		return apierrors.New(http.StatusBadRequest, "NO_FILES", err.Error())
	default:
		return apierrors.AnalysisError(err)
	}
}

// validationError flattens the first validator failure into the
// field-level envelope.
func validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apierrors.ErrValidation(fe.Field(), "failed "+fe.Tag()+" check")
	}
	return apierrors.InvalidRequestWithError(err)
}
