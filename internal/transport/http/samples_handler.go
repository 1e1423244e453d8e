package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "erpinsight/internal/errors"
	"erpinsight/internal/samples"
	"erpinsight/pkg/contracts/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SamplesHandler serves downloadable sample datasets and blank import
// templates, one per business domain.
type SamplesHandler struct {
	logger *slog.Logger
}

func NewSamplesHandler(logger *slog.Logger) *SamplesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SamplesHandler{logger: logger}
}

func (h *SamplesHandler) SampleRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{domain}", h.Sample)
	return r
}

func (h *SamplesHandler) TemplateRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{domain}", h.Template)
	return r
}

// Sample handles GET /api/samples/{domain} with a CSV download.
func (h *SamplesHandler) Sample(w http.ResponseWriter, r *http.Request) {
	d, ok := pathDomain(r)
	if !ok {
		respondError(w, r, apierrors.ErrUnknownDomain)
		return
	}
	data, err := samples.CSV(d)
	if err != nil {
		respondError(w, r, apierrors.ErrUnknownDomain)
		return
	}
	sendDownload(w, fmt.Sprintf("%s_sample.csv", d), "text/csv", data)
}

// Template handles GET /api/templates/{domain} with an xlsx download.
func (h *SamplesHandler) Template(w http.ResponseWriter, r *http.Request) {
	d, ok := pathDomain(r)
	if !ok {
		respondError(w, r, apierrors.ErrUnknownDomain)
		return
	}
	data, err := samples.Template(d)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "template generation failed", "domain", d, "error", err)
		respondError(w, r, apierrors.ErrInternalServer)
		return
	}
	sendDownload(w, fmt.Sprintf("%s_template.xlsx", d), xlsxContentType, data)
}

func pathDomain(r *http.Request) (domain.Domain, bool) {
	d := domain.Domain(chi.URLParam(r, "domain"))
	return d, d.Valid()
}

func sendDownload(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
