package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "erpinsight/internal/errors"
	"erpinsight/internal/services"
)

// UploadHandler accepts ERP export files and stages them for analysis.
type UploadHandler struct {
	uploads *services.UploadService
	store   *services.FileStore
	logger  *slog.Logger
}

func NewUploadHandler(uploads *services.UploadService, store *services.FileStore, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{uploads: uploads, store: store, logger: logger}
}

func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	r.Get("/", h.List)
	r.Delete("/{fileID}", h.Delete)
	return r
}

// Upload handles POST /api/upload. The multipart field name is "file";
// several files may be attached under the same field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		respondError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "MISSING_PARAMETER",
			"no file attached", "attach at least one file under the 'file' field"))
		return
	}

	results := make([]interface{}, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		result, err := h.uploads.Upload(r.Context(), fh.Filename, fh.Size, f)
		f.Close()
		if err != nil {
			respondError(w, r, uploadError(err))
			return
		}
		results = append(results, result)
	}

	if len(results) == 1 {
		respondData(w, r, results[0])
		return
	}
	respondData(w, r, results)
}

// List handles GET /api/upload and returns the staged files.
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	type fileSummary struct {
		FileID     string  `json:"file_id"`
		FileName   string  `json:"file_name"`
		Domain     string  `json:"detected_domain"`
		Rows       int     `json:"rows"`
		Confidence float64 `json:"schema_confidence"`
	}
	stored := h.store.List()
	out := make([]fileSummary, 0, len(stored))
	for _, f := range stored {
		out = append(out, fileSummary{
			FileID:     f.ID,
			FileName:   f.Name,
			Domain:     string(f.Match.Domain),
			Rows:       f.Table.RowCount(),
			Confidence: f.Match.Confidence,
		})
	}
	respondData(w, r, out)
}

// Delete handles DELETE /api/upload/{fileID}.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileID")
	if !h.store.Delete(id) {
		respondError(w, r, apierrors.NotFoundError("file "+id))
		return
	}
	respondData(w, r, map[string]string{"deleted": id})
}

func uploadError(err error) *apierrors.APIError {
	switch {
	case errors.Is(err, services.ErrUnsupportedFile):
		return apierrors.ErrUnsupportedFileType
	case errors.Is(err, services.ErrFileTooLarge):
		return apierrors.ErrFileTooLarge
	default:
		return apierrors.InvalidRequestWithError(err)
	}
}
