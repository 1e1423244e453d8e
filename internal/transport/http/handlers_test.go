package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpinsight/internal/config"
	"erpinsight/internal/orchestrator"
	"erpinsight/internal/services"
)

func salesCSV(rows int) string {
	var b strings.Builder
	b.WriteString("Order ID,Product ID,Quantity,Total Amount,Customer ID,Order Date\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "SO-%04d,P-%02d,%d,%d,C-%02d,2025-06-%02d\n",
			i, i%5, 1+i%3, 150+i, i%8, 1+i%28)
	}
	return b.String()
}

func newTestRouter(t *testing.T) (chi.Router, *services.FileStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := services.NewFileStore(10)
	uploads := services.NewUploadService(store, config.UploadConfig{
		MaxFileBytes: 1 << 20,
		MaxFiles:     10,
		MaxRows:      10000,
	}, logger)
	orch := orchestrator.New(logger, nil, nil)
	analysis := services.NewAnalysisService(store, orch, nil, logger)

	r := chi.NewRouter()
	r.Mount("/api/upload", NewUploadHandler(uploads, store, logger).Routes())
	r.Mount("/api/analyze", NewAnalysisHandler(analysis, logger).Routes())
	samplesHandler := NewSamplesHandler(logger)
	r.Mount("/api/samples", samplesHandler.SampleRoutes())
	r.Mount("/api/templates", samplesHandler.TemplateRoutes())
	r.Get("/api/health", NewHealthHandler("test").Health)
	return r, store
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doRequest(r chi.Router, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUploadHandler_AcceptsCSV(t *testing.T) {
	router, store := newTestRouter(t)

	body, contentType := multipartBody(t, "orders.csv", salesCSV(30))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	data := env["data"].(map[string]interface{})
	assert.NotEmpty(t, data["file_id"])
	assert.Equal(t, "orders.csv", data["file_name"])
	assert.Equal(t, "sales", data["detected_domain"])
	assert.EqualValues(t, 30, data["rows"])
	assert.Equal(t, 1, store.Len())
}

func TestUploadHandler_RejectsUnsupportedExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "orders.pdf", "not a table")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := doRequest(router, req)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
	errBody := env["error"].(map[string]interface{})
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", errBody["error_code"])
}

func TestUploadHandler_RejectsMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "no file here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := doRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "MISSING_PARAMETER", env["error"].(map[string]interface{})["error_code"])
}

func TestUploadHandler_ListAndDelete(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "orders.csv", salesCSV(12))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	fileID := decodeEnvelope(t, rec)["data"].(map[string]interface{})["file_id"].(string)

	rec = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/upload", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeEnvelope(t, rec)["data"].([]interface{})
	require.Len(t, listed, 1)
	assert.Equal(t, "sales", listed[0].(map[string]interface{})["detected_domain"])

	rec = doRequest(router, httptest.NewRequest(http.MethodDelete, "/api/upload/"+fileID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, httptest.NewRequest(http.MethodDelete, "/api/upload/"+fileID, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisHandler_RunsStagedFiles(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "orders.csv", salesCSV(40))
	upload := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	upload.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusOK, doRequest(router, upload).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	rec := doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	require.Equal(t, true, env["success"])
	report := env["data"].(map[string]interface{})
	assert.Contains(t, report, "executive_summary")
	assert.Contains(t, report, "sales")
	assert.NotContains(t, report, "inventory")
	assert.Equal(t, []interface{}{"sales"}, report["enabled_domains"])
}

func TestAnalysisHandler_SelectsByFileID(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "orders.csv", salesCSV(25))
	upload := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	upload.Header.Set("Content-Type", contentType)
	rec := doRequest(router, upload)
	require.Equal(t, http.StatusOK, rec.Code)
	fileID := decodeEnvelope(t, rec)["data"].(map[string]interface{})["file_id"].(string)

	payload := fmt.Sprintf(`{"files":[{"id":%q}],"config":{"analysis_types":["sales"],"analysis_depth":"detailed"}}`, fileID)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec = doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnalysisHandler_NoFilesStaged(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "NO_FILES", env["error"].(map[string]interface{})["error_code"])
}

func TestAnalysisHandler_UnknownFileID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"files":[{"id":"nope"}]}`))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(router, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "FILE_NOT_FOUND", env["error"].(map[string]interface{})["error_code"])
}

func TestAnalysisHandler_RejectsBadConfig(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"config":{"analysis_depth":"exhaustive"}}`))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", env["error"].(map[string]interface{})["error_code"])
}

func TestSamplesHandler_ServesCSV(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/samples/inventory", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inventory_sample.csv")
	assert.Contains(t, rec.Body.String(), "sku")
}

func TestSamplesHandler_UnknownDomain(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/samples/payroll", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "UNKNOWN_DOMAIN", env["error"].(map[string]interface{})["error_code"])
}

func TestSamplesHandler_ServesTemplate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/templates/purchase", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "purchase_template.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealthHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "test", data["version"])
}
