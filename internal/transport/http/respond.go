// Package http exposes the REST surface: file upload, analysis runs,
// sample data and import templates, and health. Every success response
// is {success:true, data:...}; every failure is the error envelope
// from the errors package.
package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "erpinsight/internal/errors"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

func (d *DataResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func respondData(w http.ResponseWriter, r *http.Request, data interface{}) {
	_ = render.Render(w, r, &DataResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	_ = render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}
