package sped

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
	"github.com/fiscalbook/fiscalbook/internal/shared"
)

// ImportMetrics records import outcomes. A nil value disables recording.
type ImportMetrics interface {
	ObserveImport(outcome string, documents, products, items int64)
}

// Handler exposes the import endpoint.
type Handler struct {
	logger    *slog.Logger
	importer  *Importer
	maxUpload int64
	metrics   ImportMetrics
}

// NewHandler builds the sped handler. maxUpload caps the accepted file size
// in bytes.
func NewHandler(logger *slog.Logger, importer *Importer, maxUpload int64, metrics ImportMetrics) *Handler {
	return &Handler{logger: logger, importer: importer, maxUpload: maxUpload, metrics: metrics}
}

// Routes mounts the sped endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sped/import", h.Import)
}

// Import accepts a multipart upload under the "file" field and runs the
// full ingestion pipeline against the session's selected company.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	companyID := shared.SelectedCompanyFromContext(r.Context())
	if companyID == 0 {
		httpx.RespondError(w, fmt.Errorf("%w: select a company before importing", httpx.ErrValidation))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Problem(w, http.StatusRequestEntityTooLarge, "File Too Large",
				fmt.Sprintf("upload exceeds the %d byte limit", tooLarge.Limit))
			return
		}
		httpx.RespondError(w, fmt.Errorf("%w: missing multipart field \"file\"", httpx.ErrValidation))
		return
	}
	defer file.Close()

	summary, err := h.importer.Import(r.Context(), ImportInput{
		Filename:          header.Filename,
		Reader:            file,
		SelectedCompanyID: companyID,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.ObserveImport("error", 0, 0, 0)
		}
		h.respondImportError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveImport("success",
			int64(summary.NewDocuments), int64(summary.NewProducts), int64(summary.NewItems))
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) respondImportError(w http.ResponseWriter, err error) {
	var mismatch *CompanyMismatchError
	switch {
	case errors.Is(err, ErrMissingCompany), errors.Is(err, ErrNothingToImport):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
	case errors.As(err, &mismatch):
		httpx.Problem(w, http.StatusConflict, "Company Mismatch", mismatch.Error())
	default:
		h.logger.Error("sped import failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
