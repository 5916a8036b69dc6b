package classify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
	"github.com/fiscalbook/fiscalbook/internal/shared"
)

// Enqueuer schedules a background classification scan.
type Enqueuer interface {
	EnqueueClassifyScan(ctx context.Context, companyID int64) error
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
}

// NewHandler builds the classify handler. enqueuer may be nil, in which case
// scans run synchronously in the request.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/classify/suggestions", h.Suggestions)
	r.Post("/classify/scan", h.Scan)
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id := shared.SelectedCompanyFromContext(r.Context())
	if id == 0 {
		httpx.RespondError(w, fmt.Errorf("%w: select a company first", httpx.ErrValidation))
		return 0, false
	}
	return id, true
}

func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	suggestions, err := h.service.Suggestions(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list suggestions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueClassifyScan(r.Context(), companyID); err != nil {
			h.logger.Error("enqueue classify scan failed", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "scheduled"})
		return
	}

	result, err := h.service.Scan(r.Context(), companyID)
	if err != nil {
		h.logger.Error("classification scan failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
