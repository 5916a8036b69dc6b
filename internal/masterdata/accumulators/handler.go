package accumulators

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
	"github.com/fiscalbook/fiscalbook/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/accumulators", h.List)
	r.Post("/accumulators", h.Create)
	r.Get("/accumulators/{id}", h.Show)
	r.Put("/accumulators/{id}", h.Update)
	r.Delete("/accumulators/{id}", h.Delete)
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id := shared.SelectedCompanyFromContext(r.Context())
	if id == 0 {
		httpx.RespondError(w, fmt.Errorf("%w: select a company first", httpx.ErrValidation))
		return 0, false
	}
	return id, true
}

func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", httpx.ErrValidation)
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	accumulators, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list accumulators failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if accumulators == nil {
		accumulators = []Accumulator{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accumulators": accumulators})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	acc, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	var req UpsertAccumulatorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	acc, err := h.service.Create(r.Context(), companyID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpsertAccumulatorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	acc, err := h.service.Update(r.Context(), companyID, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), companyID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
