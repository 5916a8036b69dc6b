package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
	"github.com/fiscalbook/fiscalbook/internal/shared"
)

// Handler exposes the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the report handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the report endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/reports/accumulators", h.Accumulators)
	r.Get("/reports/accumulators/export", h.AccumulatorsExport)
	r.Get("/reports/cfops", h.CFOPs)
	r.Get("/reports/summary", h.Summary)
	r.Get("/reports/competencies", h.Competencies)
	r.Get("/reports/dashboard", h.Dashboard)
	r.Get("/reports/products/{id}/apportionment", h.ProductApportionment)
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id := shared.SelectedCompanyFromContext(r.Context())
	if id == 0 {
		httpx.RespondError(w, fmt.Errorf("%w: select a company first", httpx.ErrValidation))
		return 0, false
	}
	return id, true
}

func (h *Handler) Accumulators(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	rep, err := h.service.SalesByAccumulator(r.Context(), companyID, r.URL.Query().Get("competency"))
	if err != nil {
		h.respondError(w, "accumulator report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *Handler) AccumulatorsExport(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	rep, err := h.service.SalesByAccumulator(r.Context(), companyID, r.URL.Query().Get("competency"))
	if err != nil {
		h.respondError(w, "accumulator export", err)
		return
	}
	buf, err := ExportAccumulatorXLSX(rep)
	if err != nil {
		h.respondError(w, "accumulator export", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename(rep.Competency)+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) CFOPs(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	rep, err := h.service.SalesByCFOP(r.Context(), companyID, r.URL.Query().Get("competency"))
	if err != nil {
		h.respondError(w, "cfop report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), companyID, r.URL.Query().Get("competency"))
	if err != nil {
		h.respondError(w, "sales summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) Competencies(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	competencies, err := h.service.Competencies(r.Context(), companyID)
	if err != nil {
		h.respondError(w, "competencies", err)
		return
	}
	if competencies == nil {
		competencies = []string{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"competencies": competencies})
}

// Dashboard combines the sales summary and the company statistics, fetched
// concurrently.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	competency := r.URL.Query().Get("competency")

	var (
		summary SalesSummary
		stats   Statistics
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summary, err = h.service.Summary(ctx, companyID, competency)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = h.service.Statistics(ctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.respondError(w, "dashboard", err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"summary":    summary,
		"statistics": stats,
	})
}

func (h *Handler) ProductApportionment(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}
	detail, err := h.service.ProductApportionment(r.Context(), companyID, productID, r.URL.Query().Get("competency"))
	if err != nil {
		h.respondError(w, "product apportionment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
