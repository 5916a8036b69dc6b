package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fiscalbook/fiscalbook/internal/auth"
	"github.com/fiscalbook/fiscalbook/internal/classify"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/accumulators"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/cfops"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/companies"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/products"
	"github.com/fiscalbook/fiscalbook/internal/observability"
	"github.com/fiscalbook/fiscalbook/internal/report"
	"github.com/fiscalbook/fiscalbook/internal/shared"
	"github.com/fiscalbook/fiscalbook/internal/sped"
	"github.com/fiscalbook/fiscalbook/internal/users"
	"github.com/fiscalbook/fiscalbook/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AdminChecker   AdminChecker
	Metrics        *observability.Metrics

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	CompaniesHandler   *companies.Handler
	CFOPsHandler       *cfops.Handler
	AccumulatorHandler *accumulators.Handler
	ProductsHandler    *products.Handler
	SpedHandler        *sped.Handler
	ReportHandler      *report.Handler
	ClassifyHandler    *classify.Handler
	JobsHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.Routes(r)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		params.CompaniesHandler.Routes(r)
		params.CFOPsHandler.Routes(r)
		params.AccumulatorHandler.Routes(r)
		params.ProductsHandler.Routes(r)
		params.SpedHandler.Routes(r)
		params.ReportHandler.Routes(r)
		params.ClassifyHandler.Routes(r)
		if params.JobsHandler != nil {
			params.JobsHandler.Routes(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(params.Logger, params.AdminChecker))
			params.UsersHandler.Routes(r)
		})
	})

	return r
}
