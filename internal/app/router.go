package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warungpos/warungpos/internal/auth"
	"github.com/warungpos/warungpos/internal/categories"
	"github.com/warungpos/warungpos/internal/customers"
	"github.com/warungpos/warungpos/internal/dashboard"
	"github.com/warungpos/warungpos/internal/observability"
	"github.com/warungpos/warungpos/internal/products"
	"github.com/warungpos/warungpos/internal/rbac"
	"github.com/warungpos/warungpos/internal/reports"
	"github.com/warungpos/warungpos/internal/roles"
	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/transactions"
	"github.com/warungpos/warungpos/internal/users"
	"github.com/warungpos/warungpos/jobs"
	"github.com/warungpos/warungpos/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler         *auth.Handler
	DashboardHandler    *dashboard.Handler
	PermissionsHandler  *rbac.PermissionsHandler
	RolesHandler        *roles.Handler
	UsersHandler        *users.Handler
	CategoriesHandler   *categories.Handler
	ProductsHandler     *products.Handler
	CustomersHandler    *customers.Handler
	TransactionsHandler *transactions.Handler
	ReportsHandler      *reports.Handler
	JobsHandler         *jobs.Handler
}

// NewRouter constructs the chi router, mirroring the original route map:
// the login page at the root and everything else under /apps behind the
// authenticated session.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	// Login page, POST /login, POST /logout.
	params.AuthHandler.MountRoutes(r)

	// Embedded client assets referenced by the HTML shell.
	staticServer := http.FileServer(http.FS(web.Static))
	r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
		staticServer.ServeHTTP(w, r)
	})

	// Uploaded category and product images.
	fileServer := http.StripPrefix("/storage/", http.FileServer(http.Dir(params.Config.UploadDir)))
	r.Get("/storage/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	r.Route("/apps", func(r chi.Router) {
		r.Use(RequireAuth)

		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		r.Route("/roles", params.RolesHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/transactions", params.TransactionsHandler.MountRoutes)
		r.Route("/sales", params.ReportsHandler.MountSalesRoutes)
		r.Route("/profits", params.ReportsHandler.MountProfitRoutes)
	})

	return r
}
