package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lastros/pos-backend/api/controllers"
	ordercontrollers "github.com/lastros/pos-backend/api/controllers/orders"
	"github.com/lastros/pos-backend/api/middleware"
	"github.com/lastros/pos-backend/api/responses"
	"github.com/lastros/pos-backend/internal/auth"
	"github.com/lastros/pos-backend/internal/dashboard"
	"github.com/lastros/pos-backend/internal/expenses"
	"github.com/lastros/pos-backend/internal/orders"
	"github.com/lastros/pos-backend/internal/products"
	"github.com/lastros/pos-backend/internal/uploads"
	"github.com/lastros/pos-backend/pkg/auth/session"
	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/enums"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/metrics"
	"github.com/lastros/pos-backend/pkg/redis"
)

// Dependencies are the wired services behind the HTTP surface. Redis,
// Sessions, Metrics and MetricsHandler may be nil.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Sessions       session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Uploads        *uploads.Store

	Auth      auth.Service
	Products  products.Service
	Orders    orders.Service
	Expenses  expenses.Service
	Dashboard dashboard.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	var checks []controllers.ReadinessCheck
	if deps.DB != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "db", Ping: deps.DB.Ping})
	}
	if deps.Redis != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Ping: deps.Redis.Ping})
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	if deps.Uploads != nil {
		mountUploads(r, deps.Uploads)
	}

	limiter := rateLimiter(deps.Redis)
	authMW := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), limiter, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), limiter, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/me", controllers.AuthMe(deps.Auth, logg))
			r.Patch("/me", controllers.AuthUpdateMe(deps.Auth, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authMW, middleware.TenantContext(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{id}", controllers.GetProduct(deps.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Patch("/{id}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{id}", controllers.DeleteProduct(deps.Products, logg))
				r.Post("/{id}/image", controllers.UploadProductImage(deps.Products, imageStore(deps.Uploads), logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.Idempotency(idempotencyStore(deps.Redis), logg)).
				Post("/", ordercontrollers.Place(deps.Orders, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", controllers.CreateExpense(deps.Expenses, logg))
			r.Get("/", controllers.ListExpenses(deps.Expenses, logg))
			r.Delete("/{id}", controllers.DeleteExpense(deps.Expenses, logg))
		})

		r.Get("/dashboard/summary", controllers.DashboardSummary(deps.Dashboard, logg))
		r.Get("/finance/summary", controllers.FinanceSummary(deps.Dashboard, logg))
		r.Get("/kitchen/summary", controllers.KitchenSummary(deps.Dashboard, logg))
	})

	return r
}

// mountUploads serves stored images without directory listings.
func mountUploads(r chi.Router, store *uploads.Store) {
	files := http.StripPrefix(store.Prefix(), http.FileServer(http.Dir(store.Dir())))
	r.Get(store.Prefix()+"/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "file not found"))
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, req)
	})
}

// The helpers below keep a nil *redis.Client from becoming a non-nil interface.

func rateLimiter(client *redis.Client) redis.RateLimiter {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func imageStore(store *uploads.Store) controllers.ImageStore {
	if store == nil {
		return nil
	}
	return store
}
