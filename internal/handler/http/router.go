package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/journalist-service/server/internal/auth"
	"github.com/journalist-service/server/internal/service"
	"github.com/journalist-service/server/pkg/health"
	"github.com/journalist-service/server/pkg/httputil"
	"github.com/journalist-service/server/pkg/middleware"
)

// RootMessage is the body of GET /.
const RootMessage = "Journalist service server is running"

// RouterConfig carries the cross-cutting settings of the router.
type RouterConfig struct {
	ServiceName         string
	CORS                middleware.CORSConfig
	RateLimitRPS        float64
	RateLimitBurst      int
	PprofAllowedCIDRs   []string
	MetricsAllowedCIDRs []string
}

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Services *ServiceHandler
	Reviews  *ReviewHandler
	Tokens   *TokenHandler
	Health   *health.Handler
}

// NewHandlers builds the endpoint handlers from the business services.
func NewHandlers(catalog *service.CatalogService, reviews *service.ReviewService, tokens *auth.TokenManager, healthHandler *health.Handler, logger *slog.Logger) Handlers {
	return Handlers{
		Services: NewServiceHandler(catalog, logger),
		Reviews:  NewReviewHandler(reviews, logger),
		Tokens:   NewTokenHandler(tokens, logger),
		Health:   healthHandler,
	}
}

// NewRouter creates a chi router with the global middleware stack and all
// journalist routes registered. validate verifies bearer tokens on the
// owner-filtered review listing.
func NewRouter(cfg RouterConfig, h Handlers, validate middleware.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	r.Use(stripSlashes)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteText(w, http.StatusOK, RootMessage)
	})

	// Health check endpoints
	r.Get("/health/live", h.Health.LivenessHandler())
	r.Get("/health/ready", h.Health.ReadinessHandler())

	var metrics http.Handler = promhttp.Handler()
	if len(cfg.MetricsAllowedCIDRs) > 0 {
		metrics = middleware.IPAllowlist(cfg.MetricsAllowedCIDRs, logger)(metrics)
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// Services
	r.Get("/services", h.Services.ListServices)
	r.Post("/services", h.Services.Create)
	r.Get("/service/{id}", h.Services.Get)
	r.Patch("/service/{id}", h.Services.Update)
	r.Delete("/service/{id}", h.Services.Delete)

	// Reviews
	r.With(middleware.AuthWhen(requiresToken, validate)).Get("/reviews", h.Reviews.ListReviews)
	r.Post("/reviews", h.Reviews.Create)
	r.Get("/reviews/{id}", h.Reviews.Get)
	r.Patch("/reviews/{id}", h.Reviews.Update)
	r.Delete("/reviews/{id}", h.Reviews.Delete)

	// Identity tokens
	r.Post("/jwt", h.Tokens.IssueToken)

	return r
}

// stripSlashes routes "/reviews/" like "/reviews". The profiler tree keeps
// its slashes; its index lives at /debug/pprof/.
func stripSlashes(next http.Handler) http.Handler {
	strip := chimw.StripSlashes(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/debug/") {
			next.ServeHTTP(w, r)
			return
		}
		strip.ServeHTTP(w, r)
	})
}
