package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AsimRauf/jewellery-store-sub002/internal/service"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/health"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/middleware"
)

// adminRole is the role the static admin token maps to.
const adminRole = "admin"

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration

	// SearchMaxAge is the Cache-Control max-age, in seconds, of search
	// responses. Zero marks them no-store.
	SearchMaxAge int

	CORS middleware.CORSConfig

	// AdminToken is the bearer token guarding the catalog endpoints. An
	// empty token rejects every write.
	AdminToken string

	// AdminJWTSecret, when set, makes the catalog endpoints accept
	// HMAC-signed JWTs with role "admin" instead of AdminToken.
	AdminJWTSecret string

	// SearchRateLimit is the per-client search rate in requests per second.
	// Zero disables limiting.
	SearchRateLimit float64
	SearchRateBurst int
}

func (c RouterConfig) adminValidator() middleware.TokenValidator {
	if c.AdminJWTSecret != "" {
		return middleware.JWTToken(c.AdminJWTSecret)
	}
	return middleware.StaticToken(c.AdminToken, adminRole, adminRole)
}

// NewRouter creates a chi router with all catalog search service routes
// registered.
func NewRouter(
	searchService *service.SearchService,
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	searchHandler := NewSearchHandler(searchService, logger)
	catalogHandler := NewCatalogHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.SearchRateLimit > 0 {
				r.Use(middleware.RateLimit(cfg.SearchRateLimit, cfg.SearchRateBurst, logger))
			}
			r.Use(middleware.CacheControl(cfg.SearchMaxAge))
			r.Get("/search", searchHandler.Search)
		})

		r.Route("/catalog/{category}/records", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.adminValidator()))
			r.Use(middleware.RequireRole(adminRole))
			r.Put("/", catalogHandler.UpsertRecords)
			r.Delete("/{id}", catalogHandler.DeleteRecord)
		})
	})

	return r
}
