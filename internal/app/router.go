package app

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/noah-isme/employee-tracker/internal/auth"
	"github.com/noah-isme/employee-tracker/internal/docs"
	"github.com/noah-isme/employee-tracker/internal/locations"
	"github.com/noah-isme/employee-tracker/internal/observability"
	"github.com/noah-isme/employee-tracker/internal/platform/httpx"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   auth.Middleware
	LocationsHandler *locations.Handler
	Metrics          *observability.Metrics
	Readiness        map[string]ReadinessCheck
}

// NewRouter constructs the chi.Router with tracker defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusNotFound, httpx.MsgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readinessHandler(params.Logger, params.Readiness))
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	r.Method(http.MethodGet, "/openapi.json", docs.Handler())

	limit := 20
	if params.Config != nil && params.Config.AuthRateLimit > 0 {
		limit = params.Config.AuthRateLimit
	}

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/documentation", docs.Handler())
		if params.AuthHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(httprate.Limit(limit, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						httpx.Message(w, http.StatusTooManyRequests, "Too Many Attempts.")
					}),
				))
				params.AuthHandler.MountRoutes(r)
			})
		}
		if params.LocationsHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(params.AuthMiddleware.RequireToken)
				r.Route("/locations", params.LocationsHandler.MountRoutes)
			})
		}
	})

	return r
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func readinessHandler(logger *slog.Logger, checks map[string]ReadinessCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := readinessResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			err := checks[name](ctx)
			cancel()
			if err != nil {
				if logger != nil {
					logger.Warn("readiness check failed", slog.String("check", name), slog.Any("error", err))
				}
				resp.Status = "unavailable"
				resp.Checks[name] = "down"
				continue
			}
			resp.Checks[name] = "up"
		}
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httpx.JSON(w, status, resp)
	}
}
