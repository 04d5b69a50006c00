package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/auth"
	"github.com/joestump/shelf/internal/catalog"
	"github.com/joestump/shelf/internal/metrics"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Catalog    *catalog.Service
	BearerAuth *auth.BearerTokenMiddleware
	Login      *auth.Handlers
	Log        *zap.Logger
	// Ping reports database health for /healthz. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter assembles the full chi router with all middleware and routes.
// Everything except /login, /login/signup, /metrics and /healthz requires a
// bearer token.
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthz(deps.Ping))

	r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		r.Post("/login/signup", deps.Login.Signup)
		r.Post("/login", deps.Login.Login)

		r.Group(func(r chi.Router) {
			r.Use(deps.BearerAuth.Authenticate)

			r.Post("/login/password", deps.Login.ChangePassword)
			registerAuthorRoutes(r, deps.Catalog, log)
			registerBookRoutes(r, deps.Catalog, log)
			registerFavoriteRoutes(r, deps.Catalog, log)
		})
	})

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request and records its duration under
// the matched route pattern.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(status)).
				Observe(elapsed.Seconds())
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func healthz(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "database unavailable", "UNAVAILABLE")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
