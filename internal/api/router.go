package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fileharbor/fileharbor/pkg/auth"
	"github.com/fileharbor/fileharbor/pkg/metrics"
	"github.com/fileharbor/fileharbor/pkg/storage"
)

// Router holds the handler dependencies.
type Router struct {
	storage     *storage.Service
	auth        *auth.Service
	authEnabled bool
	metrics     *metrics.Metrics
	log         *slog.Logger
	timeout     time.Duration
}

// Option configures the Router.
type Option func(*Router)

// WithAuth enables the auth endpoints and bearer-token protection of the file
// routes. With enabled false the service is ignored and every request passes
// unauthenticated.
func WithAuth(svc *auth.Service, enabled bool) Option {
	return func(rt *Router) {
		rt.auth = svc
		rt.authEnabled = enabled && svc != nil
	}
}

// WithMetrics wires request instrumentation and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(rt *Router) {
		rt.metrics = m
	}
}

// WithLogger supplies the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(rt *Router) {
		if log != nil {
			rt.log = log
		}
	}
}

// WithRequestTimeout bounds each file operation with a context deadline. The
// default is generous so multi-gigabyte folder uploads are not cut off.
func WithRequestTimeout(d time.Duration) Option {
	return func(rt *Router) {
		if d > 0 {
			rt.timeout = d
		}
	}
}

// NewRouter assembles the HTTP handler tree.
func NewRouter(store *storage.Service, opts ...Option) http.Handler {
	rt := &Router{
		storage: store,
		log:     slog.New(slog.DiscardHandler),
		timeout: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(rt)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Get("/health", rt.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if rt.authEnabled {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", rt.handleLogin)

				r.Group(func(r chi.Router) {
					r.Use(auth.Middleware(rt.auth, true))
					r.Post("/logout", rt.handleLogout)
					r.Get("/validate", rt.handleValidate)

					r.With(auth.RequireAdmin(true)).Post("/register", rt.handleRegister)
				})
			})
		}

		r.Group(func(r chi.Router) {
			if rt.authEnabled {
				r.Use(auth.Middleware(rt.auth, true))
			}
			r.Use(requestTimeout(rt.timeout))

			r.Route("/files", func(r chi.Router) {
				r.Get("/list", rt.handleList)
				r.Get("/stat", rt.handleStat)
				r.Post("/upload", rt.handleUpload)
				r.Post("/mkdir", rt.handleMkdir)
				r.Put("/rename", rt.handleRename)
				r.Put("/move", rt.handleMove)
				r.Get("/download/*", rt.handleDownload)
				r.Delete("/*", rt.handleDelete)
			})

			r.Get("/search", rt.handleSearch)
		})
	})

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestTimeout applies a context deadline per request so abandoned
// transfers stop instead of holding file handles forever.
func requestTimeout(d time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
