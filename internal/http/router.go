package http

import (
	"context"
	"net/http"
	"time"

	"cotizador/internal/middleware"
	"cotizador/internal/services/quote"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Router struct {
	chi.Router
}

// NewRouter builds the middleware stack. requestTimeout must exceed the
// completion timeout so provider deadlines surface as quotation errors.
func NewRouter(limiter middleware.Limiter, requestTimeout time.Duration) *Router {
	r := chi.NewRouter()

	// Use chi middleware with aliases to avoid conflicts
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if limiter != nil {
		r.Use(middleware.RateLimit(limiter))
	}

	return &Router{r}
}

// RegisterQuoteRoutes registers quotation routes
func (r *Router) RegisterQuoteRoutes(quoteHandler *QuoteHandler) {
	quoteHandler.RegisterRoutes(r)
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// RegisterHealthRoutes registers health check routes
func (r *Router) RegisterHealthRoutes(mode quote.Mode, checks ...ReadinessCheck) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"mode":   string(mode),
					"error":  err.Error(),
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ready",
			"mode":      string(mode),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
}
