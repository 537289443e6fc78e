package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aretw0/notekeeper/pkg/core"
)

// Options configures the HTTP surface.
type Options struct {
	Logger *slog.Logger
	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS.
	CORSOrigin string
	// RateLimit is requests per second across all clients. Zero disables it.
	RateLimit float64
	RateBurst int
}

// NewRouter builds the full handler chain: request id, access log, CORS,
// rate limit, then the routes.
func NewRouter(svc *core.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "http")

	r := mux.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(r)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Outermost first. CORS sits outside the router so preflight requests
	// never reach method matching.
	chain := []func(http.Handler) http.Handler{
		RequestIDMiddleware,
		AccessLogMiddleware(logger),
		CORSMiddleware(opts.CORSOrigin),
		RateLimitMiddleware(opts.RateLimit, opts.RateBurst),
	}

	var h http.Handler = r
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}
