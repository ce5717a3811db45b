package webserver

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/benchcard/benchcard/internal/webapi"
	"github.com/klauspost/compress/gzhttp"
)

//go:embed static
var staticFS embed.FS

// registerRoutes sets up API and form routes on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) error {
	webapi.RegisterRoutes(mux, cfg.Generator)

	handler, err := formHandler()
	if err != nil {
		return fmt.Errorf("failed to initialize form handler: %w", err)
	}
	mux.Handle("GET /{$}", handler)
	mux.Handle("GET /static/", http.StripPrefix("/static/", handler))
	return nil
}

// wrap applies the middleware chain shared by every route.
func wrap(mux http.Handler, cfg Config) http.Handler {
	h := webapi.CORSMiddleware(mux, cfg.AllowedOrigins...)
	return gzhttp.GzipHandler(logRequests(cfg.Logger, h))
}

// formHandler serves the embedded form page and its assets.
func formHandler() (http.Handler, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create sub filesystem for static: %w", err)
	}
	return http.FileServer(http.FS(sub)), nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
