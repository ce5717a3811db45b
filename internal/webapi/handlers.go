// Package webapi implements the JSON and markup endpoints behind the
// live-preview form. Every request carries the full chart document and is
// validated from scratch.
package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/benchcard/benchcard/internal/assets"
	"github.com/benchcard/benchcard/internal/export"
	"github.com/benchcard/benchcard/internal/orchestration"
	"github.com/benchcard/benchcard/internal/providers"
	"github.com/benchcard/benchcard/internal/render"
	"github.com/benchcard/benchcard/internal/validation"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// MaxBodyBytes caps the size of a chart document in a request body.
const MaxBodyBytes = 2 << 20

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	gen *orchestration.Generator
}

// NewHandlers creates a new Handlers backed by gen.
func NewHandlers(gen *orchestration.Generator) *Handlers {
	return &Handlers{gen: gen}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleProviders lists the built-in provider registry.
func (h *Handlers) HandleProviders(w http.ResponseWriter, _ *http.Request) {
	fams := providers.Families()
	out := make([]ProviderInfo, 0, len(fams))
	for _, f := range fams {
		out = append(out, ProviderInfo{Key: f.Key, Name: f.Name, Aliases: f.Aliases, Color: f.Color})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleFonts lists the selectable fonts.
func (h *Handlers) HandleFonts(w http.ResponseWriter, _ *http.Request) {
	keys := assets.FontKeys()
	out := make([]FontInfo, 0, len(keys))
	for _, k := range keys {
		f, _ := assets.LookupFont(k)
		out = append(out, FontInfo{Key: f.Key, Label: f.Label})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleValidate validates the posted chart and returns its processed rows
// and layout.
func (h *Handlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	chart, ok := h.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:  true,
		Title:  chart.Config.Title,
		Models: chart.Models,
		Layout: chart.Layout,
	})
}

// HandlePreview renders the posted chart to HTML. The mode query parameter
// selects "standalone" (default) or "fragment".
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	mode, err := render.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chart, ok := h.build(w, r)
	if !ok {
		return
	}

	markup, err := h.gen.Markup(chart, mode)
	if err != nil {
		slog.Error("preview render failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, markup) //nolint:errcheck
}

// HandleExport exports the posted chart. The format query parameter selects
// "png" (default), "svg" or "html".
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	f := r.URL.Query().Get("format")
	if f == "" {
		f = string(export.FormatPNG)
	}
	format, err := export.ParseFormat(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chart, ok := h.build(w, r)
	if !ok {
		return
	}

	data, err := h.gen.Export(r.Context(), chart, format)
	if err != nil {
		slog.Error("export failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="chart%s"`, format.Ext()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// build reads and validates the request body, writing an error response
// and returning false on failure.
func (h *Handlers) build(w http.ResponseWriter, r *http.Request) (*orchestration.Chart, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "chart document is too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return nil, false
	}

	chart, err := h.gen.BuildBytes(body)
	if err != nil {
		writeInputError(w, err)
		return nil, false
	}
	return chart, true
}

// writeInputError maps pipeline errors to 422 responses carrying the field
// path and line when known.
func writeInputError(w http.ResponseWriter, err error) {
	if !orchestration.IsInputError(err) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: http.StatusUnprocessableEntity}
	var (
		ve *validation.ValidationError
		pe *validation.ParseError
	)
	switch {
	case errors.As(err, &ve):
		resp.Path, resp.Line = ve.Path, ve.Line
	case errors.As(err, &pe):
		resp.Line = pe.Line
	}
	writeJSON(w, resp.Code, resp)
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatPNG:
		return "image/png"
	case export.FormatSVG:
		return "image/svg+xml"
	default:
		return "text/html; charset=utf-8"
	}
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, gen *orchestration.Generator) {
	h := NewHandlers(gen)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/providers", h.HandleProviders)
	mux.HandleFunc("GET /api/fonts", h.HandleFonts)
	mux.HandleFunc("POST /api/validate", h.HandleValidate)
	mux.HandleFunc("POST /api/preview", h.HandlePreview)
	mux.HandleFunc("POST /api/export", h.HandleExport)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
