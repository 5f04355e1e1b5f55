package sitemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// NewRouter serves the sitemap index, the individual sitemaps and a
// health check.
func NewRouter(g *Generator, logger logging.Logger) *chi.Mux {
	if logger == nil {
		logger = logging.Noop()
	}
	h := &handler{gen: g, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/sitemap.xml", h.index)
	r.Get("/sitemap/{id}.xml", h.sitemap)
	return r
}

// Serve runs the sitemap server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g *Generator, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Noop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	server := &http.Server{
		Handler:      NewRouter(g, logger),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sitemap server starting", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("sitemap server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("sitemap server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown sitemap server: %w", err)
	}
	return nil
}

type handler struct {
	gen    *Generator
	logger logging.Logger
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	ids, err := h.gen.IDs(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteIndex(&buf, h.gen.BaseURL(), ids, h.gen.opts.now()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeXML(w, buf.Bytes())
}

func (h *handler) sitemap(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	entries, err := h.gen.Build(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteURLSet(&buf, entries); err != nil {
		h.fail(w, r, err)
		return
	}
	writeXML(w, buf.Bytes())
}

// fail maps generator errors to a status: unknown ids and missing backend
// resources are 404, everything else is a bad gateway.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, ErrUnknownSitemap) || api.Classify(err) == api.KindNotFound {
		status = http.StatusNotFound
	}
	if status != http.StatusNotFound {
		h.logger.Error("sitemap request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func writeXML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

func requestLogger(logger logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
