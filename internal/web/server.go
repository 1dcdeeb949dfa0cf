package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/metrics"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/service"
)

// AdminCodeHeader carries the operator code on admin requests.
const AdminCodeHeader = "X-Admin-Code"

type Options struct {
	// AdminCode guards every mutating endpoint. An empty code rejects all
	// admin requests.
	AdminCode string
	// StaticDir holds the bundled default images served under /static/.
	StaticDir string
	// MediaPrefix is the prefix resolved rendition URLs start with. Renditions
	// are served under its path component; a host part is left to whatever
	// proxies to this server.
	MediaPrefix string
}

const defaultMediaPath = "/media"

// mediaPath returns the path renditions are routed under for prefix.
func mediaPath(prefix string) string {
	u, err := url.Parse(prefix)
	if err != nil {
		return defaultMediaPath
	}
	p := strings.TrimRight(u.Path, "/")
	if !strings.HasPrefix(p, "/") || strings.ContainsAny(p, "{}") {
		return defaultMediaPath
	}
	return p
}

type Server struct {
	assets      *service.AssetService
	assignments *service.AssignmentService
	resolver    *service.Resolver
	metrics     *metrics.Recorder
	opts        Options
	mux         *http.ServeMux
	logger      *slog.Logger
}

func NewServer(
	assets *service.AssetService,
	assignments *service.AssignmentService,
	resolver *service.Resolver,
	rec *metrics.Recorder,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		assets:      assets,
		assignments: assignments,
		resolver:    resolver,
		metrics:     rec,
		opts:        opts,
		mux:         http.NewServeMux(),
		logger:      logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("GET /api/slots", s.handleListSlots)
	s.mux.HandleFunc("GET /api/resolve", s.handleResolveMany)
	s.mux.HandleFunc("GET /api/resolve/{slot}", s.handleResolve)
	s.mux.HandleFunc("GET "+mediaPath(s.opts.MediaPrefix)+"/{id}/{kind}", s.handleMedia)
	if s.opts.StaticDir != "" {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	}

	admin := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, s.requireAdmin(h))
	}
	admin("POST /api/assets", s.handleUpload)
	admin("GET /api/assets", s.handleListAssets)
	admin("GET /api/assets/{id}", s.handleGetAsset)
	admin("PATCH /api/assets/{id}", s.handleRenameAsset)
	admin("DELETE /api/assets/{id}", s.handleDeleteAsset)
	admin("GET /api/assignments", s.handleDescribe)
	admin("PUT /api/assignments/{slot}", s.handleAssign)
	admin("DELETE /api/assignments/{slot}", s.handleClearSlot)
	admin("DELETE /api/assignments", s.handleClearAllSlots)
	admin("POST /api/reset", s.handleReset)
	admin("GET /api/export", s.handleExport)
	admin("GET /api/usage", s.handleUsage)
}

// requireAdmin rejects requests that do not carry the configured admin code.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	want := []byte(s.opts.AdminCode)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get(AdminCodeHeader))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			s.logger.Warn("admin request rejected", "method", r.Method, "path", r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "admin code required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
