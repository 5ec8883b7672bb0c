package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/illarion/pph/internal/bruteforce"
	"github.com/illarion/pph/internal/core"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 64 << 10

// Options configures a Server.
type Options struct {
	Hardener     *core.Hardener
	Limiter      Limiter // nil disables rate limiting
	Logger       *slog.Logger
	MaxAttempts  int   // upper bound for /simulate-brute-force
	MaxBodyBytes int64 // zero selects DefaultMaxBodyBytes

	// MaxIterations caps the per-request iterations override; zero selects
	// the hardener's own work factor.
	MaxIterations int

	// TrustedProxies may set X-Forwarded-For; other peers are keyed by
	// their own address.
	TrustedProxies []netip.Prefix
}

// Server is the JSON front end over the hardener.
type Server struct {
	hardener     *core.Hardener
	limiter      Limiter
	logger       *slog.Logger
	maxAttempts  int
	maxBodyBytes int64
	maxIters     int
	trusted      []netip.Prefix
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		hardener:     opts.Hardener,
		limiter:      opts.Limiter,
		logger:       opts.Logger,
		maxAttempts:  opts.MaxAttempts,
		maxBodyBytes: opts.MaxBodyBytes,
		maxIters:     opts.MaxIterations,
		trusted:      opts.TrustedProxies,
	}
	if s.hardener == nil {
		s.hardener = core.New(core.Options{Logger: opts.Logger})
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.maxAttempts <= 0 || s.maxAttempts > bruteforce.MaxAttemptsCeiling {
		s.maxAttempts = bruteforce.MaxAttemptsCeiling
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.maxIters <= 0 {
		s.maxIters = s.hardener.Iterations()
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /harden", s.handleHarden)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /simulate-brute-force", s.handleSimulate)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var h http.Handler = mux
	h = bodyLimit(s.maxBodyBytes)(h)
	if s.limiter != nil {
		h = rateLimit(s.limiter, s.trusted, s.logger)(h)
	}
	h = securityHeaders(h)
	h = recoverer(s.logger)(h)
	h = logRequests(s.logger)(h)
	h = requestID(h)
	return h
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
