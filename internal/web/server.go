// Package web serves the browser UI and JSON API for marksheet. Each browser
// session works on its own uploaded dataset.
package web

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/marksheet/charts"
	"github.com/spektr-org/marksheet/engine"
)

// Config holds configuration for the web server.
type Config struct {
	Port          int
	SessionSecret string
	// SecureCookies marks the session cookie Secure; only for HTTPS deployments.
	SecureCookies  bool
	MaxUploadBytes int64
	Chart          charts.Options
	// Analyzer options applied to every uploaded dataset.
	KeyColumn  string
	TopN       int
	NameColumn string
	Threshold  *float64 // nil means the engine default
	Logger     *slog.Logger
}

// Server is the browser UI server.
type Server struct {
	cfg          Config
	sessionStore *sessions.CookieStore
	workspaces   *Registry
	logger       *slog.Logger
}

// NewServer creates a new server instance. An empty session secret gets a
// random key, so sessions do not survive a restart.
func NewServer(cfg Config) (*Server, error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(int(workspaceTTL / time.Second))
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.SecureCookies
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cfg:          cfg,
		sessionStore: sessionStore,
		workspaces:   NewRegistry(),
		logger:       cfg.Logger,
	}, nil
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/operations", s.handleOperations)
		r.Post("/dataset", s.handleUpload)
		r.Get("/dataset", s.handleProfile)
		r.Delete("/dataset", s.handleDiscard)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/export/{format}", s.handleExport)
		r.Post("/chart/{kind}", s.handleChart)
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("starting marksheet server", "addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-ticker.C:
				if n := s.workspaces.Prune(time.Now()); n > 0 {
					s.logger.Debug("pruned idle workspaces", "count", n)
				}
			}
		}
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down marksheet server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) analyzerOptions() []engine.Option {
	return []engine.Option{
		engine.WithLogger(s.logger),
		engine.WithKeyColumn(s.cfg.KeyColumn),
		engine.WithTopN(s.cfg.TopN),
	}
}
