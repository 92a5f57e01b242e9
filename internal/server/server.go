// Package server is the progress backend: accounts, lesson progress,
// achievements, test results and streak statistics behind a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/cifra/internal/logger"
	"github.com/abhisek/cifra/internal/store"
)

const (
	DefaultAddr     = ":3001"
	DefaultTokenTTL = 7 * 24 * time.Hour

	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Options configures a Server. Secret is required.
type Options struct {
	Secret      string
	TokenTTL    time.Duration
	CORSOrigins []string

	// AuthRPS and AuthBurst bound register/login attempts per client.
	AuthRPS   float64
	AuthBurst int

	// BcryptCost defaults to 12; tests lower it.
	BcryptCost int

	Logger *logger.Logger
	Clock  func() time.Time
}

type Server struct {
	users      store.UserRepo
	progress   store.ProgressRepo
	tokens     *tokenIssuer
	limiter    *ipLimiters
	cors       []string
	bcryptCost int
	log        *logger.Logger
	now        func() time.Time
}

// New builds a server over a store opened with store.OpenServer.
func New(st *store.Store, opts Options) (*Server, error) {
	if opts.Secret == "" {
		return nil, errors.New("server: token secret is required")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.AuthRPS <= 0 {
		opts.AuthRPS = 1
	}
	if opts.AuthBurst <= 0 {
		opts.AuthBurst = 10
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcryptCost
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("server: bcrypt cost %d out of range", opts.BcryptCost)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{
		users:      st.UserRepo(),
		progress:   st.ProgressRepo(),
		tokens:     &tokenIssuer{secret: []byte(opts.Secret), ttl: opts.TokenTTL, now: opts.Clock},
		limiter:    newIPLimiters(opts.AuthRPS, opts.AuthBurst, 0, opts.Clock),
		cors:       opts.CORSOrigins,
		bcryptCost: opts.BcryptCost,
		log:        opts.Logger,
		now:        opts.Clock,
	}, nil
}

// Handler returns the routes: the API under /api and a health probe.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLog, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cors,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(s.limiter.middleware).Post("/register", s.handleRegister)
			r.With(s.limiter.middleware).Post("/login", s.handleLogin)
			r.With(s.requireAuth).Get("/verify", s.handleVerify)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/progress", s.handleProgress)
			r.Post("/progress/lesson", s.handleSaveLesson)
			r.Get("/achievements", s.handleAchievements)
			r.Post("/achievements", s.handleAddAchievement)
			r.Post("/tests/result", s.handleSaveTestResult)
			r.Get("/tests/results", s.handleTestResults)
			r.Get("/stats", s.handleStats)
			r.Get("/dashboard", s.handleDashboard)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusNotFound, "Не найдено")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "Метод не поддерживается")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", s.now().Sub(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
