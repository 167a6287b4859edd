package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/pkg/log"
)

// Server serves the JSON API.
type Server struct {
	Logger  log.Logger
	Config  *cfg.Config
	handler *Handler
	server  *http.Server
}

func NewServer(logger log.Logger, config *cfg.Config, handler *Handler) *Server {
	return &Server{
		Logger:  logger,
		Config:  config,
		handler: handler,
	}
}

// Router builds the chi router with middleware and every API route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.handler.RegisterRoutes(r)
	return r
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Config.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeoutSec) * time.Second,
	}

	s.Logger.Info(context.Background(), "[SERVER] Listening on port %d", s.Config.Server.Port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "[SERVER] Shutting down")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger copies chi's request id into the context our logger reads.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(log.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
