// Package api serves discovery, history, watch-later and assistant endpoints
// alongside the health routes.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cinemai/internal/models"
	"cinemai/shared/config"
	"cinemai/shared/discovery"
	"cinemai/shared/logging"
	"cinemai/shared/media"
	"cinemai/shared/monitoring"
	"cinemai/shared/storage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
)

// Assistant answers match explanations and chat messages.
type Assistant interface {
	discovery.Explainer
	discovery.Chatter
}

type Deps struct {
	Orchestrator *discovery.Orchestrator
	History      *storage.SearchHistory
	WatchLater   *storage.WatchLater
	Catalogue    []models.CatalogueRecord
	Trailers     *media.TrailerResolver
	Assistant    Assistant
	Monitor      *monitoring.Monitor
}

type Server struct {
	deps     Deps
	chat     *discovery.ChatSession
	health   *monitoring.HealthServer
	validate *validator.Validate
	config   config.ServerConfig
}

func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Monitor == nil {
		deps.Monitor = monitoring.NewMonitor()
	}
	if deps.Trailers == nil {
		deps.Trailers = media.NewTrailerResolver(nil)
	}
	if deps.WatchLater == nil {
		deps.WatchLater = storage.NewWatchLater()
	}
	s := &Server{
		deps:     deps,
		health:   monitoring.NewHealthServer(deps.Monitor, ""),
		validate: validator.New(),
		config:   cfg,
	}
	if deps.Assistant != nil {
		s.chat = discovery.NewChatSession(deps.Assistant)
	}
	return s
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	if len(s.config.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		}))
	}

	s.health.Routes(r)

	r.Route("/api", func(r chi.Router) {
		if s.config.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.config.RateLimitPerMinute, time.Minute))
		}

		r.Get("/discover", s.handleSnapshot)
		r.Post("/discover", s.handleDiscover)
		r.Post("/discover/regenerate", s.handleRegenerate)

		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Delete("/history/{query}", s.handleRemoveHistory)

		r.Get("/watch-later", s.handleWatchLater)
		r.Post("/watch-later", s.handleToggleWatchLater)

		r.Get("/catalogue/featured", s.handleFeatured)
		r.Get("/trailer", s.handleTrailer)
		r.Post("/explain", s.handleExplain)
		r.Post("/chat", s.handleChat)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("API server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
