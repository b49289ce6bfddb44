// Package api exposes the HTTP interface for the forecast service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/avilchesi/pronostico-service/internal/config"
	"github.com/avilchesi/pronostico-service/internal/forecast"
	"github.com/avilchesi/pronostico-service/internal/metrics"
)

// ForecastProvider is the coordinator surface the HTTP layer depends on.
type ForecastProvider interface {
	GetForecast(ctx context.Context, force bool) ([]forecast.LocationForecast, error)
}

// Server wires HTTP handlers to the coordinator.
type Server struct {
	router   chi.Router
	provider ForecastProvider
	clock    forecast.Clock
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(provider ForecastProvider, clock forecast.Clock, cfg config.Config, logger *zap.Logger) *Server {
	metrics.Init()
	s := &Server{
		provider: provider,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout()))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/api/forecast", s.getForecast)
	r.Get("/api/pronostico", s.getForecast)
	r.Post("/api/forecast/refresh", s.refreshForecast)

	if dir := cfg.Server.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		}
	}

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// health never touches the coordinator; it only proves the process is alive.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"ts": s.clock.Now().UnixMilli(),
	})
}

func (s *Server) getForecast(w http.ResponseWriter, r *http.Request) {
	force := forceRequested(r)
	locations, err := s.provider.GetForecast(r.Context(), force)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if locations == nil {
		locations = []forecast.LocationForecast{}
	}
	s.writeJSON(w, http.StatusOK, locations)
}

func (s *Server) refreshForecast(w http.ResponseWriter, r *http.Request) {
	locations, err := s.provider.GetForecast(r.Context(), true)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"count": len(locations),
	})
}

func forceRequested(r *http.Request) bool {
	switch r.URL.Query().Get("force") {
	case "1", "true":
		return true
	default:
		return false
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
