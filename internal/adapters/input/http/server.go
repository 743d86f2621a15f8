// Package http exposes the bridge's own control and query API: REST
// endpoints for the climate surface and a websocket stream of state
// updates.
package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrverrall/philips-heater-coap/internal/domain/service"
	"github.com/mrverrall/philips-heater-coap/internal/ports"
)

type ServerConfig struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg ServerConfig, log *slog.Logger, heater *service.HeaterService, readings ports.ReadingStore) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      NewRouter(log, heater, readings),
		},
	}
}

// NewRouter builds the API routes. Split out of NewServer so tests can
// mount it on a test listener.
func NewRouter(log *slog.Logger, heater *service.HeaterService, readings ports.ReadingStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewHeaterHandler(log, heater, readings)
	hub := NewHub(log, heater)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/history", h.GetHistory)
		r.Post("/hvac-mode", h.SetHVACMode)
		r.Post("/preset", h.SetPreset)
		r.Post("/oscillation", h.SetOscillation)
		r.Post("/target-temperature", h.SetTargetTemperature)
		r.Post("/power", h.SetPower)
		r.Get("/ws", hub.Serve)
	})

	return r
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
