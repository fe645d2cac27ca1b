// Package server exposes C10's façade over HTTP, the way the
// teacher's internal/server package wraps its app.App in a
// http.ServeMux plus a middleware chain (quaero/internal/server).
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/novis10813/mops-financial-api/internal/app"
)

// Server manages the HTTP listener and routing for the downstream
// REST API named in spec.md §6.
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server

	shutdownChan chan struct{}
}

// New builds a Server around application, ready to Start.
func New(application *app.App) *Server {
	s := &Server{app: application}
	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// SetShutdownChannel registers a channel main can select on alongside
// OS signals — present for parity with the teacher's shape even
// though no handler here triggers it yet.
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

func (s *Server) Start() error {
	s.app.Logger.Info().Str("address", s.server.Addr).Msg("server: HTTP listener starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("server: shutting down HTTP listener")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown failed: %w", err)
	}
	return nil
}
