package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Tyrowin/nexus-chat-server/internal/chat"
)

// Server ties the chat core to HTTP and WebSocket transport.
type Server struct {
	cfg        Config
	coord      *chat.Coordinator
	hub        *Hub
	origins    *originPolicy
	upgrader   websocket.Upgrader
	httpServer *http.Server
	logger     zerolog.Logger

	stopOnce sync.Once
	stopped  chan struct{}
	stopErr  error
}

// New builds a Server. Nothing listens until Start is called.
func New(cfg Config, coord *chat.Coordinator, logger zerolog.Logger) *Server {
	cfg = cfg.sanitized()
	s := &Server{
		cfg:     cfg,
		coord:   coord,
		hub:     NewHub(logger),
		origins: newOriginPolicy(cfg.AllowedOrigins, logger),
		logger:  logger,
		stopped: make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}
	s.httpServer = newHTTPServer(cfg.Port, s.routes())
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Hub returns the server's client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the hub and the HTTP listener and blocks until both have
// stopped. Cancelling ctx or a listener failure triggers Shutdown.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run()
		return nil
	})

	g.Go(func() error {
		s.logger.Info().Str("addr", s.cfg.Port).Str("env", s.cfg.Env).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.cfg.Port, err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.stopped:
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting connections, closes every client and waits for
// their goroutines. Calls after the first return the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		defer close(s.stopped)
		s.logger.Info().Msg("shutting down HTTP server")

		httpErr := s.httpServer.Shutdown(ctx)
		if httpErr != nil {
			s.logger.Error().Err(httpErr).Msg("HTTP server shutdown error")
		}
		hubErr := s.hub.Shutdown(ctx)

		s.stopErr = errors.Join(httpErr, hubErr)
		if s.stopErr == nil {
			s.logger.Info().Msg("server shutdown completed")
		}
	})
	return s.stopErr
}
