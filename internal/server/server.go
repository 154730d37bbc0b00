// Package server accepts game connections, spawns one handler goroutine per
// client, and coordinates shutdown of the listener, the WebSocket gateway,
// and every active session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Tyrowin/wordhunt/internal/game"
	"github.com/Tyrowin/wordhunt/internal/logging"
)

const acceptRetryDelay = 50 * time.Millisecond

// Server is the WordHunt listener and dispatcher. It owns the session
// registry shared by all connection handlers.
type Server struct {
	cfg      Config
	puzzles  game.PuzzleSource
	logger   *logging.Logger
	registry *Registry
	origins  originPolicy

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	httpAddr   net.Addr
	started    bool
	stopped    bool

	wg         sync.WaitGroup
	acceptDone chan struct{}
}

// New creates a Server. Nothing is bound until Start is called.
func New(cfg Config, puzzles game.PuzzleSource, logger *logging.Logger) *Server {
	cfg = sanitizeConfig(cfg)
	if logger == nil {
		logger = logging.Discard()
	}

	return &Server{
		cfg:        cfg,
		puzzles:    puzzles,
		logger:     logger,
		registry:   NewRegistry(),
		origins:    newOriginPolicy(cfg.AllowedOrigins, logger),
		acceptDone: make(chan struct{}),
	}
}

// Start binds the game listener and, when configured, the HTTP gateway, then
// begins accepting connections in the background. A bind failure is returned
// to the caller and not retried.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrServerClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address(), err)
	}

	if s.cfg.HTTPAddr != "" {
		httpLn, err := net.Listen("tcp", s.cfg.HTTPAddr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listen on %s: %w", s.cfg.HTTPAddr, err)
		}
		s.httpServer = CreateServer(s.cfg.HTTPAddr, s.SetupRoutes())
		s.httpAddr = httpLn.Addr()
		go func() {
			if err := StartServer(s.httpServer, httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Errorf("HTTP gateway stopped: %v", err)
			}
		}()
		s.logger.Infof("WebSocket gateway listening on %s", s.httpAddr)
	}

	s.listener = ln
	s.started = true
	go s.acceptLoop(ln)

	s.logger.Infof("Game Server started on %s. Waiting for connections...", ln.Addr())
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer close(s.acceptDone)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.isStopped() {
				return
			}
			s.logger.Errorf("Accept error: %v", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		s.logger.Infof("Client connected from %s.", conn.RemoteAddr())
		if !s.dispatch(newTCPTransport(conn, s.cfg)) {
			_ = conn.Close()
		}
	}
}

// dispatch starts a handler goroutine for conn. It reports false once the
// server is stopping.
func (s *Server) dispatch(conn transport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	client := newClient(s, conn)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		client.serve()
	}()
	return true
}

func (s *Server) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Stop stops accepting connections, notifies and closes every active
// session, and empties the registry. Calling Stop more than once is safe.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	ln := s.listener
	httpServer := s.httpServer
	s.mu.Unlock()

	s.logger.Infof("Stopping server...")

	if ln != nil {
		if err := ln.Close(); err != nil && !isExpectedCloseError(err) {
			s.logger.Errorf("Error closing listener: %v", err)
		}
	}

	if httpServer != nil {
		if err := ShutdownServer(httpServer, s.cfg.ShutdownTimeout); err != nil {
			s.logger.Errorf("HTTP gateway shutdown error: %v", err)
		}
	}

	drained := s.registry.drain()
	var closing sync.WaitGroup
	for _, reg := range drained {
		closing.Add(1)
		go func(reg registration) {
			defer closing.Done()
			s.closeRegistration(reg)
		}(reg)
	}
	closing.Wait()

	s.logger.Infof("Server stopped. Closed %d client connections.", len(drained))
}

// closeRegistration sends the shutdown notice without waiting behind a
// stalled write, then closes the connection.
func (s *Server) closeRegistration(reg registration) {
	reg.session.NotifyShutdown()
	if err := reg.conn.Notify(shutdownMessage); err != nil && !errors.Is(err, errNoticeSkipped) && !isExpectedCloseError(err) {
		s.logger.Warnf("Could not notify client %s of shutdown: %v", reg.session.ID(), err)
	}
	if err := reg.conn.Close(); err != nil && !isExpectedCloseError(err) {
		s.logger.Errorf("Error closing client connection from %s: %v", reg.conn.RemoteAddr(), err)
	}
}

// Shutdown stops the server and waits for every connection handler to
// return. The timeout covers Stop as well as the wait.
func (s *Server) Shutdown(timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("Server shutdown completed successfully")
		return nil
	case <-deadline.C:
		s.logger.Warnf("Server shutdown timeout reached, some handlers may still be running")
		return context.DeadlineExceeded
	}
}

// Addr returns the bound game listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// HTTPAddr returns the bound gateway address, or nil when it is disabled.
func (s *Server) HTTPAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpAddr
}

// Registry exposes the active session registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Config returns the sanitized configuration in use.
func (s *Server) Config() Config {
	return s.cfg
}
