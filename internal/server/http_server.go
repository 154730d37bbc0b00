// Package server constructs and runs the HTTP side of WordHunt, which hosts
// the WebSocket gateway and status endpoints.
package server

import (
	"context"
	"net"
	"net/http"
	"time"
)

// CreateServer creates and configures an HTTP server with the specified address and handler.
// It sets reasonable timeout values for production use.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer serves HTTP on an already bound listener and blocks until the
// server stops.
func StartServer(server *http.Server, ln net.Listener) error {
	return server.Serve(ln)
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting active requests.
// Upgraded WebSocket connections are not tracked by net/http and are closed
// through the session registry instead.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return server.Shutdown(ctx)
}
