// Package server defines the wire protocol constants and shared error helpers
// reused across the connection handler, the listener, and the WebSocket gateway.
package server

import (
	"errors"
	"net"
	"strings"
)

// Protocol commands and server messages.
const (
	endGameCommand      = "EndGame"
	confirmReply        = "YES"
	confirmEndMessage   = "Are you sure you want to end the session? Reply YES to confirm."
	shutdownMessage     = "Server is shutting down."
	serverFullMessage   = "Server is full. Try again later."
	rateLimitedTemplate = "Too many guesses. Slow down! Words remaining: %d"
)

var (
	// ErrServerClosed is returned when an operation needs a running server.
	ErrServerClosed = errors.New("server closed")
	// ErrAlreadyStarted is returned by Start when the server is already running.
	ErrAlreadyStarted = errors.New("server already started")
	// ErrServerFull is returned when the connection limit is reached.
	ErrServerFull = errors.New("server is full")
)

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer")
}
