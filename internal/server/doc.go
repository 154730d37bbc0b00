// Package server implements the WordHunt game server: the TCP listener and
// dispatcher, the per-connection protocol handler, the shared session
// registry, and an optional HTTP gateway that serves the same protocol over
// WebSocket.
//
// The implementation is organized into specialized files for configuration,
// the registry, clients, transports, routing, and HTTP handlers.
package server
