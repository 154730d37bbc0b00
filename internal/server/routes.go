// Package server wires HTTP handlers into a router for the WordHunt gateway.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures and returns the router with all gateway routes:
// health check, WebSocket endpoint, session status, and play page.
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.WebSocketHandler).Methods(http.MethodGet)
	r.HandleFunc("/sessions", s.SessionsHandler).Methods(http.MethodGet)
	r.HandleFunc("/play", PlayPageHandler).Methods(http.MethodGet)
	return r
}
