// Package server exposes the simulation engine over a WebSocket endpoint.
// Each connection owns at most one running simulation session; inbound JSON
// commands control it and outbound JSON records stream its events.
package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/logs"

	"main/internal/obs"
	"main/internal/ops"
	"main/internal/store"
	"main/internal/strategy"
)

// Server upgrades connections and hands them to per-connection sessions.
type Server struct {
	cfg        ops.Loaded
	strategies *strategy.Registry
	runIDs     *obs.RunIDGenerator
	results    *store.Store // nil disables persistence
	upgrader   websocket.Upgrader
}

// New builds a server from a loaded config. results may be nil.
func New(cfg ops.Loaded, results *store.Store) *Server {
	return &Server{
		cfg:        cfg,
		strategies: strategy.Default(),
		runIDs:     obs.NewRunIDGenerator(0),
		results:    results,
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// Routes returns the HTTP handler for the server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logs.Warnf("websocket upgrade failed, err: %+v", err)
		return
	}
	sess := newSession(s, conn)
	sess.serve()
}
