package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleWebSocket upgrades GET /ws?userId=&username= and registers the
// client with the hub, which starts its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	query := r.URL.Query()
	client := NewClient(conn, s.hub, s.coord, s.cfg, r.RemoteAddr, query.Get("userId"), query.Get("username"), s.logger)

	if !s.hub.Register(client) {
		client.logger.Warn().Msg("hub is shutting down; closing new connection")
		_ = conn.Close()
	}
}

// handleRoot responds with a plain text liveness message.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "Nexus chat server is running!")
}

// handleHealth reports connection, user and room counts.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.coord.Snapshot()
	s.JSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Clients: s.hub.Count(),
		Users:   stats.Users,
		Rooms:   stats.Rooms,
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	s.JSON(w, http.StatusOK, s.coord.Registry().ListOnline())
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	s.JSON(w, http.StatusOK, s.coord.Directory().List())
}

func (s *Server) handleRoomHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if _, ok := s.coord.Directory().Get(roomID); !ok {
		s.Error(w, http.StatusNotFound, "room not found")
		return
	}
	s.JSON(w, http.StatusOK, s.coord.History().Of(roomID))
}

// JSON sends a JSON response with the given status code.
func (s *Server) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("error writing JSON response")
	}
}

// Error sends a JSON error response with the given status code.
func (s *Server) Error(w http.ResponseWriter, status int, message string) {
	s.JSON(w, status, errorResponse{Error: message})
}
