// Package api exposes the search facade over HTTP and streams its events
// over WebSocket.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/query"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/realtime"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/search"
)

var logger = log.ForService("api")

type Server struct {
	facade   *query.Facade
	registry *core.Registry
	hub      *realtime.Hub
	search   *search.Service
	upgrader websocket.Upgrader
}

// NewServer serves facade. The hub must be registered as one of the
// facade's listeners for the events stream to carry anything; registry
// may be nil.
func NewServer(facade *query.Facade, registry *core.Registry, hub *realtime.Hub) *Server {
	if hub == nil {
		hub = realtime.NewHub(0)
	}
	return &Server{
		facade:   facade,
		registry: registry,
		hub:      hub,
		search:   search.NewService(facade.Index),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same-origin is not enforced, matching the permissive CORS policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return CorsMiddleware(mux)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
