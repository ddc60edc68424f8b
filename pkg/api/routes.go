package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/state", s.HandleState)
	mux.HandleFunc("POST /api/input", s.HandleInput)
	mux.HandleFunc("POST /api/submit", s.HandleSubmit)
	mux.HandleFunc("POST /api/select", s.HandleSelect)
	mux.HandleFunc("GET /api/recent", s.HandleRecent)
	mux.HandleFunc("POST /api/recent/select", s.HandleSelectRecent)
	mux.HandleFunc("DELETE /api/recent", s.HandleClearRecent)
	mux.HandleFunc("GET /api/catalogs", s.HandleCatalogs)
	mux.HandleFunc("GET /api/events/ws", s.HandleEvents)
}
