package api

import (
	"github.com/go-chi/chi/v5"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/api/search", s.HandleSearch)
	r.Post("/api/search", s.HandleSearch)
	r.Get("/api/advsearch", s.HandleAdvancedSearch)
	r.Post("/api/advsearch", s.HandleAdvancedSearch)
	r.Get("/api/websearch", s.HandleWebSearch)
	r.Post("/api/websearch", s.HandleWebSearch)
	r.Get("/api/exchange_token", s.HandleExchangeToken)
	r.Post("/api/exchange_token", s.HandleExchangeToken)
	r.Get("/health", s.HandleHealth)
}
