// SPDX-License-Identifier: GPL-2.0-or-later

// Package api serves read only queries against cached maps.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"govbsp/model"
)

// Server is the HTTP query service.
type Server struct {
	router chi.Router
	cache  *model.Cache
	log    *slog.Logger
}

// NewServer creates and configures the HTTP server. Maps are looked up as
// maps/<name>.bsp through cache.
func NewServer(cache *model.Cache, log *slog.Logger) *Server {
	s := &Server{
		cache: cache,
		log:   log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/maps", s.handleList)

	r.Route("/maps/{name}", func(r chi.Router) {
		r.Get("/", s.handleMap)
		r.Get("/locate", s.handleLocate)
		r.Get("/leafs/{leaf}", s.handleLeaf)
		r.Get("/leafs/{leaf}/faces", s.handleLeafFaces)
		r.Get("/leafs/{leaf}/brushes", s.handleLeafBrushes)
		r.Get("/clusters/{cluster}/visible", s.handleVisible)
		r.Get("/clusters/{cluster}/audible", s.handleAudible)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hits, misses := s.cache.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache": map[string]any{
			"entries": s.cache.Len(),
			"hits":    hits,
			"misses":  misses,
		},
	})
}
