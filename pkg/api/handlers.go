package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/search"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/version"
)

const maxBodySize = 64 << 10

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
		IndexSize: s.facade.Index().Len(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

// HandleSearch is a stateless ranking call; it does not touch the query
// box state.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := search.ParseSearchParams(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid type filter", err.Error())
		return
	}

	results := s.search.Search(params)
	response := SearchResponse{
		Query:   results.Query,
		Results: results.Items,
		Count:   results.Total,
		Limit:   results.Limit,
		ByType:  results.ByType,
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.facade.Snapshot())
}

func (s *Server) HandleInput(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.facade.OnInputChange(req.Text)
	s.writeJSON(w, http.StatusOK, s.facade.Snapshot())
}

func (s *Server) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.facade.OnSubmit(req.Text)
	s.writeJSON(w, http.StatusOK, s.facade.Snapshot())
}

func (s *Server) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	item, status, err := s.lookup(req.Type, req.ID)
	if err != nil {
		s.writeError(w, status, http.StatusText(status), err.Error())
		return
	}

	s.facade.OnSelectResult(item)
	s.writeJSON(w, http.StatusOK, SelectResponse{
		Item:   item,
		Target: item.Target,
		State:  s.facade.Snapshot(),
	})
}

// lookup resolves a (type, id) pair against the current index.
func (s *Server) lookup(rawType, id string) (core.Item, int, error) {
	typ, err := core.ParseItemType(rawType)
	if err != nil {
		return core.Item{}, http.StatusBadRequest, err
	}
	if id == "" {
		return core.Item{}, http.StatusBadRequest, errors.New("id is required")
	}
	item, ok := s.facade.Index().Lookup(typ, id)
	if !ok {
		return core.Item{}, http.StatusNotFound, fmt.Errorf("no %s with id %q", typ, id)
	}
	return item, http.StatusOK, nil
}

func (s *Server) HandleRecent(w http.ResponseWriter, r *http.Request) {
	recent := s.facade.RecentSearches()
	s.writeJSON(w, http.StatusOK, RecentResponse{Recent: recent, Count: len(recent)})
}

func (s *Server) HandleSelectRecent(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	s.facade.OnSelectRecent(req.Text)
	s.writeJSON(w, http.StatusOK, s.facade.Snapshot())
}

func (s *Server) HandleClearRecent(w http.ResponseWriter, r *http.Request) {
	s.facade.OnClearRecent()
	s.writeJSON(w, http.StatusOK, RecentResponse{Recent: []string{}, Count: 0})
}

func (s *Server) HandleCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs := []CatalogInfo{}
	if s.registry != nil {
		for _, c := range s.registry.Catalogs() {
			catalogs = append(catalogs, CatalogInfo{
				Name:     c.Name(),
				Kind:     c.Kind(),
				ItemType: c.ItemType(),
			})
		}
	}

	idx := s.facade.Index()
	s.writeJSON(w, http.StatusOK, CatalogsResponse{
		Catalogs:  catalogs,
		Count:     len(catalogs),
		ByType:    idx.CountByType(),
		IndexSize: idx.Len(),
		BuiltAt:   idx.BuiltAt(),
	})
}

// decodeBody decodes a JSON request body into v, writing a 400 response
// and returning false when it cannot.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}
