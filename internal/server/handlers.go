package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/chizu/internal/models"
	"github.com/hyperjump/chizu/internal/storage"
)

// handleSearch answers GET /api/search?search=term with a GeoJSON FeatureCollection.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	s.logger.Debug("search request", zap.String("search", term))
	fc, err := s.engine.BuildFeatureCollection(r.Context(), term)
	if err != nil {
		s.logger.Error("search failed", zap.String("search", term), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, fc)
}

func (s *Server) handleSearchYear(w http.ResponseWriter, r *http.Request) {
	year, err := models.ParseCensusYear(chi.URLParam(r, "year"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	query := &models.SearchQuery{Term: r.URL.Query().Get("search"), Year: year}
	s.logger.Debug("year search request", zap.String("search", query.Term), zap.Int("year", int(year)))
	results, err := s.engine.SearchForYear(r.Context(), query)
	if err != nil {
		if errors.Is(err, models.ErrUnknownYear) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("year search failed", zap.String("search", query.Term), zap.Int("year", int(year)), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.storage.CountRecords(r.Context())
	if err != nil {
		s.logger.Error("status: count records failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	people := make(map[string]int64, len(counts.People))
	for year, n := range counts.People {
		people[year.String()] = n
	}
	resp := map[string]interface{}{
		"buildings":          counts.Buildings,
		"geocoded_buildings": counts.Geocoded,
		"addresses":          counts.Addresses,
		"people":             people,
	}

	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"storage_driver": s.config.Storage.Driver,
			"building_match": s.config.Search.BuildingMatch,
			"confidence":     s.config.Search.Confidence,
			"result_limit":   s.config.Search.ResultLimit,
		}
		if s.config.Storage.Driver == storage.DriverSQLite {
			if n, err := storage.DatabaseDiskUsage(s.config.Storage.DatabasePath); err == nil {
				resp["disk_usage_bytes"] = n
			}
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
