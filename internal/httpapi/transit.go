package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inovafinance/isa-voice/internal/transit"
)

func (s *Server) handleNearbyStops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		respondError(w, http.StatusBadRequest, "invalid_coordinates", "lat and lon query parameters are required")
		return
	}

	radius := 500.0
	if v := q.Get("radius"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			radius = parsed
		}
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	stops, err := s.transit.NearbyStops(lat, lon, radius, limit)
	if err != nil {
		s.respondTransitError(w, err)
		return
	}
	s.metrics.TransitLookups.WithLabelValues("nearby_stops").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"stops": stops})
}

func (s *Server) handleStopRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.transit.RoutesForStop(chi.URLParam(r, "id"))
	if err != nil {
		s.respondTransitError(w, err)
		return
	}
	s.metrics.TransitLookups.WithLabelValues("stop_routes").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (s *Server) handleStopDepartures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	after := q.Get("after")
	if after == "" {
		after = time.Now().Format("15:04:05")
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	departures, err := s.transit.NextDepartures(chi.URLParam(r, "id"), after, limit)
	if err != nil {
		s.respondTransitError(w, err)
		return
	}
	s.metrics.TransitLookups.WithLabelValues("stop_departures").Inc()
	respondJSON(w, http.StatusOK, map[string]any{"departures": departures})
}

func (s *Server) respondTransitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transit.ErrNotLoaded):
		respondError(w, http.StatusServiceUnavailable, "transit_unavailable", "transit dataset is not configured")
	case errors.Is(err, transit.ErrStopNotFound):
		respondError(w, http.StatusNotFound, "stop_not_found", err.Error())
	default:
		s.logger.Error().Err(err).Msg("transit lookup failed")
		respondError(w, http.StatusInternalServerError, "transit_failed", "transit dataset could not be read")
	}
}
