// Package server exposes the analyzer and the viability engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/geo"
	"github.com/sells-group/location-intel/internal/model"
)

const (
	minRadiusMeters = 100
	maxRadiusMeters = 2000
)

// LocationAnalyzer produces a location analysis for a point.
type LocationAnalyzer interface {
	Analyze(ctx context.Context, pt model.Point, radiusMeters int) (*model.LocationAnalysis, error)
}

// ConceptChecker runs a concept viability check at a point.
type ConceptChecker interface {
	CheckConcept(ctx context.Context, concept string, pt model.Point, radiusMeters int) (*model.ConceptCheckResult, error)
}

// Server routes HTTP requests to the two inbound operations.
type Server struct {
	analyzer      LocationAnalyzer
	engine        ConceptChecker
	defaultRadius int
}

// New creates a Server. defaultRadius is used when a request omits the
// radius.
func New(analyzer LocationAnalyzer, engine ConceptChecker, defaultRadius int) *Server {
	if defaultRadius <= 0 {
		defaultRadius = 500
	}
	return &Server{
		analyzer:      analyzer,
		engine:        engine,
		defaultRadius: defaultRadius,
	}
}

// Handler builds the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/v1/locations/analysis", s.handleAnalysis)
	r.Post("/v1/concepts/check", s.handleConceptCheck)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	pt, radius, err := s.pointParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), pt, radius)
	if err != nil {
		zap.L().Error("analysis request failed",
			zap.Float64("lat", pt.Lat),
			zap.Float64("lng", pt.Lng),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

type conceptCheckRequest struct {
	Concept      string  `json:"concept"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters int     `json:"radius_meters"`
}

func (s *Server) handleConceptCheck(w http.ResponseWriter, r *http.Request) {
	var req conceptCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Concept == "" {
		writeError(w, http.StatusBadRequest, "concept is required")
		return
	}

	pt := model.Point{Lat: req.Lat, Lng: req.Lng}
	if !geo.InCoverage(pt) {
		writeError(w, http.StatusBadRequest, "coordinates outside coverage area")
		return
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = s.defaultRadius
	}
	if radius < minRadiusMeters || radius > maxRadiusMeters {
		writeError(w, http.StatusBadRequest, "radius_meters must be between 100 and 2000")
		return
	}

	result, err := s.engine.CheckConcept(r.Context(), req.Concept, pt, radius)
	if err != nil {
		zap.L().Error("concept check failed",
			zap.String("concept", req.Concept),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "concept check failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// pointParams parses and validates lat/lng/radius query parameters.
func (s *Server) pointParams(r *http.Request) (model.Point, int, error) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return model.Point{}, 0, errBadParam("lat")
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return model.Point{}, 0, errBadParam("lng")
	}

	pt := model.Point{Lat: lat, Lng: lng}
	if !geo.InCoverage(pt) {
		return model.Point{}, 0, errOutOfCoverage
	}

	radius := s.defaultRadius
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.Atoi(raw)
		if err != nil {
			return model.Point{}, 0, errBadParam("radius")
		}
	}
	if radius < minRadiusMeters || radius > maxRadiusMeters {
		return model.Point{}, 0, errBadRadius
	}

	return pt, radius, nil
}

type paramError string

func (e paramError) Error() string { return string(e) }

func errBadParam(name string) error {
	return paramError(name + " must be a valid number")
}

var (
	errOutOfCoverage = paramError("coordinates outside coverage area")
	errBadRadius     = paramError("radius must be between 100 and 2000")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
