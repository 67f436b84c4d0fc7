package api

import (
	"net/http"

	"github.com/alexivanou/communes-api/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// ListCities handles GET /cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCityFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err, "failed to list cities")
		return
	}

	cities, err := h.service.ListCities(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err, "failed to list cities")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, cities)
}

// GetCity handles GET /cities/{codeInsee}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.service.GetCity(r.Context(), mux.Vars(r)["codeInsee"])
	if err != nil {
		h.handleError(w, r, err, "failed to get city")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, city)
}

// FindNearestCity handles GET /cities/{lat}/{lng}
func (h *Handler) FindNearestCity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lat, err := requireFloat("lat", vars["lat"])
	if err != nil {
		h.handleError(w, r, err, "failed to find nearest city")
		return
	}
	lng, err := requireFloat("lng", vars["lng"])
	if err != nil {
		h.handleError(w, r, err, "failed to find nearest city")
		return
	}

	city, err := h.service.FindNearestCity(r.Context(), lat, lng)
	if err != nil {
		h.handleError(w, r, err, "failed to find nearest city")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, city)
}

// SearchCities handles GET /cities/search/{input}
func (h *Handler) SearchCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.SearchCities(r.Context(), mux.Vars(r)["input"])
	if err != nil {
		h.handleError(w, r, err, "failed to search cities")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, cities)
}

// RandomCity handles GET /cities/random
func (h *Handler) RandomCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.service.RandomCity(r.Context())
	if err != nil {
		h.handleError(w, r, err, "failed to pick a random city")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, city)
}

// GetFacets handles GET /cities/facets
func (h *Handler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.GetFacets(r.Context())
	if err != nil {
		h.handleError(w, r, err, "failed to get facets")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, facets)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
