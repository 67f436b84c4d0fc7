package api

import (
	"net/http"
)

// GetDescription handles GET /descriptions?insee=&lang=
func (h *Handler) GetDescription(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	desc, err := h.service.GetDescription(r.Context(), q.Get("insee"), q.Get("lang"))
	if err != nil {
		h.handleError(w, r, err, "unable to generate description")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, desc)
}

// DeleteDescription handles DELETE /descriptions?insee=&lang=
func (h *Handler) DeleteDescription(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.service.DeleteDescription(r.Context(), q.Get("insee"), q.Get("lang")); err != nil {
		h.handleError(w, r, err, "failed to delete description")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetImages handles GET /descriptions/images?insee=
func (h *Handler) GetImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.GetImages(r.Context(), r.URL.Query().Get("insee"))
	if err != nil {
		h.handleError(w, r, err, "unable to fetch images")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, images)
}

// GetWeather handles GET /descriptions/weather?lat=&lng=
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := requireFloat("lat", q.Get("lat"))
	if err != nil {
		h.handleError(w, r, err, "unable to fetch weather")
		return
	}
	lng, err := requireFloat("lng", q.Get("lng"))
	if err != nil {
		h.handleError(w, r, err, "unable to fetch weather")
		return
	}

	weather, err := h.service.GetWeather(r.Context(), lat, lng)
	if err != nil {
		h.handleError(w, r, err, "unable to fetch weather")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, weather)
}
