package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/service"
	"github.com/gorilla/mux"
)

type bookmarkRequest struct {
	InseeCode string `json:"inseeCode"`
}

type ratingRequest struct {
	InseeCode string `json:"inseeCode"`
	Rating    int    `json:"rating"`
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", service.ErrInvalidInput)
	}
	return nil
}

// GetUser handles GET /users/{externalId}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), mux.Vars(r)["externalId"])
	if err != nil {
		h.handleError(w, r, err, "failed to get user")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.User
	if err := decodeBody(r, &req); err != nil {
		h.handleError(w, r, err, "failed to create user")
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err, "failed to create user")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, user)
}

// UpdateUser handles PUT /users/{externalId}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UserUpdate
	if err := decodeBody(r, &req); err != nil {
		h.handleError(w, r, err, "failed to update user")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), mux.Vars(r)["externalId"], req)
	if err != nil {
		h.handleError(w, r, err, "failed to update user")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

// ListBookmarks handles GET /bookmarks/{externalId}
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.service.ListBookmarks(r.Context(), mux.Vars(r)["externalId"])
	if err != nil {
		h.handleError(w, r, err, "failed to list bookmarks")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, bookmarks)
}

// AddBookmark handles POST /bookmarks/{externalId}
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := decodeBody(r, &req); err != nil {
		h.handleError(w, r, err, "failed to add bookmark")
		return
	}
	if err := h.service.AddBookmark(r.Context(), mux.Vars(r)["externalId"], req.InseeCode); err != nil {
		h.handleError(w, r, err, "failed to add bookmark")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, messageResponse{Message: "Bookmark created successfully"})
}

// DeleteBookmark handles DELETE /bookmarks/{externalId}
func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := decodeBody(r, &req); err != nil {
		h.handleError(w, r, err, "failed to delete bookmark")
		return
	}
	if err := h.service.DeleteBookmark(r.Context(), mux.Vars(r)["externalId"], req.InseeCode); err != nil {
		h.handleError(w, r, err, "failed to delete bookmark")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, messageResponse{Message: "Bookmark deleted successfully"})
}

// CheckBookmark handles GET /bookmarks/{userId}/{insee}
func (h *Handler) CheckBookmark(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["userId"])
	if err != nil {
		h.handleError(w, r, fmt.Errorf("invalid user id %q: %w", vars["userId"], service.ErrInvalidInput), "failed to check bookmark")
		return
	}

	ok, err := h.service.HasBookmark(r.Context(), userID, vars["insee"])
	if err != nil {
		h.handleError(w, r, err, "failed to check bookmark")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ok)
}

// GetRatingSummary handles GET /ratings/{insee}
func (h *Handler) GetRatingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetRatingSummary(r.Context(), mux.Vars(r)["insee"])
	if err != nil {
		h.handleError(w, r, err, "failed to get ratings")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, summary)
}

// RateCity handles POST /ratings for the authenticated subject
func (h *Handler) RateCity(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeBody(r, &req); err != nil {
		h.handleError(w, r, err, "failed to save rating")
		return
	}

	subject := SubjectFromContext(r.Context())
	if err := h.service.RateCity(r.Context(), subject, req.InseeCode, req.Rating); err != nil {
		h.handleError(w, r, err, "failed to save rating")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, req)
}

// GetHeatmap handles GET /ratings/heatmap
func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.GetHeatmap(r.Context())
	if err != nil {
		h.handleError(w, r, err, "failed to get heatmap")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, points)
}
