package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmusial/convoy/internal/middleware"
	"github.com/tmusial/convoy/internal/models"
)

type markerRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

func (h *Handler) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := h.Markers.List(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markers)
}

func (h *Handler) handleAddMarker(w http.ResponseWriter, r *http.Request) {
	var req markerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pos := models.LatLng{Lat: req.Latitude, Lng: req.Longitude}
	marker, err := h.Markers.Add(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()), pos, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, marker)
}

func (h *Handler) handleUpdateMarker(w http.ResponseWriter, r *http.Request) {
	var req markerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pos := models.LatLng{Lat: req.Latitude, Lng: req.Longitude}
	marker, err := h.Markers.Update(r.Context(), chi.URLParam(r, "markerID"),
		middleware.GetUserID(r.Context()), pos, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marker)
}

func (h *Handler) handleDeleteMarker(w http.ResponseWriter, r *http.Request) {
	err := h.Markers.Delete(r.Context(), chi.URLParam(r, "markerID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleAddWaypoint(w http.ResponseWriter, r *http.Request) {
	marker, err := h.Markers.AddWaypoint(r.Context(), chi.URLParam(r, "markerID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marker)
}

func (h *Handler) handleRemoveWaypoint(w http.ResponseWriter, r *http.Request) {
	marker, err := h.Markers.RemoveWaypoint(r.Context(), chi.URLParam(r, "markerID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marker)
}

func (h *Handler) handleClearWaypoints(w http.ResponseWriter, r *http.Request) {
	err := h.Markers.ClearWaypoints(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
