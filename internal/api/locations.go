package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmusial/convoy/internal/middleware"
	"github.com/tmusial/convoy/internal/models"
)

type recordLocationRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	CapturedAt int64   `json:"captured_at"`
}

func (h *Handler) handleRecordLocation(w http.ResponseWriter, r *http.Request) {
	var req recordLocationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pos := models.LatLng{Lat: req.Latitude, Lng: req.Longitude}
	err := h.Locations.Record(r.Context(), middleware.GetUserID(r.Context()), pos, req.CapturedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleGroupLocations(w http.ResponseWriter, r *http.Request) {
	members, err := h.Locations.GroupMembers(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
