package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tmusial/convoy/internal/middleware"
	"github.com/tmusial/convoy/internal/service"
)

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Destinations.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleListDestinations(w http.ResponseWriter, r *http.Request) {
	destinations, err := h.Destinations.Destinations(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, destinations)
}

func (h *Handler) handleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, fmt.Errorf("%w: missing q parameter", service.ErrInvalidInput))
		return
	}

	candidates, err := h.Destinations.SearchPlaces(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

type importDestinationRequest struct {
	PlaceID    string `json:"place_id"`
	CategoryID string `json:"category_id"`
}

func (h *Handler) handleImportDestination(w http.ResponseWriter, r *http.Request) {
	var req importDestinationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("destination import requested",
		"place_id", req.PlaceID, "by", middleware.GetEmail(r.Context()))

	dest, err := h.Destinations.Import(r.Context(), req.PlaceID, req.CategoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dest)
}
