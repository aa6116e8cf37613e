package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmusial/convoy/internal/middleware"
)

func (h *Handler) handleJourneyState(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	state := h.Journeys.Coordinator(groupID, middleware.GetUserID(r.Context())).State()
	writeJSON(w, http.StatusOK, state)
}

type startJourneyRequest struct {
	FollowedMemberID string `json:"followed_member_id"`
}

func (h *Handler) handleJourneyStart(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	var req startJourneyRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	coord := h.Journeys.Coordinator(groupID, middleware.GetUserID(r.Context()))
	if err := coord.Start(r.Context(), req.FollowedMemberID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coord.State())
}

func (h *Handler) handleJourneyEnd(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	h.Journeys.End(groupID, middleware.GetUserID(r.Context()))
	writeJSON(w, http.StatusNoContent, nil)
}

type followMemberRequest struct {
	MemberID string `json:"member_id"`
}

func (h *Handler) handleJourneyFollow(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	var req followMemberRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	coord := h.Journeys.Coordinator(groupID, middleware.GetUserID(r.Context()))
	if err := coord.SetFollowedMember(r.Context(), req.MemberID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coord.State())
}
