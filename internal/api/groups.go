package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmusial/convoy/internal/middleware"
	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/realtime"
	"github.com/tmusial/convoy/internal/service"
)

type createGroupRequest struct {
	Name          string           `json:"name"`
	Type          models.GroupType `json:"type"`
	DestinationID string           `json:"destination_id"`
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.Groups.Create(r.Context(), middleware.GetUserID(r.Context()),
		req.Name, req.Type, req.DestinationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	views, err := h.Groups.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	view, err := h.Groups.View(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type joinRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleJoinByCode(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.Groups.JoinByCode(r.Context(), req.Code, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	group, err := h.Groups.Approve(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	group, err := h.Groups.Reject(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	err := h.Groups.Leave(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type kickRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) handleKickMember(w http.ResponseWriter, r *http.Request) {
	var req kickRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.Groups.Kick(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

type setDestinationRequest struct {
	DestinationID string `json:"destination_id"`
}

func (h *Handler) handleSetGroupDestination(w http.ResponseWriter, r *http.Request) {
	var req setDestinationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.Groups.SetDestination(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()), req.DestinationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	err := h.Groups.Delete(r.Context(), chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleGroupDirectory(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}

	members, err := h.Directory.GroupMembers(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// handleGroupFeed streams group row and marker change events for one
// group over a WebSocket. Members only.
func (h *Handler) handleGroupFeed(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.requireMember(r, groupID); err != nil {
		writeError(w, err)
		return
	}
	h.Hub.ServeWS(w, r, realtime.GroupTopic(groupID), realtime.MarkerTopic(groupID))
}

func (h *Handler) requireMember(r *http.Request, groupID string) error {
	view, err := h.Groups.View(r.Context(), groupID, middleware.GetUserID(r.Context()))
	if err != nil {
		return err
	}
	if !view.IsMember {
		return service.ErrNotMember
	}
	return nil
}
