package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmusial/convoy/internal/journey"
	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/realtime"
	"github.com/tmusial/convoy/internal/storage"
)

// GroupService owns group lifecycle: creation, join requests,
// membership, leadership, and deletion.
type GroupService struct {
	store    storage.Store
	hub      *realtime.Hub
	journeys *journey.Manager
}

// NewGroupService creates a GroupService.
func NewGroupService(store storage.Store, hub *realtime.Hub, journeys *journey.Manager) *GroupService {
	return &GroupService{store: store, hub: hub, journeys: journeys}
}

// Create makes a new group with the creator as leader and sole member.
// Destination-type groups may be created before a destination is picked;
// they just cannot start a journey until one is set.
func (s *GroupService) Create(ctx context.Context, creatorID, name string, groupType models.GroupType, destinationID string) (*models.Group, error) {
	slog.Info("create group", "user_id", creatorID, "name", name, "type", groupType)

	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}
	if !groupType.Valid() {
		return nil, fmt.Errorf("%w: unknown group type %q", ErrInvalidInput, groupType)
	}
	if destinationID != "" {
		if groupType != models.GroupTravelToDestination {
			return nil, fmt.Errorf("%w: follow groups have no destination", ErrInvalidInput)
		}
		if _, err := s.store.GetDestination(ctx, destinationID); err != nil {
			return nil, fmt.Errorf("destination: %w", err)
		}
	}

	group := &models.Group{
		Name:          name,
		Type:          groupType,
		DestinationID: destinationID,
		LeaderID:      creatorID,
		MemberIDs:     []string{creatorID},
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("create group failed", "error", err)
		return nil, err
	}

	s.publishGroup(realtime.EventInsert, group)
	slog.Info("group created", "group_id", group.ID, "join_code", group.JoinCode)
	return group, nil
}

// View retrieves a group decorated with the viewer's relationship flags.
func (s *GroupService) View(ctx context.Context, groupID, viewerID string) (*models.GroupView, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(group, viewerID), nil
}

// ListForUser retrieves all groups the user belongs to, as views.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*models.GroupView, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]*models.GroupView, len(groups))
	for i, g := range groups {
		views[i] = s.viewOf(g, userID)
	}
	return views, nil
}

// JoinByCode records a pending join request for the user on the group
// with the given code. Idempotent: an existing member or pending
// requester gets the current view back without a new request.
func (s *GroupService) JoinByCode(ctx context.Context, code, userID string) (*models.GroupView, error) {
	slog.Info("join by code", "user_id", userID)

	group, err := s.store.GetGroupByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if group.HasMember(userID) || group.PendingRequest(userID) != nil {
		return s.viewOf(group, userID), nil
	}

	group, err = s.mutate(ctx, group.ID, func(g *models.Group) error {
		if g.HasMember(userID) || g.PendingRequest(userID) != nil {
			return nil
		}
		g.Requests = append(g.Requests, models.JoinRequest{
			UserID:      userID,
			RequestedAt: time.Now().Unix(),
			Status:      models.RequestPending,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishGroup(realtime.EventUpdate, group)
	return s.viewOf(group, userID), nil
}

// Approve accepts a pending join request, adding the requester as a
// member. Leader only.
func (s *GroupService) Approve(ctx context.Context, groupID, leaderID, requesterID string) (*models.Group, error) {
	group, err := s.mutate(ctx, groupID, func(g *models.Group) error {
		if g.LeaderID != leaderID {
			return ErrNotLeader
		}
		req := g.PendingRequest(requesterID)
		if req == nil {
			return ErrNoPendingRequest
		}
		req.Status = models.RequestAccepted
		if !g.HasMember(requesterID) {
			g.MemberIDs = append(g.MemberIDs, requesterID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishGroup(realtime.EventUpdate, group)
	slog.Info("join request approved", "group_id", groupID, "user_id", requesterID)
	return group, nil
}

// Reject declines a pending join request. Leader only.
func (s *GroupService) Reject(ctx context.Context, groupID, leaderID, requesterID string) (*models.Group, error) {
	group, err := s.mutate(ctx, groupID, func(g *models.Group) error {
		if g.LeaderID != leaderID {
			return ErrNotLeader
		}
		req := g.PendingRequest(requesterID)
		if req == nil {
			return ErrNoPendingRequest
		}
		req.Status = models.RequestRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishGroup(realtime.EventUpdate, group)
	return group, nil
}

// Leave removes the user from the group. The last member leaving deletes
// the group; a leaving leader promotes the first remaining member.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	slog.Info("leave group", "group_id", groupID, "user_id", userID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return ErrNotMember
	}

	s.journeys.End(groupID, userID)

	if len(group.MemberIDs) == 1 {
		return s.deleteGroup(ctx, group)
	}

	group, err = s.mutate(ctx, groupID, func(g *models.Group) error {
		if !g.HasMember(userID) {
			return ErrNotMember
		}
		g.MemberIDs = removeID(g.MemberIDs, userID)
		if len(g.MemberIDs) == 0 {
			// Lost a race with another leaver; handled below.
			return nil
		}
		if g.LeaderID == userID {
			g.LeaderID = g.MemberIDs[0]
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(group.MemberIDs) == 0 {
		return s.deleteGroup(ctx, group)
	}
	s.publishGroup(realtime.EventUpdate, group)
	return nil
}

// Kick removes a member. Leader only; the leader cannot kick themselves
// (they leave instead).
func (s *GroupService) Kick(ctx context.Context, groupID, leaderID, targetID string) (*models.Group, error) {
	slog.Info("kick member", "group_id", groupID, "target", targetID)

	if leaderID == targetID {
		return nil, fmt.Errorf("%w: leader must leave, not kick themselves", ErrInvalidInput)
	}

	group, err := s.mutate(ctx, groupID, func(g *models.Group) error {
		if g.LeaderID != leaderID {
			return ErrNotLeader
		}
		if !g.HasMember(targetID) {
			return ErrNotMember
		}
		g.MemberIDs = removeID(g.MemberIDs, targetID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.journeys.End(groupID, targetID)
	s.publishGroup(realtime.EventUpdate, group)
	return group, nil
}

// SetDestination points a destination-type group at a destination.
// Leader only.
func (s *GroupService) SetDestination(ctx context.Context, groupID, leaderID, destinationID string) (*models.Group, error) {
	if _, err := s.store.GetDestination(ctx, destinationID); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	group, err := s.mutate(ctx, groupID, func(g *models.Group) error {
		if g.LeaderID != leaderID {
			return ErrNotLeader
		}
		if g.Type != models.GroupTravelToDestination {
			return ErrWrongGroupType
		}
		g.DestinationID = destinationID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishGroup(realtime.EventUpdate, group)
	return group, nil
}

// Delete removes the group entirely. Leader only.
func (s *GroupService) Delete(ctx context.Context, groupID, leaderID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.LeaderID != leaderID {
		return ErrNotLeader
	}
	return s.deleteGroup(ctx, group)
}

func (s *GroupService) deleteGroup(ctx context.Context, group *models.Group) error {
	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return err
	}
	s.journeys.EndGroup(group.ID)
	s.hub.Publish(realtime.GroupTopic(group.ID), realtime.Event{
		Table: "groups",
		Type:  realtime.EventDelete,
		RowID: group.ID,
	})
	slog.Info("group deleted", "group_id", group.ID)
	return nil
}

// mutate runs a read-modify-write cycle on the group with a single retry
// when the optimistic version check loses a concurrent write.
func (s *GroupService) mutate(ctx context.Context, groupID string, fn func(*models.Group) error) (*models.Group, error) {
	for attempt := 0; ; attempt++ {
		group, err := s.store.GetGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if err := fn(group); err != nil {
			return nil, err
		}

		err = s.store.UpdateGroup(ctx, group)
		if err == nil {
			return group, nil
		}
		if errors.Is(err, storage.ErrVersionConflict) && attempt == 0 {
			slog.Warn("group update conflict, retrying", "group_id", groupID)
			continue
		}
		return nil, err
	}
}

func (s *GroupService) viewOf(group *models.Group, viewerID string) *models.GroupView {
	return &models.GroupView{
		Group:             *group,
		IsMember:          group.HasMember(viewerID),
		IsLeader:          group.LeaderID == viewerID,
		HasPendingRequest: group.PendingRequest(viewerID) != nil,
	}
}

func (s *GroupService) publishGroup(evType realtime.EventType, group *models.Group) {
	s.hub.Publish(realtime.GroupTopic(group.ID), realtime.Event{
		Table: "groups",
		Type:  evType,
		RowID: group.ID,
		Row:   group,
	})
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
