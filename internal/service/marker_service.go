package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/realtime"
	"github.com/tmusial/convoy/internal/storage"
)

// MarkerService owns shared map markers and per-user waypoint adoption.
// Marker edits and deletes are creator-only, enforced here rather than
// trusting clients to filter their own writes. All mutations go through
// storage first and are then published on the realtime feed; there is no
// optimistic local state.
type MarkerService struct {
	store storage.Store
	hub   *realtime.Hub
}

// NewMarkerService creates a MarkerService.
func NewMarkerService(store storage.Store, hub *realtime.Hub) *MarkerService {
	return &MarkerService{store: store, hub: hub}
}

// Add places a new marker in the group. Any member can add markers.
func (s *MarkerService) Add(ctx context.Context, groupID, creatorID string, pos models.LatLng, title, description string) (*models.Marker, error) {
	slog.Info("add marker", "group_id", groupID, "user_id", creatorID, "title", title)

	if title == "" {
		return nil, fmt.Errorf("%w: marker title required", ErrInvalidInput)
	}
	if err := s.requireMember(ctx, groupID, creatorID); err != nil {
		return nil, err
	}

	marker := &models.Marker{
		GroupID:     groupID,
		CreatorID:   creatorID,
		Position:    pos,
		Title:       title,
		Description: description,
	}
	if err := s.store.CreateMarker(ctx, marker); err != nil {
		slog.Error("add marker failed", "error", err)
		return nil, err
	}

	s.publish(realtime.EventInsert, marker)
	return marker, nil
}

// List retrieves the group's markers for a member.
func (s *MarkerService) List(ctx context.Context, groupID, viewerID string) ([]*models.Marker, error) {
	if err := s.requireMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	return s.store.ListMarkersByGroup(ctx, groupID)
}

// Update edits a marker's position, title, or description. Creator only;
// a non-creator edit is rejected before any write happens.
func (s *MarkerService) Update(ctx context.Context, markerID, editorID string, pos models.LatLng, title, description string) (*models.Marker, error) {
	marker, err := s.store.GetMarker(ctx, markerID)
	if err != nil {
		return nil, err
	}
	if marker.CreatorID != editorID {
		return nil, ErrNotMarkerCreator
	}
	if title == "" {
		return nil, fmt.Errorf("%w: marker title required", ErrInvalidInput)
	}

	marker.Position = pos
	marker.Title = title
	marker.Description = description
	if err := s.store.UpdateMarker(ctx, marker); err != nil {
		return nil, err
	}

	s.publish(realtime.EventUpdate, marker)
	return marker, nil
}

// Delete removes a marker. Creator only; a non-creator delete is
// rejected before any write happens.
func (s *MarkerService) Delete(ctx context.Context, markerID, editorID string) error {
	marker, err := s.store.GetMarker(ctx, markerID)
	if err != nil {
		return err
	}
	if marker.CreatorID != editorID {
		return ErrNotMarkerCreator
	}

	if err := s.store.DeleteMarker(ctx, markerID); err != nil {
		return err
	}

	s.hub.Publish(realtime.MarkerTopic(marker.GroupID), realtime.Event{
		Table: "markers",
		Type:  realtime.EventDelete,
		RowID: marker.ID,
	})
	slog.Info("marker deleted", "marker_id", markerID, "group_id", marker.GroupID)
	return nil
}

// AddWaypoint adopts the marker as a waypoint for the user.
func (s *MarkerService) AddWaypoint(ctx context.Context, markerID, userID string) (*models.Marker, error) {
	return s.setWaypoint(ctx, markerID, userID, true)
}

// RemoveWaypoint drops the marker from the user's waypoints.
func (s *MarkerService) RemoveWaypoint(ctx context.Context, markerID, userID string) (*models.Marker, error) {
	return s.setWaypoint(ctx, markerID, userID, false)
}

func (s *MarkerService) setWaypoint(ctx context.Context, markerID, userID string, add bool) (*models.Marker, error) {
	marker, err := s.store.GetMarker(ctx, markerID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, marker.GroupID, userID); err != nil {
		return nil, err
	}

	if add {
		if marker.IsWaypointFor(userID) {
			return marker, nil
		}
		marker.WaypointUserIDs = append(marker.WaypointUserIDs, userID)
	} else {
		if !marker.IsWaypointFor(userID) {
			return marker, nil
		}
		marker.WaypointUserIDs = removeID(marker.WaypointUserIDs, userID)
	}

	if err := s.store.UpdateMarker(ctx, marker); err != nil {
		return nil, err
	}
	s.publish(realtime.EventUpdate, marker)
	return marker, nil
}

// ClearWaypoints drops the user from every marker in the group they
// adopted. Each cleared marker gets its own update event.
func (s *MarkerService) ClearWaypoints(ctx context.Context, groupID, userID string) error {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	markers, err := s.store.ListMarkersByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	for _, marker := range markers {
		if !marker.IsWaypointFor(userID) {
			continue
		}
		marker.WaypointUserIDs = removeID(marker.WaypointUserIDs, userID)
		if err := s.store.UpdateMarker(ctx, marker); err != nil {
			return err
		}
		s.publish(realtime.EventUpdate, marker)
	}
	return nil
}

func (s *MarkerService) requireMember(ctx context.Context, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return ErrNotMember
	}
	return nil
}

func (s *MarkerService) publish(evType realtime.EventType, marker *models.Marker) {
	s.hub.Publish(realtime.MarkerTopic(marker.GroupID), realtime.Event{
		Table: "markers",
		Type:  evType,
		RowID: marker.ID,
		Row:   marker,
	})
}
