package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/storage"
)

// LocationService records device positions and joins them with group
// membership for the map screen's polling reads.
type LocationService struct {
	store storage.Store
}

// NewLocationService creates a LocationService.
func NewLocationService(store storage.Store) *LocationService {
	return &LocationService{store: store}
}

// Record upserts the user's last known position.
func (s *LocationService) Record(ctx context.Context, userID string, pos models.LatLng, capturedAt int64) error {
	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		return fmt.Errorf("%w: coordinate out of range", ErrInvalidInput)
	}
	if capturedAt == 0 {
		capturedAt = time.Now().Unix()
	}
	return s.store.UpsertLocation(ctx, &models.UserLocation{
		UserID:     userID,
		Position:   pos,
		CapturedAt: capturedAt,
	})
}

// GroupMembers joins the group's member list with each member's last
// known position. Recomputed on every call; members with no recorded
// position appear with a nil Position.
func (s *LocationService) GroupMembers(ctx context.Context, groupID, viewerID string) ([]models.MemberLocation, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(viewerID) {
		return nil, ErrNotMember
	}

	users, err := s.store.ListUsersByIDs(ctx, group.MemberIDs)
	if err != nil {
		return nil, err
	}
	locations, err := s.store.ListLocations(ctx, group.MemberIDs)
	if err != nil {
		return nil, err
	}

	usersByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	members := make([]models.MemberLocation, 0, len(group.MemberIDs))
	for _, memberID := range group.MemberIDs {
		m := models.MemberLocation{
			UserID:   memberID,
			IsLeader: memberID == group.LeaderID,
			IsSelf:   memberID == viewerID,
		}
		if u := usersByID[memberID]; u != nil {
			m.DisplayName = u.DisplayName
			m.AvatarURL = u.AvatarURL
		}
		if loc := locations[memberID]; loc != nil {
			pos := loc.Position
			m.Position = &pos
			m.CapturedAt = loc.CapturedAt
		}
		members = append(members, m)
	}
	return members, nil
}
