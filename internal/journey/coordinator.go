// Package journey coordinates navigation sessions: it owns the
// active/inactive journey state for one member of one group and
// recomputes every member's route on a fixed interval while active.
package journey

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tmusial/convoy/internal/directions"
	"github.com/tmusial/convoy/internal/metrics"
	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/storage"
)

// DefaultInterval is how often routes are recomputed while a journey is
// active.
const DefaultInterval = 10 * time.Second

// followedLocationMissing is surfaced on every member's route entry when
// the followed member has no recorded location.
const followedLocationMissing = "Cannot find location for member to follow"

var (
	// ErrNoDestination rejects starting a destination journey before the
	// group has picked a destination. The journey stays inactive and any
	// previously displayed routes are untouched.
	ErrNoDestination = errors.New("group has no destination set")

	// ErrNoFollowableMember rejects starting a follow journey when there
	// is no other member to follow.
	ErrNoFollowableMember = errors.New("no other members to follow")

	// ErrAlreadyActive rejects starting a journey twice.
	ErrAlreadyActive = errors.New("journey already active")

	// ErrNotActive rejects follow-target changes while inactive.
	ErrNotActive = errors.New("journey not active")

	// ErrNotFollowGroup rejects follow-target changes on destination groups.
	ErrNotFollowGroup = errors.New("group does not follow a member")

	// ErrUnknownMember rejects a follow target that is not a group member.
	ErrUnknownMember = errors.New("followed member is not in the group")
)

// RouteService computes routes; satisfied by *directions.Client.
type RouteService interface {
	Route(ctx context.Context, req directions.Request) (*directions.Route, error)
}

// State is a snapshot of a coordinator's journey state.
type State struct {
	Active           bool               `json:"active"`
	StartedAt        int64              `json:"started_at,omitempty"`
	FollowedMemberID string             `json:"followed_member_id,omitempty"`
	Routes           []models.RouteInfo `json:"routes"`
}

// Coordinator owns the journey state for one (group, user) pair.
//
// States: inactive -> active (Start) -> inactive (End). Follow groups
// carry a sub-state while active: no target selected vs following a
// member. Route recomputation runs on activation and on every interval
// tick; per-member failures are recorded on that member's entry and
// never abort the others.
type Coordinator struct {
	store    storage.Store
	routes   RouteService
	groupID  string
	userID   string
	interval time.Duration
	now      func() time.Time

	mu           sync.Mutex
	active       bool
	startedAt    time.Time
	followedID   string
	memberRoutes []models.RouteInfo
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewCoordinator creates an inactive coordinator.
func NewCoordinator(store storage.Store, routes RouteService, groupID, userID string, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		store:    store,
		routes:   routes,
		groupID:  groupID,
		userID:   userID,
		interval: interval,
		now:      time.Now,
	}
}

// Start transitions the journey to active. Precondition failures return
// a typed error and leave the state, including any previously computed
// routes, untouched. followedMemberID is optional for follow groups and
// ignored for destination groups.
func (c *Coordinator) Start(ctx context.Context, followedMemberID string) error {
	group, err := c.store.GetGroup(ctx, c.groupID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrAlreadyActive
	}

	switch group.Type {
	case models.GroupTravelToDestination:
		if group.DestinationID == "" {
			c.mu.Unlock()
			return ErrNoDestination
		}
		followedMemberID = ""
	case models.GroupFollowMember:
		if len(group.MemberIDs) <= 1 {
			c.mu.Unlock()
			return ErrNoFollowableMember
		}
		if followedMemberID != "" && !group.HasMember(followedMemberID) {
			c.mu.Unlock()
			return ErrUnknownMember
		}
	}

	c.active = true
	c.startedAt = c.now()
	c.followedID = followedMemberID

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	metrics.ActiveJourneys.Inc()
	slog.Info("journey started",
		"group_id", c.groupID, "user_id", c.userID, "followed", followedMemberID)

	c.Recompute(ctx)
	go c.run(runCtx, done)
	return nil
}

// End transitions to inactive, stops the tick loop, and clears computed
// routes and any displayed route error. A no-op when already inactive.
func (c *Coordinator) End() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.followedID = ""
	c.memberRoutes = nil
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	cancel()
	<-done
	metrics.ActiveJourneys.Dec()
	slog.Info("journey ended", "group_id", c.groupID, "user_id", c.userID)
}

// SetFollowedMember changes the follow target while active. The new
// target takes effect on the next recompute tick.
func (c *Coordinator) SetFollowedMember(ctx context.Context, memberID string) error {
	group, err := c.store.GetGroup(ctx, c.groupID)
	if err != nil {
		return err
	}
	if group.Type != models.GroupFollowMember {
		return ErrNotFollowGroup
	}
	if !group.HasMember(memberID) {
		return ErrUnknownMember
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return ErrNotActive
	}
	c.followedID = memberID
	return nil
}

// State returns a snapshot of the journey state and computed routes.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Active:           c.active,
		FollowedMemberID: c.followedID,
		Routes:           make([]models.RouteInfo, len(c.memberRoutes)),
	}
	if c.active {
		s.StartedAt = c.startedAt.Unix()
	}
	copy(s.Routes, c.memberRoutes)
	return s
}

func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Recompute(ctx)
		}
	}
}

// Recompute refreshes every member's route once. Called on activation
// and on every tick; also callable directly to force a refresh.
func (c *Coordinator) Recompute(ctx context.Context) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	followedID := c.followedID
	c.mu.Unlock()

	metrics.JourneyRecomputes.Inc()

	group, err := c.store.GetGroup(ctx, c.groupID)
	if err != nil {
		slog.Warn("journey recompute: group fetch failed",
			"group_id", c.groupID, "error", err)
		return
	}

	locations, err := c.store.ListLocations(ctx, group.MemberIDs)
	if err != nil {
		slog.Warn("journey recompute: location fetch failed",
			"group_id", c.groupID, "error", err)
		return
	}

	computed := c.computeRoutes(ctx, group, locations, followedID)

	c.mu.Lock()
	if c.active {
		c.memberRoutes = computed
	}
	c.mu.Unlock()
}

func (c *Coordinator) computeRoutes(ctx context.Context, group *models.Group, locations map[string]*models.UserLocation, followedID string) []models.RouteInfo {
	var (
		target      models.LatLng
		targetLabel string
		targetKnown bool
		targetErr   string
	)

	switch group.Type {
	case models.GroupTravelToDestination:
		dest, err := c.store.GetDestination(ctx, group.DestinationID)
		if err != nil {
			slog.Warn("journey recompute: destination fetch failed",
				"group_id", c.groupID, "error", err)
			targetErr = "Destination is unavailable"
		} else {
			target = dest.Position
			targetLabel = dest.Name
			targetKnown = true
		}
	case models.GroupFollowMember:
		if followedID == "" {
			// No target selected yet; the client shows a member picker.
			return nil
		}
		if loc := locations[followedID]; loc != nil {
			target = loc.Position
			targetKnown = true
		} else {
			targetErr = followedLocationMissing
		}
	}

	var routes []models.RouteInfo
	for _, memberID := range group.MemberIDs {
		if memberID == followedID {
			continue
		}
		loc := locations[memberID]
		if loc == nil {
			// Only members with a known location get a route entry.
			continue
		}

		entry := models.RouteInfo{MemberID: memberID}
		if !targetKnown {
			entry.Error = targetErr
			routes = append(routes, entry)
			metrics.RouteErrors.Inc()
			continue
		}

		req := directions.Request{Origin: loc.Position, Destination: target}
		if memberID == c.userID {
			req.Waypoints = c.ownWaypoints(ctx)
		}

		route, err := c.routes.Route(ctx, req)
		if err != nil {
			entry.Error = routeErrorMessage(err)
			routes = append(routes, entry)
			metrics.RouteErrors.Inc()
			continue
		}

		entry.Distance = route.Distance
		entry.Duration = route.Duration
		entry.Polyline = route.Polyline
		if memberID == c.userID {
			entry.OriginLabel = route.OriginLabel
			entry.DestinationLabel = route.DestinationLabel
			if entry.DestinationLabel == "" {
				entry.DestinationLabel = targetLabel
			}
		}
		routes = append(routes, entry)
	}
	return routes
}

// ownWaypoints returns the positions of markers the current user adopted
// as waypoints, in creation order. A marker fetch failure drops the via
// points for this tick only.
func (c *Coordinator) ownWaypoints(ctx context.Context) []models.LatLng {
	markers, err := c.store.ListMarkersByGroup(ctx, c.groupID)
	if err != nil {
		slog.Warn("journey recompute: marker fetch failed",
			"group_id", c.groupID, "error", err)
		return nil
	}

	var points []models.LatLng
	for _, m := range markers {
		if m.IsWaypointFor(c.userID) {
			points = append(points, m.Position)
		}
	}
	return points
}

func routeErrorMessage(err error) string {
	if errors.Is(err, directions.ErrNoRoute) {
		return "No route found"
	}
	return "Could not compute route"
}
