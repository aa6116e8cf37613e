package models

// GroupType determines how a group's journeys are targeted.
type GroupType string

const (
	// GroupTravelToDestination routes every member to a fixed destination.
	GroupTravelToDestination GroupType = "travel_to_destination"
	// GroupFollowMember routes every member to a chosen member's live position.
	GroupFollowMember GroupType = "follow_member"
)

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool {
	return t == GroupTravelToDestination || t == GroupFollowMember
}

// RequestStatus is the state of a join request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// JoinRequest is a pending request for group membership.
type JoinRequest struct {
	// UserID is the requesting user.
	UserID string `json:"user_id"`

	// RequestedAt is the Unix timestamp when the request was made.
	RequestedAt int64 `json:"requested_at"`

	// Status is pending until the leader accepts or rejects it.
	Status RequestStatus `json:"status"`
}

// Group represents a travel party.
//
// Invariant: LeaderID is always present in MemberIDs. When the leader
// leaves and members remain, one remaining member is promoted; when the
// last member leaves, the group row is deleted.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group.
	Name string `json:"name"`

	// JoinCode is the short uppercase code other users enter to request
	// membership. Unique across groups.
	JoinCode string `json:"join_code"`

	// Type selects destination-based or follow-the-member journeys.
	Type GroupType `json:"type"`

	// DestinationID references a Destination row. Empty for follow
	// groups, and for destination groups that have not picked one yet.
	DestinationID string `json:"destination_id,omitempty"`

	// LeaderID is the current leader. Must be a member.
	LeaderID string `json:"leader_id"`

	// MemberIDs lists the user IDs of all members, leader included.
	MemberIDs []string `json:"member_ids"`

	// Requests holds join requests, newest last.
	Requests []JoinRequest `json:"requests,omitempty"`

	// Version increments on every membership or request mutation and is
	// checked on write to detect concurrent updates.
	Version int64 `json:"version"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PendingRequest returns the pending join request for userID, or nil.
func (g *Group) PendingRequest(userID string) *JoinRequest {
	for i := range g.Requests {
		if g.Requests[i].UserID == userID && g.Requests[i].Status == RequestPending {
			return &g.Requests[i]
		}
	}
	return nil
}

// GroupView is a group decorated with the viewer's relationship to it.
// A non-member client renders a join affordance from these flags instead
// of member-only controls.
type GroupView struct {
	Group

	IsMember          bool `json:"is_member"`
	IsLeader          bool `json:"is_leader"`
	HasPendingRequest bool `json:"has_pending_request"`
}
