package models

// Marker is a user-placed map point shared with the group.
// Only the creator may edit or delete it. Other members reference it by
// adding themselves to WaypointUserIDs to route through it.
type Marker struct {
	// ID is the unique identifier for the marker (UUID format).
	ID string `json:"id"`

	// GroupID is the group the marker belongs to.
	GroupID string `json:"group_id"`

	// CreatorID is the user who placed the marker.
	CreatorID string `json:"creator_id"`

	// Position is the marker coordinate.
	Position LatLng `json:"position"`

	// Title is the short marker label.
	Title string `json:"title"`

	// Description is free-text detail for the marker.
	Description string `json:"description,omitempty"`

	// WaypointUserIDs lists members who adopted this marker as a
	// navigation waypoint.
	WaypointUserIDs []string `json:"waypoint_user_ids,omitempty"`

	// CreatedAt is the Unix timestamp when the marker was placed.
	CreatedAt int64 `json:"created_at"`
}

// IsWaypointFor reports whether userID adopted the marker as a waypoint.
func (m *Marker) IsWaypointFor(userID string) bool {
	for _, id := range m.WaypointUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
