package models

// RouteInfo is one member's computed navigation route.
// Recomputed on every journey tick, never stored.
type RouteInfo struct {
	// MemberID is the member this route was computed for.
	MemberID string `json:"member_id"`

	// Distance is the human-readable route distance (e.g. "4.2 km").
	Distance string `json:"distance,omitempty"`

	// Duration is the human-readable travel time (e.g. "12 mins").
	Duration string `json:"duration,omitempty"`

	// Polyline is the decoded route geometry, in travel order.
	Polyline []LatLng `json:"polyline,omitempty"`

	// OriginLabel and DestinationLabel carry display addresses for the
	// requesting user's own route; empty on other members' entries.
	OriginLabel      string `json:"origin_label,omitempty"`
	DestinationLabel string `json:"destination_label,omitempty"`

	// Error is a non-fatal, per-member failure message. A set Error
	// never prevents other members' routes from being computed.
	Error string `json:"error,omitempty"`
}
