package models

// LatLng is a geographic coordinate (WGS 84).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UserLocation is the last known device position for a user.
// Upserted on every location report; one row per user.
type UserLocation struct {
	// UserID is the reporting user.
	UserID string `json:"user_id"`

	// Position is the reported coordinate.
	Position LatLng `json:"position"`

	// CapturedAt is the Unix timestamp the device captured the fix.
	CapturedAt int64 `json:"captured_at"`
}

// MemberLocation joins a group member with their last known position.
// Computed at read time on every polling tick, never persisted.
type MemberLocation struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	Position    *LatLng `json:"position,omitempty"`
	CapturedAt  int64   `json:"captured_at,omitempty"`
	IsLeader    bool    `json:"is_leader"`
	IsSelf      bool    `json:"is_self"`
}
