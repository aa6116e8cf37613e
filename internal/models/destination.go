package models

// Category groups destinations for browsing (e.g. "Beaches", "Hiking").
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Destination is a curated travel target a destination-type group can
// point at.
type Destination struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id,omitempty"`
	Position   LatLng `json:"position"`

	// Address is the human-readable formatted address, when known.
	Address string `json:"address,omitempty"`

	// PhotoRef is an opaque photo reference from the places API.
	PhotoRef string `json:"photo_ref,omitempty"`
}
