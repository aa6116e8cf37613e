// Package realtime delivers row-level change events to subscribed
// clients over WebSocket, replacing the polling re-fetch cycle with
// explicit per-row merges.
package realtime

import "fmt"

// EventType is the kind of row change.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is one row-level change notification. Row carries the full row
// for inserts and updates; deletes carry only RowID.
type Event struct {
	// Table names the logical table the change applies to
	// ("groups", "markers").
	Table string `json:"table"`

	// Type is insert, update, or delete.
	Type EventType `json:"type"`

	// RowID identifies the changed row.
	RowID string `json:"row_id"`

	// Row is the changed row itself; nil for deletes.
	Row any `json:"row,omitempty"`
}

// GroupTopic is the subscription topic for a group's row changes.
func GroupTopic(groupID string) string {
	return fmt.Sprintf("group:%s", groupID)
}

// MarkerTopic is the subscription topic for a group's marker changes.
func MarkerTopic(groupID string) string {
	return fmt.Sprintf("markers:%s", groupID)
}
