// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/tmusial/convoy/internal/models"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when a group write loses an optimistic
// concurrency check (the row's version changed since it was read).
var ErrVersionConflict = errors.New("group modified concurrently")

// Store defines the interface for Convoy storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	LocationStore
	MarkerStore
	ReferenceStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore covers user account persistence.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field must be set.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	// Returns (nil, nil) when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	// Returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUser updates profile fields (display name, avatar, phone).
	UpdateUser(ctx context.Context, user *models.User) error

	// ListUsersByIDs retrieves users for the given IDs. Missing IDs are
	// silently skipped.
	ListUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}

// GroupStore covers group lifecycle persistence.
type GroupStore interface {
	// CreateGroup persists a new group and its membership rows.
	// Generates ID, join code, and CreatedAt when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with members and join requests.
	// Returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// GetGroupByJoinCode retrieves a group by its join code.
	GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error)

	// ListGroupsForUser retrieves all groups the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup rewrites the group row, its members, and its requests.
	// The write only succeeds if the stored version still equals
	// group.Version; on success the stored version is group.Version+1.
	// Returns ErrVersionConflict otherwise.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group and its dependent rows.
	DeleteGroup(ctx context.Context, id string) error
}

// LocationStore covers last-known-position persistence.
type LocationStore interface {
	// UpsertLocation records the user's latest position, replacing any
	// previous row for that user.
	UpsertLocation(ctx context.Context, loc *models.UserLocation) error

	// GetLocation retrieves the last known position for a user.
	// Returns (nil, nil) when the user has never reported one.
	GetLocation(ctx context.Context, userID string) (*models.UserLocation, error)

	// ListLocations retrieves last known positions for the given users.
	// Users with no recorded position are absent from the result.
	ListLocations(ctx context.Context, userIDs []string) (map[string]*models.UserLocation, error)
}

// MarkerStore covers shared map marker persistence.
type MarkerStore interface {
	// CreateMarker persists a new marker. Generates ID and CreatedAt
	// when unset.
	CreateMarker(ctx context.Context, marker *models.Marker) error

	// GetMarker retrieves a marker by ID.
	// Returns ErrNotFound if the marker does not exist.
	GetMarker(ctx context.Context, id string) (*models.Marker, error)

	// ListMarkersByGroup retrieves all markers for a group, oldest first.
	ListMarkersByGroup(ctx context.Context, groupID string) ([]*models.Marker, error)

	// UpdateMarker rewrites a marker row and its waypoint followers.
	UpdateMarker(ctx context.Context, marker *models.Marker) error

	// DeleteMarker removes a marker and its waypoint followers.
	DeleteMarker(ctx context.Context, id string) error
}

// ReferenceStore covers curated destination/category reference data.
type ReferenceStore interface {
	// ListCategories retrieves all destination categories.
	ListCategories(ctx context.Context) ([]*models.Category, error)

	// ListDestinations retrieves destinations, optionally filtered by
	// category (empty categoryID means all).
	ListDestinations(ctx context.Context, categoryID string) ([]*models.Destination, error)

	// GetDestination retrieves a destination by ID.
	// Returns ErrNotFound if it does not exist.
	GetDestination(ctx context.Context, id string) (*models.Destination, error)

	// PutDestination inserts or replaces a destination row.
	PutDestination(ctx context.Context, d *models.Destination) error

	// PutCategory inserts or replaces a category row.
	PutCategory(ctx context.Context, c *models.Category) error
}
