package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmusial/convoy/internal/cache"
	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/places"
	"github.com/tmusial/convoy/internal/storage"
)

// Freshness windows for cached reference lists.
const (
	destinationsMaxAge = 24 * time.Hour
	usersMaxAge        = time.Hour
)

// PlaceService searches and resolves places; satisfied by *places.Client.
type PlaceService interface {
	Search(ctx context.Context, query string) ([]places.Candidate, error)
	Details(ctx context.Context, placeID string) (*places.Candidate, error)
}

// DestinationService serves destination/category reference data through
// a freshness-windowed cache, and imports new destinations from the
// places API.
type DestinationService struct {
	store  storage.Store
	places PlaceService
	cache  *cache.Store
}

// NewDestinationService creates a DestinationService.
func NewDestinationService(store storage.Store, placeSvc PlaceService, cacheStore *cache.Store) *DestinationService {
	return &DestinationService{store: store, places: placeSvc, cache: cacheStore}
}

// defaultCategories pre-populate the category picker on a fresh
// database.
var defaultCategories = []*models.Category{
	{ID: "beach", Name: "Beach"},
	{ID: "city", Name: "City"},
	{ID: "lake", Name: "Lake"},
	{ID: "landmark", Name: "Landmark"},
	{ID: "mountain", Name: "Mountain"},
}

// EnsureDefaultCategories seeds the default category set when the
// database holds none. Existing categories are left alone.
func (s *DestinationService) EnsureDefaultCategories(ctx context.Context) error {
	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		if err := s.store.PutCategory(ctx, c); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.ID, err)
		}
	}
	if err := s.cache.Invalidate("categories"); err != nil {
		slog.Warn("category cache invalidation failed", "error", err)
	}
	slog.Info("seeded default categories", "count", len(defaultCategories))
	return nil
}

// Categories lists destination categories, served from cache within the
// 24-hour freshness window and re-fetched live otherwise.
func (s *DestinationService) Categories(ctx context.Context) ([]*models.Category, error) {
	var cached []*models.Category
	if err := s.cache.Get("categories", destinationsMaxAge, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) && !errors.Is(err, cache.ErrStale) {
		slog.Warn("category cache read failed", "error", err)
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put("categories", categories); err != nil {
		slog.Warn("category cache write failed", "error", err)
	}
	return categories, nil
}

// Destinations lists destinations for a category (empty means all),
// cached for 24 hours per category.
func (s *DestinationService) Destinations(ctx context.Context, categoryID string) ([]*models.Destination, error) {
	key := "destinations"
	if categoryID != "" {
		key = "destinations:" + categoryID
	}

	var cached []*models.Destination
	if err := s.cache.Get(key, destinationsMaxAge, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) && !errors.Is(err, cache.ErrStale) {
		slog.Warn("destination cache read failed", "error", err)
	}

	destinations, err := s.store.ListDestinations(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(key, destinations); err != nil {
		slog.Warn("destination cache write failed", "error", err)
	}
	return destinations, nil
}

// SearchPlaces proxies a free-text place search to the places API.
func (s *DestinationService) SearchPlaces(ctx context.Context, query string) ([]places.Candidate, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query required", ErrInvalidInput)
	}
	return s.places.Search(ctx, query)
}

// Import resolves a place by ID and stores it as a destination,
// invalidating the cached destination lists.
func (s *DestinationService) Import(ctx context.Context, placeID, categoryID string) (*models.Destination, error) {
	slog.Info("import destination", "place_id", placeID, "category_id", categoryID)

	candidate, err := s.places.Details(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("place lookup failed: %w", err)
	}
	dest := &models.Destination{
		ID:         candidate.PlaceID,
		Name:       candidate.Name,
		CategoryID: categoryID,
		Position:   candidate.Position,
		Address:    candidate.FormattedAddress,
		PhotoRef:   candidate.PhotoRef,
	}
	if dest.Name == "" {
		dest.Name = candidate.FormattedAddress
	}
	if err := s.store.PutDestination(ctx, dest); err != nil {
		return nil, err
	}

	s.invalidateDestinationCaches(categoryID)
	return dest, nil
}

func (s *DestinationService) invalidateDestinationCaches(categoryID string) {
	keys := []string{"destinations"}
	if categoryID != "" {
		keys = append(keys, "destinations:"+categoryID)
	}
	for _, key := range keys {
		if err := s.cache.Invalidate(key); err != nil {
			slog.Warn("destination cache invalidation failed", "key", key, "error", err)
		}
	}
}

// DirectoryService serves a user summary list for member pickers, cached
// with a 1-hour freshness window.
type DirectoryService struct {
	store storage.Store
	cache *cache.Store
}

// NewDirectoryService creates a DirectoryService.
func NewDirectoryService(store storage.Store, cacheStore *cache.Store) *DirectoryService {
	return &DirectoryService{store: store, cache: cacheStore}
}

// UserSummary is the directory projection of a user.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// GroupMembers lists the members of a group as summaries, cached per
// group for one hour.
func (s *DirectoryService) GroupMembers(ctx context.Context, groupID string) ([]UserSummary, error) {
	key := "users:" + groupID

	var cached []UserSummary
	if err := s.cache.Get(key, usersMaxAge, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) && !errors.Is(err, cache.ErrStale) {
		slog.Warn("user cache read failed", "error", err)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsersByIDs(ctx, group.MemberIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, len(users))
	for i, u := range users {
		summaries[i] = UserSummary{ID: u.ID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
	}
	if err := s.cache.Put(key, summaries); err != nil {
		slog.Warn("user cache write failed", "error", err)
	}
	return summaries, nil
}
