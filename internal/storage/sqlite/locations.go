package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tmusial/convoy/internal/models"
)

// UpsertLocation records the user's latest position, replacing any
// previous row.
func (s *SQLiteStore) UpsertLocation(ctx context.Context, loc *models.UserLocation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_locations (user_id, lat, lng, captured_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET lat = excluded.lat, lng = excluded.lng, captured_at = excluded.captured_at`,
		loc.UserID, loc.Position.Lat, loc.Position.Lng, loc.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}

// GetLocation retrieves the last known position for a user.
func (s *SQLiteStore) GetLocation(ctx context.Context, userID string) (*models.UserLocation, error) {
	loc := &models.UserLocation{}
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, lat, lng, captured_at FROM user_locations WHERE user_id = ?",
		userID,
	).Scan(&loc.UserID, &loc.Position.Lat, &loc.Position.Lng, &loc.CapturedAt)
	if err == sql.ErrNoRows {
		return nil, nil // No position reported yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}

// ListLocations retrieves last known positions for the given users.
func (s *SQLiteStore) ListLocations(ctx context.Context, userIDs []string) (map[string]*models.UserLocation, error) {
	if len(userIDs) == 0 {
		return map[string]*models.UserLocation{}, nil
	}

	placeholders := strings.Repeat("?,", len(userIDs)-1) + "?"
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, lat, lng, captured_at FROM user_locations WHERE user_id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := make(map[string]*models.UserLocation)
	for rows.Next() {
		loc := &models.UserLocation{}
		if err := rows.Scan(&loc.UserID, &loc.Position.Lat, &loc.Position.Lng, &loc.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations[loc.UserID] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}
	return locations, nil
}
