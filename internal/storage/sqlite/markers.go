package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/storage"
)

// CreateMarker persists a new marker and its waypoint followers.
func (s *SQLiteStore) CreateMarker(ctx context.Context, marker *models.Marker) error {
	if marker.ID == "" {
		marker.ID = uuid.New().String()
	}
	if marker.CreatedAt == 0 {
		marker.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO markers (id, group_id, creator_id, lat, lng, title, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		marker.ID, marker.GroupID, marker.CreatorID,
		marker.Position.Lat, marker.Position.Lng,
		marker.Title, marker.Description, marker.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert marker: %w", err)
	}

	if err := insertWaypointFollowers(ctx, tx, marker); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetMarker retrieves a marker by ID, including its waypoint followers.
func (s *SQLiteStore) GetMarker(ctx context.Context, id string) (*models.Marker, error) {
	marker := &models.Marker{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, creator_id, lat, lng, title, description, created_at
		 FROM markers WHERE id = ?`, id,
	).Scan(&marker.ID, &marker.GroupID, &marker.CreatorID,
		&marker.Position.Lat, &marker.Position.Lng,
		&marker.Title, &marker.Description, &marker.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("marker %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get marker: %w", err)
	}

	if err := s.loadWaypointFollowers(ctx, marker); err != nil {
		return nil, err
	}
	return marker, nil
}

// ListMarkersByGroup retrieves all markers for a group, oldest first.
func (s *SQLiteStore) ListMarkersByGroup(ctx context.Context, groupID string) ([]*models.Marker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, creator_id, lat, lng, title, description, created_at
		 FROM markers WHERE group_id = ? ORDER BY created_at, rowid`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	defer rows.Close()

	var markers []*models.Marker
	for rows.Next() {
		marker := &models.Marker{}
		if err := rows.Scan(&marker.ID, &marker.GroupID, &marker.CreatorID,
			&marker.Position.Lat, &marker.Position.Lng,
			&marker.Title, &marker.Description, &marker.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		markers = append(markers, marker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate markers: %w", err)
	}

	for _, marker := range markers {
		if err := s.loadWaypointFollowers(ctx, marker); err != nil {
			return nil, err
		}
	}
	return markers, nil
}

// UpdateMarker rewrites a marker row and its waypoint followers.
func (s *SQLiteStore) UpdateMarker(ctx context.Context, marker *models.Marker) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE markers SET lat = ?, lng = ?, title = ?, description = ? WHERE id = ?`,
		marker.Position.Lat, marker.Position.Lng, marker.Title, marker.Description, marker.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update marker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update marker: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("marker %s: %w", marker.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM marker_waypoints WHERE marker_id = ?", marker.ID); err != nil {
		return fmt.Errorf("failed to clear waypoint followers: %w", err)
	}
	if err := insertWaypointFollowers(ctx, tx, marker); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteMarker removes a marker; waypoint rows follow via cascade.
func (s *SQLiteStore) DeleteMarker(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM markers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("marker %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func insertWaypointFollowers(ctx context.Context, tx *sql.Tx, marker *models.Marker) error {
	for _, userID := range marker.WaypointUserIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO marker_waypoints (marker_id, user_id) VALUES (?, ?)",
			marker.ID, userID); err != nil {
			return fmt.Errorf("failed to insert waypoint follower: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadWaypointFollowers(ctx context.Context, marker *models.Marker) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM marker_waypoints WHERE marker_id = ? ORDER BY rowid", marker.ID)
	if err != nil {
		return fmt.Errorf("failed to get waypoint followers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan waypoint follower: %w", err)
		}
		marker.WaypointUserIDs = append(marker.WaypointUserIDs, id)
	}
	return rows.Err()
}
