package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/storage"
)

// ListCategories retrieves all destination categories, sorted by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// ListDestinations retrieves destinations, optionally filtered by category.
func (s *SQLiteStore) ListDestinations(ctx context.Context, categoryID string) ([]*models.Destination, error) {
	query := `SELECT id, name, category_id, lat, lng, address, photo_ref FROM destinations`
	var args []any
	if categoryID != "" {
		query += " WHERE category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}
	defer rows.Close()

	var destinations []*models.Destination
	for rows.Next() {
		d, err := scanDestination(rows.Scan)
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate destinations: %w", err)
	}
	return destinations, nil
}

// GetDestination retrieves a destination by ID.
func (s *SQLiteStore) GetDestination(ctx context.Context, id string) (*models.Destination, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, category_id, lat, lng, address, photo_ref FROM destinations WHERE id = ?", id)
	d, err := scanDestination(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("destination %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// PutDestination inserts or replaces a destination row.
func (s *SQLiteStore) PutDestination(ctx context.Context, d *models.Destination) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO destinations (id, name, category_id, lat, lng, address, photo_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, category_id = excluded.category_id,
		   lat = excluded.lat, lng = excluded.lng, address = excluded.address, photo_ref = excluded.photo_ref`,
		d.ID, d.Name, nullable(d.CategoryID), d.Position.Lat, d.Position.Lng, d.Address, d.PhotoRef,
	)
	if err != nil {
		return fmt.Errorf("failed to put destination: %w", err)
	}
	return nil
}

// PutCategory inserts or replaces a category row.
func (s *SQLiteStore) PutCategory(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		c.ID, c.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to put category: %w", err)
	}
	return nil
}

func scanDestination(scan func(...any) error) (*models.Destination, error) {
	d := &models.Destination{}
	var categoryID sql.NullString
	err := scan(&d.ID, &d.Name, &categoryID, &d.Position.Lat, &d.Position.Lng, &d.Address, &d.PhotoRef)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan destination: %w", err)
	}
	if categoryID.Valid {
		d.CategoryID = categoryID.String
	}
	return d, nil
}
