package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/tmusial/convoy/internal/models"
	"github.com/tmusial/convoy/internal/storage"
)

// joinCodeAlphabet omits easily-confused characters (0/O, 1/I).
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const joinCodeLength = 6

func generateJoinCode() (string, error) {
	code := make([]byte, joinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// CreateGroup persists a new group and its membership rows.
// Retries join code generation a few times on collision.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const maxCodeAttempts = 5
	for attempt := 0; ; attempt++ {
		if group.JoinCode == "" {
			code, err := generateJoinCode()
			if err != nil {
				return err
			}
			group.JoinCode = code
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO groups (id, name, join_code, type, destination_id, leader_id, version, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			group.ID, group.Name, group.JoinCode, string(group.Type),
			nullable(group.DestinationID), group.LeaderID, group.Version, group.CreatedAt,
		)
		if err == nil {
			break
		}
		// A unique constraint hit on join_code gets a fresh code.
		if attempt < maxCodeAttempts {
			var count int
			if qerr := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM groups WHERE join_code = ?", group.JoinCode,
			).Scan(&count); qerr == nil && count > 0 {
				group.JoinCode = ""
				continue
			}
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := insertGroupLists(ctx, tx, group); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its members and join requests.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return s.getGroupWhere(ctx, "id = ?", id)
}

// GetGroupByJoinCode retrieves a group by its join code.
func (s *SQLiteStore) GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error) {
	return s.getGroupWhere(ctx, "join_code = ?", code)
}

func (s *SQLiteStore) getGroupWhere(ctx context.Context, where string, arg any) (*models.Group, error) {
	group := &models.Group{}
	var destinationID sql.NullString
	var groupType string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, join_code, type, destination_id, leader_id, version, created_at
		 FROM groups WHERE `+where, arg,
	).Scan(&group.ID, &group.Name, &group.JoinCode, &groupType,
		&destinationID, &group.LeaderID, &group.Version, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Type = models.GroupType(groupType)
	if destinationID.Valid {
		group.DestinationID = destinationID.String
	}

	if err := s.loadGroupLists(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsForUser retrieves all groups the user is a member of.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id FROM group_members WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group ids: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// UpdateGroup rewrites the group row and its member/request lists.
// The group row update carries an optimistic version check: it only
// succeeds if the stored version still equals group.Version.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE groups SET name = ?, type = ?, destination_id = ?, leader_id = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		group.Name, string(group.Type), nullable(group.DestinationID),
		group.LeaderID, group.ID, group.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n == 0 {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM groups WHERE id = ?", group.ID).Scan(&count); err != nil {
			return fmt.Errorf("failed to update group: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrVersionConflict)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_requests WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear requests: %w", err)
	}
	if err := insertGroupLists(ctx, tx, group); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	group.Version++
	return nil
}

// DeleteGroup removes the group; membership, request, and marker rows
// follow via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func insertGroupLists(ctx context.Context, tx *sql.Tx, group *models.Group) error {
	for _, memberID := range group.MemberIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id) VALUES (?, ?)",
			group.ID, memberID); err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	for _, req := range group.Requests {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_requests (group_id, user_id, requested_at, status) VALUES (?, ?, ?, ?)",
			group.ID, req.UserID, req.RequestedAt, string(req.Status)); err != nil {
			return fmt.Errorf("failed to insert request: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadGroupLists(ctx context.Context, group *models.Group) error {
	// rowid preserves insert order, which the leader-promotion rule
	// depends on ("first remaining member").
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY rowid", group.ID)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		group.MemberIDs = append(group.MemberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate members: %w", err)
	}

	reqRows, err := s.db.QueryContext(ctx,
		`SELECT user_id, requested_at, status FROM group_requests
		 WHERE group_id = ? ORDER BY requested_at, rowid`, group.ID)
	if err != nil {
		return fmt.Errorf("failed to get requests: %w", err)
	}
	defer reqRows.Close()
	for reqRows.Next() {
		var req models.JoinRequest
		var status string
		if err := reqRows.Scan(&req.UserID, &req.RequestedAt, &status); err != nil {
			return fmt.Errorf("failed to scan request: %w", err)
		}
		req.Status = models.RequestStatus(status)
		group.Requests = append(group.Requests, req)
	}
	if err := reqRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate requests: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
