package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/starlog/internal/models"
)

// CreateTag inserts a new tag. Tag names are unique per owner.
func (s *Store) CreateTag(ctx context.Context, ownerID, name string) (*models.Tag, error) {
	if err := validateName(name, 50); err != nil {
		return nil, fmt.Errorf("%w: tag name must be 1-50 characters", ErrInvalidInput)
	}

	t := models.Tag{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.UserID, t.Name, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return &t, nil
}

// ListTags returns all of the owner's tags, by name.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM tags WHERE user_id = ?
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// DeleteTag removes one of the owner's tags. Associations cascade.
func (s *Store) DeleteTag(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM tags WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// verifyTagsOwned checks that every tag id exists and belongs to the owner.
func (s *Store) verifyTagsOwned(ctx context.Context, tagIDs []string, ownerID string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM tags WHERE user_id = ? AND id IN (%s)",
		placeholders(len(tagIDs)))
	args := make([]any, 0, len(tagIDs)+1)
	args = append(args, ownerID)
	for _, id := range tagIDs {
		args = append(args, id)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return fmt.Errorf("checking tag ownership: %w", err)
	}
	if count != len(tagIDs) {
		return fmt.Errorf("tags: %w", ErrOwnershipViolation)
	}
	return nil
}

// insertAssociations writes join rows for a log or episode tag table.
func insertAssociations(ctx context.Context, tx *sql.Tx, table, fkColumn, parentID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, %s, tag_id, created_at) VALUES (?, ?, ?, ?)",
		table, fkColumn))
	if err != nil {
		return fmt.Errorf("preparing association insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, tagID := range tagIDs {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), parentID, tagID, now); err != nil {
			return fmt.Errorf("inserting association: %w", err)
		}
	}
	return nil
}

// tagsFor loads the tag lists for a set of parent ids from a join table.
// The result maps parent id to its tags, by name.
func (s *Store) tagsFor(ctx context.Context, table, fkColumn string, parentIDs []string) (map[string][]models.Tag, error) {
	result := make(map[string][]models.Tag, len(parentIDs))
	if len(parentIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT j.%s, t.id, t.user_id, t.name, t.created_at
		FROM %s j
		JOIN tags t ON t.id = j.tag_id
		WHERE j.%s IN (%s)
		ORDER BY t.name
	`, fkColumn, table, fkColumn, placeholders(len(parentIDs)))

	args := make([]any, len(parentIDs))
	for i, id := range parentIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID string
		var t models.Tag
		if err := rows.Scan(&parentID, &t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		result[parentID] = append(result[parentID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return result, nil
}

func scanTags(rows *sql.Rows) ([]models.Tag, error) {
	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

// placeholders returns "?, ?, ..." with n placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
