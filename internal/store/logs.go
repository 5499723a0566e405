package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/starlog/internal/models"
)

// CreateLog inserts a work log under one of the owner's projects,
// optionally associating tags.
func (s *Store) CreateLog(ctx context.Context, ownerID, projectID, content string, tagIDs []string) (*models.Log, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: log content must not be empty", ErrInvalidInput)
	}
	if err := s.verifyProjectOwned(ctx, projectID, ownerID); err != nil {
		return nil, err
	}
	if err := s.verifyTagsOwned(ctx, tagIDs, ownerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := models.Log{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		ProjectID: projectID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO logs (id, user_id, project_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.ID, l.UserID, l.ProjectID, l.Content, l.CreatedAt, l.UpdatedAt); err != nil {
		return nil, fmt.Errorf("creating log: %w", err)
	}
	if err := insertAssociations(ctx, tx, "log_tags", "log_id", l.ID, tagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &l, nil
}

// GetLog retrieves one of the owner's logs by id.
func (s *Store) GetLog(ctx context.Context, id, ownerID string) (*models.Log, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, project_id, content, created_at, updated_at
		FROM logs WHERE id = ? AND user_id = ?
	`, id, ownerID)

	var l models.Log
	if err := row.Scan(&l.ID, &l.UserID, &l.ProjectID, &l.Content, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning log: %w", err)
	}
	return &l, nil
}

// ListLogs returns the owner's logs with their tags, newest first,
// optionally filtered by project.
func (s *Store) ListLogs(ctx context.Context, ownerID, projectID string) ([]models.LogWithTags, error) {
	query := `
		SELECT id, user_id, project_id, content, created_at, updated_at
		FROM logs WHERE user_id = ?`
	args := []any{ownerID}
	if projectID != "" {
		query += " AND project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	defer rows.Close()

	var logs []models.Log
	for rows.Next() {
		var l models.Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProjectID, &l.Content, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating logs: %w", err)
	}

	ids := make([]string, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	tagsByLog, err := s.tagsFor(ctx, "log_tags", "log_id", ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.LogWithTags, len(logs))
	for i, l := range logs {
		result[i] = models.LogWithTags{Log: l, Tags: tagsByLog[l.ID]}
	}
	return result, nil
}

// UpdateLog replaces the content and tag set of one of the owner's logs.
func (s *Store) UpdateLog(ctx context.Context, id, ownerID, content string, tagIDs []string) (*models.Log, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: log content must not be empty", ErrInvalidInput)
	}
	if err := s.verifyTagsOwned(ctx, tagIDs, ownerID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE logs SET content = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, content, time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("updating log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM log_tags WHERE log_id = ?", id); err != nil {
		return nil, fmt.Errorf("clearing log tags: %w", err)
	}
	if err := insertAssociations(ctx, tx, "log_tags", "log_id", id, tagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return s.GetLog(ctx, id, ownerID)
}

// DeleteLog removes one of the owner's logs. The log's episode and tag
// associations cascade.
func (s *Store) DeleteLog(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM logs WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLogTags returns the tags associated with a log, by name.
func (s *Store) GetLogTags(ctx context.Context, logID string) ([]models.Tag, error) {
	byLog, err := s.tagsFor(ctx, "log_tags", "log_id", []string{logID})
	if err != nil {
		return nil, err
	}
	return byLog[logID], nil
}

func (s *Store) verifyProjectOwned(ctx context.Context, projectID, ownerID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM projects WHERE id = ?", projectID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking project owner: %w", err)
	}
	if owner != ownerID {
		return fmt.Errorf("project %s: %w", projectID, ErrOwnershipViolation)
	}
	return nil
}
