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

// CreateEpisode inserts a STAR episode distilled from one of the
// owner's logs. A log can back at most one episode.
func (s *Store) CreateEpisode(ctx context.Context, ownerID string, input models.EpisodeInput) (*models.Episode, error) {
	if err := validateEpisodeInput(input); err != nil {
		return nil, err
	}
	if err := s.verifyLogOwned(ctx, input.LogID, ownerID); err != nil {
		return nil, err
	}
	if err := s.verifyTagsOwned(ctx, input.TagIDs, ownerID); err != nil {
		return nil, err
	}

	var existing string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM episodes WHERE log_id = ?", input.LogID).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("log %s: %w", input.LogID, ErrLogAlreadyDistilled)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("checking existing episode: %w", err)
	}

	now := time.Now().UTC()
	e := models.Episode{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		LogID:       input.LogID,
		Title:       input.Title,
		ImpactLevel: input.ImpactLevel,
		Situation:   input.Situation,
		Task:        input.Task,
		Action:      input.Action,
		Result:      input.Result,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO episodes
			(id, user_id, log_id, title, impact_level, situation, task, action, result, docs_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
	`, e.ID, e.UserID, e.LogID, e.Title, string(e.ImpactLevel),
		e.Situation, e.Task, e.Action, e.Result, e.CreatedAt, e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("creating episode: %w", err)
	}
	if err := insertAssociations(ctx, tx, "episode_tags", "episode_id", e.ID, input.TagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &e, nil
}

// UpdateEpisode replaces the STAR fields and tag set of one of the
// owner's episodes. The backing log cannot be changed.
func (s *Store) UpdateEpisode(ctx context.Context, id, ownerID string, input models.EpisodeInput) (*models.Episode, error) {
	if err := validateEpisodeInput(input); err != nil {
		return nil, err
	}
	if err := s.verifyTagsOwned(ctx, input.TagIDs, ownerID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE episodes
		SET title = ?, impact_level = ?, situation = ?, task = ?, action = ?, result = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, input.Title, string(input.ImpactLevel), input.Situation, input.Task,
		input.Action, input.Result, time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("updating episode: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM episode_tags WHERE episode_id = ?", id); err != nil {
		return nil, fmt.Errorf("clearing episode tags: %w", err)
	}
	if err := insertAssociations(ctx, tx, "episode_tags", "episode_id", id, input.TagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return s.GetEpisodeForOwner(ctx, id, ownerID)
}

// GetEpisode retrieves an episode by id regardless of owner. Returns
// (nil, nil) when the episode does not exist; the vectorize consumer
// treats that as a skippable condition, not an error.
func (s *Store) GetEpisode(ctx context.Context, id string) (*models.Episode, error) {
	e, err := s.queryEpisode(ctx, "SELECT "+episodeColumns+" FROM episodes WHERE id = ?", id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// GetEpisodeForOwner retrieves one of the owner's episodes by id.
func (s *Store) GetEpisodeForOwner(ctx context.Context, id, ownerID string) (*models.Episode, error) {
	return s.queryEpisode(ctx,
		"SELECT "+episodeColumns+" FROM episodes WHERE id = ? AND user_id = ?", id, ownerID)
}

// GetEpisodeByLog retrieves the episode distilled from one of the
// owner's logs, if any.
func (s *Store) GetEpisodeByLog(ctx context.Context, logID, ownerID string) (*models.Episode, error) {
	return s.queryEpisode(ctx,
		"SELECT "+episodeColumns+" FROM episodes WHERE log_id = ? AND user_id = ?", logID, ownerID)
}

// ListEpisodes returns all of the owner's episodes with tags, newest first.
func (s *Store) ListEpisodes(ctx context.Context, ownerID string) ([]models.EpisodeWithTags, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+episodeColumns+" FROM episodes WHERE user_id = ? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying episodes: %w", err)
	}
	defer rows.Close()

	episodes, err := scanEpisodes(rows)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(episodes))
	for i, e := range episodes {
		ids[i] = e.ID
	}
	tagsByEpisode, err := s.GetEpisodeTags(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.EpisodeWithTags, len(episodes))
	for i, e := range episodes {
		result[i] = models.EpisodeWithTags{Episode: e, Tags: tagsByEpisode[e.ID]}
	}
	return result, nil
}

// GetEpisodesByIDs bulk-fetches episodes by id, restricted to the
// owner. Rows not owned by ownerID are silently absent from the result.
// Order of the result is unspecified.
func (s *Store) GetEpisodesByIDs(ctx context.Context, ids []string, ownerID string) ([]models.Episode, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT "+episodeColumns+" FROM episodes WHERE user_id = ? AND id IN (%s)",
		placeholders(len(ids)))
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying episodes: %w", err)
	}
	defer rows.Close()

	return scanEpisodes(rows)
}

// ListEpisodeIDs returns the ids of the owner's episodes, oldest
// first. With onlyMissingDocs it returns only episodes whose rendered
// document was never archived.
func (s *Store) ListEpisodeIDs(ctx context.Context, ownerID string, onlyMissingDocs bool) ([]string, error) {
	query := "SELECT id FROM episodes WHERE user_id = ?"
	if onlyMissingDocs {
		query += " AND docs_path IS NULL"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying episode ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning episode id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating episode ids: %w", err)
	}
	return ids, nil
}

// SetEpisodeDocsPath records the archival location of the rendered
// document. Called by the vectorize consumer after a successful blob
// put. updated_at is left untouched: this is pipeline bookkeeping, not
// a content edit, and redeliveries must converge on an identical row.
func (s *Store) SetEpisodeDocsPath(ctx context.Context, id, docsPath string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE episodes SET docs_path = ?
		WHERE id = ?
	`, docsPath, id)
	if err != nil {
		return fmt.Errorf("setting docs path: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEpisode removes one of the owner's episodes. Tag associations
// cascade.
func (s *Store) DeleteEpisode(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM episodes WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting episode: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEpisodeTags returns the tags of each given episode, by name.
func (s *Store) GetEpisodeTags(ctx context.Context, episodeIDs []string) (map[string][]models.Tag, error) {
	return s.tagsFor(ctx, "episode_tags", "episode_id", episodeIDs)
}

const episodeColumns = "id, user_id, log_id, title, impact_level, situation, task, action, result, docs_path, created_at, updated_at"

func (s *Store) queryEpisode(ctx context.Context, query string, args ...any) (*models.Episode, error) {
	row := s.db.QueryRowContext(ctx, query, args...)

	e, err := scanEpisode(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning episode: %w", err)
	}
	return e, nil
}

func scanEpisode(scan func(dest ...any) error) (*models.Episode, error) {
	var e models.Episode
	var impactLevel string
	var docsPath sql.NullString
	if err := scan(&e.ID, &e.UserID, &e.LogID, &e.Title, &impactLevel,
		&e.Situation, &e.Task, &e.Action, &e.Result, &docsPath,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.ImpactLevel = models.ImpactLevel(impactLevel)
	if docsPath.Valid {
		e.DocsPath = &docsPath.String
	}
	return &e, nil
}

func scanEpisodes(rows *sql.Rows) ([]models.Episode, error) {
	var episodes []models.Episode
	for rows.Next() {
		e, err := scanEpisode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning episode: %w", err)
		}
		episodes = append(episodes, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating episodes: %w", err)
	}
	return episodes, nil
}

func (s *Store) verifyLogOwned(ctx context.Context, logID, ownerID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM logs WHERE id = ?", logID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("log %s: %w", logID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking log owner: %w", err)
	}
	if owner != ownerID {
		return fmt.Errorf("log %s: %w", logID, ErrOwnershipViolation)
	}
	return nil
}

func validateEpisodeInput(input models.EpisodeInput) error {
	if !input.ImpactLevel.Valid() {
		return fmt.Errorf("%w: impact level must be low, medium or high", ErrInvalidInput)
	}
	for _, field := range []struct {
		name, value string
	}{
		{"title", input.Title},
		{"situation", input.Situation},
		{"task", input.Task},
		{"action", input.Action},
		{"result", input.Result},
	} {
		if field.value == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, field.name)
		}
	}
	return nil
}
