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

// CreateProject inserts a new project under one of the owner's companies.
func (s *Store) CreateProject(ctx context.Context, ownerID, companyID, name string, description *string) (*models.Project, error) {
	if err := validateName(name, 255); err != nil {
		return nil, fmt.Errorf("%w: project name must be 1-255 characters", ErrInvalidInput)
	}
	if err := s.verifyCompanyOwned(ctx, companyID, ownerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := models.Project{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		CompanyID:   companyID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, company_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.CompanyID, p.Name, nullable(p.Description), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &p, nil
}

// GetProject retrieves one of the owner's projects by id.
func (s *Store) GetProject(ctx context.Context, id, ownerID string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, company_id, name, description, created_at, updated_at
		FROM projects WHERE id = ? AND user_id = ?
	`, id, ownerID)

	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return p, nil
}

// ListProjects returns the owner's projects, optionally filtered by company.
func (s *Store) ListProjects(ctx context.Context, ownerID, companyID string) ([]models.Project, error) {
	query := `
		SELECT id, user_id, company_id, name, description, created_at, updated_at
		FROM projects WHERE user_id = ?`
	args := []any{ownerID}
	if companyID != "" {
		query += " AND company_id = ?"
		args = append(args, companyID)
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// UpdateProject updates name and description of one of the owner's projects.
func (s *Store) UpdateProject(ctx context.Context, id, ownerID, name string, description *string) (*models.Project, error) {
	if err := validateName(name, 255); err != nil {
		return nil, fmt.Errorf("%w: project name must be 1-255 characters", ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, name, nullable(description), time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetProject(ctx, id, ownerID)
}

// DeleteProject removes one of the owner's projects.
func (s *Store) DeleteProject(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM projects WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) verifyCompanyOwned(ctx context.Context, companyID, ownerID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM companies WHERE id = ?", companyID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("company %s: %w", companyID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking company owner: %w", err)
	}
	if owner != ownerID {
		return fmt.Errorf("company %s: %w", companyID, ErrOwnershipViolation)
	}
	return nil
}

func scanProject(scan func(dest ...any) error) (*models.Project, error) {
	var p models.Project
	var description sql.NullString
	if err := scan(&p.ID, &p.UserID, &p.CompanyID, &p.Name, &description,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	return &p, nil
}

// nullable maps a *string to its sql representation.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
