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

// CreateCompany inserts a new company for the owner.
func (s *Store) CreateCompany(ctx context.Context, ownerID, name string) (*models.Company, error) {
	if err := validateName(name, 255); err != nil {
		return nil, fmt.Errorf("%w: company name must be 1-255 characters", ErrInvalidInput)
	}

	now := time.Now().UTC()
	c := models.Company{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating company: %w", err)
	}
	return &c, nil
}

// GetCompany retrieves one of the owner's companies by id.
func (s *Store) GetCompany(ctx context.Context, id, ownerID string) (*models.Company, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM companies WHERE id = ? AND user_id = ?
	`, id, ownerID)

	var c models.Company
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning company: %w", err)
	}
	return &c, nil
}

// ListCompanies returns all of the owner's companies, oldest first.
func (s *Store) ListCompanies(ctx context.Context, ownerID string) ([]models.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM companies WHERE user_id = ?
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating companies: %w", err)
	}
	return companies, nil
}

// UpdateCompany renames one of the owner's companies.
func (s *Store) UpdateCompany(ctx context.Context, id, ownerID, name string) (*models.Company, error) {
	if err := validateName(name, 255); err != nil {
		return nil, fmt.Errorf("%w: company name must be 1-255 characters", ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE companies SET name = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, name, time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("updating company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetCompany(ctx, id, ownerID)
}

// DeleteCompany removes one of the owner's companies.
func (s *Store) DeleteCompany(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM companies WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// validateName checks a trimmed-length bound shared by the name fields.
func validateName(name string, maxLen int) error {
	if len(name) == 0 || len(name) > maxLen {
		return ErrInvalidInput
	}
	return nil
}
