// Package models defines data structures for the Starlog career history store.
package models

import "time"

// Company is an employer the user worked for.
type Company struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project belongs to a company and groups work logs.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CompanyID   string    `json:"companyId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Log is a free-form record of work done on a project.
// A log backs at most one episode.
type Log struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProjectID string    `json:"projectId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LogWithTags bundles a log with its tag list.
type LogWithTags struct {
	Log  Log   `json:"log"`
	Tags []Tag `json:"tags"`
}

// Tag is a user-scoped label attachable to logs and episodes.
// Tag names are unique per user.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
