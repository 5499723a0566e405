// Package service implements the episode pipeline: rendering,
// vectorization, retrieval and lifecycle.
package service

import (
	"context"

	"github.com/raphaelgruber/starlog/internal/models"
	"github.com/raphaelgruber/starlog/internal/queue"
)

// EpisodeStore is the slice of the relational store the pipeline needs.
type EpisodeStore interface {
	// GetEpisode returns (nil, nil) when the episode does not exist.
	GetEpisode(ctx context.Context, id string) (*models.Episode, error)
	SetEpisodeDocsPath(ctx context.Context, id, docsPath string) error
	GetEpisodesByIDs(ctx context.Context, ids []string, ownerID string) ([]models.Episode, error)
	GetEpisodeTags(ctx context.Context, episodeIDs []string) (map[string][]models.Tag, error)
}

// BlobStore archives rendered documents.
type BlobStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// VectorIndex is the episode similarity index.
type VectorIndex interface {
	Upsert(ctx context.Context, meta models.EpisodeVectorMetadata, content string) error
	Delete(ctx context.Context, episodeID string) error
	Search(ctx context.Context, query, ownerID string, topK int) ([]models.EpisodeHit, error)
}

// Enqueuer is the producer side of the vectorize queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, event queue.VectorizeEvent) error
}

// DraftModel distills a work log into a STAR draft.
type DraftModel interface {
	DraftEpisode(ctx context.Context, logContent string) (*models.EpisodeDraft, error)
}
