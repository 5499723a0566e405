package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/starlog/internal/models"
	"github.com/raphaelgruber/starlog/internal/queue"
	"github.com/raphaelgruber/starlog/internal/store"
)

// Episodes handles the episode lifecycle: drafting, creation, update
// and deletion, plus the cleanup of derived artifacts.
type Episodes struct {
	store *store.Store
	queue Enqueuer
	blobs BlobStore
	index VectorIndex
	model DraftModel
}

// NewEpisodes creates the episode lifecycle service. model may be nil
// when AI drafting is not configured.
func NewEpisodes(st *store.Store, q Enqueuer, blobs BlobStore, index VectorIndex, model DraftModel) *Episodes {
	return &Episodes{store: st, queue: q, blobs: blobs, index: index, model: model}
}

// Generate fetches one of the owner's logs and asks the model for a
// STAR draft. The draft is returned for review, never persisted.
func (s *Episodes) Generate(ctx context.Context, logID, ownerID string) (*models.EpisodeDraft, error) {
	if s.model == nil {
		return nil, fmt.Errorf("no draft model configured")
	}

	log, err := s.store.GetLog(ctx, logID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetching log: %w", err)
	}

	draft, err := s.model.DraftEpisode(ctx, log.Content)
	if err != nil {
		return nil, fmt.Errorf("generating draft: %w", err)
	}
	return draft, nil
}

// Create persists a new episode and queues its vectorization.
func (s *Episodes) Create(ctx context.Context, ownerID string, input models.EpisodeInput) (*models.Episode, error) {
	episode, err := s.store.CreateEpisode(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, episode.ID)
	return episode, nil
}

// Update persists episode changes and queues re-vectorization so the
// archived document and index entry catch up.
func (s *Episodes) Update(ctx context.Context, id, ownerID string, input models.EpisodeInput) (*models.Episode, error) {
	episode, err := s.store.UpdateEpisode(ctx, id, ownerID, input)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, episode.ID)
	return episode, nil
}

// Delete removes the episode row, then cleans up the archived document
// and index entry best-effort. Cleanup failures are logged, never
// surfaced: the relational delete already succeeded and the orphaned
// artifacts are unreachable through the store.
func (s *Episodes) Delete(ctx context.Context, id, ownerID string) error {
	episode, err := s.store.GetEpisodeForOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteEpisode(ctx, id, ownerID); err != nil {
		return err
	}

	if episode.DocsPath != nil {
		if err := s.blobs.Delete(ctx, *episode.DocsPath); err != nil {
			slog.Warn("failed to delete archived document", "episode_id", id, "docs_path", *episode.DocsPath, "error", err)
		}
	}
	if err := s.index.Delete(ctx, id); err != nil {
		slog.Warn("failed to delete vector index entry", "episode_id", id, "error", err)
	}
	return nil
}

func (s *Episodes) enqueue(ctx context.Context, episodeID string) {
	if err := s.queue.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: episodeID}); err != nil {
		// The episode row is committed; the worker can be pointed at it
		// again via an update.
		slog.Warn("failed to enqueue vectorize event", "episode_id", episodeID, "error", err)
	}
}
