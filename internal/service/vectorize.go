package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/starlog/internal/metrics"
	"github.com/raphaelgruber/starlog/internal/models"
	"github.com/raphaelgruber/starlog/internal/queue"
)

// Vectorizer consumes vectorize events: it renders the episode,
// archives the document, records the archival path and upserts the
// vector index entry. Processing is idempotent per episode id, so
// redeliveries converge on the same state.
type Vectorizer struct {
	episodes EpisodeStore
	blobs    BlobStore
	index    VectorIndex
	stats    *metrics.Collector
}

// NewVectorizer creates a Vectorizer. stats may be nil.
func NewVectorizer(episodes EpisodeStore, blobs BlobStore, index VectorIndex, stats *metrics.Collector) *Vectorizer {
	if stats == nil {
		stats = metrics.NewCollector()
	}
	return &Vectorizer{episodes: episodes, blobs: blobs, index: index, stats: stats}
}

// ProcessBatch handles one delivered batch. Each message is settled
// independently: a failing message is retried without affecting the
// rest of the batch.
func (v *Vectorizer) ProcessBatch(ctx context.Context, batch []*queue.Message) {
	for _, msg := range batch {
		skipped, err := v.processOne(ctx, msg.Event)
		if err != nil {
			slog.Error("vectorize failed, retrying",
				"episode_id", msg.Event.EpisodeID, "attempt", msg.Attempt, "error", err)
			v.stats.RecordOutcome(metrics.OutcomeRetried)
			msg.Retry()
			continue
		}
		if skipped {
			v.stats.RecordOutcome(metrics.OutcomeSkipped)
		} else {
			v.stats.RecordOutcome(metrics.OutcomeProcessed)
		}
		msg.Ack()
	}
}

// processOne runs the pipeline for a single event. skipped is true
// when the episode no longer exists; the message is acked without any
// writes so deletions do not wedge the queue.
func (v *Vectorizer) processOne(ctx context.Context, event queue.VectorizeEvent) (skipped bool, err error) {
	start := time.Now()
	episode, err := v.episodes.GetEpisode(ctx, event.EpisodeID)
	v.stats.RecordTiming(metrics.OpDBQuery, time.Since(start))
	if err != nil {
		return false, fmt.Errorf("fetching episode: %w", err)
	}
	if episode == nil {
		slog.Info("episode gone, skipping", "episode_id", event.EpisodeID)
		return true, nil
	}

	doc := Render(episode)
	path := DocPath(episode.UserID, episode.ID)

	start = time.Now()
	if err := v.blobs.Put(ctx, path, []byte(doc), contentTypeMarkdown); err != nil {
		return false, fmt.Errorf("archiving document: %w", err)
	}
	v.stats.RecordTiming(metrics.OpBlobPut, time.Since(start))

	if err := v.episodes.SetEpisodeDocsPath(ctx, episode.ID, path); err != nil {
		return false, fmt.Errorf("recording docs path: %w", err)
	}

	start = time.Now()
	err = v.index.Upsert(ctx, models.EpisodeVectorMetadata{
		UserID:      episode.UserID,
		EpisodeID:   episode.ID,
		LogID:       episode.LogID,
		ImpactLevel: string(episode.ImpactLevel),
		Title:       episode.Title,
	}, doc)
	if err != nil {
		return false, fmt.Errorf("upserting vector: %w", err)
	}
	v.stats.RecordTiming(metrics.OpVectorUpsert, time.Since(start))

	slog.Debug("episode vectorized", "episode_id", episode.ID, "docs_path", path)
	return false, nil
}
