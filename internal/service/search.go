package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/starlog/internal/metrics"
	"github.com/raphaelgruber/starlog/internal/models"
)

// Searcher retrieves the owner's episodes most similar to a query.
// The vector index proposes candidates; the relational store decides
// which of them the owner may actually see.
type Searcher struct {
	episodes EpisodeStore
	index    VectorIndex
	topK     int
	stats    *metrics.Collector
}

// NewSearcher creates a Searcher returning up to topK hits per query.
// stats may be nil.
func NewSearcher(episodes EpisodeStore, index VectorIndex, topK int, stats *metrics.Collector) *Searcher {
	if stats == nil {
		stats = metrics.NewCollector()
	}
	return &Searcher{episodes: episodes, index: index, topK: topK, stats: stats}
}

// Search returns reconciled hits in the index's similarity order.
// Candidates whose relational row is missing or owned by someone else
// are dropped; hits are never re-sorted by score.
func (s *Searcher) Search(ctx context.Context, query, ownerID string) ([]models.EpisodeSearchHit, error) {
	start := time.Now()
	hits, err := s.index.Search(ctx, query, ownerID, s.topK)
	s.stats.RecordTiming(metrics.OpSearch, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	// Candidate ids in index order, skipping malformed or duplicate
	// index entries.
	ids := make([]string, 0, len(hits))
	scores := make(map[string]float64, len(hits))
	for _, hit := range hits {
		id := hit.Metadata.EpisodeID
		if id == "" {
			slog.Warn("search hit without episode id, skipping", "user_id", ownerID)
			continue
		}
		if _, seen := scores[id]; seen {
			continue
		}
		ids = append(ids, id)
		scores[id] = hit.Score
	}
	if len(ids) == 0 {
		return nil, nil
	}

	start = time.Now()
	episodes, err := s.episodes.GetEpisodesByIDs(ctx, ids, ownerID)
	s.stats.RecordTiming(metrics.OpDBQuery, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetching episodes: %w", err)
	}

	byID := make(map[string]models.Episode, len(episodes))
	for _, e := range episodes {
		byID[e.ID] = e
	}

	present := make([]string, 0, len(episodes))
	for _, id := range ids {
		if _, ok := byID[id]; ok {
			present = append(present, id)
		}
	}
	if dropped := len(ids) - len(present); dropped > 0 {
		slog.Debug("dropped stale search candidates", "count", dropped, "user_id", ownerID)
	}
	if len(present) == 0 {
		return nil, nil
	}

	tagsByEpisode, err := s.episodes.GetEpisodeTags(ctx, present)
	if err != nil {
		return nil, fmt.Errorf("fetching episode tags: %w", err)
	}

	// Reassemble in index order
	results := make([]models.EpisodeSearchHit, len(present))
	for i, id := range present {
		results[i] = models.EpisodeSearchHit{
			Episode: byID[id],
			Tags:    tagsByEpisode[id],
			Score:   scores[id],
		}
	}
	return results, nil
}
