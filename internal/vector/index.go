package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/surrealdb/surrealdb.go"

	"github.com/raphaelgruber/starlog/internal/models"
)

// Embedder produces the embedding for a document or query.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the episode vector index: one document per episode, keyed
// by episode id, carrying the metadata needed to reconcile hits back
// to relational rows.
type Index struct {
	client   *Client
	embedder Embedder
}

// NewIndex creates an Index on top of a connected client.
func NewIndex(client *Client, embedder Embedder) *Index {
	return &Index{client: client, embedder: embedder}
}

// docRow is the wire shape of an indexed episode document.
type docRow struct {
	EpisodeID   string  `json:"episode_id"`
	UserID      string  `json:"user_id"`
	LogID       string  `json:"log_id"`
	ImpactLevel string  `json:"impact_level"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
}

// Upsert embeds content and writes the episode document, replacing any
// previous document for the same episode id.
func (i *Index) Upsert(ctx context.Context, meta models.EpisodeVectorMetadata, content string) error {
	embedding, err := i.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("upsert episode doc: %w", err)
	}

	_, err = surrealdb.Query[any](ctx, i.client.db, `
		UPSERT type::record("episode_doc", $id) SET
			content = $content,
			embedding = $embedding,
			user_id = $user_id,
			log_id = $log_id,
			impact_level = $impact_level,
			title = $title,
			updated = time::now()
	`, map[string]any{
		"id":           meta.EpisodeID,
		"content":      content,
		"embedding":    embedding,
		"user_id":      meta.UserID,
		"log_id":       meta.LogID,
		"impact_level": meta.ImpactLevel,
		"title":        meta.Title,
	})
	if err != nil {
		return fmt.Errorf("upsert episode doc: %w", err)
	}

	slog.Debug("episode doc upserted", "episode_id", meta.EpisodeID, "user_id", meta.UserID)
	return nil
}

// Delete removes the document for an episode id. Deleting a
// non-existent document is not an error.
func (i *Index) Delete(ctx context.Context, episodeID string) error {
	_, err := surrealdb.Query[any](ctx, i.client.db, `
		DELETE type::record("episode_doc", $id)
	`, map[string]any{"id": episodeID})
	if err != nil {
		return fmt.Errorf("delete episode doc: %w", err)
	}
	return nil
}

// Search embeds the query and returns the owner's top-K most similar
// episode documents, best first. Ownership here is a pre-filter on
// index metadata; callers must still verify against the relational
// store.
func (i *Index) Search(ctx context.Context, query, ownerID string, topK int) ([]models.EpisodeHit, error) {
	embedding, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search episodes: %w", err)
	}

	// HNSW KNN with ef=40 for better recall
	sql := fmt.Sprintf(`
		SELECT meta::id(id) AS episode_id, user_id, log_id, impact_level, title,
		       vector::similarity::cosine(embedding, $emb) AS score
		FROM episode_doc
		WHERE user_id = $user AND embedding <|%d,40|> $emb
		ORDER BY score DESC
	`, topK)

	results, err := surrealdb.Query[[]docRow](ctx, i.client.db, sql, map[string]any{
		"emb":  embedding,
		"user": ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("search episodes: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	rows := (*results)[0].Result
	hits := make([]models.EpisodeHit, len(rows))
	for n, row := range rows {
		hits[n] = models.EpisodeHit{
			Metadata: models.EpisodeVectorMetadata{
				UserID:      row.UserID,
				EpisodeID:   row.EpisodeID,
				LogID:       row.LogID,
				ImpactLevel: row.ImpactLevel,
				Title:       row.Title,
			},
			Score: row.Score,
		}
	}
	return hits, nil
}
