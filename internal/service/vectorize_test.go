package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/starlog/internal/models"
	"github.com/raphaelgruber/starlog/internal/queue"
)

func testEpisode(id, ownerID string) models.Episode {
	return models.Episode{
		ID:          id,
		UserID:      ownerID,
		LogID:       "log-" + id,
		Title:       "Title " + id,
		ImpactLevel: models.ImpactMedium,
		Situation:   "s",
		Task:        "t",
		Action:      "a",
		Result:      "r",
	}
}

// receiveBatch drains the queue for test assertions.
func receiveBatch(t *testing.T, q *queue.Queue, max int) []*queue.Message {
	t.Helper()
	if q.Len() == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	batch, err := q.Receive(ctx, max)
	require.NoError(t, err)
	return batch
}

func TestProcessBatchHappyPath(t *testing.T) {
	ctx := context.Background()
	episodes := newFakeEpisodeStore(testEpisode("ep-1", "user-1"))
	blobs := newFakeBlobStore()
	index := newFakeIndex()
	q := queue.New(10, 3)
	v := NewVectorizer(episodes, blobs, index, nil)

	require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "ep-1"}))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)

	v.ProcessBatch(ctx, batch)

	// Document archived at the deterministic path with markdown type
	wantPath := "episodes/user-1/ep-1.md"
	assert.Contains(t, blobs.objects, wantPath)
	assert.Equal(t, "text/markdown", blobs.types[wantPath])

	// docsPath persisted
	assert.Equal(t, wantPath, episodes.docsPaths["ep-1"])

	// Index entry keyed by episode id with full metadata
	require.Contains(t, index.metas, "ep-1")
	meta := index.metas["ep-1"]
	assert.Equal(t, "user-1", meta.UserID)
	assert.Equal(t, "log-ep-1", meta.LogID)
	assert.Equal(t, "medium", meta.ImpactLevel)
	assert.Equal(t, "Title ep-1", meta.Title)

	// Indexed content equals the rendered document
	e := episodes.episodes["ep-1"]
	assert.Equal(t, Render(&e), index.docs["ep-1"])

	// Acked, not redelivered
	assert.Equal(t, 0, q.Len())
}

func TestProcessBatchMissingEpisodeAcksWithoutWrites(t *testing.T) {
	ctx := context.Background()
	episodes := newFakeEpisodeStore()
	blobs := newFakeBlobStore()
	index := newFakeIndex()
	q := queue.New(10, 3)
	v := NewVectorizer(episodes, blobs, index, nil)

	require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "gone"}))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)

	v.ProcessBatch(ctx, batch)

	assert.Equal(t, 0, blobs.puts)
	assert.Empty(t, index.docs)
	assert.Empty(t, episodes.docsPaths)
	assert.Equal(t, 0, q.Len(), "missing episode must be acked, not retried")
	assert.Empty(t, q.DeadLetter())
}

func TestProcessBatchIdempotent(t *testing.T) {
	ctx := context.Background()
	episodes := newFakeEpisodeStore(testEpisode("ep-1", "user-1"))
	blobs := newFakeBlobStore()
	index := newFakeIndex()
	q := queue.New(10, 3)
	v := NewVectorizer(episodes, blobs, index, nil)

	for i := 0; i < 2; i++ {
		require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "ep-1"}))
		batch, err := q.Receive(ctx, 10)
		require.NoError(t, err)
		v.ProcessBatch(ctx, batch)
	}

	// Same single document and index entry after redelivery
	assert.Len(t, blobs.objects, 1)
	assert.Len(t, index.docs, 1)
	e := episodes.episodes["ep-1"]
	assert.Equal(t, Render(&e), index.docs["ep-1"])
}

func TestProcessBatchPartialFailure(t *testing.T) {
	ctx := context.Background()
	episodes := newFakeEpisodeStore(testEpisode("ep-ok", "user-1"))
	blobs := newFakeBlobStore()
	index := newFakeIndex()
	q := queue.New(10, 3)
	v := NewVectorizer(episodes, blobs, index, nil)

	// ep-fetchfail errors at fetch (store failure), ep-ok succeeds.
	require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "ep-fetchfail"}))
	require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "ep-ok"}))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// Fail only the first message's fetch.
	episodes.failGet = true
	v.ProcessBatch(ctx, batch[:1])
	episodes.failGet = false
	v.ProcessBatch(ctx, batch[1:])

	// Failed message redelivered with incremented attempt
	redelivered := receiveBatch(t, q, 10)
	require.Len(t, redelivered, 1)
	assert.Equal(t, "ep-fetchfail", redelivered[0].Event.EpisodeID)
	assert.Equal(t, 2, redelivered[0].Attempt)

	// Healthy message fully processed
	assert.Contains(t, blobs.objects, "episodes/user-1/ep-ok.md")
	assert.Contains(t, index.docs, "ep-ok")
}

func TestProcessBatchBlobFailureRetriesBeforeDocsPath(t *testing.T) {
	ctx := context.Background()
	episodes := newFakeEpisodeStore(testEpisode("ep-1", "user-1"))
	blobs := newFakeBlobStore()
	blobs.failPut = true
	index := newFakeIndex()
	q := queue.New(10, 3)
	v := NewVectorizer(episodes, blobs, index, nil)

	require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "ep-1"}))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)

	v.ProcessBatch(ctx, batch)

	// No docsPath persisted and no index write when archiving failed
	assert.Empty(t, episodes.docsPaths)
	assert.Empty(t, index.docs)

	// Redelivered for another attempt
	redelivered := receiveBatch(t, q, 10)
	require.Len(t, redelivered, 1)
	assert.Equal(t, 2, redelivered[0].Attempt)
}

func TestProcessBatchRecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	episodes := newFakeEpisodeStore(testEpisode("ep-1", "user-1"))
	blobs := newFakeBlobStore()
	index := newFakeIndex()
	q := queue.New(10, 3)
	v := NewVectorizer(episodes, blobs, index, nil)

	require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "ep-1"}))
	require.NoError(t, q.Enqueue(ctx, queue.VectorizeEvent{EpisodeID: "gone"}))
	batch, err := q.Receive(ctx, 10)
	require.NoError(t, err)

	v.ProcessBatch(ctx, batch)

	snap := v.stats.Snapshot()
	assert.Equal(t, int64(1), snap.MessagesProcessed)
	assert.Equal(t, int64(1), snap.MessagesSkipped)
	assert.Equal(t, int64(0), snap.MessagesRetried)
}
