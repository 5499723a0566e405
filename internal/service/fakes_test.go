package service

import (
	"context"
	"errors"
	"sync"

	"github.com/raphaelgruber/starlog/internal/models"
	"github.com/raphaelgruber/starlog/internal/queue"
)

var errBoom = errors.New("boom")

// fakeEpisodeStore is an in-memory EpisodeStore with call counters.
type fakeEpisodeStore struct {
	mu       sync.Mutex
	episodes map[string]models.Episode
	tags     map[string][]models.Tag

	getCalls    int
	bulkCalls   int
	docsPaths   map[string]string
	failGet     bool
	failSetPath bool
	failBulkGet bool
	failGetTags bool
}

func newFakeEpisodeStore(episodes ...models.Episode) *fakeEpisodeStore {
	s := &fakeEpisodeStore{
		episodes:  make(map[string]models.Episode),
		tags:      make(map[string][]models.Tag),
		docsPaths: make(map[string]string),
	}
	for _, e := range episodes {
		s.episodes[e.ID] = e
	}
	return s
}

func (s *fakeEpisodeStore) GetEpisode(_ context.Context, id string) (*models.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.failGet {
		return nil, errBoom
	}
	e, ok := s.episodes[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *fakeEpisodeStore) SetEpisodeDocsPath(_ context.Context, id, docsPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSetPath {
		return errBoom
	}
	e, ok := s.episodes[id]
	if !ok {
		return errors.New("not found")
	}
	e.DocsPath = &docsPath
	s.episodes[id] = e
	s.docsPaths[id] = docsPath
	return nil
}

func (s *fakeEpisodeStore) GetEpisodesByIDs(_ context.Context, ids []string, ownerID string) ([]models.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkCalls++
	if s.failBulkGet {
		return nil, errBoom
	}
	var result []models.Episode
	for _, id := range ids {
		if e, ok := s.episodes[id]; ok && e.UserID == ownerID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *fakeEpisodeStore) GetEpisodeTags(_ context.Context, episodeIDs []string) (map[string][]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGetTags {
		return nil, errBoom
	}
	result := make(map[string][]models.Tag)
	for _, id := range episodeIDs {
		if tags, ok := s.tags[id]; ok {
			result[id] = tags
		}
	}
	return result, nil
}

// fakeBlobStore records Put/Delete calls in memory.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	puts    int
	deletes []string

	failPut    bool
	failDelete bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (b *fakeBlobStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failPut {
		return errBoom
	}
	b.puts++
	b.objects[key] = append([]byte(nil), body...)
	b.types[key] = contentType
	return nil
}

func (b *fakeBlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete {
		return errBoom
	}
	b.deletes = append(b.deletes, key)
	delete(b.objects, key)
	return nil
}

// fakeIndex records upserts and serves canned search hits.
type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]string
	metas   map[string]models.EpisodeVectorMetadata
	deletes []string
	hits    []models.EpisodeHit

	failUpsert bool
	failDelete bool
	failSearch bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]string), metas: make(map[string]models.EpisodeVectorMetadata)}
}

func (f *fakeIndex) Upsert(_ context.Context, meta models.EpisodeVectorMetadata, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return errBoom
	}
	f.docs[meta.EpisodeID] = content
	f.metas[meta.EpisodeID] = meta
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, episodeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errBoom
	}
	f.deletes = append(f.deletes, episodeID)
	delete(f.docs, episodeID)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _, _ string, _ int) ([]models.EpisodeHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSearch {
		return nil, errBoom
	}
	return f.hits, nil
}

// fakeEnqueuer records enqueued events.
type fakeEnqueuer struct {
	mu     sync.Mutex
	events []queue.VectorizeEvent
	fail   bool
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, event queue.VectorizeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBoom
	}
	f.events = append(f.events, event)
	return nil
}

// fakeDraftModel returns a fixed draft.
type fakeDraftModel struct {
	draft *models.EpisodeDraft
	fail  bool

	lastContent string
}

func (f *fakeDraftModel) DraftEpisode(_ context.Context, logContent string) (*models.EpisodeDraft, error) {
	if f.fail {
		return nil, errBoom
	}
	f.lastContent = logContent
	return f.draft, nil
}
