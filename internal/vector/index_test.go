//go:build integration

package vector

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/raphaelgruber/starlog/internal/models"
)

const testDimension = 8

var testClient *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testClient, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
		Dimension: testDimension,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testClient.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testClient.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// tableEmbedder maps known texts to fixed vectors so similarity
// ordering in tests is fully deterministic.
type tableEmbedder struct {
	vectors map[string][]float32
}

func (e *tableEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no test vector for %q", text)
}

func vec(values ...float32) []float32 {
	v := make([]float32, testDimension)
	copy(v, values)
	return v
}

func newTestIndex(vectors map[string][]float32) *Index {
	return NewIndex(testClient, &tableEmbedder{vectors: vectors})
}

func TestUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	defer testClient.WipeData(ctx)

	idx := newTestIndex(map[string][]float32{
		"doc close":   vec(1, 0, 0),
		"doc partial": vec(0.7, 0.7, 0),
		"doc far":     vec(0, 0, 1),
		"query":       vec(1, 0.1, 0),
	})

	docs := []struct {
		id, content string
	}{
		{"ep-close", "doc close"},
		{"ep-partial", "doc partial"},
		{"ep-far", "doc far"},
	}
	for _, d := range docs {
		err := idx.Upsert(ctx, models.EpisodeVectorMetadata{
			UserID:      "user-1",
			EpisodeID:   d.id,
			LogID:       "log-" + d.id,
			ImpactLevel: "high",
			Title:       d.content,
		}, d.content)
		if err != nil {
			t.Fatalf("Upsert(%s) failed: %v", d.id, err)
		}
	}

	hits, err := idx.Search(ctx, "query", "user-1", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("Expected 3 hits, got %d", len(hits))
	}
	if hits[0].Metadata.EpisodeID != "ep-close" {
		t.Errorf("Expected ep-close first, got %s", hits[0].Metadata.EpisodeID)
	}
	for n := 1; n < len(hits); n++ {
		if hits[n].Score > hits[n-1].Score {
			t.Errorf("Hits not in descending score order at %d: %v > %v", n, hits[n].Score, hits[n-1].Score)
		}
	}
	if hits[0].Metadata.LogID != "log-ep-close" || hits[0].Metadata.Title != "doc close" {
		t.Errorf("Metadata not round-tripped: %+v", hits[0].Metadata)
	}
}

func TestUpsertOverwritesByEpisodeID(t *testing.T) {
	ctx := context.Background()
	defer testClient.WipeData(ctx)

	idx := newTestIndex(map[string][]float32{
		"first version":  vec(1, 0, 0),
		"second version": vec(0, 1, 0),
		"query":          vec(0, 1, 0.1),
	})

	meta := models.EpisodeVectorMetadata{
		UserID: "user-1", EpisodeID: "ep-1", LogID: "log-1", ImpactLevel: "low", Title: "v1",
	}
	if err := idx.Upsert(ctx, meta, "first version"); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	meta.Title = "v2"
	if err := idx.Upsert(ctx, meta, "second version"); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	hits, err := idx.Search(ctx, "query", "user-1", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected exactly 1 document after overwrite, got %d", len(hits))
	}
	if hits[0].Metadata.Title != "v2" {
		t.Errorf("Expected updated title v2, got %s", hits[0].Metadata.Title)
	}
}

func TestSearchFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	defer testClient.WipeData(ctx)

	idx := newTestIndex(map[string][]float32{
		"mine":   vec(1, 0, 0),
		"theirs": vec(1, 0, 0),
		"query":  vec(1, 0, 0),
	})

	if err := idx.Upsert(ctx, models.EpisodeVectorMetadata{
		UserID: "user-1", EpisodeID: "ep-mine", LogID: "l1", ImpactLevel: "low", Title: "mine",
	}, "mine"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := idx.Upsert(ctx, models.EpisodeVectorMetadata{
		UserID: "user-2", EpisodeID: "ep-theirs", LogID: "l2", ImpactLevel: "low", Title: "theirs",
	}, "theirs"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	hits, err := idx.Search(ctx, "query", "user-1", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit for user-1, got %d", len(hits))
	}
	if hits[0].Metadata.EpisodeID != "ep-mine" {
		t.Errorf("Expected ep-mine, got %s", hits[0].Metadata.EpisodeID)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	defer testClient.WipeData(ctx)

	idx := newTestIndex(map[string][]float32{
		"content": vec(1, 0, 0),
		"query":   vec(1, 0, 0),
	})

	if err := idx.Upsert(ctx, models.EpisodeVectorMetadata{
		UserID: "user-1", EpisodeID: "ep-1", LogID: "l1", ImpactLevel: "medium", Title: "t",
	}, "content"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := idx.Delete(ctx, "ep-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	hits, err := idx.Search(ctx, "query", "user-1", 5)
	if err != nil {
		t.Fatalf("Search after delete failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no hits after delete, got %d", len(hits))
	}

	// Deleting again is not an error
	if err := idx.Delete(ctx, "ep-1"); err != nil {
		t.Errorf("Deleting non-existent doc should not error: %v", err)
	}
}
