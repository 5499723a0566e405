package service

import (
	"strings"
	"testing"

	"github.com/raphaelgruber/starlog/internal/models"
)

func sampleEpisode() *models.Episode {
	return &models.Episode{
		ID:          "ep-1",
		UserID:      "user-1",
		LogID:       "log-1",
		Title:       "Cut deploy time in half",
		ImpactLevel: models.ImpactHigh,
		Situation:   "Deploys took 40 minutes",
		Task:        "Speed up the pipeline",
		Action:      "Parallelized the test suite",
		Result:      "Deploys now take 18 minutes",
	}
}

func TestRender(t *testing.T) {
	got := Render(sampleEpisode())

	want := `# Cut deploy time in half

**影響度**: high

## Situation
Deploys took 40 minutes

## Task
Speed up the pipeline

## Action
Parallelized the test suite

## Result
Deploys now take 18 minutes`

	if got != want {
		t.Errorf("Render() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderDeterministic(t *testing.T) {
	e := sampleEpisode()
	first := Render(e)
	for i := 0; i < 5; i++ {
		if Render(e) != first {
			t.Fatal("Render() is not deterministic for identical input")
		}
	}
}

func TestRenderSectionOrder(t *testing.T) {
	got := Render(sampleEpisode())

	sections := []string{"# ", "**影響度**: ", "## Situation", "## Task", "## Action", "## Result"}
	pos := -1
	for _, s := range sections {
		idx := strings.Index(got, s)
		if idx < 0 {
			t.Fatalf("Render() missing section %q", s)
		}
		if idx < pos {
			t.Errorf("Section %q out of order", s)
		}
		pos = idx
	}
}

func TestRenderDoesNotMutate(t *testing.T) {
	e := sampleEpisode()
	before := *e
	Render(e)
	if *e != before {
		t.Error("Render() mutated its input")
	}
}

func TestDocPath(t *testing.T) {
	tests := []struct {
		ownerID   string
		episodeID string
		want      string
	}{
		{"user-1", "ep-1", "episodes/user-1/ep-1.md"},
		{"u", "e", "episodes/u/e.md"},
	}
	for _, tt := range tests {
		if got := DocPath(tt.ownerID, tt.episodeID); got != tt.want {
			t.Errorf("DocPath(%q, %q) = %q, want %q", tt.ownerID, tt.episodeID, got, tt.want)
		}
	}
}
