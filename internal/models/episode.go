package models

import "time"

// ImpactLevel grades how significant an episode's outcome was.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Valid reports whether the impact level is one of the known values.
func (l ImpactLevel) Valid() bool {
	switch l {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return true
	}
	return false
}

// Episode is a STAR-structured narrative distilled from a work log.
// DocsPath points at the archived rendered markdown; nil means the
// vectorize pipeline has not (yet) succeeded for this episode.
type Episode struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	LogID       string      `json:"logId"`
	Title       string      `json:"title"`
	ImpactLevel ImpactLevel `json:"impactLevel"`
	Situation   string      `json:"situation"`
	Task        string      `json:"task"`
	Action      string      `json:"action"`
	Result      string      `json:"result"`
	DocsPath    *string     `json:"docsPath,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// EpisodeInput carries the user-editable fields for create/update.
type EpisodeInput struct {
	LogID       string      `json:"logId"`
	Title       string      `json:"title"`
	ImpactLevel ImpactLevel `json:"impactLevel"`
	Situation   string      `json:"situation"`
	Task        string      `json:"task"`
	Action      string      `json:"action"`
	Result      string      `json:"result"`
	TagIDs      []string    `json:"tagIds,omitempty"`
}

// EpisodeDraft is an AI-generated STAR draft, returned for review
// before the user explicitly creates an episode from it.
type EpisodeDraft struct {
	Title       string      `json:"title"`
	ImpactLevel ImpactLevel `json:"impactLevel"`
	Situation   string      `json:"situation"`
	Task        string      `json:"task"`
	Action      string      `json:"action"`
	Result      string      `json:"result"`
}

// EpisodeVectorMetadata is attached to every vector index entry.
// The relational row stays authoritative for ownership; this metadata
// only reconciles hits back to rows and pre-filters at read time.
type EpisodeVectorMetadata struct {
	UserID      string `json:"userId"`
	EpisodeID   string `json:"episodeId"`
	LogID       string `json:"logId"`
	ImpactLevel string `json:"impactLevel"`
	Title       string `json:"title"`
}

// EpisodeHit is one similarity-search result from the vector index.
// Score is a similarity measure: higher means more similar.
type EpisodeHit struct {
	Metadata EpisodeVectorMetadata `json:"metadata"`
	Score    float64               `json:"score"`
}

// EpisodeWithTags bundles an episode with its tag list.
type EpisodeWithTags struct {
	Episode Episode `json:"episode"`
	Tags    []Tag   `json:"tags"`
}

// EpisodeSearchHit is a reconciled search result: the relational
// episode row, its tags, and the similarity score from the index.
type EpisodeSearchHit struct {
	Episode Episode `json:"episode"`
	Tags    []Tag   `json:"tags"`
	Score   float64 `json:"score"`
}
