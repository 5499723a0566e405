package llm

import (
	"testing"

	"github.com/raphaelgruber/starlog/internal/models"
)

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     *models.EpisodeDraft
		wantErr  bool
	}{
		{
			name: "well formed output",
			response: `TITLE|Cut deploy time in half
IMPACT|high
SITUATION|Deploys took 40 minutes and blocked the team
TASK|Speed up the CI pipeline
ACTION|Parallelized the test suite and cached dependencies
RESULT|Deploys now take 18 minutes`,
			want: &models.EpisodeDraft{
				Title:       "Cut deploy time in half",
				ImpactLevel: models.ImpactHigh,
				Situation:   "Deploys took 40 minutes and blocked the team",
				Task:        "Speed up the CI pipeline",
				Action:      "Parallelized the test suite and cached dependencies",
				Result:      "Deploys now take 18 minutes",
			},
		},
		{
			name: "surrounding chatter and blank lines",
			response: `Here is the episode:

TITLE|Migrated the billing service
IMPACT|Medium

SITUATION|Billing ran on a deprecated runtime
TASK|Move it to the new platform
ACTION|Rewrote the handlers and migrated data
RESULT|Zero-downtime cutover

Let me know if you want changes.`,
			want: &models.EpisodeDraft{
				Title:       "Migrated the billing service",
				ImpactLevel: models.ImpactMedium,
				Situation:   "Billing ran on a deprecated runtime",
				Task:        "Move it to the new platform",
				Action:      "Rewrote the handlers and migrated data",
				Result:      "Zero-downtime cutover",
			},
		},
		{
			name: "invalid impact defaults to medium",
			response: `TITLE|Fixed the flaky tests
IMPACT|very high
SITUATION|CI failed randomly
TASK|Stabilize the suite
ACTION|Removed timing assumptions
RESULT|Green builds for two weeks`,
			want: &models.EpisodeDraft{
				Title:       "Fixed the flaky tests",
				ImpactLevel: models.ImpactMedium,
				Situation:   "CI failed randomly",
				Task:        "Stabilize the suite",
				Action:      "Removed timing assumptions",
				Result:      "Green builds for two weeks",
			},
		},
		{
			name:     "missing fields",
			response: "TITLE|Something\nIMPACT|low",
			wantErr:  true,
		},
		{
			name:     "empty output",
			response: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDraft(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDraft() expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDraft() error: %v", err)
			}
			if *got != *tt.want {
				t.Errorf("parseDraft() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
