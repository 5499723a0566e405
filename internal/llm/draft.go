package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/starlog/internal/models"
)

const draftSystemPrompt = `You are a career coach helping engineers document their work achievements.
Distill the given work log into a STAR-format episode.

Output format (one field per line, exactly these labels):
TITLE|a concise achievement title
IMPACT|low, medium or high
SITUATION|the context the work happened in
TASK|what needed to be done
ACTION|what the author actually did
RESULT|the concrete outcome, with numbers where available

Guidelines:
- Write in the same language as the work log
- Stay strictly within the facts of the log, do not invent outcomes
- Each field must be a single line`

// DraftEpisode asks the model to distill a work log into a STAR draft.
func (m *Model) DraftEpisode(ctx context.Context, logContent string) (*models.EpisodeDraft, error) {
	userPrompt := fmt.Sprintf(`Work log:
%s

STAR episode:`, logContent)

	response, err := m.GenerateWithSystem(ctx, draftSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("draft episode: %w", err)
	}

	draft, err := parseDraft(response)
	if err != nil {
		return nil, fmt.Errorf("draft episode: %w", err)
	}
	return draft, nil
}

// parseDraft parses the line-delimited LABEL|value model output.
func parseDraft(response string) (*models.EpisodeDraft, error) {
	var draft models.EpisodeDraft

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		label, value, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(label)) {
		case "TITLE":
			draft.Title = value
		case "IMPACT":
			draft.ImpactLevel = models.ImpactLevel(strings.ToLower(value))
		case "SITUATION":
			draft.Situation = value
		case "TASK":
			draft.Task = value
		case "ACTION":
			draft.Action = value
		case "RESULT":
			draft.Result = value
		}
	}

	if draft.Title == "" || draft.Situation == "" || draft.Task == "" ||
		draft.Action == "" || draft.Result == "" {
		return nil, fmt.Errorf("incomplete draft in model output")
	}
	if !draft.ImpactLevel.Valid() {
		// Models occasionally embellish the impact field; default rather than fail.
		draft.ImpactLevel = models.ImpactMedium
	}

	return &draft, nil
}
