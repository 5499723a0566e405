package service

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/starlog/internal/models"
)

// contentTypeMarkdown is the content type of archived episode documents.
const contentTypeMarkdown = "text/markdown"

// Render produces the canonical markdown document for an episode.
// Output is byte-identical for identical input; the archived document,
// the indexed content and the embedding input all come from here.
func Render(e *models.Episode) string {
	lines := []string{
		"# " + e.Title,
		"",
		"**影響度**: " + string(e.ImpactLevel),
		"",
		"## Situation",
		e.Situation,
		"",
		"## Task",
		e.Task,
		"",
		"## Action",
		e.Action,
		"",
		"## Result",
		e.Result,
	}
	return strings.Join(lines, "\n")
}

// DocPath is the deterministic archival location for an episode's
// rendered document.
func DocPath(ownerID, episodeID string) string {
	return fmt.Sprintf("episodes/%s/%s.md", ownerID, episodeID)
}
