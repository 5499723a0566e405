package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/starlog/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find episodes similar to a query",
	Long: `Search embeds the query and returns your most similar episodes,
ordered by similarity.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		ctx := context.Background()

		index, err := getIndex(ctx)
		if err != nil {
			return err
		}

		searcher := service.NewSearcher(st, index, cfg.SearchTopK, stats)
		hits, err := searcher.Search(ctx, strings.Join(args, " "), owner)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if len(hits) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		for i, hit := range hits {
			fmt.Printf("%d. %s  %s\n", i+1,
				titleStyle.Render(hit.Episode.Title),
				scoreStyle.Render(fmt.Sprintf("%.3f", hit.Score)))
			fmt.Printf("   %s  %s\n",
				impactStyle.Render("impact: "+string(hit.Episode.ImpactLevel)),
				dimStyle.Render(hit.Episode.ID))
			if len(hit.Tags) > 0 {
				fmt.Printf("   %s\n", dimStyle.Render("tags: "+joinTagNames(hit.Tags)))
			}
			if verbose {
				fmt.Printf("   %s\n", hit.Episode.Situation)
			}
		}
		return nil
	},
}
