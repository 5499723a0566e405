package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/starlog/internal/models"
)

var (
	episodeLogFlag       string
	episodeTitleFlag     string
	episodeImpactFlag    string
	episodeSituationFlag string
	episodeTaskFlag      string
	episodeActionFlag    string
	episodeResultFlag    string
	episodeTagsFlag      []string
)

var episodeCmd = &cobra.Command{
	Use:   "episode",
	Short: "Manage STAR episodes",
}

var episodeGenerateCmd = &cobra.Command{
	Use:   "generate <log-id>",
	Short: "Draft a STAR episode from a log with the configured model",
	Long: `Generate asks the language model for a STAR draft of the given log.
The draft is printed for review only; create an episode from it with
'starlog episode create'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		ctx := context.Background()

		svc, err := getEpisodeService(ctx, true)
		if err != nil {
			return err
		}

		draft, err := svc.Generate(ctx, args[0], owner)
		if err != nil {
			return fmt.Errorf("generate draft: %w", err)
		}

		fmt.Println(titleStyle.Render(draft.Title))
		fmt.Println(impactStyle.Render("impact: " + string(draft.ImpactLevel)))
		fmt.Println()
		printSection("Situation", draft.Situation)
		printSection("Task", draft.Task)
		printSection("Action", draft.Action)
		printSection("Result", draft.Result)
		return nil
	},
}

var episodeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an episode from a log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		ctx := context.Background()

		svc, err := getEpisodeService(ctx, false)
		if err != nil {
			return err
		}

		episode, err := svc.Create(ctx, owner, episodeInputFromFlags())
		if err != nil {
			return fmt.Errorf("create episode: %w", err)
		}
		if err := flushQueue(ctx); err != nil {
			return err
		}
		fmt.Printf("Created episode %s (%s)\n", episode.Title, episode.ID)
		return nil
	},
}

var episodeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		ctx := context.Background()

		svc, err := getEpisodeService(ctx, false)
		if err != nil {
			return err
		}

		episode, err := svc.Update(ctx, args[0], owner, episodeInputFromFlags())
		if err != nil {
			return fmt.Errorf("update episode: %w", err)
		}
		if err := flushQueue(ctx); err != nil {
			return err
		}
		fmt.Printf("Updated episode %s\n", episode.Title)
		return nil
	},
}

var episodeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List episodes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		episodes, err := st.ListEpisodes(context.Background(), owner)
		if err != nil {
			return fmt.Errorf("list episodes: %w", err)
		}
		if len(episodes) == 0 {
			fmt.Println("No episodes yet.")
			return nil
		}
		for _, e := range episodes {
			line := fmt.Sprintf("%s  %s  %s",
				titleStyle.Render(e.Episode.Title),
				impactStyle.Render(string(e.Episode.ImpactLevel)),
				dimStyle.Render(e.Episode.ID))
			if len(e.Tags) > 0 {
				line += "  " + dimStyle.Render("["+joinTagNames(e.Tags)+"]")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var episodeShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an episode by id, or by log with --log",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		ctx := context.Background()

		var episode *models.Episode
		switch {
		case episodeLogFlag != "":
			episode, err = st.GetEpisodeByLog(ctx, episodeLogFlag, owner)
		case len(args) == 1:
			episode, err = st.GetEpisodeForOwner(ctx, args[0], owner)
		default:
			return fmt.Errorf("pass an episode id or --log")
		}
		if err != nil {
			return fmt.Errorf("show episode: %w", err)
		}
		tagsByEpisode, err := st.GetEpisodeTags(ctx, []string{episode.ID})
		if err != nil {
			return fmt.Errorf("show episode: %w", err)
		}

		fmt.Println(titleStyle.Render(episode.Title))
		fmt.Println(impactStyle.Render("impact: " + string(episode.ImpactLevel)))
		if tags := tagsByEpisode[episode.ID]; len(tags) > 0 {
			fmt.Println(dimStyle.Render("tags: " + joinTagNames(tags)))
		}
		if episode.DocsPath != nil {
			fmt.Println(dimStyle.Render("archived: " + *episode.DocsPath))
		}
		fmt.Println()
		printSection("Situation", episode.Situation)
		printSection("Task", episode.Task)
		printSection("Action", episode.Action)
		printSection("Result", episode.Result)
		return nil
	},
}

var episodeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an episode and its derived artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		ctx := context.Background()

		svc, err := getEpisodeService(ctx, false)
		if err != nil {
			return err
		}

		if err := svc.Delete(ctx, args[0], owner); err != nil {
			return fmt.Errorf("delete episode: %w", err)
		}
		fmt.Println("Episode deleted.")
		return nil
	},
}

func episodeInputFromFlags() models.EpisodeInput {
	return models.EpisodeInput{
		LogID:       episodeLogFlag,
		Title:       episodeTitleFlag,
		ImpactLevel: models.ImpactLevel(episodeImpactFlag),
		Situation:   episodeSituationFlag,
		Task:        episodeTaskFlag,
		Action:      episodeActionFlag,
		Result:      episodeResultFlag,
		TagIDs:      episodeTagsFlag,
	}
}

func printSection(heading, body string) {
	fmt.Println(titleStyle.Render(heading))
	fmt.Println(body)
	fmt.Println()
}

func joinTagNames(tags []models.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func addEpisodeFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&episodeTitleFlag, "title", "", "episode title")
	cmd.Flags().StringVar(&episodeImpactFlag, "impact", "medium", "impact level (low, medium, high)")
	cmd.Flags().StringVar(&episodeSituationFlag, "situation", "", "situation")
	cmd.Flags().StringVar(&episodeTaskFlag, "task", "", "task")
	cmd.Flags().StringVar(&episodeActionFlag, "action", "", "action")
	cmd.Flags().StringVar(&episodeResultFlag, "result", "", "result")
	cmd.Flags().StringSliceVarP(&episodeTagsFlag, "tags", "t", nil, "tag ids")
}

func init() {
	episodeCreateCmd.Flags().StringVarP(&episodeLogFlag, "log", "l", "", "log id to distill")
	episodeShowCmd.Flags().StringVarP(&episodeLogFlag, "log", "l", "", "look up by source log id")
	addEpisodeFieldFlags(episodeCreateCmd)
	addEpisodeFieldFlags(episodeUpdateCmd)

	episodeCmd.AddCommand(episodeGenerateCmd)
	episodeCmd.AddCommand(episodeCreateCmd)
	episodeCmd.AddCommand(episodeUpdateCmd)
	episodeCmd.AddCommand(episodeListCmd)
	episodeCmd.AddCommand(episodeShowCmd)
	episodeCmd.AddCommand(episodeDeleteCmd)
}
