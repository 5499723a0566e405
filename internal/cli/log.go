package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	logProjectFlag string
	logTagsFlag    []string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Manage work logs",
}

var logAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Record a work log under a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		if logProjectFlag == "" {
			return fmt.Errorf("--project is required")
		}

		log, err := st.CreateLog(context.Background(), owner, logProjectFlag, args[0], logTagsFlag)
		if err != nil {
			return fmt.Errorf("add log: %w", err)
		}
		fmt.Printf("Recorded log %s\n", log.ID)
		return nil
	},
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List work logs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		logs, err := st.ListLogs(context.Background(), owner, logProjectFlag)
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		if len(logs) == 0 {
			fmt.Println("No logs yet.")
			return nil
		}
		for _, l := range logs {
			header := dimStyle.Render(fmt.Sprintf("%s  %s", l.Log.CreatedAt.Local().Format("2006-01-02 15:04"), l.Log.ID))
			if len(l.Tags) > 0 {
				names := make([]string, len(l.Tags))
				for i, t := range l.Tags {
					names[i] = t.Name
				}
				header += "  " + impactStyle.Render("["+strings.Join(names, ", ")+"]")
			}
			fmt.Println(header)
			fmt.Println("  " + l.Log.Content)
		}
		return nil
	},
}

var logUpdateCmd = &cobra.Command{
	Use:   "update <id> <content>",
	Short: "Replace a log's content and tags",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		log, err := st.UpdateLog(context.Background(), args[0], owner, args[1], logTagsFlag)
		if err != nil {
			return fmt.Errorf("update log: %w", err)
		}
		fmt.Printf("Updated log %s\n", log.ID)
		return nil
	},
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a log and its episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		if err := st.DeleteLog(context.Background(), args[0], owner); err != nil {
			return fmt.Errorf("delete log: %w", err)
		}
		fmt.Println("Log deleted.")
		return nil
	},
}

func init() {
	logAddCmd.Flags().StringVarP(&logProjectFlag, "project", "p", "", "project id")
	logAddCmd.Flags().StringSliceVarP(&logTagsFlag, "tags", "t", nil, "tag ids")
	logListCmd.Flags().StringVarP(&logProjectFlag, "project", "p", "", "filter by project id")
	logUpdateCmd.Flags().StringSliceVarP(&logTagsFlag, "tags", "t", nil, "tag ids")

	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logUpdateCmd)
	logCmd.AddCommand(logDeleteCmd)
}
