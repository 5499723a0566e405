package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	projectCompanyFlag     string
	projectDescriptionFlag string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a project to a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}
		if projectCompanyFlag == "" {
			return fmt.Errorf("--company is required")
		}

		var description *string
		if cmd.Flags().Changed("description") {
			description = &projectDescriptionFlag
		}

		project, err := st.CreateProject(context.Background(), owner, projectCompanyFlag, args[0], description)
		if err != nil {
			return fmt.Errorf("add project: %w", err)
		}
		fmt.Printf("Added project %s (%s)\n", project.Name, project.ID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		projects, err := st.ListProjects(context.Background(), owner, projectCompanyFlag)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects yet.")
			return nil
		}
		for _, p := range projects {
			line := fmt.Sprintf("%s  %s", titleStyle.Render(p.Name), dimStyle.Render(p.ID))
			if p.Description != nil {
				line += "\n  " + *p.Description
			}
			fmt.Println(line)
		}
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Update a project's name and description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		var description *string
		if cmd.Flags().Changed("description") {
			description = &projectDescriptionFlag
		}

		project, err := st.UpdateProject(context.Background(), args[0], owner, args[1], description)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		fmt.Printf("Updated project %s\n", project.Name)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		if err := st.DeleteProject(context.Background(), args[0], owner); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		fmt.Println("Project deleted.")
		return nil
	},
}

func init() {
	projectAddCmd.Flags().StringVarP(&projectCompanyFlag, "company", "c", "", "company id")
	projectAddCmd.Flags().StringVarP(&projectDescriptionFlag, "description", "d", "", "project description")
	projectListCmd.Flags().StringVarP(&projectCompanyFlag, "company", "c", "", "filter by company id")
	projectUpdateCmd.Flags().StringVarP(&projectDescriptionFlag, "description", "d", "", "project description")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}
