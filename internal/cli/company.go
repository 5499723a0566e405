package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage companies",
}

var companyAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		company, err := st.CreateCompany(context.Background(), owner, args[0])
		if err != nil {
			return fmt.Errorf("add company: %w", err)
		}
		fmt.Printf("Added company %s (%s)\n", company.Name, company.ID)
		return nil
	},
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		companies, err := st.ListCompanies(context.Background(), owner)
		if err != nil {
			return fmt.Errorf("list companies: %w", err)
		}
		if len(companies) == 0 {
			fmt.Println("No companies yet.")
			return nil
		}
		for _, c := range companies {
			fmt.Printf("%s  %s\n", titleStyle.Render(c.Name), dimStyle.Render(c.ID))
		}
		return nil
	},
}

var companyRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a company",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		company, err := st.UpdateCompany(context.Background(), args[0], owner, args[1])
		if err != nil {
			return fmt.Errorf("rename company: %w", err)
		}
		fmt.Printf("Renamed company to %s\n", company.Name)
		return nil
	},
}

var companyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := ownerID()
		if err != nil {
			return err
		}

		if err := st.DeleteCompany(context.Background(), args[0], owner); err != nil {
			return fmt.Errorf("delete company: %w", err)
		}
		fmt.Println("Company deleted.")
		return nil
	},
}

func init() {
	companyCmd.AddCommand(companyAddCmd)
	companyCmd.AddCommand(companyListCmd)
	companyCmd.AddCommand(companyRenameCmd)
	companyCmd.AddCommand(companyDeleteCmd)
}
