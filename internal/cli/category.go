package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage item categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new category",
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all categories",
	RunE:  runCategoryList,
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)

	categoryAddCmd.Flags().StringP("name", "n", "", "Category name")
	categoryAddCmd.Flags().StringP("description", "d", "", "Category description")
	_ = categoryAddCmd.MarkFlagRequired("name")
}

func runCategoryAdd(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")

	category, err := a.inventory.CreateCategory(cmd.Context(), name, description)
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}

	fmt.Printf("Category added: %s (id %d)\n", category.Name, category.ID)
	return nil
}

func runCategoryList(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	categories, err := a.store.ListCategories(cmd.Context())
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	if len(categories) == 0 {
		fmt.Println("No categories yet. Use 'stockwatch category add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tDESCRIPTION\n")
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	w.Flush()

	return nil
}
