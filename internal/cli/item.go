package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage inventory items",
}

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new item",
	RunE:  runItemAdd,
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all items",
	RunE:  runItemList,
}

var itemSetQuantityCmd = &cobra.Command{
	Use:   "set-quantity",
	Short: "Set an item's stock level (manual stocktake)",
	RunE:  runItemSetQuantity,
}

var itemImportCmd = &cobra.Command{
	Use:   "import <catalog.yaml>",
	Short: "Import categories and items from a YAML catalog file",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemImport,
}

var itemHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List an item's buy/sell transactions",
	RunE:  runItemHistory,
}

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemSetQuantityCmd)
	itemCmd.AddCommand(itemImportCmd)
	itemCmd.AddCommand(itemHistoryCmd)

	itemHistoryCmd.Flags().Int64("id", 0, "Item id")
	_ = itemHistoryCmd.MarkFlagRequired("id")

	itemAddCmd.Flags().StringP("name", "n", "", "Item name")
	itemAddCmd.Flags().StringP("description", "d", "", "Item description")
	itemAddCmd.Flags().StringP("model-number", "m", "", "Model number (generated when empty)")
	itemAddCmd.Flags().Int64("category", 0, "Category id")
	itemAddCmd.Flags().IntP("quantity", "q", 0, "Initial stock quantity")
	_ = itemAddCmd.MarkFlagRequired("name")

	itemSetQuantityCmd.Flags().Int64("id", 0, "Item id")
	itemSetQuantityCmd.Flags().IntP("quantity", "q", 0, "New stock quantity")
	_ = itemSetQuantityCmd.MarkFlagRequired("id")
	_ = itemSetQuantityCmd.MarkFlagRequired("quantity")
}

func runItemAdd(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	modelNumber, _ := cmd.Flags().GetString("model-number")
	categoryID, _ := cmd.Flags().GetInt64("category")
	quantity, _ := cmd.Flags().GetInt("quantity")

	item, err := a.inventory.CreateItem(cmd.Context(), &model.Item{
		Name:        name,
		Description: description,
		ModelNumber: modelNumber,
		CategoryID:  categoryID,
		Quantity:    quantity,
	})
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	fmt.Printf("Item added:\n")
	fmt.Printf("  ID:           %d\n", item.ID)
	fmt.Printf("  Name:         %s\n", item.Name)
	fmt.Printf("  Model number: %s\n", item.ModelNumber)
	fmt.Printf("  Quantity:     %d\n", item.Quantity)

	return nil
}

func runItemList(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.store.ListItems(cmd.Context())
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No items yet. Use 'stockwatch item add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tMODEL NUMBER\tQUANTITY\n")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", item.ID, item.Name, item.ModelNumber, item.Quantity)
	}
	w.Flush()

	return nil
}

func runItemSetQuantity(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, _ := cmd.Flags().GetInt64("id")
	quantity, _ := cmd.Flags().GetInt("quantity")

	if err := a.inventory.SetQuantity(cmd.Context(), id, quantity); err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}

	fmt.Printf("Item %d quantity set to %d\n", id, quantity)
	return nil
}

func runItemHistory(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, _ := cmd.Flags().GetInt64("id")

	txs, err := a.store.ListTransactions(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	if len(txs) == 0 {
		fmt.Println("No transactions for this item.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTYPE\tQUANTITY\tBUY PRICE\tSELL PRICE\tDATE\n")
	for _, tx := range txs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.2f\t%s\n",
			tx.ID, tx.Type, tx.Quantity, tx.BuyingPrice, tx.SellingPrice,
			tx.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	w.Flush()

	return nil
}

func runItemImport(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	categories, items, err := a.inventory.ImportCatalog(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	fmt.Printf("Imported %d categories and %d items\n", categories, items)
	return nil
}
