package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Manage buy/sell bills",
}

var billStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Open a new bill",
	RunE:  runBillStart,
}

var billRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a buy/sell transaction on a bill",
	RunE:  runBillRecord,
}

func init() {
	rootCmd.AddCommand(billCmd)
	billCmd.AddCommand(billStartCmd)
	billCmd.AddCommand(billRecordCmd)

	billStartCmd.Flags().StringP("type", "t", "", "Bill type (buy or sell)")
	_ = billStartCmd.MarkFlagRequired("type")

	billRecordCmd.Flags().StringP("bill", "b", "", "Bill number")
	billRecordCmd.Flags().Int64P("item", "i", 0, "Item id")
	billRecordCmd.Flags().StringP("type", "t", "", "Transaction type (buy or sell)")
	billRecordCmd.Flags().IntP("quantity", "q", 0, "Quantity")
	billRecordCmd.Flags().Float64("buying-price", 0, "Buying price per unit")
	billRecordCmd.Flags().Float64("selling-price", 0, "Selling price per unit")
	_ = billRecordCmd.MarkFlagRequired("bill")
	_ = billRecordCmd.MarkFlagRequired("item")
	_ = billRecordCmd.MarkFlagRequired("type")
	_ = billRecordCmd.MarkFlagRequired("quantity")
}

func runBillStart(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	billType, _ := cmd.Flags().GetString("type")

	bill, err := a.inventory.StartBill(cmd.Context(), model.BillType(billType))
	if err != nil {
		return fmt.Errorf("start bill: %w", err)
	}

	fmt.Printf("%s bill started: %s\n", bill.Type, bill.Number)
	return nil
}

func runBillRecord(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	billNumber, _ := cmd.Flags().GetString("bill")
	itemID, _ := cmd.Flags().GetInt64("item")
	txType, _ := cmd.Flags().GetString("type")
	quantity, _ := cmd.Flags().GetInt("quantity")
	buyingPrice, _ := cmd.Flags().GetFloat64("buying-price")
	sellingPrice, _ := cmd.Flags().GetFloat64("selling-price")

	tx, err := a.inventory.RecordTransaction(cmd.Context(), billNumber, itemID,
		model.TransactionType(txType), quantity, buyingPrice, sellingPrice)
	if err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}

	fmt.Printf("Transaction recorded:\n")
	fmt.Printf("  ID:       %d\n", tx.ID)
	fmt.Printf("  Bill:     %s\n", billNumber)
	fmt.Printf("  Item:     %d\n", tx.ItemID)
	fmt.Printf("  Type:     %s\n", tx.Type)
	fmt.Printf("  Quantity: %d\n", tx.Quantity)

	return nil
}
