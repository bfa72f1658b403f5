package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and manage low stock alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's alerts",
	RunE:  runAlertsList,
}

var alertsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show alert statistics for a user",
	RunE:  runAlertsStats,
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Mark an alert resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsResolve,
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a low stock check for a user now",
	RunE:  runAlertsCheck,
}

var alertsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the daily reconciliation sweep once, immediately",
	RunE:  runAlertsSweep,
}

var alertsTestEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a test email through the configured SMTP channel",
	RunE:  runAlertsTestEmail,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsStatsCmd)
	alertsCmd.AddCommand(alertsResolveCmd)
	alertsCmd.AddCommand(alertsCheckCmd)
	alertsCmd.AddCommand(alertsSweepCmd)
	alertsCmd.AddCommand(alertsTestEmailCmd)

	alertsListCmd.Flags().Int64P("user", "u", 0, "User id")
	alertsListCmd.Flags().Bool("show-resolved", false, "Include resolved alerts")
	_ = alertsListCmd.MarkFlagRequired("user")

	alertsStatsCmd.Flags().Int64P("user", "u", 0, "User id")
	_ = alertsStatsCmd.MarkFlagRequired("user")

	alertsCheckCmd.Flags().Int64P("user", "u", 0, "User id")
	_ = alertsCheckCmd.MarkFlagRequired("user")

	alertsTestEmailCmd.Flags().String("to", "", "Recipient address")
	_ = alertsTestEmailCmd.MarkFlagRequired("to")
}

func runAlertsList(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID, _ := cmd.Flags().GetInt64("user")
	showResolved, _ := cmd.Flags().GetBool("show-resolved")

	alerts, err := a.store.ListAlerts(cmd.Context(), userID, showResolved)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	if len(alerts) == 0 {
		fmt.Println("No alerts.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tITEM\tQTY AT ALERT\tRESOLVED\tLAST SENT\tNEXT ALERT\n")
	for _, alert := range alerts {
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%s\t%s\n",
			alert.ID, alert.ItemID, alert.QuantityAtAlert, alert.IsResolved,
			formatTime(alert.LastSentAt), formatTime(alert.NextAlertAt),
		)
	}
	w.Flush()

	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func runAlertsStats(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID, _ := cmd.Flags().GetInt64("user")

	user, err := a.store.GetUser(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	stats, err := a.store.CountAlerts(cmd.Context(), userID, user.AlertThreshold)
	if err != nil {
		return fmt.Errorf("count alerts: %w", err)
	}

	fmt.Printf("Alert statistics for %s:\n", user.Email)
	fmt.Printf("  Total:           %d\n", stats.TotalAlerts)
	fmt.Printf("  Active:          %d\n", stats.ActiveAlerts)
	fmt.Printf("  Resolved:        %d\n", stats.ResolvedAlerts)
	fmt.Printf("  Low stock items: %d\n", stats.LowStockItems)

	return nil
}

func runAlertsResolve(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	alertID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid alert id %q", args[0])
	}

	if err := a.store.ResolveAlert(cmd.Context(), alertID); err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}

	fmt.Printf("Alert %d resolved\n", alertID)
	return nil
}

func runAlertsCheck(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID, _ := cmd.Flags().GetInt64("user")

	checked, acted, err := a.evaluator.CheckUser(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("run check: %w", err)
	}

	fmt.Printf("Low stock check completed: %d items checked, %d alerts sent\n", checked, acted)
	return nil
}

func runAlertsSweep(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sent, err := a.sweeper.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run sweep: %w", err)
	}

	fmt.Printf("Sweep completed: %d notifications sent\n", sent)
	return nil
}

func runAlertsTestEmail(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	to, _ := cmd.Flags().GetString("to")

	if a.gateway.SendEmail(cmd.Context(), to,
		"Stockwatch Test Email",
		"<p>This is a test email from your inventory management system.</p>") {
		fmt.Printf("Test email sent to %s\n", to)
	} else {
		fmt.Println("Test email was not sent; check SMTP configuration and logs.")
	}
	return nil
}
