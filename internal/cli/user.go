package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user with default notification preferences",
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUserList,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)

	userAddCmd.Flags().String("email", "", "Login email address")
	userAddCmd.Flags().String("phone", "", "WhatsApp phone number in E.164 form")
	userAddCmd.Flags().Int("threshold", model.DefaultAlertThreshold, "Low stock threshold (0 disables alerts)")
	_ = userAddCmd.MarkFlagRequired("email")
}

func runUserAdd(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")

	// An explicit --threshold wins, including 0 to disable alerts;
	// otherwise the configured default applies.
	threshold := a.cfg.Alerts.DefaultThreshold
	if cmd.Flags().Changed("threshold") {
		threshold, _ = cmd.Flags().GetInt("threshold")
	}
	if threshold < 0 {
		return fmt.Errorf("threshold must be non-negative")
	}

	user := &model.User{
		Email:               email,
		NotificationEmail:   email,
		PhoneNumber:         phone,
		NotificationEnabled: true,
		AlertThreshold:      threshold,
	}
	if err := a.store.CreateUser(cmd.Context(), user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
	return nil
}

func runUserList(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.store.ListUsers(cmd.Context())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users yet. Use 'stockwatch user add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tEMAIL\tPHONE\tTHRESHOLD\tNOTIFICATIONS\n")
	for _, u := range users {
		notifications := "enabled"
		if !u.NotificationEnabled {
			notifications = "disabled"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			u.ID, u.Email, orDash(u.PhoneNumber), u.AlertThreshold, notifications)
	}
	w.Flush()

	return nil
}
