package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pujana-systems/stockwatch/pkg/model"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage a user's notification preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current notification preferences",
	RunE:  runPrefsGet,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update notification preferences",
	RunE:  runPrefsSet,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)

	prefsGetCmd.Flags().Int64P("user", "u", 0, "User id")
	_ = prefsGetCmd.MarkFlagRequired("user")

	prefsSetCmd.Flags().Int64P("user", "u", 0, "User id")
	prefsSetCmd.Flags().Bool("enabled", true, "Enable or disable low stock notifications")
	prefsSetCmd.Flags().String("email", "", "Notification email address")
	prefsSetCmd.Flags().String("phone", "", "WhatsApp phone number in E.164 form")
	prefsSetCmd.Flags().Int("threshold", 0, "Low stock threshold")
	_ = prefsSetCmd.MarkFlagRequired("user")
}

func runPrefsGet(cmd *cobra.Command, _ []string) error {
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

	fmt.Printf("Preferences for %s:\n", user.Email)
	fmt.Printf("  Notifications enabled: %v\n", user.NotificationEnabled)
	fmt.Printf("  Notification email:    %s\n", orDash(user.NotificationEmail))
	fmt.Printf("  Phone number:          %s\n", orDash(user.PhoneNumber))
	fmt.Printf("  Alert threshold:       %d\n", user.AlertThreshold)

	return nil
}

func runPrefsSet(cmd *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID, _ := cmd.Flags().GetInt64("user")

	// Only flags the caller actually passed become part of the update;
	// everything else keeps its stored value.
	var update model.PreferencesUpdate
	if cmd.Flags().Changed("enabled") {
		v, _ := cmd.Flags().GetBool("enabled")
		update.NotificationEnabled = &v
	}
	if cmd.Flags().Changed("email") {
		v, _ := cmd.Flags().GetString("email")
		update.NotificationEmail = &v
	}
	if cmd.Flags().Changed("phone") {
		v, _ := cmd.Flags().GetString("phone")
		update.PhoneNumber = &v
	}
	if cmd.Flags().Changed("threshold") {
		v, _ := cmd.Flags().GetInt("threshold")
		update.AlertThreshold = &v
	}

	if err := update.Validate(); err != nil {
		return err
	}

	if err := a.store.UpdatePreferences(cmd.Context(), userID, update); err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}

	user, err := a.store.GetUser(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	fmt.Printf("Preferences updated for %s (threshold %d, enabled %v)\n",
		user.Email, user.AlertThreshold, user.NotificationEnabled)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
