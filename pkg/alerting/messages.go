package alerting

import (
	"fmt"
	"strings"
	"time"

	"github.com/pujana-systems/stockwatch/pkg/model"
	"github.com/pujana-systems/stockwatch/pkg/notify"
)

// Cooldown is the minimum interval between repeat notifications for the
// same open alert.
const Cooldown = 24 * time.Hour

const emailTemplate = `<html>
  <body style="font-family: Arial, sans-serif;">
    <h2 style="color: #e74c3c;">Low Stock Alert</h2>
    <p>Hi <strong>%s</strong>,</p>
    <p>The following item has low stock:</p>
    <ul>
      <li><strong>Item:</strong> %s</li>
      <li><strong>Current Quantity:</strong> %d</li>
      <li><strong>Alert Threshold:</strong> %d</li>
    </ul>
    <p>Please restock this item to avoid stockouts.</p>
    <p style="color: #999; font-size: 12px;">
      This is an automated alert from your inventory management system.<br>
      Sent at: %s
    </p>
  </body>
</html>`

// lowStockMessage renders the per-item alert for all channels.
func lowStockMessage(item *model.Item, user *model.User, quantity, threshold int) notify.Message {
	return notify.Message{
		Subject: fmt.Sprintf("Low Stock Alert: %s", item.Name),
		Body: fmt.Sprintf(emailTemplate,
			userDisplayName(user), item.Name, quantity, threshold,
			time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		),
		Text: fmt.Sprintf(
			"Inventory Alert\n\nItem: %s\nCurrent Stock: %d\nAlert Level: %d\n\nStock is low! Please restock soon.",
			item.Name, quantity, threshold,
		),
	}
}

// userDisplayName derives a greeting name from the user's login email.
func userDisplayName(user *model.User) string {
	if idx := strings.Index(user.Email, "@"); idx > 0 {
		return user.Email[:idx]
	}
	return user.Email
}
